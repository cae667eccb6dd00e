// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package protocol

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/gambit/pkg/ove/extract"
	"laptudirm.com/x/gambit/pkg/ove/prompt"
)

// DefaultMaxAttempts bounds verify-protocol proposal retries per turn.
const DefaultMaxAttempts = 3

type verifyPhase uint8

const (
	phaseProposal verifyPhase = iota
	phaseCheck
)

// Verify is the two-phase protocol: a proposal exchange extracts a
// candidate move, then a check exchange asks the oracle to confirm its
// legality. "yes" commits the proposed reply; "no" or "unknown" records
// the candidate as rejected and asks for a new proposal. After
// MaxAttempts the last candidate is forced through regardless of its
// check, guaranteeing forward progress.
type Verify struct {
	stageRecorder

	MaxAttempts int
	Extractor   extract.Extractor
	Classifier  extract.Classifier

	phase       verifyPhase
	attempts    int
	rejected    []string
	pendingRaw  string
	pendingMove string
}

// NewVerify builds a Factory for the verify protocol with the given
// collaborators. maxAttempts <= 0 means DefaultMaxAttempts.
func NewVerify(extractor extract.Extractor, classifier extract.Classifier, maxAttempts int) Factory {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	return func() Protocol {
		return &Verify{
			MaxAttempts: maxAttempts,
			Extractor:   extractor,
			Classifier:  classifier,
		}
	}
}

func (p *Verify) Name() string { return "verify" }

func (p *Verify) BeginTurn() {
	p.reset()
	p.phase = phaseProposal
	p.attempts = 0
	p.rejected = nil
	p.pendingRaw = ""
	p.pendingMove = ""
}

func (p *Verify) HasPendingFollowup() bool {
	return p.phase == phaseCheck
}

func (p *Verify) BuildMessages(view View) []prompt.Message {
	if p.phase == phaseProposal {
		var extra []string
		if p.attempts > 0 {
			extra = append(extra, fmt.Sprintf("Attempt %d of %d.", p.attempts+1, p.MaxAttempts))
		}
		if len(p.rejected) > 0 {
			extra = append(extra,
				fmt.Sprintf("Previous illegal attempts: %s.", strings.Join(p.rejected, ", ")),
				"Those moves were illegal. Suggest a different legal move.")
		}
		return view.MoveRequest(extra...)
	}

	if p.pendingMove == "" {
		// Check phase without a candidate should not happen; fall back
		// to a fresh proposal so the turn cannot wedge.
		logrus.Warn("protocol: check phase without candidate, reverting to proposal")
		p.phase = phaseProposal
		return view.MoveRequest()
	}
	return view.LegalityCheck(p.pendingMove, p.attempts+1)
}

func (p *Verify) ProcessResponse(view View, raw string, messages []prompt.Message) Outcome {
	if p.phase == phaseProposal {
		return p.processProposal(raw, messages)
	}
	return p.processCheck(raw, messages)
}

func (p *Verify) processProposal(raw string, messages []prompt.Message) Outcome {
	p.record("proposal", messages, raw)

	candidate, ok := p.Extractor.ExtractMove(raw)
	p.pendingRaw = raw
	p.pendingMove = candidate

	metadata := Metadata{
		"candidate_move":   candidate,
		"proposal_attempt": p.attempts + 1,
	}

	if !ok || candidate == "" {
		// Nothing extractable; hand the raw reply to the validator
		// immediately rather than asking the oracle about nothing.
		metadata["candidate_empty"] = true
		return Outcome{Completed: true, TextForMove: raw, Metadata: metadata}
	}

	p.phase = phaseCheck
	return Outcome{Metadata: metadata}
}

func (p *Verify) processCheck(raw string, messages []prompt.Message) Outcome {
	p.record("check", messages, raw)

	verdict := p.Classifier.ClassifyYesNo(raw)
	metadata := Metadata{
		"candidate_move":    p.pendingMove,
		"legality_response": raw,
		"legality_decision": string(verdict),
		"proposal_attempt":  p.attempts + 1,
	}

	if verdict == extract.Yes {
		// Commit the proposed reply, not the check answer.
		metadata["confirmed_legal"] = true
		committed := p.pendingRaw
		p.phase = phaseProposal
		return Outcome{Completed: true, TextForMove: committed, Metadata: metadata}
	}

	if p.pendingMove != "" {
		p.rejected = append(p.rejected, p.pendingMove)
	}
	metadata["confirmed_legal"] = false
	if verdict == extract.Unknown {
		metadata["uncertain_check"] = true
	}

	p.attempts++
	if p.attempts >= p.MaxAttempts {
		metadata["forced_due_to_limit"] = true
		committed := p.pendingRaw
		if committed == "" {
			committed = raw
		}
		p.phase = phaseProposal
		return Outcome{Completed: true, TextForMove: committed, Metadata: metadata}
	}

	metadata["retry"] = true
	p.phase = phaseProposal
	p.pendingRaw = ""
	p.pendingMove = ""
	return Outcome{Metadata: metadata}
}
