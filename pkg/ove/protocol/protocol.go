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

// Package protocol coordinates the oracle round-trips of a single turn.
// A protocol may need more than one exchange before it commits a move:
// the session keeps asking BuildMessages/ProcessResponse until the
// outcome reports completion, then hands the committed text to the
// validator. Protocols never return errors; they always make forward
// progress.
package protocol

import "laptudirm.com/x/gambit/pkg/ove/prompt"

// Stage is one recorded prompt/response exchange within a turn, kept
// for audit and conversation export.
type Stage struct {
	Name      string `json:"stage"`
	System    string `json:"system"`
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// Metadata carries protocol-specific details into the ply record.
type Metadata map[string]any

// Outcome is the result of processing one oracle response.
type Outcome struct {
	// Completed reports whether the turn is done. While false the
	// session must send another round-trip.
	Completed bool

	// TextForMove is the committed reply handed to the validator.
	// Meaningful only when Completed.
	TextForMove string

	Metadata Metadata
}

// View is the window a protocol gets into its session: prompt builders
// only, never game state mutation.
type View interface {
	// MoveRequest builds the move request messages, with extra lines
	// appended to the user prompt.
	MoveRequest(extra ...string) []prompt.Message

	// LegalityCheck builds the messages asking whether candidate is a
	// legal move in the current position.
	LegalityCheck(candidate string, attempt int) []prompt.Message
}

// Protocol is the per-turn state machine contract.
type Protocol interface {
	Name() string

	// BeginTurn resets state for a fresh turn.
	BeginTurn()

	// HasPendingFollowup reports whether the protocol expects further
	// round-trips before a move can commit.
	HasPendingFollowup() bool

	// BuildMessages produces the next messages to send. It is called
	// afresh every orchestrator cycle so retried prompts reflect the
	// current protocol state.
	BuildMessages(view View) []prompt.Message

	// ProcessResponse consumes the reply to the given messages.
	ProcessResponse(view View, raw string, messages []prompt.Message) Outcome

	// Stages returns the exchanges recorded so far this turn.
	Stages() []Stage
}

// Factory allocates a fresh protocol instance. Sessions allocate
// lazily on first need and free the instance once a move commits.
type Factory func() Protocol

// stageRecorder is the shared bookkeeping embedded by implementations.
type stageRecorder struct {
	stages []Stage
}

func (r *stageRecorder) record(name string, messages []prompt.Message, raw string) {
	system, user := splitPrompts(messages)
	r.stages = append(r.stages, Stage{
		Name:      name,
		System:    system,
		User:      user,
		Assistant: raw,
	})
}

func (r *stageRecorder) Stages() []Stage {
	stages := make([]Stage, len(r.stages))
	copy(stages, r.stages)
	return stages
}

func (r *stageRecorder) reset() {
	r.stages = nil
}

func splitPrompts(messages []prompt.Message) (system, user string) {
	for _, message := range messages {
		switch message.Role {
		case prompt.RoleSystem:
			if system == "" {
				system = message.Content
			}
		case prompt.RoleUser:
			user = message.Content
		}
	}
	return system, user
}
