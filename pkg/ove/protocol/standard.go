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

import "laptudirm.com/x/gambit/pkg/ove/prompt"

// Standard is the single round-trip protocol: whatever the oracle
// replies goes straight to the validator.
type Standard struct {
	stageRecorder
}

// NewStandard is a Factory for the standard protocol.
func NewStandard() Protocol {
	return &Standard{}
}

func (p *Standard) Name() string { return "standard" }

func (p *Standard) BeginTurn() {
	p.reset()
}

func (p *Standard) HasPendingFollowup() bool { return false }

func (p *Standard) BuildMessages(view View) []prompt.Message {
	return view.MoveRequest()
}

func (p *Standard) ProcessResponse(view View, raw string, messages []prompt.Message) Outcome {
	p.record("proposal", messages, raw)

	system, user := splitPrompts(messages)
	return Outcome{
		Completed:   true,
		TextForMove: raw,
		Metadata: Metadata{
			"system":           system,
			"prompt":           user,
			"primary_response": raw,
		},
	}
}
