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

package extract

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/gambit/pkg/ove/prompt"
)

// Asker is the single-conversation seam guard agents need from a
// transport.
type Asker interface {
	Ask(ctx context.Context, model string, messages []prompt.Message) (string, error)
}

const guardMoveSystem = "You receive a raw reply.\n" +
	"Ensure it is a chess move and avoid any other text.\n" +
	"Output ONLY the move in UCI (lowercase, include promotion letter if any). If no move is present, output the single word NONE."

const guardYesNoSystem = "You receive a raw reply.\n" +
	"Output ONLY the single word YES if the answer indicates the move is legal,\n" +
	"and the single word NO if it indicates the move is not legal.\n" +
	"If you cannot determine the answer, return the single word UNKNOWN."

// Guard escalates extraction to a small secondary model when the fast
// regex path finds nothing. Failures degrade to the Tokens fallback so
// extraction never blocks a turn.
type Guard struct {
	Asker   Asker
	Model   string
	Timeout time.Duration
}

func (g Guard) ExtractMove(raw string) (string, bool) {
	if match := uciRegexp.FindString(raw); match != "" {
		return strings.ToLower(match), true
	}

	answer, err := g.ask(guardMoveSystem, "RAW REPLY: "+raw+"\nReturn only the move in UCI or NONE:")
	if err != nil {
		logrus.Warnf("extract: move guard failed: %s", err)
		return Tokens{}.ExtractMove(raw)
	}

	token := strings.ToLower(firstField(answer))
	if token == "" || token == "none" {
		return Tokens{}.ExtractMove(raw)
	}
	return token, true
}

func (g Guard) ClassifyYesNo(raw string) Verdict {
	if verdict := (Keywords{}).ClassifyYesNo(raw); verdict != Unknown {
		return verdict
	}

	answer, err := g.ask(guardYesNoSystem,
		"RAW REPLY: "+raw+"\nReturn only YES, NO, or UNKNOWN to indicate whether the original reply confirms the move is legal.")
	if err != nil {
		logrus.Warnf("extract: yes/no guard failed: %s", err)
		return Unknown
	}

	switch strings.ToLower(firstField(answer)) {
	case "yes":
		return Yes
	case "no":
		return No
	default:
		return Unknown
	}
}

func (g Guard) ask(system, user string) (string, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return g.Asker.Ask(ctx, g.Model, []prompt.Message{
		{Role: prompt.RoleSystem, Content: system},
		{Role: prompt.RoleUser, Content: user},
	})
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
