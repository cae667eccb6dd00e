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

package opponent

import (
	"context"
	"fmt"
	"time"

	"github.com/notnil/chess"

	"laptudirm.com/x/gambit/pkg/ove/board"
	"laptudirm.com/x/gambit/pkg/ove/prompt"
	"laptudirm.com/x/gambit/pkg/ove/validate"
)

// Asker is the single-conversation seam the model opponent needs from
// a transport.
type Asker interface {
	Ask(ctx context.Context, model string, messages []prompt.Message) (string, error)
}

// Model is an LLM-backed opponent for model-vs-model evaluation. Its
// replies pass through the same validator as the oracle's; an illegal
// reply is an opponent error and loses the game.
type Model struct {
	model   string
	asker   Asker
	config  prompt.Config
	timeout time.Duration
}

// NewModel builds a model-backed opponent using the given prompt
// configuration, defaulting to the SAN prompt when zero.
func NewModel(model string, asker Asker, config prompt.Config, timeout time.Duration) *Model {
	if config == (prompt.Config{}) {
		config = prompt.DefaultConfig(prompt.SAN)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Model{model: model, asker: asker, config: config, timeout: timeout}
}

func (m *Model) Name() string { return m.model }

func (m *Model) Choose(pos *board.Position) (*chess.Move, error) {
	messages := m.config.Messages(prompt.Values{
		FEN:         pos.FEN(),
		SANHistory:  pos.SANHistory(),
		MoveHistory: pos.AnnotatedHistory(),
		SideToMove:  pos.SideToMove(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	raw, err := m.asker.Ask(ctx, m.model, messages)
	if err != nil {
		return nil, fmt.Errorf("opponent: model reply: %w", err)
	}

	parsed := validate.Parse(raw, pos, m.config.Notation)
	if !parsed.OK {
		return nil, fmt.Errorf("opponent: model move rejected: %s", parsed.Reason)
	}
	return parsed.Move, nil
}

func (m *Model) Close() error { return nil }
