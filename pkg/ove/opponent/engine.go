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
	"fmt"
	"os/exec"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"

	"laptudirm.com/x/gambit/pkg/ove/board"
)

// EngineConfig configures a UCI engine opponent.
type EngineConfig struct {
	// Path to the engine binary; looked up on PATH when relative.
	// Empty means "stockfish".
	Path string `yaml:"path"`

	// Search limit: MoveTime wins over Depth when both are set.
	Depth    int           `yaml:"depth"`
	MoveTime time.Duration `yaml:"move-time"`
}

// Engine is a UCI-engine-backed opponent (Stockfish and friends).
type Engine struct {
	name   string
	eng    *uci.Engine
	config EngineConfig
}

// NewEngine launches and initializes the engine process.
func NewEngine(config EngineConfig) (*Engine, error) {
	binary := config.Path
	if binary == "" {
		binary = "stockfish"
	}

	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("opponent: engine binary %q not found: %w", binary, err)
	}

	eng, err := uci.New(resolved)
	if err != nil {
		return nil, fmt.Errorf("opponent: launching engine: %w", err)
	}

	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		eng.Close()
		return nil, fmt.Errorf("opponent: initializing engine: %w", err)
	}

	if config.Depth <= 0 && config.MoveTime <= 0 {
		config.Depth = 6
	}

	name := "Stockfish"
	if config.MoveTime > 0 {
		name = fmt.Sprintf("%s(%s)", name, config.MoveTime)
	} else {
		name = fmt.Sprintf("%s(d%d)", name, config.Depth)
	}

	return &Engine{name: name, eng: eng, config: config}, nil
}

func (e *Engine) Name() string { return e.name }

func (e *Engine) Choose(pos *board.Position) (*chess.Move, error) {
	cmdGo := uci.CmdGo{Depth: e.config.Depth}
	if e.config.MoveTime > 0 {
		cmdGo = uci.CmdGo{MoveTime: e.config.MoveTime}
	}

	if err := e.eng.Run(uci.CmdPosition{Position: pos.Current()}, cmdGo); err != nil {
		return nil, fmt.Errorf("opponent: engine search: %w", err)
	}

	move := e.eng.SearchResults().BestMove
	if move == nil {
		return nil, ErrNoLegalMoves
	}
	return move, nil
}

func (e *Engine) Close() error {
	return e.eng.Close()
}
