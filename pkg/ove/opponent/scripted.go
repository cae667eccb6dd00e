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

	"github.com/notnil/chess"

	"laptudirm.com/x/gambit/pkg/ove/board"
)

// Scripted replays a fixed move list, in SAN or UCI. Deterministic
// fixture for tests and reproducible benchmark lines; running out of
// script or hitting an illegal scripted move is an opponent error.
type Scripted struct {
	moves []string
	next  int
}

// NewScripted returns a Scripted opponent over the given move list.
func NewScripted(moves ...string) *Scripted {
	return &Scripted{moves: moves}
}

func (s *Scripted) Name() string { return "Scripted" }

func (s *Scripted) Choose(pos *board.Position) (*chess.Move, error) {
	if s.next >= len(s.moves) {
		return nil, fmt.Errorf("opponent: script exhausted after %d moves", len(s.moves))
	}

	notation := s.moves[s.next]
	s.next++

	if move, err := (chess.UCINotation{}).Decode(pos.Current(), notation); err == nil && legal(pos, move) {
		return move, nil
	}

	move, err := chess.AlgebraicNotation{}.Decode(pos.Current(), notation)
	if err != nil || !legal(pos, move) {
		return nil, fmt.Errorf("opponent: scripted move %q is not legal here", notation)
	}
	return move, nil
}

func (s *Scripted) Close() error { return nil }
