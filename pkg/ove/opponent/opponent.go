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

// Package opponent provides the players an oracle is evaluated
// against. All variants sit behind the one Opponent interface and are
// dispatched through it; a session never inspects which kind it got.
package opponent

import (
	"errors"

	"github.com/notnil/chess"

	"laptudirm.com/x/gambit/pkg/ove/board"
)

// Opponent chooses moves for the non-oracle side of a session. An
// error return is terminal for the game and is awarded against the
// opponent, resignation included.
type Opponent interface {
	Name() string
	Choose(pos *board.Position) (*chess.Move, error)
	Close() error
}

// ErrNoLegalMoves is returned when Choose is called on a terminal
// position. Sessions should never let it happen; it guards misuse.
var ErrNoLegalMoves = errors.New("opponent: no legal moves in position")

// ErrResigned signals that the opponent resigns the game.
var ErrResigned = errors.New("opponent: resigned")

// legal reports whether move is among the legal moves of pos. Notation
// decoding alone does not guarantee legality for long algebraic input.
func legal(pos *board.Position, move *chess.Move) bool {
	for _, m := range pos.LegalMoves() {
		if m.String() == move.String() {
			return true
		}
	}
	return false
}
