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

// Package board wraps the chess rules engine behind the small surface
// the harness needs: legal move enumeration, move application, terminal
// detection, clock-insensitive position equivalence, and the history
// renderings the prompt templates reference.
package board

import (
	"fmt"
	"time"

	"github.com/notnil/chess"
)

// Position owns the game state of a single session, including any
// result forced from outside the rules (illegal oracle move, opponent
// error, truncation).
type Position struct {
	game *chess.Game

	resultOverride string
	termination    string
}

// New returns a Position at the standard starting position.
func New() *Position {
	return &Position{game: chess.NewGame()}
}

// FromFEN returns a Position initialized from the given FEN.
func FromFEN(fenstr string) (*Position, error) {
	fen, err := chess.FEN(fenstr)
	if err != nil {
		return nil, fmt.Errorf("board: bad starting fen: %w", err)
	}

	return &Position{game: chess.NewGame(fen)}, nil
}

// Current returns the current underlying position.
func (pos *Position) Current() *chess.Position {
	return pos.game.Position()
}

// LegalMoves enumerates the legal moves in the current position.
func (pos *Position) LegalMoves() []*chess.Move {
	return pos.game.ValidMoves()
}

// Turn returns the color to move.
func (pos *Position) Turn() chess.Color {
	return pos.game.Position().Turn()
}

// SideToMove returns the side to move as lowercase prose for prompts.
func (pos *Position) SideToMove() string {
	if pos.Turn() == chess.White {
		return "white"
	}
	return "black"
}

// FEN returns the FEN of the current position.
func (pos *Position) FEN() string {
	return pos.game.Position().String()
}

// PlyCount returns the number of half-moves played so far.
func (pos *Position) PlyCount() int {
	return len(pos.game.Moves())
}

// ApplyMove applies a legal move and returns its SAN. Claimable draws
// (threefold repetition, fifty-move rule) are claimed immediately, the
// way an arbiter adjudicates an engine game.
func (pos *Position) ApplyMove(move *chess.Move) (string, error) {
	san := chess.AlgebraicNotation{}.Encode(pos.game.Position(), move)

	if err := pos.game.Move(move); err != nil {
		return "", err
	}

	if pos.game.Outcome() == chess.NoOutcome {
		for _, method := range pos.game.EligibleDraws() {
			if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
				_ = pos.game.Draw(method)
				break
			}
		}
	}

	return san, nil
}

// SAN encodes a move in standard algebraic notation against the current
// position without applying it.
func (pos *Position) SAN(move *chess.Move) string {
	return chess.AlgebraicNotation{}.Encode(pos.game.Position(), move)
}

// Terminal reports whether the game is over by the rules or by a forced
// result, along with the result string ("1-0", "0-1", "1/2-1/2").
func (pos *Position) Terminal() (bool, string) {
	status := pos.Status()
	return status != "*", status
}

// Status returns the current result string, "*" while ongoing. A forced
// result takes precedence over the rules engine's outcome.
func (pos *Position) Status() string {
	if pos.resultOverride != "" {
		return pos.resultOverride
	}
	return pos.game.Outcome().String()
}

// Method returns how the game ended by the rules, NoMethod otherwise.
func (pos *Position) Method() chess.Method {
	return pos.game.Method()
}

// ForceResult fixes the game result from outside the rules engine and
// records the termination reason for export. Idempotent once set.
func (pos *Position) ForceResult(result, reason string) {
	if pos.resultOverride == "" {
		pos.resultOverride = result
	}
	if pos.termination == "" {
		pos.termination = reason
	}
}

// Termination returns the recorded termination reason, if any.
func (pos *Position) Termination() string {
	return pos.termination
}

// Moves returns the moves played so far.
func (pos *Position) Moves() []*chess.Move {
	return pos.game.Moves()
}

// Positions returns every position of the game, including the start.
func (pos *Position) Positions() []*chess.Position {
	return pos.game.Positions()
}

// SetHeaders records the PGN tag pairs for export.
func (pos *Position) SetHeaders(event, site, white, black string) {
	pos.game.AddTagPair("Event", event)
	pos.game.AddTagPair("Site", site)
	pos.game.AddTagPair("Date", time.Now().Format("2006.01.02"))
	pos.game.AddTagPair("White", white)
	pos.game.AddTagPair("Black", black)
}

// PGN serializes the game. Forced results and termination reasons are
// expressed as tag pairs since the rules engine does not know of them.
func (pos *Position) PGN() string {
	if pos.resultOverride != "" {
		pos.game.AddTagPair("Result", pos.resultOverride)
	}
	if pos.termination != "" {
		pos.game.AddTagPair("Termination", pos.termination)
	}
	return pos.game.String()
}

// Equivalent compares two positions ignoring the move counters: side to
// move, castling rights and piece placement must match exactly; the en
// passant square must match unless one side has none recorded.
func Equivalent(a, b *chess.Position) bool {
	if a.Turn() != b.Turn() {
		return false
	}

	if a.CastleRights().String() != b.CastleRights().String() {
		return false
	}

	aEP, bEP := a.EnPassantSquare(), b.EnPassantSquare()
	if aEP != chess.NoSquare && bEP != chess.NoSquare && aEP != bEP {
		return false
	}

	aPieces, bPieces := a.Board().SquareMap(), b.Board().SquareMap()
	if len(aPieces) != len(bPieces) {
		return false
	}
	for square, piece := range aPieces {
		if bPieces[square] != piece {
			return false
		}
	}

	return true
}
