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

package board

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// SANHistory renders the full move list in numbered SAN:
// "1. e4 e5 2. Nf3 Nc6".
func (pos *Position) SANHistory() string {
	return pos.PGNTail(pos.PlyCount())
}

// PGNTail renders the last maxPlies half-moves in numbered SAN without
// headers, the way a PGN body reads.
func (pos *Position) PGNTail(maxPlies int) string {
	if maxPlies <= 0 {
		return ""
	}

	moves := pos.game.Moves()
	positions := pos.game.Positions()

	sans := make([]string, 0, len(moves))
	for i, move := range moves {
		san := chess.AlgebraicNotation{}.Encode(positions[i], move)
		if i%2 == 0 {
			san = fmt.Sprintf("%d. %s", i/2+1, san)
		}
		sans = append(sans, san)
	}

	if len(sans) > maxPlies {
		sans = sans[len(sans)-maxPlies:]
	}
	return strings.Join(sans, " ")
}

// AnnotatedHistory renders the move list one half-move per line as
// plain prose, e.g. "White Pawn e4" / "Black Knight Nf6". No numbering.
func (pos *Position) AnnotatedHistory() string {
	moves := pos.game.Moves()
	positions := pos.game.Positions()

	lines := make([]string, 0, len(moves))
	for i, move := range moves {
		before := positions[i]

		color := "White"
		if before.Turn() == chess.Black {
			color = "Black"
		}

		san := chess.AlgebraicNotation{}.Encode(before, move)
		piece := pieceName(before.Board().Piece(move.S1()).Type())

		lines = append(lines, fmt.Sprintf("%s %s %s", color, piece, san))
	}
	return strings.Join(lines, "\n")
}

func pieceName(pt chess.PieceType) string {
	switch pt {
	case chess.King:
		return "King"
	case chess.Queen:
		return "Queen"
	case chess.Rook:
		return "Rook"
	case chess.Bishop:
		return "Bishop"
	case chess.Knight:
		return "Knight"
	case chess.Pawn:
		return "Pawn"
	default:
		return "Piece"
	}
}
