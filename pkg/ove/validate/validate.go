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

// Package validate turns a raw oracle reply into a single legal move
// under an explicit notation contract. The caller declares exactly one
// notation; there is no cross-notation salvage, which keeps accidental
// matches from being scored as legal moves. Parse never fails with an
// error: every outcome is a Parsed value with a typed reason.
package validate

import (
	"regexp"
	"strings"

	"github.com/notnil/chess"

	"laptudirm.com/x/gambit/pkg/ove/board"
	"laptudirm.com/x/gambit/pkg/ove/prompt"
)

// Reason is a typed explanation for a rejected reply.
type Reason string

const (
	ReasonEmptyReply  Reason = "empty_reply"
	ReasonBadFormat   Reason = "bad_format"
	ReasonIllegalMove Reason = "illegal_move"
	ReasonInvalidFEN  Reason = "invalid_fen"
	ReasonFENNoMatch  Reason = "fen_not_match_legal_move"
)

// Parsed is the outcome of validating one reply.
type Parsed struct {
	OK     bool
	Move   *chess.Move
	UCI    string
	SAN    string
	Reason Reason
}

var (
	uciRegexp = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)
	sanRegexp = regexp.MustCompile(`^(?:[KQRBN]?[a-h]?[1-8]?x?[a-h][1-8](?:=[QRBN])?[+#]?|O-O(?:-O)?[+#]?)$`)
)

// Castling spelled with zeros or lowercase letters, normalized to SAN.
var castleSAN = map[string]string{
	"0-0": "O-O", "0-0-0": "O-O-O",
	"o-o": "O-O", "o-o-o": "O-O-O",
}

// Parse extracts a legal move from raw under the declared notation. SAN
// and UCI read the first token of the reply; FEN reads the first line,
// since FENs contain spaces.
func Parse(raw string, pos *board.Position, notation prompt.Notation) Parsed {
	switch notation {
	case prompt.UCI:
		return parseUCI(primaryToken(raw), pos)
	case prompt.FEN:
		return parseFEN(firstLine(raw), pos)
	default:
		return parseSAN(primaryToken(raw), pos)
	}
}

func parseSAN(token string, pos *board.Position) Parsed {
	if token == "" {
		return Parsed{Reason: ReasonEmptyReply}
	}

	if mapped, ok := castleSAN[token]; ok {
		token = mapped
	}

	// A square-square token is UCI, never SAN. The SAN decoder's
	// disambiguation fallback would otherwise accept it and can even
	// resolve it to a different move than written (b1c3 becomes the
	// pawn move c3), so it has to be rejected before decoding.
	if uciRegexp.MatchString(strings.ToLower(token)) {
		return Parsed{Reason: ReasonBadFormat}
	}

	move, err := chess.AlgebraicNotation{}.Decode(pos.Current(), token)
	if err != nil {
		if sanRegexp.MatchString(token) {
			return Parsed{Reason: ReasonIllegalMove}
		}
		return Parsed{Reason: ReasonBadFormat}
	}

	return accept(move, pos)
}

func parseUCI(token string, pos *board.Position) Parsed {
	if token == "" {
		return Parsed{Reason: ReasonEmptyReply}
	}
	token = strings.ToLower(token)

	// Castling sometimes arrives spelled as SAN even when UCI was asked
	// for; map it onto the king move for the side to move.
	if _, ok := castleSAN[token]; ok {
		rank := "1"
		if pos.Turn() == chess.Black {
			rank = "8"
		}
		file := "g"
		if strings.Count(token, "-") == 2 {
			file = "c"
		}
		token = "e" + rank + file + rank
	}

	if !uciRegexp.MatchString(token) {
		return Parsed{Reason: ReasonBadFormat}
	}

	for _, move := range pos.LegalMoves() {
		if move.String() == token {
			return accept(move, pos)
		}
	}
	return Parsed{Reason: ReasonIllegalMove}
}

func parseFEN(line string, pos *board.Position) Parsed {
	if line == "" {
		return Parsed{Reason: ReasonEmptyReply}
	}

	var candidate chess.Position
	if err := candidate.UnmarshalText([]byte(line)); err != nil {
		return Parsed{Reason: ReasonInvalidFEN}
	}

	// Linear scan: apply every legal move to a scratch copy and accept
	// the first whose resulting position is equivalent to the candidate.
	current := pos.Current()
	for _, move := range pos.LegalMoves() {
		if board.Equivalent(current.Update(move), &candidate) {
			return accept(move, pos)
		}
	}
	return Parsed{Reason: ReasonFENNoMatch}
}

func accept(move *chess.Move, pos *board.Position) Parsed {
	return Parsed{
		OK:   true,
		Move: move,
		UCI:  move.String(),
		SAN:  pos.SAN(move),
	}
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") {
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			inner := text[idx+1 : len(text)-3]
			return strings.TrimSpace(inner)
		}
	}
	return text
}

func primaryToken(text string) string {
	fields := strings.Fields(stripCodeFence(text))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func firstLine(text string) string {
	text = stripCodeFence(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
