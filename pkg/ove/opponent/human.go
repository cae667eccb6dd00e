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
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"

	"laptudirm.com/x/gambit/pkg/ove/board"
)

// Human reads moves interactively, re-prompting until a legal move in
// SAN or UCI arrives. "resign" resigns the game.
type Human struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewHuman returns a Human opponent reading from in and prompting on out.
func NewHuman(in io.Reader, out io.Writer) *Human {
	return &Human{in: bufio.NewScanner(in), out: out}
}

func (h *Human) Name() string { return "Human" }

func (h *Human) Choose(pos *board.Position) (*chess.Move, error) {
	for {
		fmt.Fprintf(h.out, "\nYour turn. Board FEN: %s\n", pos.FEN())
		fmt.Fprint(h.out, "Enter your move in SAN or UCI (e.g., e4 or e2e4): ")

		if !h.in.Scan() {
			if err := h.in.Err(); err != nil {
				return nil, fmt.Errorf("opponent: reading input: %w", err)
			}
			return nil, io.EOF
		}

		raw := strings.TrimSpace(h.in.Text())
		if raw == "" {
			continue
		}
		if strings.EqualFold(raw, "resign") {
			return nil, ErrResigned
		}

		if move, err := (chess.UCINotation{}).Decode(pos.Current(), raw); err == nil && legal(pos, move) {
			return move, nil
		}
		if move, err := (chess.AlgebraicNotation{}).Decode(pos.Current(), raw); err == nil && legal(pos, move) {
			return move, nil
		}

		fmt.Fprintln(h.out, "Illegal move. Please try again with a legal move.")
	}
}

func (h *Human) Close() error { return nil }
