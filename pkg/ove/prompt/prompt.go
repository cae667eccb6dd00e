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

// Package prompt builds the chat messages sent to an oracle when asking
// for its next move. Callers supply a system instruction and a template
// with placeholders which are substituted per turn.
package prompt

import "strings"

// Chat roles understood by oracle transports.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message in an oracle conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Notation is the move notation an oracle is asked to reply in. The
// validator holds the oracle to exactly this notation: there is no
// cross-notation salvage.
type Notation string

const (
	SAN Notation = "san" // standard algebraic: e4, Nf3, O-O
	UCI Notation = "uci" // long algebraic: e2e4, e7e8q
	FEN Notation = "fen" // the resulting position after the move
)

// Template placeholders resolved by Render.
const (
	PlaceholderFEN         = "{FEN}"
	PlaceholderSANHistory  = "{SAN_HISTORY}"
	PlaceholderMoveHistory = "{MOVE_HISTORY}"
	PlaceholderSideToMove  = "{SIDE_TO_MOVE}"
)

const (
	DefaultSANSystem   = "You are a strong chess player. When asked for a move, provide only the best legal move in SAN."
	DefaultSANTemplate = "Position (FEN): {FEN}\nRespond with only your best legal move in SAN."

	DefaultUCISystem   = "You are a chess engine. Respond with exactly one legal move in long algebraic UCI (e.g., e2e4). Return only the move."
	DefaultUCITemplate = "Board FEN: {FEN}\nMove history (SAN): {SAN_HISTORY}\nSide to move: {SIDE_TO_MOVE}\nReply with only the best legal move in UCI (e.g., e2e4, g7g8q)."

	DefaultFENSystem   = "You generate the resulting board position as a FEN after making your move. Output only that FEN."
	DefaultFENTemplate = "Board before your move (FEN): {FEN}\nMove history (SAN): {SAN_HISTORY}\nYou are playing as {SIDE_TO_MOVE}. Make the best legal move, then return ONLY the resulting board FEN after your move."
)

// Config shapes the per-turn move request.
type Config struct {
	System   string   `yaml:"system"`
	Template string   `yaml:"template"`
	Notation Notation `yaml:"notation"`
}

// DefaultConfig returns the stock prompt configuration for the given
// reply notation.
func DefaultConfig(notation Notation) Config {
	switch notation {
	case UCI:
		return Config{System: DefaultUCISystem, Template: DefaultUCITemplate, Notation: UCI}
	case FEN:
		return Config{System: DefaultFENSystem, Template: DefaultFENTemplate, Notation: FEN}
	default:
		return Config{System: DefaultSANSystem, Template: DefaultSANTemplate, Notation: SAN}
	}
}

// Values is the fixed set of named values a template may reference.
type Values struct {
	FEN         string
	SANHistory  string
	MoveHistory string
	SideToMove  string
}

// Render substitutes the known placeholders in template. Unknown tokens
// are left intact so user-supplied templates with literal braces survive.
func Render(template string, values Values) string {
	return strings.NewReplacer(
		PlaceholderFEN, values.FEN,
		PlaceholderSANHistory, values.SANHistory,
		PlaceholderMoveHistory, values.MoveHistory,
		PlaceholderSideToMove, values.SideToMove,
	).Replace(template)
}

// Messages builds the system/user message pair for one move request.
// Extra lines, if any, are appended to the user prompt; the verify
// protocol uses them to surface rejected candidates.
func (config Config) Messages(values Values, extra ...string) []Message {
	user := Render(config.Template, values)
	if len(extra) > 0 {
		user += "\n" + strings.Join(extra, "\n")
	}

	return []Message{
		{Role: RoleSystem, Content: config.System},
		{Role: RoleUser, Content: user},
	}
}
