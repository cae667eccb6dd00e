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

package session

import (
	"github.com/notnil/chess"

	"laptudirm.com/x/gambit/pkg/ove/prompt"
)

// ExportConversation reconstructs the chat-style interaction from the
// recorded protocol stages: one system message followed by the
// user/assistant exchanges of every oracle turn in order.
func (s *Session) ExportConversation() []prompt.Message {
	system := s.Config.Prompt.System
	for _, record := range s.records {
		if record.Actor == ActorOracle && len(record.Stages) > 0 {
			system = record.Stages[0].System
			break
		}
	}

	messages := []prompt.Message{{Role: prompt.RoleSystem, Content: system}}
	for _, record := range s.records {
		if record.Actor != ActorOracle {
			continue
		}
		for _, stage := range record.Stages {
			messages = append(messages,
				prompt.Message{Role: prompt.RoleUser, Content: stage.User},
				prompt.Message{Role: prompt.RoleAssistant, Content: stage.Assistant})
		}
	}
	return messages
}

// HistoryMove is one applied half-move in the structured history.
type HistoryMove struct {
	Ply       int    `json:"ply"`
	Side      string `json:"side"`
	Actor     Actor  `json:"actor"`
	UCI       string `json:"uci"`
	SAN       string `json:"san"`
	FENBefore string `json:"fen_before"`
	FENAfter  string `json:"fen_after"`
}

// History is a structured representation of the game suitable for
// visualization.
type History struct {
	Players        map[string]string `json:"players"`
	StartFEN       string            `json:"start_fen"`
	Result         string            `json:"result"`
	Reason         string            `json:"termination_reason,omitempty"`
	Terminated     bool              `json:"terminated"`
	Moves          []HistoryMove     `json:"moves"`
	LastIllegalRaw string            `json:"last_illegal_raw,omitempty"`
}

// ExportHistory builds the structured history from the ply log and the
// position list of the rules engine.
func (s *Session) ExportHistory() History {
	positions := s.pos.Positions()
	moves := s.pos.Moves()

	history := History{
		Players:  map[string]string{},
		StartFEN: positions[0].String(),
		Result:   s.pos.Status(),
		Reason:   s.reason,
	}

	oracleColor, opponentColor := "White", "Black"
	if s.Config.Color == chess.Black {
		oracleColor, opponentColor = "Black", "White"
	}
	history.Players[s.Config.Model] = oracleColor
	history.Players[s.opp.Name()] = opponentColor

	applied := 0
	for _, record := range s.records {
		if !record.Applied {
			continue
		}

		side := "white"
		if positions[applied].Turn() == chess.Black {
			side = "black"
		}

		history.Moves = append(history.Moves, HistoryMove{
			Ply:       applied + 1,
			Side:      side,
			Actor:     record.Actor,
			UCI:       moves[applied].String(),
			SAN:       record.SAN,
			FENBefore: positions[applied].String(),
			FENAfter:  positions[applied+1].String(),
		})
		applied++
	}

	history.Terminated = s.Terminated()

	if s.reason == ReasonIllegalMove {
		for i := len(s.records) - 1; i >= 0; i-- {
			record := s.records[i]
			if record.Actor == ActorOracle && !record.Applied {
				history.LastIllegalRaw = record.Raw
				break
			}
		}
	}

	return history
}
