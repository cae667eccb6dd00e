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

// Package session runs one game between an oracle and an opponent. A
// Session is a plain state object stepped synchronously by the
// orchestrator: opponent turns are applied directly, oracle turns flow
// through a turn protocol and the move validator before they commit.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/notnil/chess"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/gambit/pkg/ove/board"
	"laptudirm.com/x/gambit/pkg/ove/opponent"
	"laptudirm.com/x/gambit/pkg/ove/prompt"
	"laptudirm.com/x/gambit/pkg/ove/protocol"
	"laptudirm.com/x/gambit/pkg/ove/validate"
)

// Config holds the per-game knobs.
type Config struct {
	// Oracle identifier recorded in exports and PGN headers.
	Model string `yaml:"model"`

	// Side the oracle plays.
	Color chess.Color `yaml:"-"`

	// Hard cap on total plies; hitting it resolves as a draw by
	// truncation, distinct from a position-terminal draw.
	MaxPlies int `yaml:"max-plies"`

	// Number of illegal oracle moves tolerated before the game is
	// forfeited. The default of 1 makes the first illegal move fatal.
	IllegalMoveLimit int `yaml:"illegal-move-limit"`

	// Plies of SAN context included by the {SAN_HISTORY} placeholder.
	PGNTailPlies int `yaml:"pgn-tail-plies"`

	// Starting position; empty means the standard start.
	StartFEN string `yaml:"start-fen"`

	Prompt prompt.Config `yaml:"prompt"`

	// Protocol allocates the turn protocol; nil means standard.
	Protocol protocol.Factory `yaml:"-"`
}

func (config *Config) defaults() {
	if config.MaxPlies <= 0 {
		config.MaxPlies = 240
	}
	if config.IllegalMoveLimit <= 0 {
		config.IllegalMoveLimit = 1
	}
	if config.PGNTailPlies <= 0 {
		config.PGNTailPlies = 20
	}
	if config.Prompt == (prompt.Config{}) {
		config.Prompt = prompt.DefaultConfig(prompt.SAN)
	}
	if config.Protocol == nil {
		config.Protocol = protocol.NewStandard
	}
}

// Session owns one game's position, side assignment, active turn
// protocol, ply log, and termination state.
type Session struct {
	ID     string
	Config Config

	pos *board.Position
	opp opponent.Opponent

	records []PlyRecord

	// Pending termination signal, promoted into a fixed result by
	// FinalizeIfTerminated. Once set, no further moves apply.
	reason    string
	finalized bool
	result    Result

	illegalMoves int
	cancelled    bool

	// Active protocol instance; allocated lazily on first need and
	// freed the moment a move commits.
	proto   protocol.Protocol
	askedAt time.Time

	startedAt time.Time
}

// New builds a session for one game.
func New(id string, opp opponent.Opponent, config Config) (*Session, error) {
	config.defaults()

	pos := board.New()
	if config.StartFEN != "" {
		var err error
		if pos, err = board.FromFEN(config.StartFEN); err != nil {
			return nil, err
		}
	}

	white, black := config.Model, opp.Name()
	if config.Color == chess.Black {
		white, black = black, white
	}
	pos.SetHeaders("Oracle Chess Benchmark", "?", white, black)

	return &Session{
		ID:        id,
		Config:    config,
		pos:       pos,
		opp:       opp,
		startedAt: time.Now(),
	}, nil
}

// Position exposes the game state for prompt building and export.
func (s *Session) Position() *board.Position { return s.pos }

// Records returns the ply log.
func (s *Session) Records() []PlyRecord { return s.records }

// Opponent returns the opponent collaborator.
func (s *Session) Opponent() opponent.Opponent { return s.opp }

// Terminated reports whether the session has a pending or fixed
// termination.
func (s *Session) Terminated() bool {
	if s.finalized || s.reason != "" || s.cancelled {
		return true
	}
	terminal, _ := s.pos.Terminal()
	return terminal
}

// Finalized reports whether the result has been fixed.
func (s *Session) Finalized() bool { return s.finalized }

// Result returns the fixed result; meaningful once Finalized.
func (s *Session) Result() Result { return s.result }

// Reason returns the termination reason, empty while ongoing.
func (s *Session) Reason() string { return s.reason }

// Cancel marks the session for cooperative cancellation. It is
// observed between steps and finalized into a distinct terminal state
// with no win/loss attribution.
func (s *Session) Cancel() {
	if !s.finalized {
		s.cancelled = true
	}
}

// NeedsOracleTurn reports whether the session wants an oracle
// round-trip this cycle: it is unterminated and either the oracle's
// side is to move or an active protocol still has a pending followup.
func (s *Session) NeedsOracleTurn() bool {
	if s.Terminated() {
		return false
	}
	if s.proto != nil && s.proto.HasPendingFollowup() {
		return true
	}
	return s.pos.Turn() == s.Config.Color
}

// StepOpponent lets the opponent play its half-move. Any opponent
// error, resignation included, terminates the game in the oracle's
// favor.
func (s *Session) StepOpponent() {
	if s.Terminated() {
		return
	}

	move, err := s.opp.Choose(s.pos)
	if err == nil {
		var san string
		san, err = s.pos.ApplyMove(move)
		if err == nil {
			s.records = append(s.records, PlyRecord{
				Actor:   ActorOpponent,
				UCI:     move.String(),
				SAN:     san,
				Applied: true,
			})
			logrus.Debugf("[%s] ply %d opponent: %s", s.ID, len(s.records), san)
			return
		}
	}

	logrus.Errorf("[%s] opponent failed: %s", s.ID, err)
	s.records = append(s.records, PlyRecord{
		Actor:  ActorOpponent,
		Reason: ReasonOpponentError,
		Raw:    err.Error(),
	})
	s.reason = ReasonOpponentError
}

// BuildMessages rebuilds the outbound messages for the oracle's next
// round-trip. It must be called afresh every cycle: protocol phase
// persists across cycles, and a retried prompt has to reflect, for
// example, a just-rejected candidate.
func (s *Session) BuildMessages() []prompt.Message {
	proto := s.ensureProtocol()
	if s.askedAt.IsZero() {
		s.askedAt = time.Now()
	}
	return proto.BuildMessages(s)
}

// StepOracleWithReply feeds a raw oracle reply into the active
// protocol. If the protocol is still pending the session simply waits
// for the next cycle; once it completes, the committed text is
// validated and applied, and the illegal-move policy enforced.
func (s *Session) StepOracleWithReply(raw string) {
	if s.Terminated() {
		return
	}

	proto := s.ensureProtocol()
	messages := proto.BuildMessages(s)
	outcome := proto.ProcessResponse(s, raw, messages)

	if !outcome.Completed {
		logrus.Debugf("[%s] protocol %s pending followup", s.ID, proto.Name())
		return
	}

	var latency time.Duration
	if !s.askedAt.IsZero() {
		latency = time.Since(s.askedAt)
	}
	parsed := validate.Parse(outcome.TextForMove, s.pos, s.Config.Prompt.Notation)

	record := PlyRecord{
		Actor:   ActorOracle,
		Raw:     outcome.TextForMove,
		Latency: latency,
		Meta:    outcome.Metadata,
		Stages:  proto.Stages(),
	}

	// The turn is over either way: free the protocol instance.
	s.proto = nil
	s.askedAt = time.Time{}

	if parsed.OK {
		san, err := s.pos.ApplyMove(parsed.Move)
		if err == nil {
			record.UCI = parsed.UCI
			record.SAN = san
			record.Applied = true
			s.records = append(s.records, record)
			logrus.Debugf("[%s] ply %d oracle: %s (%dms)",
				s.ID, len(s.records), san, latency.Milliseconds())
			return
		}
		parsed.Reason = validate.ReasonIllegalMove
	}

	record.Reason = string(parsed.Reason)
	s.records = append(s.records, record)

	s.illegalMoves++
	logrus.Warnf("[%s] illegal oracle move (%s): %q",
		s.ID, parsed.Reason, snippet(outcome.TextForMove))

	if s.illegalMoves >= s.Config.IllegalMoveLimit {
		s.reason = ReasonIllegalMove
		logrus.Errorf("[%s] terminating: %d illegal oracle moves", s.ID, s.illegalMoves)
	}
}

// FinalizeIfTerminated idempotently promotes pending termination
// signals into a fixed result and reason. It is called every cycle and
// has no effect once the result is fixed.
func (s *Session) FinalizeIfTerminated() {
	if s.finalized {
		return
	}

	switch {
	case s.cancelled:
		s.fix(Draw, ReasonCancelled)

	case s.reason == ReasonIllegalMove:
		s.fix(Loss, ReasonIllegalMove)

	case s.reason == ReasonOpponentError:
		s.fix(Win, ReasonOpponentError)

	default:
		if terminal, scoreline := s.pos.Terminal(); terminal {
			s.fix(resultFromScoreline(scoreline, s.Config.Color), ReasonNormal)
			return
		}
		// Applied half-moves only: the record log also holds unapplied
		// entries (illegal replies) that must not consume the limit.
		if s.pos.PlyCount() >= s.Config.MaxPlies {
			s.fix(Draw, ReasonPlyLimit)
		}
	}
}

func (s *Session) fix(result Result, reason string) {
	s.result = result
	s.reason = reason
	s.finalized = true

	scoreline := result.Scoreline(s.Config.Color)
	if reason == ReasonCancelled {
		scoreline = "*"
	}
	s.pos.ForceResult(scoreline, reason)

	logrus.Infof("[%s] finished %s (%s) after %d plies",
		s.ID, scoreline, reason, len(s.records))
}

func (s *Session) ensureProtocol() protocol.Protocol {
	if s.proto == nil {
		s.proto = s.Config.Protocol()
		s.proto.BeginTurn()
	}
	return s.proto
}

// MoveRequest implements protocol.View.
func (s *Session) MoveRequest(extra ...string) []prompt.Message {
	return s.Config.Prompt.Messages(prompt.Values{
		FEN:         s.pos.FEN(),
		SANHistory:  s.pos.PGNTail(s.Config.PGNTailPlies),
		MoveHistory: s.pos.AnnotatedHistory(),
		SideToMove:  s.pos.SideToMove(),
	}, extra...)
}

// LegalityCheck implements protocol.View.
func (s *Session) LegalityCheck(candidate string, attempt int) []prompt.Message {
	user := fmt.Sprintf(
		"Position (FEN): %s\nYou proposed the move %s (attempt %d).\nIs %s a legal move in this position? Answer YES or NO.",
		s.pos.FEN(), candidate, attempt, candidate)

	return []prompt.Message{
		{Role: prompt.RoleSystem, Content: s.Config.Prompt.System},
		{Role: prompt.RoleUser, Content: user},
	}
}

func snippet(raw string) string {
	raw = strings.ReplaceAll(raw, "\n", " ")
	if len(raw) > 140 {
		raw = raw[:140] + "…"
	}
	return raw
}
