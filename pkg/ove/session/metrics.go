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
	"fmt"
	"sort"
	"time"
)

// Metrics summarizes one finished game for benchmarking.
type Metrics struct {
	PliesTotal   int `json:"plies_total"`
	PliesOracle  int `json:"plies_oracle"`
	LegalMoves   int `json:"oracle_legal_moves"`
	IllegalMoves int `json:"oracle_illegal_moves"`

	// Share of oracle replies that resolved to a legal move.
	LegalRate float64 `json:"oracle_legal_rate"`

	LatencyAvg time.Duration `json:"latency_avg_ns"`
	LatencyP95 time.Duration `json:"latency_p95_ns"`

	Result    string        `json:"result"`
	Scoreline string        `json:"scoreline"`
	Reason    string        `json:"termination_reason"`
	Duration  time.Duration `json:"duration_ns"`
}

// Summary is the terminal report handed to output sinks.
type Summary struct {
	ID    string `json:"id"`
	Model string `json:"model"`
	Metrics
	PGN string `json:"pgn"`
}

// Metrics computes the benchmark numbers from the ply log.
func (s *Session) Metrics() Metrics {
	var m Metrics
	m.PliesTotal = len(s.records)

	var latencies []time.Duration
	for _, record := range s.records {
		if record.Actor != ActorOracle {
			continue
		}

		m.PliesOracle++
		if record.Applied {
			m.LegalMoves++
		} else {
			m.IllegalMoves++
		}
		if record.Latency > 0 {
			latencies = append(latencies, record.Latency)
		}
	}

	if m.PliesOracle > 0 {
		m.LegalRate = float64(m.LegalMoves) / float64(m.PliesOracle)
	}

	if len(latencies) > 0 {
		var total time.Duration
		for _, latency := range latencies {
			total += latency
		}
		m.LatencyAvg = total / time.Duration(len(latencies))

		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		m.LatencyP95 = latencies[(len(latencies)*95)/100]
	}

	m.Result = s.result.String()
	m.Scoreline = s.pos.Status()
	m.Reason = s.reason
	m.Duration = time.Since(s.startedAt)
	return m
}

// Summary builds the terminal summary, PGN included.
func (s *Session) Summary() Summary {
	return Summary{
		ID:      s.ID,
		Model:   s.Config.Model,
		Metrics: s.Metrics(),
		PGN:     s.pos.PGN(),
	}
}

// VerifyHistory rebuilds the game from the applied records and
// cross-checks the move count against the position, guarding against
// accounting drift between the ply log and the rules engine.
func (s *Session) VerifyHistory() error {
	applied := 0
	for _, record := range s.records {
		if record.Applied {
			applied++
		}
	}

	if got := s.pos.PlyCount(); got != applied {
		return fmt.Errorf("session: history mismatch: %d applied records, %d moves on board", applied, got)
	}
	return nil
}
