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

// Package orchestrator advances many independent game sessions in
// lockstep, batching all pending oracle round-trips into one transport
// dispatch per cycle. Sessions are stepped synchronously by a single
// loop; the batch dispatch is the loop's only blocking call.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/gambit/pkg/ove/session"
	"laptudirm.com/x/gambit/pkg/ove/transport"
)

// DefaultRetryCap bounds how many consecutive cycles a session keeps
// re-issuing a request the transport failed to answer. Past the cap
// the session stalls for the remainder of the run: backpressure
// against transports that silently drop requests.
const DefaultRetryCap = 3

// Config holds the orchestrator knobs.
type Config struct {
	// Safety valve, not a normal exit: 0 means no cycle cap.
	MaxCycles int `yaml:"max-cycles"`

	// Per-session consecutive-miss cap; 0 means DefaultRetryCap.
	RetryCap int `yaml:"retry-cap"`

	// Snapshot, when set, receives a progress snapshot at the end of
	// every cycle.
	Snapshot func(Snapshot) `yaml:"-"`
}

// SessionState is one session's line in a progress snapshot.
type SessionState struct {
	ID         string
	Plies      int
	Terminated bool
	Reason     string
	Stalled    bool
}

// Snapshot is the per-cycle progress report.
type Snapshot struct {
	Cycle    int
	Active   int
	Sessions []SessionState
}

// Orchestrator owns an ordered set of sessions and drives them to
// completion. A single instance must not be driven concurrently; all
// of its state is mutated inside Run's loop only.
type Orchestrator struct {
	config   Config
	sessions []*session.Session
	trans    transport.Transport

	retries []int
	stalled []bool
	cycle   int
}

// New builds an orchestrator over the given sessions and transport.
func New(sessions []*session.Session, trans transport.Transport, config Config) *Orchestrator {
	if config.RetryCap <= 0 {
		config.RetryCap = DefaultRetryCap
	}

	return &Orchestrator{
		config:   config,
		sessions: sessions,
		trans:    trans,
		retries:  make([]int, len(sessions)),
		stalled:  make([]bool, len(sessions)),
	}
}

// Cycle returns the number of completed lockstep cycles.
func (o *Orchestrator) Cycle() int { return o.cycle }

// Run advances all sessions until none is active, the cycle cap is
// exceeded, or ctx is cancelled. Every session is finalized before
// return; "ongoing" is never a final state. It returns the per-game
// summaries in session order.
func (o *Orchestrator) Run(ctx context.Context) []session.Summary {
	for {
		if cancelled(ctx) {
			o.cancelAll()
		}

		// Promote termination signals from the previous cycle.
		o.finalizeAll()

		active := o.activeSessions()
		if len(active) == 0 {
			break
		}

		o.cycle++
		if o.config.MaxCycles > 0 && o.cycle > o.config.MaxCycles {
			logrus.Warnf("orchestrator: stopping after max cycles (%d), %d sessions unresolved",
				o.config.MaxCycles, len(active))
			o.cancelAll()
			o.finalizeAll()
			break
		}

		logrus.Debugf("orchestrator: cycle %d, %d active", o.cycle, len(active))

		// Opponent turns are synchronous and cheap.
		for _, i := range active {
			if !o.sessions[i].NeedsOracleTurn() {
				o.sessions[i].StepOpponent()
			}
		}

		// An opponent move may itself end a game.
		o.finalizeAll()

		requests, index := o.collectRequests()
		if len(requests) == 0 {
			continue
		}

		// The loop's one blocking call. A failed dispatch is "all
		// requests missing this cycle" and takes the retry path.
		replies := o.trans.SubmitBatch(ctx, requests)

		for id, i := range index {
			if _, ok := replies[id]; ok {
				o.retries[i] = 0
				continue
			}

			o.retries[i]++
			if o.retries[i] > o.config.RetryCap {
				if !o.stalled[i] {
					o.stalled[i] = true
					logrus.Warnf("orchestrator: session %s exceeded retry cap (%d), dropping further retries",
						o.sessions[i].ID, o.config.RetryCap)
				}
			} else {
				logrus.Debugf("orchestrator: session %s missing reply, retry %d/%d",
					o.sessions[i].ID, o.retries[i], o.config.RetryCap)
			}
		}

		for id, text := range replies {
			i, ok := index[id]
			if !ok {
				continue
			}
			o.sessions[i].StepOracleWithReply(text)
		}

		o.finalizeAll()
		o.snapshot()
	}

	// Drain: every session leaves with a fixed result. Unresolved
	// sessions (stalled past the retry cap) finalize as cancelled
	// rather than being attributed a win or loss.
	o.cancelAll()
	o.finalizeAll()

	summaries := make([]session.Summary, 0, len(o.sessions))
	for _, s := range o.sessions {
		if err := s.Opponent().Close(); err != nil {
			logrus.Warnf("orchestrator: closing opponent of %s: %s", s.ID, err)
		}
		summaries = append(summaries, s.Summary())
	}
	return summaries
}

// collectRequests rebuilds the outbound request of every session that
// needs an oracle turn this cycle, tagged by a stable identifier of
// session index and ply count. Rebuilding, not caching, keeps retried
// prompts in step with protocol state. Stalled sessions are skipped.
func (o *Orchestrator) collectRequests() ([]transport.Request, map[string]int) {
	var requests []transport.Request
	index := make(map[string]int)

	for i, s := range o.sessions {
		if s.Terminated() || !s.NeedsOracleTurn() || o.stalled[i] {
			continue
		}

		id := fmt.Sprintf("g%d_ply%d", i, len(s.Records())+1)
		requests = append(requests, transport.Request{
			ID:       id,
			Model:    s.Config.Model,
			Messages: s.BuildMessages(),
		})
		index[id] = i
	}
	return requests, index
}

func (o *Orchestrator) activeSessions() []int {
	var active []int
	for i, s := range o.sessions {
		if s.Terminated() {
			continue
		}
		if o.stalled[i] {
			continue
		}
		active = append(active, i)
	}
	return active
}

func (o *Orchestrator) finalizeAll() {
	for _, s := range o.sessions {
		s.FinalizeIfTerminated()
	}
}

func (o *Orchestrator) cancelAll() {
	for _, s := range o.sessions {
		if !s.Finalized() {
			s.Cancel()
		}
	}
}

func (o *Orchestrator) snapshot() {
	if o.config.Snapshot == nil {
		return
	}

	snap := Snapshot{Cycle: o.cycle}
	for i, s := range o.sessions {
		state := SessionState{
			ID:         s.ID,
			Plies:      len(s.Records()),
			Terminated: s.Terminated(),
			Reason:     s.Reason(),
			Stalled:    o.stalled[i],
		}
		if !state.Terminated {
			snap.Active++
		}
		snap.Sessions = append(snap.Sessions, state)
	}
	o.config.Snapshot(snap)
}

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
