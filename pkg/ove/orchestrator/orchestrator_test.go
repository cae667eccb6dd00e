package orchestrator_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/gambit/pkg/ove/opponent"
	"laptudirm.com/x/gambit/pkg/ove/orchestrator"
	"laptudirm.com/x/gambit/pkg/ove/session"
	"laptudirm.com/x/gambit/pkg/ove/transport"
)

// scriptedTransport answers requests from a fixed id to reply table.
// Missing ids stay unanswered, like a backend dropping requests.
type scriptedTransport map[string]string

func (st scriptedTransport) SubmitBatch(ctx context.Context, requests []transport.Request) map[string]string {
	replies := make(map[string]string)
	for _, request := range requests {
		if text, ok := st[request.ID]; ok {
			replies[request.ID] = text
		}
	}
	return replies
}

func newGame(t *testing.T, id string, opp opponent.Opponent) *session.Session {
	t.Helper()
	s, err := session.New(id, opp, session.Config{Model: "oracle-1", Color: chess.White})
	require.NoError(t, err)
	return s
}

func TestRunPlaysGamesToCompletion(t *testing.T) {
	// Three white oracles deliver a scholar's mate in lockstep. Request
	// ids are session index and one-based ply.
	trans := scriptedTransport{}
	for i := 0; i < 3; i++ {
		trans[fmt.Sprintf("g%d_ply1", i)] = "e4"
		trans[fmt.Sprintf("g%d_ply3", i)] = "Qh5"
		trans[fmt.Sprintf("g%d_ply5", i)] = "Bc4"
		trans[fmt.Sprintf("g%d_ply7", i)] = "Qxf7#"
	}

	sessions := []*session.Session{
		newGame(t, "g1", opponent.NewScripted("e5", "Nc6", "Nf6")),
		newGame(t, "g2", opponent.NewScripted("e5", "Nc6", "Nf6")),
		newGame(t, "g3", opponent.NewScripted("e5", "Nc6", "Nf6")),
	}

	var cycles int
	driver := orchestrator.New(sessions, trans, orchestrator.Config{
		Snapshot: func(snap orchestrator.Snapshot) { cycles = snap.Cycle },
	})

	summaries := driver.Run(context.Background())
	require.Len(t, summaries, 3)

	for _, summary := range summaries {
		assert.Equal(t, "win", summary.Result)
		assert.Equal(t, "1-0", summary.Scoreline)
		assert.Equal(t, session.ReasonNormal, summary.Reason)
		assert.Equal(t, 7, summary.PliesTotal)
	}
	assert.Equal(t, 4, cycles)
}

func TestRunStallsSilentSessions(t *testing.T) {
	// The transport never answers: every session exceeds the retry cap
	// and the run drains them as cancelled instead of spinning forever.
	sessions := []*session.Session{
		newGame(t, "g1", opponent.NewScripted("e5")),
	}

	driver := orchestrator.New(sessions, scriptedTransport{}, orchestrator.Config{
		RetryCap:  2,
		MaxCycles: 50,
	})

	summaries := driver.Run(context.Background())
	require.Len(t, summaries, 1)
	assert.Equal(t, session.ReasonCancelled, summaries[0].Reason)
	assert.Equal(t, "*", summaries[0].Scoreline)
	assert.LessOrEqual(t, driver.Cycle(), 10)
}

func TestRunStarvedSessionStallsWhileOthersFinish(t *testing.T) {
	// The middle session is never answered and stalls past the cap; its
	// neighbors finish normally.
	trans := scriptedTransport{}
	for _, i := range []int{0, 2} {
		trans[fmt.Sprintf("g%d_ply1", i)] = "e4"
		trans[fmt.Sprintf("g%d_ply3", i)] = "Qh5"
		trans[fmt.Sprintf("g%d_ply5", i)] = "Bc4"
		trans[fmt.Sprintf("g%d_ply7", i)] = "Qxf7#"
	}

	sessions := []*session.Session{
		newGame(t, "g1", opponent.NewScripted("e5", "Nc6", "Nf6")),
		newGame(t, "g2", opponent.NewScripted("e5", "Nc6", "Nf6")),
		newGame(t, "g3", opponent.NewScripted("e5", "Nc6", "Nf6")),
	}

	driver := orchestrator.New(sessions, trans, orchestrator.Config{RetryCap: 3})
	summaries := driver.Run(context.Background())

	for _, i := range []int{0, 2} {
		assert.Equal(t, "win", summaries[i].Result)
		assert.Equal(t, session.ReasonNormal, summaries[i].Reason)
	}

	assert.Equal(t, session.ReasonCancelled, summaries[1].Reason)
	assert.Equal(t, "*", summaries[1].Scoreline)
	assert.Zero(t, summaries[1].PliesTotal)
}

func TestRunHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sessions := []*session.Session{
		newGame(t, "g1", opponent.NewScripted("e5")),
	}

	driver := orchestrator.New(sessions, scriptedTransport{}, orchestrator.Config{})
	summaries := driver.Run(ctx)

	require.Len(t, summaries, 1)
	assert.Equal(t, session.ReasonCancelled, summaries[0].Reason)
	assert.Equal(t, 0, driver.Cycle())
}
