package sink_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/gambit/pkg/ove/opponent"
	"laptudirm.com/x/gambit/pkg/ove/session"
	"laptudirm.com/x/gambit/pkg/ove/sink"
)

func finishedSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New("g001", opponent.NewScripted("e5"), session.Config{
		Model: "oracle-1",
		Color: chess.White,
	})
	require.NoError(t, err)

	s.StepOracleWithReply("e4")
	s.StepOpponent()
	s.Cancel()
	s.FinalizeIfTerminated()
	return s
}

func TestWriteGame(t *testing.T) {
	base := t.TempDir()
	out, err := sink.New(base)
	require.NoError(t, err)
	assert.Equal(t, base, out.Base())

	require.NoError(t, out.WriteGame(0, finishedSession(t)))

	dir := filepath.Join(base, "g001")
	for _, name := range []string{"conversation.json", "history.json", "summary.json", "game.pgn"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)

	var summary session.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "g001", summary.ID)
	assert.Equal(t, "oracle-1", summary.Model)
	assert.Equal(t, 2, summary.PliesTotal)
}

func TestWriteAll(t *testing.T) {
	base := t.TempDir()
	out, err := sink.New(base)
	require.NoError(t, err)

	out.WriteAll([]*session.Session{finishedSession(t)})

	_, err = os.Stat(filepath.Join(base, "g001", "game.pgn"))
	assert.NoError(t, err)
}
