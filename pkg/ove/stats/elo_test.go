package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"laptudirm.com/x/gambit/pkg/ove/stats"
)

func TestEloNoGames(t *testing.T) {
	muMin, mu, muMax := stats.Elo(0, 0, 0)
	assert.Zero(t, muMin)
	assert.Zero(t, mu)
	assert.Zero(t, muMax)
}

func TestEloEvenScoreIsZero(t *testing.T) {
	_, mu, _ := stats.Elo(10, 0, 10)
	assert.InDelta(t, 0, mu, 1e-9)
}

func TestEloSignTracksScore(t *testing.T) {
	_, winning, _ := stats.Elo(60, 20, 20)
	assert.Greater(t, winning, 0.0)

	_, losing, _ := stats.Elo(20, 20, 60)
	assert.Less(t, losing, 0.0)

	assert.InDelta(t, winning, -losing, 1e-9)
}

func TestEloBoundsBracketTheMean(t *testing.T) {
	muMin, mu, muMax := stats.Elo(30, 40, 30)
	assert.LessOrEqual(t, muMin, mu)
	assert.LessOrEqual(t, mu, muMax)
}
