package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/gambit/pkg/ove/board"
	"laptudirm.com/x/gambit/pkg/ove/prompt"
	"laptudirm.com/x/gambit/pkg/ove/validate"
)

// Both sides castle-ready: white king on e1, rooks a1/h1.
const castleFEN = "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1"

func TestParseSAN(t *testing.T) {
	pos := board.New()

	tests := []struct {
		raw    string
		uci    string
		reason validate.Reason
	}{
		{"e4", "e2e4", ""},
		{"Nf3", "g1f3", ""},
		{"  e4  ", "e2e4", ""},
		{"```\ne4\n```", "e2e4", ""},
		{"e4 is my move", "e2e4", ""},
		{"", "", validate.ReasonEmptyReply},
		{"hello", "", validate.ReasonBadFormat},
		{"Ke2", "", validate.ReasonIllegalMove},
		{"Qh5", "", validate.ReasonIllegalMove},
	}

	for _, test := range tests {
		parsed := validate.Parse(test.raw, pos, prompt.SAN)
		if test.reason == "" {
			require.True(t, parsed.OK, "raw: %q", test.raw)
			assert.Equal(t, test.uci, parsed.UCI, "raw: %q", test.raw)
		} else {
			assert.False(t, parsed.OK, "raw: %q", test.raw)
			assert.Equal(t, test.reason, parsed.Reason, "raw: %q", test.raw)
		}
	}
}

func TestParseSANCastling(t *testing.T) {
	pos, err := board.FromFEN(castleFEN)
	require.NoError(t, err)

	for _, raw := range []string{"O-O", "0-0", "o-o"} {
		parsed := validate.Parse(raw, pos, prompt.SAN)
		require.True(t, parsed.OK, "raw: %q", raw)
		assert.Equal(t, "e1g1", parsed.UCI)
	}

	parsed := validate.Parse("0-0-0", pos, prompt.SAN)
	require.True(t, parsed.OK)
	assert.Equal(t, "e1c1", parsed.UCI)
}

func TestParseUCI(t *testing.T) {
	pos := board.New()

	tests := []struct {
		raw    string
		uci    string
		reason validate.Reason
	}{
		{"e2e4", "e2e4", ""},
		{"E2E4", "e2e4", ""},
		{"g1f3", "g1f3", ""},
		{"", "", validate.ReasonEmptyReply},
		{"Nf3", "", validate.ReasonBadFormat},
		{"e2e2", "", validate.ReasonIllegalMove},
		{"e2e5", "", validate.ReasonIllegalMove},
		{"e7e5", "", validate.ReasonIllegalMove},
	}

	for _, test := range tests {
		parsed := validate.Parse(test.raw, pos, prompt.UCI)
		if test.reason == "" {
			require.True(t, parsed.OK, "raw: %q", test.raw)
			assert.Equal(t, test.uci, parsed.UCI, "raw: %q", test.raw)
		} else {
			assert.False(t, parsed.OK, "raw: %q", test.raw)
			assert.Equal(t, test.reason, parsed.Reason, "raw: %q", test.raw)
		}
	}
}

func TestParseUCICastlingSpelledAsSAN(t *testing.T) {
	pos, err := board.FromFEN(castleFEN)
	require.NoError(t, err)

	parsed := validate.Parse("O-O", pos, prompt.UCI)
	require.True(t, parsed.OK)
	assert.Equal(t, "e1g1", parsed.UCI)

	parsed = validate.Parse("0-0-0", pos, prompt.UCI)
	require.True(t, parsed.OK)
	assert.Equal(t, "e1c1", parsed.UCI)
}

func TestParseFEN(t *testing.T) {
	pos := board.New()

	// The position after 1. e4, with and without the en passant square.
	parsed := validate.Parse("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", pos, prompt.FEN)
	require.True(t, parsed.OK)
	assert.Equal(t, "e2e4", parsed.UCI)
	assert.Equal(t, "e4", parsed.SAN)

	parsed = validate.Parse("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1", pos, prompt.FEN)
	require.True(t, parsed.OK)
	assert.Equal(t, "e2e4", parsed.UCI)

	// Trailing commentary after the first line is ignored.
	parsed = validate.Parse("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1\nI played e4.", pos, prompt.FEN)
	require.True(t, parsed.OK)

	parsed = validate.Parse("", pos, prompt.FEN)
	assert.Equal(t, validate.ReasonEmptyReply, parsed.Reason)

	parsed = validate.Parse("this is not a fen", pos, prompt.FEN)
	assert.Equal(t, validate.ReasonInvalidFEN, parsed.Reason)

	// A valid FEN reachable by no legal move: two pawn pushes at once.
	parsed = validate.Parse("rnbqkbnr/pppppppp/8/8/3PP3/8/PPP2PPP/RNBQKBNR b KQkq - 0 1", pos, prompt.FEN)
	assert.Equal(t, validate.ReasonFENNoMatch, parsed.Reason)
}

func TestParseNoCrossNotationSalvage(t *testing.T) {
	pos := board.New()

	// A perfectly legal UCI move is a format error under SAN and the
	// other way round.
	assert.Equal(t, validate.ReasonBadFormat, validate.Parse("Nf3", pos, prompt.UCI).Reason)
	assert.Equal(t, validate.ReasonBadFormat, validate.Parse("e2e4", pos, prompt.SAN).Reason)
	assert.Equal(t, validate.ReasonBadFormat, validate.Parse("E2E4", pos, prompt.SAN).Reason)
	assert.Equal(t, validate.ReasonBadFormat, validate.Parse("e7e8q", pos, prompt.SAN).Reason)
}

func TestParseSANNeverResolvesUCIToAnotherMove(t *testing.T) {
	pos := board.New()

	// The SAN decoder's disambiguation fallback reads b1c3 (the UCI
	// spelling of Nc3) as the pawn move c3. The SAN contract must
	// reject the token instead of applying a move the oracle never
	// wrote.
	parsed := validate.Parse("b1c3", pos, prompt.SAN)
	assert.False(t, parsed.OK)
	assert.Equal(t, validate.ReasonBadFormat, parsed.Reason)
	assert.Nil(t, parsed.Move)
}
