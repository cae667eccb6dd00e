package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"laptudirm.com/x/gambit/pkg/ove/extract"
)

func TestTokensExtractMove(t *testing.T) {
	tests := []struct {
		raw       string
		candidate string
		ok        bool
	}{
		{"e2e4", "e2e4", true},
		{"The best move here is e2e4.", "e2e4", true},
		{"I'll promote with E7E8Q!", "e7e8q", true},
		{"Nf3", "Nf3", true},
		{"O-O", "O-O", true},
		{"my move: d4", "my", true}, // no UCI shape, first token wins
		{"", "", false},
		{"   ", "", false},
	}

	for _, test := range tests {
		candidate, ok := extract.Tokens{}.ExtractMove(test.raw)
		assert.Equal(t, test.ok, ok, "raw: %q", test.raw)
		assert.Equal(t, test.candidate, candidate, "raw: %q", test.raw)
	}
}

func TestKeywordsClassifyYesNo(t *testing.T) {
	tests := []struct {
		raw     string
		verdict extract.Verdict
	}{
		{"Yes", extract.Yes},
		{"yes, that move is legal", extract.Yes},
		{"It is a legal move.", extract.Yes},
		{"Correct.", extract.Yes},
		{"No", extract.No},
		{"Nope, that is illegal.", extract.No},
		{"That move is not legal.", extract.No},
		{"Hmm, hard to say.", extract.Unknown},
		{"", extract.Unknown},
	}

	for _, test := range tests {
		assert.Equal(t, test.verdict, extract.Keywords{}.ClassifyYesNo(test.raw), "raw: %q", test.raw)
	}
}
