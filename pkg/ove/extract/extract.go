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

// Package extract pulls move candidates and yes/no verdicts out of
// free-form oracle replies. Turn protocols depend only on the Extractor
// and Classifier interfaces, never on how extraction is implemented.
package extract

import (
	"regexp"
	"strings"
)

// Extractor extracts a provisional move candidate from a raw reply.
// The candidate is board-independent text; legality is the validator's
// business.
type Extractor interface {
	ExtractMove(raw string) (candidate string, ok bool)
}

// Verdict is the classification of a legality-check answer.
type Verdict string

const (
	Yes     Verdict = "yes"
	No      Verdict = "no"
	Unknown Verdict = "unknown"
)

// Classifier classifies a free-form answer as yes, no, or unknown.
type Classifier interface {
	ClassifyYesNo(raw string) Verdict
}

var (
	uciRegexp   = regexp.MustCompile(`\b([a-h][1-8][a-h][1-8][qrbnQRBN]?)\b`)
	tokenRegexp = regexp.MustCompile(`[A-Za-z0-9=+\-]+`)

	yesRegexp = regexp.MustCompile(`(?i)\b(yes|yep|yeah|legal|it[\s-]?is|correct)\b`)
	noRegexp  = regexp.MustCompile(`(?i)\b(no|nope|nah|illegal|not\s+legal|incorrect)\b`)
)

// Tokens is the default Extractor. It looks for a UCI-shaped move
// anywhere in the reply, falling back to the first word-like token.
type Tokens struct{}

func (Tokens) ExtractMove(raw string) (string, bool) {
	if match := uciRegexp.FindString(raw); match != "" {
		return strings.ToLower(match), true
	}

	if token := tokenRegexp.FindString(raw); token != "" {
		return token, true
	}

	return "", false
}

// Keywords is the default Classifier. It scans for common affirmative
// and negative phrasings; anything ambiguous is Unknown. Negatives are
// checked first since phrasings like "not legal" embed an affirmative
// keyword.
type Keywords struct{}

func (Keywords) ClassifyYesNo(raw string) Verdict {
	switch {
	case noRegexp.MatchString(raw):
		return No
	case yesRegexp.MatchString(raw):
		return Yes
	default:
		return Unknown
	}
}
