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

package opponent

import (
	"math/rand"

	"github.com/notnil/chess"

	"laptudirm.com/x/gambit/pkg/ove/board"
)

// Random plays a uniformly random legal move. A fast, low-difficulty
// baseline for bulk-testing prompting and validation.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random opponent seeded with the given seed.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Name() string { return "Random" }

func (r *Random) Choose(pos *board.Position) (*chess.Move, error) {
	legal := pos.LegalMoves()
	if len(legal) == 0 {
		return nil, ErrNoLegalMoves
	}
	return legal[r.rng.Intn(len(legal))], nil
}

func (r *Random) Close() error { return nil }
