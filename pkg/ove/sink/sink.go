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

// Package sink persists per-game artifacts: the reconstructed
// conversation, the structured history, the PGN, and the terminal
// summary. Formats are artifacts for inspection and visualization,
// not API.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/gambit/pkg/ove/session"
)

const Permissions = 0755

// DefaultDirectory is where run artifacts land unless overridden.
var DefaultDirectory = filepath.Join(xdg.DataHome, "gambit", "games")

// Dir writes game artifacts under a base directory, one gNNN
// subdirectory per game.
type Dir struct {
	base string
}

// New creates the base directory if needed and returns a Dir sink.
// An empty base means DefaultDirectory.
func New(base string) (*Dir, error) {
	if base == "" {
		base = filepath.Join(DefaultDirectory, time.Now().Format("20060102-150405"))
	}

	if err := os.MkdirAll(base, Permissions); err != nil {
		return nil, fmt.Errorf("sink: creating %s: %w", base, err)
	}
	return &Dir{base: base}, nil
}

// Base returns the base directory of the sink.
func (d *Dir) Base() string { return d.base }

// WriteGame dumps one session's artifacts into its game directory.
func (d *Dir) WriteGame(index int, s *session.Session) error {
	dir := filepath.Join(d.base, fmt.Sprintf("g%03d", index+1))
	if err := os.MkdirAll(dir, Permissions); err != nil {
		return fmt.Errorf("sink: creating %s: %w", dir, err)
	}

	if err := writeJSON(filepath.Join(dir, "conversation.json"), s.ExportConversation()); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "history.json"), s.ExportHistory()); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "summary.json"), s.Summary()); err != nil {
		return err
	}

	pgn := filepath.Join(dir, "game.pgn")
	if err := os.WriteFile(pgn, []byte(s.Summary().PGN+"\n"), 0644); err != nil {
		return fmt.Errorf("sink: writing %s: %w", pgn, err)
	}

	logrus.Debugf("sink: wrote artifacts for %s to %s", s.ID, dir)
	return nil
}

// WriteAll dumps artifacts for every session, logging and continuing
// on individual failures.
func (d *Dir) WriteAll(sessions []*session.Session) {
	for i, s := range sessions {
		if err := d.WriteGame(i, s); err != nil {
			logrus.Errorf("sink: %s", err)
		}
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("sink: encoding %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("sink: writing %s: %w", path, err)
	}
	return nil
}
