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

// Package config loads the benchmark settings: a YAML settings file
// when present, with .env and environment variables as fallback for
// secrets and paths.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the loadable settings surface of a benchmark run.
type Config struct {
	// Secrets and backends.
	OpenAIAPIKey  string `yaml:"openai-api-key"`
	OpenAIBaseURL string `yaml:"openai-base-url"`

	// Engine opponent.
	StockfishPath string `yaml:"stockfish-path"`

	// Oracle under evaluation.
	Model string `yaml:"model"`

	// Run shape.
	Games    int `yaml:"games"`
	MaxPlies int `yaml:"max-plies"`

	// Transport tuning.
	Concurrency    int           `yaml:"concurrency"`
	RequestTimeout time.Duration `yaml:"request-timeout"`
	MaxWait        time.Duration `yaml:"max-wait"`
	RetryCap       int           `yaml:"retry-cap"`

	// Artifact output directory; empty means the xdg default.
	OutDir string `yaml:"out-dir"`
}

// Load reads path (when it exists) and fills unset values from the
// environment. A missing settings file is not an error; env-only
// operation is normal.
func Load(path string) (Config, error) {
	// Best effort: a missing .env simply means the keys are already
	// in the environment.
	_ = godotenv.Load()

	var config Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return config, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if config.OpenAIAPIKey == "" {
		config.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if config.OpenAIBaseURL == "" {
		config.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if config.StockfishPath == "" {
		config.StockfishPath = os.Getenv("STOCKFISH_PATH")
	}

	return config, nil
}
