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

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/briandowns/spinner"
	"github.com/notnil/chess"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/gambit/pkg/ove/config"
	"laptudirm.com/x/gambit/pkg/ove/extract"
	"laptudirm.com/x/gambit/pkg/ove/opponent"
	"laptudirm.com/x/gambit/pkg/ove/orchestrator"
	"laptudirm.com/x/gambit/pkg/ove/prompt"
	"laptudirm.com/x/gambit/pkg/ove/protocol"
	"laptudirm.com/x/gambit/pkg/ove/session"
	"laptudirm.com/x/gambit/pkg/ove/sink"
	"laptudirm.com/x/gambit/pkg/ove/stats"
	"laptudirm.com/x/gambit/pkg/ove/transport"
)

// gambit run
func Run() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark an oracle model at chess",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`run plays the given oracle model against a scripted, random,
			or engine-backed opponent across many concurrent games,
			batching the model calls of every game into one dispatch
			per lockstep cycle.

			The oracle is asked for its move in a single declared
			notation (san, uci, or fen); a reply that fails to resolve
			to a legal move under that notation counts against the
			illegal-move limit, which forfeits the game when exceeded.

			Game artifacts (conversation, structured history, PGN, and
			summary) are written under the output directory, one
			subdirectory per game.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(flagS(cmd, "settings"))
			if err != nil {
				return err
			}

			model := flagS(cmd, "model")
			if model == "" {
				model = settings.Model
			}
			if model == "" {
				return fmt.Errorf("no oracle model provided; use --model or the settings file")
			}

			games := flagI(cmd, "games")
			if games <= 0 {
				games = max(settings.Games, 1)
			}

			notation := prompt.Notation(flagS(cmd, "notation"))
			promptConfig := prompt.DefaultConfig(notation)

			factory := protocol.NewStandard
			if flagS(cmd, "protocol") == "verify" {
				factory = protocol.NewVerify(extract.Tokens{}, extract.Keywords{}, flagI(cmd, "verify-attempts"))
			}

			maxPlies := flagI(cmd, "max-plies")
			if maxPlies <= 0 {
				maxPlies = settings.MaxPlies
			}

			sessions := make([]*session.Session, 0, games)
			for i := 0; i < games; i++ {
				opp, err := buildOpponent(cmd, settings, int64(i))
				if err != nil {
					return err
				}

				// Alternate colors across games unless one was forced.
				color := chess.White
				if flagS(cmd, "color") == "black" || (flagS(cmd, "color") == "" && i%2 == 1) {
					color = chess.Black
				}

				s, err := session.New(fmt.Sprintf("g%03d", i+1), opp, session.Config{
					Model:    model,
					Color:    color,
					MaxPlies: maxPlies,
					Prompt:   promptConfig,
					Protocol: factory,

					IllegalMoveLimit: flagI(cmd, "illegal-limit"),
				})
				if err != nil {
					return err
				}
				sessions = append(sessions, s)
			}

			trans := transport.NewOpenAI(transport.OpenAIConfig{
				APIKey:         settings.OpenAIAPIKey,
				BaseURL:        settings.OpenAIBaseURL,
				Concurrency:    settings.Concurrency,
				RequestTimeout: settings.RequestTimeout,
				MaxWait:        settings.MaxWait,
			})

			progress := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			progress.Suffix = " playing..."
			progress.Start()
			defer progress.Stop()

			driver := orchestrator.New(sessions, trans, orchestrator.Config{
				MaxCycles: flagI(cmd, "max-cycles"),
				RetryCap:  settings.RetryCap,
				Snapshot: func(snap orchestrator.Snapshot) {
					progress.Suffix = fmt.Sprintf(
						" cycle %d: %d/%d games running",
						snap.Cycle, snap.Active, len(snap.Sessions))
				},
			})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summaries := driver.Run(ctx)
			progress.Stop()

			outDir := flagS(cmd, "out")
			if outDir == "" {
				outDir = settings.OutDir
			}
			out, err := sink.New(outDir)
			if err != nil {
				return err
			}
			out.WriteAll(sessions)
			logrus.Infof("Wrote game artifacts to \x1b[33m%s\x1b[0m", out.Base())

			report(model, summaries)
			return nil
		},
	}

	cmd.Flags().String("settings", "settings.yml", "Settings File to load")
	cmd.Flags().String("model", "", "Oracle Model to benchmark")
	cmd.Flags().IntP("games", "n", 0, "Number of Games to play")
	cmd.Flags().String("opponent", "random", "Opponent { random engine human }")
	cmd.Flags().Int("depth", 6, "Engine Opponent's search depth")
	cmd.Flags().Int("movetime", 0, "Engine Opponent's movetime (ms)")
	cmd.Flags().String("color", "", "Oracle's color { white black }, alternating by default")
	cmd.Flags().String("notation", "san", "Reply Notation { san uci fen }")
	cmd.Flags().String("protocol", "standard", "Turn Protocol { standard verify }")
	cmd.Flags().Int("verify-attempts", protocol.DefaultMaxAttempts, "Verify Protocol's proposal attempts")
	cmd.Flags().Int("illegal-limit", 1, "Illegal Moves tolerated before forfeit")
	cmd.Flags().Int("max-plies", 240, "Ply Limit before draw by truncation")
	cmd.Flags().Int("max-cycles", 0, "Cycle Cap safety valve (0 = none)")
	cmd.Flags().String("out", "", "Output Directory for game artifacts")

	return cmd
}

func buildOpponent(cmd *cobra.Command, settings config.Config, seed int64) (opponent.Opponent, error) {
	switch flagS(cmd, "opponent") {
	case "engine":
		return opponent.NewEngine(opponent.EngineConfig{
			Path:     settings.StockfishPath,
			Depth:    flagI(cmd, "depth"),
			MoveTime: time.Duration(flagI(cmd, "movetime")) * time.Millisecond,
		})

	case "random":
		return opponent.NewRandom(seed), nil

	case "human":
		return opponent.NewHuman(os.Stdin, os.Stdout), nil

	default:
		return nil, fmt.Errorf("unknown opponent %q", flagS(cmd, "opponent"))
	}
}

func report(model string, summaries []session.Summary) {
	var wins, draws, losses, illegal int
	var legalRate float64

	for _, summary := range summaries {
		switch summary.Result {
		case session.Win.String():
			wins++
		case session.Loss.String():
			losses++
		default:
			draws++
		}
		if summary.Reason == session.ReasonIllegalMove {
			illegal++
		}
		legalRate += summary.LegalRate
	}

	if len(summaries) > 0 {
		legalRate /= float64(len(summaries))
	}
	lower, elo, upper := stats.Elo(wins, draws, losses)

	fmt.Println("╔══════════════════════════════════════════════════════════╗")
	fmt.Printf("║ %-56s ║\n", model)
	fmt.Println("╠══════════════════════════════════════════════════════════╣")
	fmt.Printf("║ Score      %4d W %4d D %4d L %25s ║\n", wins, draws, losses, "")
	fmt.Printf("║ Elo        %+4.0f (%+4.0f ... %+4.0f) %24s ║\n", elo, lower, upper, "")
	fmt.Printf("║ Legal Rate %5.1f%% %39s ║\n", legalRate*100, "")
	fmt.Printf("║ Forfeits   %4d by illegal move %26s ║\n", illegal, "")
	fmt.Println("╚══════════════════════════════════════════════════════════╝")
}

func flagS(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}

func flagI(cmd *cobra.Command, name string) int {
	value, _ := cmd.Flags().GetInt(name)
	return value
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
