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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "gambit",
		Short: "Benchmark language models at chess",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flag("trace").Changed {
				logrus.SetLevel(logrus.TraceLevel)
			}
		},
	}

	root.PersistentFlags().BoolP("help", "h", false, "Show help for any command")
	root.PersistentFlags().BoolP("version", "v", false, "Print the gambit version")
	root.PersistentFlags().BoolP("trace", "t", false, "Log every orchestration step")

	root.Version = version
	root.SetVersionTemplate(version + "\n")

	root.AddCommand(Run())

	return root
}
