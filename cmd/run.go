// =================================================================================
//
//			fox-fx - https://www.foxhollow.cc/projects/fox-fx/
//
//		 fox-fx runs a live chain of audio effect plugins between the
//	  inputs and outputs of the JACK audio server and reports meters
//
//		 Copyright (c) 2024 Steve Cross <flip@foxhollow.cc>
//
//			Licensed under the Apache License, Version 2.0 (the "License");
//			you may not use this file except in compliance with the License.
//			You may obtain a copy of the License at
//
//			     http://www.apache.org/licenses/LICENSE-2.0
//
//			Unless required by applicable law or agreed to in writing, software
//			distributed under the License is distributed on an "AS IS" BASIS,
//			WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//			See the License for the specific language governing permissions and
//			limitations under the License.
//
// =================================================================================
package cmd

import (
	"os"

	"fox-fx/app"
	"fox-fx/model"

	"github.com/spf13/cobra"
)

var (
	argSimulate             bool
	argSimulateFreezeMeters bool

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the profile's chains on the JACK server",
		Long: `Run the profile's chains on the JACK server.

Control commands are read from stdin, one per line. Type "help" for a list.
SIGHUP reloads the profile.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			config, profile, profileName, err := loadConfig(&model.CommandLineArgs{
				Simulate:             argSimulate,
				SimulateFreezeMeters: argSimulateFreezeMeters,
			})
			if err != nil {
				return err
			}

			if config.SimulationOptions.EnableSimulation {
				return app.RunSimulation(cmd.Context(), config, profile, profileName, os.Stdin)
			}

			return app.RunJack(cmd.Context(), config, profile, profileName, os.Stdin)
		},
	}
)

func init() {
	runCmd.Flags().BoolVarP(&argSimulate, "simulate", "", false, "Feed the chains a generated tone instead of connecting to JACK")
	runCmd.Flags().BoolVarP(&argSimulateFreezeMeters, "simulate-freeze-meters", "", false, "Keep the simulated tone at a fixed level")

	rootCmd.AddCommand(runCmd)
}
