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
	argPlayRole string

	playCmd = &cobra.Command{
		Use:   "play <input.wav>",
		Short: "Play a WAV file through one chain on the default audio device",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			config, profile, profileName, err := loadConfig(&model.CommandLineArgs{})
			if err != nil {
				return err
			}

			return app.RunPlay(cmd.Context(), config, profile, profileName, args[0], argPlayRole, os.Stdin)
		},
	}
)

func init() {
	playCmd.Flags().StringVarP(&argPlayRole, "role", "r", model.RoleOutput, "Chain to play through")

	rootCmd.AddCommand(playCmd)
}
