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
	"fox-fx/app"
	"fox-fx/model"
	"fox-fx/shared"

	"github.com/spf13/cobra"
)

var (
	argRenderRole       string
	argRenderBitDepth   int
	argRenderCompensate bool

	renderCmd = &cobra.Command{
		Use:   "render <input.wav> <output.wav>",
		Short: "Process a WAV file through one chain, offline",
		Args:  cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			config, profile, profileName, err := loadConfig(&model.CommandLineArgs{})
			if err != nil {
				return err
			}

			_, err = app.RunRender(cmd.Context(), config, profile, profileName, app.RenderOptions{
				InputPath:  args[0],
				OutputPath: args[1],
				Role:       argRenderRole,
				BitDepth:   argRenderBitDepth,
				Compensate: argRenderCompensate,
				Report:     shared.Stdout(),
			})

			return err
		},
	}
)

func init() {
	renderCmd.Flags().StringVarP(&argRenderRole, "role", "r", model.RoleOutput, "Chain to render through")
	renderCmd.Flags().IntVarP(&argRenderBitDepth, "bit-depth", "b", 24, "Output bit depth")
	renderCmd.Flags().BoolVarP(&argRenderCompensate, "compensate", "", false, "Remove the chain's latency from the output")

	rootCmd.AddCommand(renderCmd)
}
