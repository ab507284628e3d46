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
	"fox-fx/plugins"
	"fox-fx/shared"
	"fox-fx/util"

	"github.com/spf13/cobra"
)

var (
	argPluginsSampleRate int

	pluginsCmd = &cobra.Command{
		Use:   "plugins",
		Short: "List the available effects and their parameters",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := util.ReadConfig(&model.CommandLineArgs{
				ConfigFile: argConfigFile,
				OutputType: argOutputType,
				LogLevel:   argLogLevel,
			})
			if err != nil {
				return err
			}

			descriptions := app.DescribePlugins(plugins.DefaultRegistry(), plugins.Context{
				SampleRate:      argPluginsSampleRate,
				BlockSize:       512,
				MessageInterval: config.MessageInterval(),
			})

			return app.WritePluginList(shared.Stdout(), config.OutputType, descriptions)
		},
	}
)

func init() {
	pluginsCmd.Flags().IntVarP(&argPluginsSampleRate, "sample-rate", "s", 48000, "Sample rate used to build the effects")

	rootCmd.AddCommand(pluginsCmd)
}
