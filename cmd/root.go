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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fox-fx/app"
	"fox-fx/model"
	"fox-fx/util"

	"github.com/spf13/cobra"
)

var (
	// persistent arguments
	argConfigFile string
	argProfile    string
	argOutputType string
	argLogLevel   string

	rootCmd = &cobra.Command{
		Use:   "fox-fx",
		Short: "Real-time effect chains for the JACK audio server",

		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&argConfigFile, "config", "c", "fox-fx.yml", "Config file name or path")
	rootCmd.PersistentFlags().StringVarP(&argProfile, "profile", "p", "default", "Profile to load, with or without the .profile extension")
	rootCmd.PersistentFlags().StringVarP(&argOutputType, "output", "o", "auto", "Output type: auto, text or json")
	rootCmd.PersistentFlags().StringVarP(&argLogLevel, "log-level", "l", "", "Log level: trace, debug, info, warn or error")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config and the profile named on the command line and
// sets up logging until a display takes it over.
func loadConfig(args *model.CommandLineArgs) (*model.Config, *model.Profile, string, error) {
	args.ConfigFile = argConfigFile
	args.ProfileName = argProfile
	args.OutputType = argOutputType
	args.LogLevel = argLogLevel

	config, err := util.ReadConfig(args)
	if err != nil {
		return nil, nil, "", err
	}

	if config.OutputType == model.OutputJSON {
		app.ConfigureJsonLogger(slog.Level(config.LogLevel))
	} else {
		app.ConfigureTextLogger(slog.Level(config.LogLevel))
	}

	profileName, err := resolveProfile(config, args.ProfileName)
	if err != nil {
		return nil, nil, "", err
	}

	profile, err := util.ReadProfile(profileName)
	if err != nil {
		return nil, nil, "", err
	}

	return config, profile, profileName, nil
}

// resolveProfile places a bare profile name in the configured profile
// directory.
func resolveProfile(config *model.Config, name string) (string, error) {
	if config.ProfileDirectory == "" || filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name, nil
	}

	dir, err := util.ResolveHomeDirPath(config.ProfileDirectory)
	if err != nil {
		return "", err
	}

	if !util.DirectoryExists(dir) {
		return "", fmt.Errorf("profile directory %s does not exist", dir)
	}

	return filepath.Join(dir, name), nil
}
