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
package util

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"fox-fx/model"
	"fox-fx/plugins"
)

const (
	defaultDrainIntervalMs  = 50
	defaultStatusIntervalMs = 1000
	defaultMaxNodes         = 64
)

func ReadProfile(profilePath string) (*model.Profile, error) {
	if !strings.HasSuffix(profilePath, ".profile") {
		profilePath += ".profile"
	}

	profile := &model.Profile{}

	if err := ReadYamlFile(profile, profilePath); err != nil {
		return nil, fmt.Errorf("profile %s: %w", profilePath, err)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", profilePath, err)
	}

	return profile, nil
}

// ReadConfig builds the configuration from defaults, the optional config
// file and finally the command line.
func ReadConfig(args *model.CommandLineArgs) (*model.Config, error) {
	outputType, autoOutput, ok := model.ParseOutputType(args.OutputType)
	if !ok {
		outputTypes := slices.Sorted(maps.Keys(model.OutputTypeMap))
		return nil, fmt.Errorf("invalid output type specified: %s. Valid options: auto, %s", args.OutputType, strings.Join(outputTypes, ", "))
	}

	config := &model.Config{
		JackdBinary:       "",
		StartJackServer:   false,
		VerboseJackServer: false,
		JackClientName:    "fox-fx",
		ProfileDirectory:  "",
		LogLevel:          int(slog.LevelInfo),
		OutputType:        model.OutputText,
		MessageIntervalMs: int(plugins.DefaultMessageInterval.Milliseconds()),
		DrainIntervalMs:   defaultDrainIntervalMs,
		StatusIntervalMs:  defaultStatusIntervalMs,
		MaxNodes:          defaultMaxNodes,
		SimulationOptions: &model.SimulationOptions{
			EnableSimulation: false,
			FreezeMeters:     false,
			Frequency:        440,
			Amplitude:        0.5,
			StereoOffset:     0,
		},
	}

	if args.ConfigFile != "" {
		if err := ReadYamlFile(config, args.ConfigFile); err != nil {
			if !errors.Is(err, ErrYamlNotFound) {
				return nil, fmt.Errorf("config %s: %w", args.ConfigFile, err)
			}

			slog.Debug("No config file found, using defaults")
		}
	}

	if config.JackdBinary == "" {
		config.JackdBinary = FindJackdBinary()
	}

	if !autoOutput {
		config.OutputType = outputType
	} else if !IsTerminal() {
		config.OutputType = model.OutputJSON
	}

	if args.LogLevel != "" {
		level, err := ParseLogLevel(args.LogLevel)
		if err != nil {
			return nil, err
		}

		config.LogLevel = int(level)
	}

	if config.SimulationOptions == nil {
		config.SimulationOptions = &model.SimulationOptions{}
	}

	if args.Simulate {
		config.SimulationOptions.EnableSimulation = true
	}

	if args.SimulateFreezeMeters {
		config.SimulationOptions.FreezeMeters = true
	}

	if config.MessageIntervalMs <= 0 || config.DrainIntervalMs <= 0 || config.StatusIntervalMs <= 0 {
		return nil, errors.New("message, drain and status intervals must be positive")
	}

	return config, nil
}

// ParseLogLevel accepts the slog level names plus "trace".
func ParseLogLevel(name string) (slog.Level, error) {
	if strings.EqualFold(name, "trace") {
		return LevelTrace, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %s: %w", name, err)
	}

	return level, nil
}
