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
package model

import (
	"fmt"
	"strings"
	"time"
)

type OutputType int

const (
	OutputText OutputType = iota
	OutputJSON
)

var OutputTypeMap = map[string]OutputType{
	"text": OutputText,
	"json": OutputJSON,
}

func (o OutputType) String() string {
	for name, value := range OutputTypeMap {
		if value == o {
			return name
		}
	}

	return "unknown"
}

// ParseOutputType accepts the names in OutputTypeMap in any case. An empty
// name returns ok with auto set, meaning the caller picks one.
func ParseOutputType(name string) (outputType OutputType, auto bool, ok bool) {
	if name == "" || strings.EqualFold(name, "auto") {
		return OutputText, true, true
	}

	outputType, ok = OutputTypeMap[strings.ToLower(name)]

	return outputType, false, ok
}

// UnmarshalYAML reads the output type by name.
func (o *OutputType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}

	outputType, _, ok := ParseOutputType(name)
	if !ok {
		return fmt.Errorf("unknown output type '%s'", name)
	}

	*o = outputType

	return nil
}

type CommandLineArgs struct {
	Simulate             bool
	SimulateFreezeMeters bool

	ProfileName string
	ConfigFile  string
	OutputType  string
	LogLevel    string
}

type Config struct {
	JackdBinary       string     `yaml:"jackd_binary,omitempty"`
	StartJackServer   bool       `yaml:"start_jack_server,omitempty"`
	VerboseJackServer bool       `yaml:"verbose_jack_server,omitempty"`
	JackClientName    string     `yaml:"jack_client_name,omitempty"`
	ProfileDirectory  string     `yaml:"profile_directory,omitempty"`
	LogLevel          int        `yaml:"log_level,omitempty"`
	OutputType        OutputType `yaml:"output_type,omitempty"`

	MessageIntervalMs int `yaml:"message_interval_ms,omitempty"`
	DrainIntervalMs   int `yaml:"drain_interval_ms,omitempty"`
	StatusIntervalMs  int `yaml:"status_interval_ms,omitempty"`
	MaxNodes          int `yaml:"max_nodes,omitempty"`

	SimulationOptions *SimulationOptions `yaml:"simulation_options"`
}

type SimulationOptions struct {
	EnableSimulation bool    `yaml:"enable,omitempty"`
	FreezeMeters     bool    `yaml:"freeze_meters,omitempty"`
	Frequency        float64 `yaml:"frequency,omitempty"`
	Amplitude        float64 `yaml:"amplitude,omitempty"`
	StereoOffset     float64 `yaml:"stereo_offset,omitempty"`
}

func (c *Config) MessageInterval() time.Duration {
	return time.Duration(c.MessageIntervalMs) * time.Millisecond
}

func (c *Config) DrainInterval() time.Duration {
	return time.Duration(c.DrainIntervalMs) * time.Millisecond
}

func (c *Config) StatusInterval() time.Duration {
	return time.Duration(c.StatusIntervalMs) * time.Millisecond
}
