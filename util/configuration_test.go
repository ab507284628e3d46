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
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"fox-fx/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))

	return filePath
}

func TestReadProfile(t *testing.T) {
	profilePath := writeFile(t, "studio.profile", `
audio_server:
  sample_rate: 48000
  frames_per_period: 256
chains:
  - role: output
    plugins: [gate, stereo_tools]
    bypass: [gate]
    params:
      gate:
        threshold: -50
    sink: [system:playback_1, system:playback_2]
  - role: input
    plugins: [deesser]
`)

	profile, err := ReadProfile(profilePath[:len(profilePath)-len(".profile")])
	require.NoError(t, err)

	assert.Equal(t, 48000, profile.AudioServer.SampleRate)

	output, ok := profile.Chain(model.RoleOutput)
	require.True(t, ok)
	assert.Equal(t, []string{"gate", "stereo_tools"}, output.Plugins)
	assert.Equal(t, []string{"gate"}, output.Bypass)
	assert.Equal(t, -50.0, output.Params["gate"]["threshold"])
	assert.Equal(t, []string{"system:playback_1", "system:playback_2"}, output.Sink)

	input, ok := profile.Chain(model.RoleInput)
	require.True(t, ok)
	assert.Equal(t, []string{"deesser"}, input.Plugins)
}

func TestReadProfileRejectsBadRole(t *testing.T) {
	profilePath := writeFile(t, "bad.profile", `
audio_server:
  sample_rate: 48000
  frames_per_period: 256
chains:
  - role: monitor
    plugins: [gate]
`)

	_, err := ReadProfile(profilePath)
	assert.ErrorContains(t, err, "unknown chain role")
}

func TestReadProfileRejectsUnknownKeys(t *testing.T) {
	profilePath := writeFile(t, "typo.profile", `
audio_server:
  sample_rate: 48000
  frames_per_period: 256
chainz: []
`)

	_, err := ReadProfile(profilePath)
	assert.Error(t, err)
}

func TestReadProfileMissing(t *testing.T) {
	_, err := ReadProfile(filepath.Join(t.TempDir(), "nothing"))
	assert.ErrorIs(t, err, ErrYamlNotFound)
}

func TestReadConfigDefaults(t *testing.T) {
	config, err := ReadConfig(&model.CommandLineArgs{
		ConfigFile: filepath.Join(t.TempDir(), "missing.yml"),
		OutputType: "text",
	})
	require.NoError(t, err)

	assert.Equal(t, "fox-fx", config.JackClientName)
	assert.Equal(t, model.OutputText, config.OutputType)
	assert.Equal(t, 100, config.MessageIntervalMs)
	assert.Equal(t, 50, config.DrainIntervalMs)
	assert.Equal(t, int(slog.LevelInfo), config.LogLevel)
	assert.False(t, config.SimulationOptions.EnableSimulation)
}

func TestReadConfigFileAndArgs(t *testing.T) {
	configPath := writeFile(t, "fox-fx.yml", `
jack_client_name: effects
message_interval_ms: 250
max_nodes: 12
simulation_options:
  frequency: 1000
`)

	config, err := ReadConfig(&model.CommandLineArgs{
		ConfigFile: configPath,
		OutputType: "JSON",
		LogLevel:   "debug",
		Simulate:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "effects", config.JackClientName)
	assert.Equal(t, 250, config.MessageIntervalMs)
	assert.Equal(t, 12, config.MaxNodes)
	assert.Equal(t, model.OutputJSON, config.OutputType)
	assert.Equal(t, int(slog.LevelDebug), config.LogLevel)
	assert.True(t, config.SimulationOptions.EnableSimulation)
	assert.Equal(t, 1000.0, config.SimulationOptions.Frequency)
}

func TestReadConfigRejectsOutputType(t *testing.T) {
	_, err := ReadConfig(&model.CommandLineArgs{OutputType: "tui"})
	assert.ErrorContains(t, err, "invalid output type")
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("trace")
	require.NoError(t, err)
	assert.Equal(t, LevelTrace, level)

	level, err = ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "01:01:01.500", FormatDuration(3661.5))
	assert.Equal(t, "00:00:05.000", FormatDuration(5))
}
