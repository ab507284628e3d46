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
package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fox-fx/chain"
	"fox-fx/display"
	"fox-fx/model"
	"fox-fx/plugins"
	"fox-fx/reaper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBlockSize = 256

func testConfig() *model.Config {
	return &model.Config{
		JackClientName:    "fox-fx-test",
		OutputType:        model.OutputJSON,
		MessageIntervalMs: 100,
		DrainIntervalMs:   10,
		StatusIntervalMs:  20,
		MaxNodes:          64,
		SimulationOptions: &model.SimulationOptions{
			Frequency: 440,
			Amplitude: 0.5,
		},
	}
}

func testProfile() *model.Profile {
	return &model.Profile{
		AudioServer: model.ProfileAudioServer{
			SampleRate:      48000,
			FramesPerPeriod: testBlockSize,
		},
		Chains: []model.ProfileChain{
			{
				Role:    model.RoleOutput,
				Plugins: []string{"gate", "limiter", "rnnoise"},
				Bypass:  []string{"gate"},
				Params: map[string]map[string]float64{
					"limiter": {"lookahead": 5},
				},
			},
			{
				Role:     model.RoleInput,
				Plugins:  []string{"stereo_tools"},
				Disabled: []string{"stereo_tools"},
			},
		},
	}
}

func newTestEngine(t *testing.T, profileName string) (*Engine, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}

	engine, err := NewEngine(EngineOptions{
		Config:      testConfig(),
		Profile:     testProfile(),
		ProfileName: profileName,
		SampleRate:  48000,
		BlockSize:   testBlockSize,
		UI:          display.NewJsonUI(out, time.Second),
		Reaper:      reaper.New(),
	})
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	return engine, out
}

func processBlock(m *chain.Manager) {
	buf := make([]float32, testBlockSize)
	out := make([]float32, testBlockSize)
	m.Process(buf, buf, out, out)
}

func TestNewEngineRejectsMissingParts(t *testing.T) {
	_, err := NewEngine(EngineOptions{})
	assert.Error(t, err)

	_, err = NewEngine(EngineOptions{
		Config:  testConfig(),
		Profile: testProfile(),
		UI:      display.NewJsonUI(&bytes.Buffer{}, time.Second),
		Reaper:  reaper.New(),
	})
	assert.Error(t, err)
}

func TestNewEngineAppliesProfile(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	require.Len(t, engine.Managers(), 2)

	output, ok := engine.Manager(model.RoleOutput)
	require.True(t, ok)
	assert.Equal(t, []string{"gate", "limiter", "rnnoise"}, output.Order())

	gate, err := output.Plugin("gate")
	require.NoError(t, err)
	assert.True(t, gate.Bypass())
	assert.True(t, gate.Enabled())

	rnnoise, err := output.Plugin("output:rnnoise")
	require.NoError(t, err)
	assert.False(t, rnnoise.Installed())

	limiter, err := output.Plugin("limiter")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"lookahead": 5}, limiter.Settings())

	assert.InDelta(t, 0.005, output.Latency(), 1e-9)

	input, ok := engine.Manager(model.RoleInput)
	require.True(t, ok)

	tools, err := input.Plugin("stereo_tools")
	require.NoError(t, err)
	assert.False(t, tools.Enabled())
	assert.True(t, tools.Installed())
}

func TestEngineRolesFilter(t *testing.T) {
	engine, err := NewEngine(EngineOptions{
		Config:     testConfig(),
		Profile:    testProfile(),
		SampleRate: 48000,
		BlockSize:  testBlockSize,
		UI:         display.NewJsonUI(&bytes.Buffer{}, time.Second),
		Reaper:     reaper.New(),
		Roles:      []string{model.RoleInput},
	})
	require.NoError(t, err)
	defer engine.Close()

	require.Len(t, engine.Managers(), 1)

	_, ok := engine.Manager(model.RoleOutput)
	assert.False(t, ok)
}

func TestAttachDetachUI(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	output, _ := engine.Manager(model.RoleOutput)

	engine.AttachUI()

	for _, info := range output.Plugins() {
		assert.True(t, info.PostMessages, info.Tag)
	}

	engine.DetachUI()

	for _, info := range output.Plugins() {
		assert.False(t, info.PostMessages, info.Tag)
		assert.False(t, info.Bypass, info.Tag)
	}
}

func TestEngineReload(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "studio")

	profile := `
audio_server:
  sample_rate: 48000
  frames_per_period: 256
chains:
  - role: output
    plugins: [gate, delay]
    params:
      delay:
        time: 0.12
`
	require.NoError(t, os.WriteFile(name+".profile", []byte(profile), 0o644))

	engine, _ := newTestEngine(t, name)

	output, _ := engine.Manager(model.RoleOutput)
	gateBefore, err := output.Plugin("gate")
	require.NoError(t, err)

	require.NoError(t, engine.Reload())

	assert.Equal(t, []string{"gate", "delay"}, output.Order())

	gateAfter, err := output.Plugin("gate")
	require.NoError(t, err)
	assert.Same(t, gateBefore, gateAfter)
	assert.False(t, gateAfter.Bypass())

	delay, err := output.Plugin("delay")
	require.NoError(t, err)
	assert.Equal(t, 0.12, delay.Settings()["time"])

	// the input chain is not in the profile any more
	input, _ := engine.Manager(model.RoleInput)
	assert.Empty(t, input.Order())
}

func TestEngineReloadKeepsChainsOnError(t *testing.T) {
	engine, _ := newTestEngine(t, filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, engine.Reload())

	output, _ := engine.Manager(model.RoleOutput)
	assert.Equal(t, []string{"gate", "limiter", "rnnoise"}, output.Order())
}

func TestEngineRunStopsOnReap(t *testing.T) {
	engine, _ := newTestEngine(t, "")
	engine.AttachUI()

	done := make(chan error, 1)
	go func() {
		done <- engine.Run(context.Background())
	}()

	output, _ := engine.Manager(model.RoleOutput)
	processBlock(output)

	time.Sleep(50 * time.Millisecond)
	engine.reaper.Reap()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}

	engine.reaper.Wait()
}

func TestEngineRunStopsOnContext(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- engine.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestUiChains(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	output, _ := engine.Manager(model.RoleOutput)
	processBlock(output)

	chains := engine.uiChains()
	require.Len(t, chains, 2)

	assert.Equal(t, model.RoleOutput, chains[0].Role)
	assert.InDelta(t, 5.0, chains[0].LatencyMs, 1e-6)
	require.Len(t, chains[0].Plugins, 3)

	gate := chains[0].Plugins[0]
	assert.Equal(t, "output:gate", gate.Tag)
	assert.Equal(t, string(plugins.Gate), gate.Name)
	assert.True(t, gate.Bypass)
	assert.True(t, gate.Bound)

	rnnoise := chains[0].Plugins[2]
	assert.False(t, rnnoise.Installed)
	assert.False(t, rnnoise.Bound)

	assert.True(t, strings.HasPrefix(chains[1].Plugins[0].Tag, "input:"))
}

func TestChainPortsForRoleWithoutChain(t *testing.T) {
	logs := &bytes.Buffer{}
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(logs, nil)))
	defer slog.SetDefault(previous)

	profile := testProfile()
	profile.Chains[0].Source = []string{"system:capture_1", "system:capture_2"}
	profile.Chains[0].Sink = []string{"system:playback_1"}

	sources, sinks := chainPorts(profile, "studio", model.RoleOutput)
	assert.Equal(t, []string{"system:capture_1", "system:capture_2"}, sources)
	assert.Equal(t, []string{"system:playback_1"}, sinks)
	assert.Empty(t, logs.String())

	sources, sinks = chainPorts(profile, "studio", "monitor")
	assert.Nil(t, sources)
	assert.Nil(t, sinks)
	assert.Contains(t, logs.String(), "Profile studio has no chain for role monitor")
}
