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
package plugins

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"testing"
	"time"

	"fox-fx/audio"
	"fox-fx/bridge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSampleRate = 48000
	testBlockSize  = 480
)

func testContext() Context {
	return Context{
		SampleRate:      testSampleRate,
		BlockSize:       testBlockSize,
		MessageInterval: 10 * time.Millisecond,
	}
}

func newTestPlugin(t *testing.T, name Name) *Plugin {
	t.Helper()

	desc, err := DefaultRegistry().Lookup(name)
	require.NoError(t, err)

	return New(testContext(), "output:"+string(name), desc, nil)
}

func sine(frames int, freq float64, amplitude float64) []float32 {
	buf := make([]float32, frames)
	for i := range buf {
		buf[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate))
	}

	return buf
}

func TestDefaultRegistryHasEveryEffect(t *testing.T) {
	registry := DefaultRegistry()

	assert.Equal(t, AllNames, registry.Names())

	for _, name := range AllNames {
		assert.True(t, registry.Known(string(name)), name)
	}

	_, err := registry.Lookup("reverb")
	assert.ErrorIs(t, err, ErrUnknownEffect)
	assert.False(t, registry.Known("reverb"))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	desc, ok := builtin(Gate)
	require.True(t, ok)

	require.NoError(t, registry.Register(desc))
	assert.Error(t, registry.Register(desc))
	assert.Error(t, registry.Register(Descriptor{Name: "empty"}))
}

func TestEnableAssignsNode(t *testing.T) {
	graph := audio.NewRouter(testBlockSize, 8)
	p := newTestPlugin(t, Gate)

	assert.Equal(t, audio.InvalidNode, p.NodeID())
	assert.Nil(t, p.Node())

	p.Enable(graph)

	assert.True(t, p.Enabled())
	assert.True(t, p.Installed())
	assert.NotEqual(t, audio.InvalidNode, p.NodeID())
	assert.Equal(t, 1, graph.NodeCount())

	p.Disable()

	assert.False(t, p.Enabled())
	assert.Equal(t, audio.InvalidNode, p.NodeID())
	assert.Zero(t, graph.NodeCount())
}

func TestNodeLimitMarksPluginUnavailable(t *testing.T) {
	graph := audio.NewRouter(testBlockSize, 1)

	first := newTestPlugin(t, Gate)
	first.Enable(graph)
	require.True(t, first.Enabled())

	second := newTestPlugin(t, Compressor)
	second.Enable(graph)

	assert.False(t, second.Enabled())
	assert.False(t, second.Installed())
	assert.Equal(t, audio.InvalidNode, second.NodeID())
}

func TestRNNoiseIsNotInstalled(t *testing.T) {
	graph := audio.NewRouter(testBlockSize, 8)
	p := newTestPlugin(t, RNNoise)

	p.Enable(graph)

	assert.False(t, p.Installed())
	assert.False(t, p.Enabled())
	assert.Equal(t, audio.InvalidNode, p.NodeID())
	assert.Zero(t, graph.NodeCount())

	in := sine(testBlockSize, 440, 0.5)
	outL := make([]float32, testBlockSize)
	outR := make([]float32, testBlockSize)
	p.Process(in, in, outL, outR)

	assert.Equal(t, in, outL)
	assert.Equal(t, in, outR)
}

func TestBypassIsBitExact(t *testing.T) {
	for _, name := range []Name{Gate, Compressor, MultibandGate, MultibandCompressor, Limiter, Deesser, BassEnhancer, StereoTools, Pitch, Delay} {
		t.Run(string(name), func(t *testing.T) {
			p := newTestPlugin(t, name)
			p.Enable(audio.NewRouter(testBlockSize, 8))
			require.True(t, p.Enabled())

			p.SetBypass(true)

			inL := sine(testBlockSize, 220, 0.8)
			inR := sine(testBlockSize, 330, 0.4)
			outL := make([]float32, testBlockSize)
			outR := make([]float32, testBlockSize)

			p.Process(inL, inR, outL, outR)

			assert.Equal(t, inL, outL)
			assert.Equal(t, inR, outR)
			assert.Zero(t, p.LatencySeconds())
		})
	}
}

func TestStereoToolsReportsCorrelation(t *testing.T) {
	tests := []struct {
		name   string
		invert bool
		want   float64
	}{
		{name: "identical", want: 1},
		{name: "inverted", invert: true, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlugin(t, StereoTools)
			p.SetPostMessages(true)
			p.Enable(audio.NewRouter(testBlockSize, 8))
			require.True(t, p.Enabled())

			inL := sine(testBlockSize, 440, 0.5)
			inR := make([]float32, testBlockSize)
			for i, v := range inL {
				if tt.invert {
					inR[i] = -v
				} else {
					inR[i] = v
				}
			}

			outL := make([]float32, testBlockSize)
			outR := make([]float32, testBlockSize)
			p.Process(inL, inR, outL, outR)

			event, ok := p.Mailbox().Latest(bridge.Correlation)
			require.True(t, ok)
			assert.InDelta(t, tt.want, event.Left, 1e-6)
			assert.InDelta(t, tt.want, event.Right, 1e-6)
		})
	}
}

func TestPostMessagesToggle(t *testing.T) {
	b := bridge.New()
	tag := "output:level_meter"
	desc, err := DefaultRegistry().Lookup(LevelMeter)
	require.NoError(t, err)

	p := New(testContext(), tag, desc, b.Register(tag))
	p.Enable(audio.NewRouter(testBlockSize, 8))

	var delivered int
	unsubscribe := b.Subscribe(tag, bridge.ObserverFunc(func(e bridge.Event) { delivered++ }))
	defer unsubscribe()

	require.True(t, p.PostMessages())

	in := sine(testBlockSize, 440, 0.5)
	out := make([]float32, testBlockSize)

	p.Process(in, in, out, out)
	b.Drain()
	assert.Positive(t, delivered)

	p.SetPostMessages(false)
	delivered = 0

	for range 5 {
		p.Process(in, in, out, out)
	}
	b.Drain()
	assert.Zero(t, delivered)

	p.SetPostMessages(true)

	p.Process(in, in, out, out)
	b.Drain()
	assert.Positive(t, delivered)
}

func TestEmissionInterval(t *testing.T) {
	p := newTestPlugin(t, LevelMeter)
	p.SetPostMessages(true)
	p.Enable(audio.NewRouter(testBlockSize, 8))

	block := testBlockSize / 3
	in := sine(block, 440, 0.5)
	out := make([]float32, block)

	p.Process(in, in, out, out)
	p.Process(in, in, out, out)

	_, ok := p.Mailbox().Latest(bridge.InputLevel)
	assert.False(t, ok)

	p.Process(in, in, out, out)

	event, ok := p.Mailbox().Latest(bridge.InputLevel)
	require.True(t, ok)
	assert.InDelta(t, AmplitudeToDb(0.5), event.Left, 0.1)

	_, ok = p.Mailbox().Latest(bridge.OutputLevel)
	assert.True(t, ok)
}

func TestSetParamValidation(t *testing.T) {
	p := newTestPlugin(t, Limiter)

	assert.ErrorIs(t, p.SetParam("width", 1), ErrUnknownParam)
	assert.ErrorIs(t, p.SetParam("lookahead", 500), ErrParamRange)
	assert.ErrorIs(t, p.SetParam("lookahead", math.NaN()), ErrParamRange)

	require.NoError(t, p.SetParam("lookahead", 10))
	assert.Equal(t, map[string]float64{"lookahead": 10}, p.Settings())
}

func TestSettingsReplayedOnEnable(t *testing.T) {
	p := newTestPlugin(t, Limiter)
	require.NoError(t, p.SetParam("lookahead", 10))

	p.Enable(audio.NewRouter(testBlockSize, 8))

	assert.InDelta(t, 0.01, p.LatencySeconds(), 1e-9)
}

func TestParamChangeAppliedOnNextBlock(t *testing.T) {
	p := newTestPlugin(t, StereoTools)
	p.Enable(audio.NewRouter(testBlockSize, 8))

	in := sine(testBlockSize, 440, 0.5)
	outL := make([]float32, testBlockSize)
	outR := make([]float32, testBlockSize)

	require.NoError(t, p.SetParam("balance", 1))
	assert.Equal(t, uint32(1), p.params.tail.Load()-p.params.head.Load())

	p.Process(in, in, outL, outR)

	_, ok := p.params.pop()
	assert.False(t, ok, "queue drained by the block")

	for i := range outL {
		assert.Zero(t, outL[i])
	}
	assert.InDelta(t, in[testBlockSize/2], outR[testBlockSize/2], 1e-6)
}

func TestStructuralParamReplacesEffect(t *testing.T) {
	p := newTestPlugin(t, Limiter)
	p.Enable(audio.NewRouter(testBlockSize, 8))

	before := p.instance.Load()
	require.NotNil(t, before)
	assert.InDelta(t, 0.003, p.LatencySeconds(), 1e-9)

	require.NoError(t, p.SetParam("lookahead", 5))

	after := p.instance.Load()
	assert.NotSame(t, before, after)
	assert.Same(t, before.node, after.node)
	assert.InDelta(t, 0.005, p.LatencySeconds(), 1e-9, "visible before the next block")

	_, queued := p.params.pop()
	assert.False(t, queued)

	// setting the same value again keeps the running effect
	require.NoError(t, p.SetParam("lookahead", 5))
	assert.Same(t, after, p.instance.Load())

	p.SetBypass(true)
	assert.Zero(t, p.LatencySeconds())

	p.SetBypass(false)
	p.Disable()
	assert.Zero(t, p.LatencySeconds())
}

func TestParamQueueFull(t *testing.T) {
	p := newTestPlugin(t, Gate)
	p.Enable(audio.NewRouter(testBlockSize, 8))

	for range paramQueueSize {
		require.NoError(t, p.SetParam("threshold", -30))
	}

	err := p.SetParam("threshold", -30)
	assert.True(t, errors.Is(err, ErrQueueFull))

	buf := make([]float32, testBlockSize)
	p.Process(buf, buf, buf, buf)

	assert.NoError(t, p.SetParam("threshold", -30))
}

func TestDisabledPluginPassesThrough(t *testing.T) {
	p := newTestPlugin(t, Delay)

	in := sine(testBlockSize, 440, 0.5)
	outL := make([]float32, testBlockSize)
	outR := make([]float32, testBlockSize)
	p.Process(in, in, outL, outR)

	assert.Equal(t, in, outL)
	assert.Equal(t, in, outR)
	assert.Zero(t, p.ProcessedFrames())
}

func TestPitchAtUnityDelaysByHalfWindow(t *testing.T) {
	p := newTestPlugin(t, Pitch)
	p.Enable(audio.NewRouter(testBlockSize, 8))

	latency := p.LatencySeconds()
	assert.InDelta(t, defaultPitchWindowMs/2000, latency, 1e-9)

	frames := 4 * testBlockSize
	in := make([]float32, frames)
	in[0] = 1

	outL := make([]float32, frames)
	outR := make([]float32, frames)
	p.Process(in, in, outL, outR)

	delay := int(math.Round(latency * testSampleRate))
	assert.InDelta(t, 1, outL[delay], 1e-6)
	assert.InDelta(t, 1, outR[delay], 1e-6)
	assert.InDelta(t, 0, outL[delay-1], 1e-6)
}

func TestCorrelation(t *testing.T) {
	left := []float64{0.5, -0.25, 1, 0}
	inverted := []float64{-0.5, 0.25, -1, 0}
	silent := []float64{0, 0, 0, 0}

	assert.InDelta(t, 1, Correlation(left, left), 1e-12)
	assert.InDelta(t, -1, Correlation(left, inverted), 1e-12)
	assert.Zero(t, Correlation(left, silent))
}

func TestAmplitudeToDb(t *testing.T) {
	assert.Equal(t, MinDb, AmplitudeToDb(0))
	assert.InDelta(t, 0, AmplitudeToDb(1), 1e-12)
	assert.InDelta(t, -6.0206, AmplitudeToDb(0.5), 1e-4)
}

func TestParamQueueOrder(t *testing.T) {
	var q paramQueue

	for i := range 3 {
		require.True(t, q.push(paramChange{key: "k", value: float64(i)}))
	}

	for i := range 3 {
		change, ok := q.pop()
		require.True(t, ok)
		assert.Equal(t, float64(i), change.value)
	}

	_, ok := q.pop()
	assert.False(t, ok)
}

func TestContextMessageFrames(t *testing.T) {
	assert.Equal(t, 480, testContext().MessageFrames())
	assert.Equal(t, 4800, Context{SampleRate: 48000}.MessageFrames())
	assert.Equal(t, 1, Context{}.MessageFrames())
}

// recordingEffect passes audio through and remembers what it was told.
type recordingEffect struct {
	params map[string]float64
	refuse bool
}

func (e *recordingEffect) Process(li, ri, lo, ro []float32) {
	copy(lo, li)
	copy(ro, ri)
}

func (e *recordingEffect) LatencySeconds() float64 {
	return 0
}

func (e *recordingEffect) SetParam(key string, value float64) error {
	if e.refuse {
		return errors.New("refused")
	}

	e.params[key] = value

	return nil
}

func (e *recordingEffect) Report(r Reporter) {}

func recordingDescriptor(effect *recordingEffect) Descriptor {
	return Descriptor{
		Name: "recording",
		Backend: func(ctx Context) (Effect, error) {
			return effect, nil
		},
		Params: []ParamSpec{
			{Key: "level", Min: 0, Max: 1, Default: 0.5},
			{Key: "depth", Min: 0, Max: 10, Default: 2},
		},
	}
}

// mallocs counts heap allocations made by fn.
func mallocs(fn func()) uint64 {
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(1))

	var before, after runtime.MemStats

	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)

	return after.Mallocs - before.Mallocs
}

func TestParamChangesDoNotAllocateInProcess(t *testing.T) {
	tests := []struct {
		name  Name
		key   string
		value float64
	}{
		{Limiter, "lookahead", 5},
		{Limiter, "lookahead", 1},
		{Limiter, "threshold", -6},
		{Limiter, "release", 50},
		{StereoTools, "bass_mono", 120},
		{StereoTools, "width", 2},
		{StereoTools, "balance", 0.5},
		{Delay, "time", 0.5},
		{Delay, "feedback", 0.5},
		{Delay, "mix", 0.5},
		{Deesser, "frequency", 8000},
		{Deesser, "q", 3},
		{Deesser, "threshold", -30},
		{Deesser, "ratio", 8},
		{Deesser, "range", -12},
		{BassEnhancer, "frequency", 120},
		{BassEnhancer, "ratio", 2},
		{BassEnhancer, "response", 40},
		{BassEnhancer, "harmonics", 2},
		{Gate, "threshold", -30},
		{Gate, "hold", 100},
		{Gate, "range", -40},
		{Compressor, "ratio", 8},
		{Compressor, "makeup", 3},
		{Pitch, "semitones", 3},
		{Pitch, "window", 50},
		{MultibandCompressor, "split2", 2000},
		{MultibandCompressor, "threshold1", -30},
		{MultibandCompressor, "makeup3", 2},
		{MultibandGate, "split1", 200},
		{MultibandGate, "threshold3", -50},
		{MultibandGate, "release0", 300},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.name, tt.key), func(t *testing.T) {
			p := newTestPlugin(t, tt.name)
			p.Enable(audio.NewRouter(testBlockSize, 8))
			require.True(t, p.Enabled())

			inL := sine(testBlockSize, 220, 0.5)
			inR := sine(testBlockSize, 330, 0.5)
			outL := make([]float32, testBlockSize)
			outR := make([]float32, testBlockSize)

			p.Process(inL, inR, outL, outR)

			require.NoError(t, p.SetParam(tt.key, tt.value))

			allocs := mallocs(func() {
				p.Process(inL, inR, outL, outR)
			})

			assert.Zero(t, allocs)
			assert.Zero(t, p.ParamErrors())
			assert.Equal(t, tt.value, p.Settings()[tt.key])
		})
	}
}

func TestBassMonoRejectsValuesBelowCrossoverRange(t *testing.T) {
	p := newTestPlugin(t, StereoTools)
	p.Enable(audio.NewRouter(testBlockSize, 8))

	for _, value := range []float64{0.5, 10, 19.99} {
		assert.ErrorIs(t, p.SetParam("bass_mono", value), ErrParamRange, value)
	}

	_, recorded := p.Settings()["bass_mono"]
	assert.False(t, recorded)

	require.NoError(t, p.SetParam("bass_mono", 20))
	require.NoError(t, p.SetParam("bass_mono", 0))
	require.NoError(t, p.SetParam("bass_mono", 500))
	assert.Equal(t, 500.0, p.Settings()["bass_mono"])

	buf := make([]float32, testBlockSize)
	p.Process(buf, buf, buf, buf)
	assert.Zero(t, p.ParamErrors())
}

func TestRejectedQueuedChangeIsCounted(t *testing.T) {
	effect := &recordingEffect{params: make(map[string]float64)}
	p := New(testContext(), "output:recording", recordingDescriptor(effect), nil)
	p.Enable(audio.NewRouter(testBlockSize, 8))
	require.True(t, p.Enabled())

	effect.refuse = true
	require.NoError(t, p.SetParam("level", 0.25))

	buf := make([]float32, testBlockSize)
	p.Process(buf, buf, buf, buf)

	assert.Equal(t, uint64(1), p.ParamErrors())
	assert.Equal(t, 0.5, effect.params["level"], "effect keeps its previous value")
}

func TestDefaultsAppliedOnEnable(t *testing.T) {
	effect := &recordingEffect{params: make(map[string]float64)}
	p := New(testContext(), "output:recording", recordingDescriptor(effect), nil)
	require.NoError(t, p.SetParam("depth", 7))

	p.Enable(audio.NewRouter(testBlockSize, 8))

	assert.Equal(t, map[string]float64{"level": 0.5, "depth": 7}, effect.params)
	assert.Equal(t, map[string]float64{"depth": 7}, p.Settings())
}

func TestDescriptorBuildAppliesDefaults(t *testing.T) {
	desc, err := DefaultRegistry().Lookup(Limiter)
	require.NoError(t, err)

	effect, err := desc.Build(testContext(), map[string]float64{"lookahead": 12})
	require.NoError(t, err)
	assert.InDelta(t, 0.012, effect.LatencySeconds(), 1e-9)

	effect, err = desc.Build(testContext(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.003, effect.LatencySeconds(), 1e-9)
}

func TestEveryDefaultIsAccepted(t *testing.T) {
	registry := DefaultRegistry()

	for _, name := range registry.Names() {
		desc, err := registry.Lookup(name)
		require.NoError(t, err)

		for _, spec := range desc.Params {
			assert.NoError(t, spec.Check(spec.Default), "%s.%s", name, spec.Key)
		}

		if name == RNNoise {
			continue
		}

		_, err = desc.Build(testContext(), nil)
		assert.NoError(t, err, name)
	}
}

func TestPostMessagesOffDropsPendingValues(t *testing.T) {
	b := bridge.New()
	tag := "output:level_meter"
	desc, err := DefaultRegistry().Lookup(LevelMeter)
	require.NoError(t, err)

	p := New(testContext(), tag, desc, b.Register(tag))
	p.Enable(audio.NewRouter(testBlockSize, 8))

	var delivered int
	unsubscribe := b.Subscribe(tag, bridge.ObserverFunc(func(e bridge.Event) { delivered++ }))
	defer unsubscribe()

	in := sine(testBlockSize, 440, 0.5)
	out := make([]float32, testBlockSize)

	// posted, not drained yet
	p.Process(in, in, out, out)
	_, ok := p.Mailbox().Latest(bridge.InputLevel)
	require.True(t, ok)

	p.SetPostMessages(false)

	assert.Zero(t, b.Drain())
	assert.Zero(t, delivered)
}

func TestPostMessagesOffSurvivesOtherSubscriptions(t *testing.T) {
	b := bridge.New()
	tag := "output:level_meter"
	desc, err := DefaultRegistry().Lookup(LevelMeter)
	require.NoError(t, err)

	p := New(testContext(), tag, desc, b.Register(tag))
	p.Enable(audio.NewRouter(testBlockSize, 8))

	unsubscribe := b.Subscribe(tag, bridge.ObserverFunc(func(e bridge.Event) {}))
	defer unsubscribe()

	p.SetPostMessages(false)
	require.False(t, p.PostMessages())

	unsubscribeOther := b.Subscribe("output:gate", bridge.ObserverFunc(func(e bridge.Event) {}))
	assert.False(t, p.PostMessages())

	unsubscribeAll := b.Subscribe(bridge.AllPlugins, bridge.ObserverFunc(func(e bridge.Event) {}))
	assert.False(t, p.PostMessages())

	unsubscribeOther()
	unsubscribeAll()
	assert.False(t, p.PostMessages())

	p.SetPostMessages(true)
	assert.True(t, p.PostMessages())
}

func TestMultibandCompressorReportsEveryBand(t *testing.T) {
	p := newTestPlugin(t, MultibandCompressor)
	p.SetPostMessages(true)
	p.Enable(audio.NewRouter(testBlockSize, 8))
	require.True(t, p.Enabled())

	for band := range multibandBands {
		require.NoError(t, p.SetParam(fmt.Sprintf("threshold%d", band), -40))
		require.NoError(t, p.SetParam(fmt.Sprintf("ratio%d", band), 10))
	}

	// loud low tone, nothing in the upper bands
	in := sine(testBlockSize, 60, 0.9)
	outL := make([]float32, testBlockSize)
	outR := make([]float32, testBlockSize)

	for range 10 {
		p.Process(in, in, outL, outR)
	}

	low, ok := p.Mailbox().Latest(bridge.Reduction0)
	require.True(t, ok)
	assert.Less(t, low.Left, -1.0)
	assert.Equal(t, low.Left, low.Right)

	for band := 1; band < multibandBands; band++ {
		event, ok := p.Mailbox().Latest(bridge.ReductionBand(band))
		require.True(t, ok, band)
		assert.LessOrEqual(t, event.Left, 0.0)
		assert.Greater(t, event.Left, low.Left, band)
	}

	assert.Zero(t, p.LatencySeconds())
}

func TestMultibandCompressorSumsBandsAtUnity(t *testing.T) {
	p := newTestPlugin(t, MultibandCompressor)
	p.Enable(audio.NewRouter(testBlockSize, 8))

	for band := range multibandBands {
		require.NoError(t, p.SetParam(fmt.Sprintf("ratio%d", band), 1))
	}

	in := sine(8*testBlockSize, 1000, 0.5)
	outL := make([]float32, len(in))
	outR := make([]float32, len(in))
	p.Process(in, in, outL, outR)

	// the cascade is allpass: level survives, phase does not
	var inPeak, outPeak float64
	for i := len(in) / 2; i < len(in); i++ {
		inPeak = max(inPeak, math.Abs(float64(in[i])))
		outPeak = max(outPeak, math.Abs(float64(outL[i])))
	}

	assert.InDelta(t, inPeak, outPeak, 0.05)
}

func TestMultibandGateReportsEveryBand(t *testing.T) {
	p := newTestPlugin(t, MultibandGate)
	p.SetPostMessages(true)
	p.Enable(audio.NewRouter(testBlockSize, 8))
	require.True(t, p.Enabled())

	// a quiet high tone falls under every band's threshold
	in := sine(testBlockSize, 9000, 0.0001)
	outL := make([]float32, testBlockSize)
	outR := make([]float32, testBlockSize)

	for range 20 {
		p.Process(in, in, outL, outR)
	}

	for band := range multibandBands {
		gating, ok := p.Mailbox().Latest(bridge.GatingBand(band))
		require.True(t, ok, band)
		assert.Less(t, gating.Left, -1.0, band)

		_, ok = p.Mailbox().Latest(bridge.OutputBand(band))
		assert.True(t, ok, band)
	}
}

func TestMultibandSplitOutOfRange(t *testing.T) {
	for _, name := range []Name{MultibandCompressor, MultibandGate} {
		p := newTestPlugin(t, name)
		p.Enable(audio.NewRouter(testBlockSize, 8))

		assert.ErrorIs(t, p.SetParam("split1", 10), ErrParamRange)
		assert.ErrorIs(t, p.SetParam("split2", 250), ErrParamRange)
		assert.ErrorIs(t, p.SetParam("threshold4", -20), ErrUnknownParam)

		require.NoError(t, p.SetParam("split3", 8000))
		assert.Equal(t, 8000.0, p.Settings()["split3"])
	}
}

func TestMultibandKeys(t *testing.T) {
	split, ok := splitIndex("split3")
	assert.True(t, ok)
	assert.Equal(t, 2, split)

	_, ok = splitIndex("split4")
	assert.False(t, ok)
	_, ok = splitIndex("split0")
	assert.False(t, ok)

	param, band, ok := bandKey("release2")
	assert.True(t, ok)
	assert.Equal(t, "release", param)
	assert.Equal(t, 2, band)

	_, _, ok = bandKey("release9")
	assert.False(t, ok)
}
