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
	"fmt"

	"fox-fx/bridge"

	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
)

const (
	multibandBands = bridge.BandMetrics
	multibandOrder = 4
)

var defaultSplits = [multibandBands - 1]float64{120, 1000, 6000}

// compressorBand is the configuration of one band, kept so the band
// compressors can be rebuilt when a split moves.
type compressorBand struct {
	threshold float64
	ratio     float64
	attack    float64
	release   float64
	makeup    float64
}

// multibandCompressorEffect compresses four bands independently per channel.
type multibandCompressorEffect struct {
	sampleRate float64
	buf        stereoBuffer
	splits     [multibandBands - 1]float64
	bands      [multibandBands]compressorBand
	channels   [2]*dynamics.MultibandCompressor
}

func newMultibandCompressor(ctx Context) (Effect, error) {
	m := &multibandCompressorEffect{
		sampleRate: float64(ctx.SampleRate),
		buf:        newStereoBuffer(ctx.blockSize()),
		splits:     defaultSplits,
	}

	for i := range m.bands {
		m.bands[i] = compressorBand{threshold: -20, ratio: 4, attack: 10, release: 100}
	}

	if err := m.rebuild(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return m, nil
}

// rebuild replaces both channels. It allocates, so it only ever runs for a
// structural change, which happens on the control thread.
func (m *multibandCompressorEffect) rebuild() error {
	configs := make([]dynamics.BandConfig, multibandBands)
	for i, band := range m.bands {
		configs[i] = dynamics.BandConfig{
			ThresholdDB:  dynamics.Float64Ptr(band.threshold),
			Ratio:        band.ratio,
			AttackMs:     band.attack,
			ReleaseMs:    band.release,
			MakeupGainDB: dynamics.Float64Ptr(band.makeup),
		}
	}

	var channels [2]*dynamics.MultibandCompressor

	for i := range channels {
		mc, err := dynamics.NewMultibandCompressorWithConfig(m.splits[:], multibandOrder, m.sampleRate, configs)
		if err != nil {
			return err
		}

		mc.ResetMetrics()
		channels[i] = mc
	}

	m.channels = channels

	return nil
}

func (m *multibandCompressorEffect) Process(li, ri, lo, ro []float32) {
	m.buf.process(m, li, ri, lo, ro)
}

func (m *multibandCompressorEffect) processChunk(left []float64, right []float64) {
	compressBands(m.channels[0], left)
	compressBands(m.channels[1], right)
}

// compressBands runs the crossover cascade stage by stage and sums the
// compressed bands. MultibandCompressor.ProcessSample allocates a band slice
// per sample, this does not.
func compressBands(mc *dynamics.MultibandCompressor, buf []float64) {
	stages := mc.Crossover().Stages()
	top := mc.Band(len(stages))

	for i, x := range buf {
		sum := 0.0

		for band, stage := range stages {
			lo, hi := stage.ProcessSample(x)
			sum += mc.Band(band).ProcessSample(lo)
			x = hi
		}

		buf[i] = sum + top.ProcessSample(x)
	}
}

func (m *multibandCompressorEffect) LatencySeconds() float64 {
	return 0
}

func (m *multibandCompressorEffect) SetParam(key string, value float64) error {
	if split, ok := splitIndex(key); ok {
		m.splits[split] = value
		return m.rebuild()
	}

	param, band, ok := bandKey(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, key)
	}

	for _, mc := range m.channels {
		var err error

		switch param {
		case "threshold":
			err = mc.SetBandThreshold(band, value)
		case "ratio":
			err = mc.SetBandRatio(band, value)
		case "attack":
			err = mc.SetBandAttack(band, value)
		case "release":
			err = mc.SetBandRelease(band, value)
		case "makeup":
			err = mc.SetBandMakeupGain(band, value)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, key)
		}

		if err != nil {
			return err
		}
	}

	b := &m.bands[band]
	switch param {
	case "threshold":
		b.threshold = value
	case "ratio":
		b.ratio = value
	case "attack":
		b.attack = value
	case "release":
		b.release = value
	case "makeup":
		b.makeup = value
	}

	return nil
}

// Report posts the deepest gain reduction of every band since the last
// report, per channel.
func (m *multibandCompressorEffect) Report(r Reporter) {
	for band := range multibandBands {
		left := m.channels[0].Band(band).GetMetrics().GainReduction
		right := m.channels[1].Band(band).GetMetrics().GainReduction

		r.Post(bridge.ReductionBand(band), min(0, AmplitudeToDb(left)), min(0, AmplitudeToDb(right)))
	}

	for _, mc := range m.channels {
		mc.ResetMetrics()
	}
}

// splitIndex maps split1..split3 to a crossover index.
func splitIndex(key string) (int, bool) {
	if len(key) != len("split1") || key[:5] != "split" {
		return 0, false
	}

	i := int(key[5] - '1')
	if i < 0 || i >= multibandBands-1 {
		return 0, false
	}

	return i, true
}

// bandKey splits a per-band key such as threshold2 into its parameter and
// band index.
func bandKey(key string) (string, int, bool) {
	if len(key) < 2 {
		return "", 0, false
	}

	band := int(key[len(key)-1] - '0')
	if band < 0 || band >= multibandBands {
		return "", 0, false
	}

	return key[:len(key)-1], band, true
}

// bandParams repeats a parameter for every band, key0 being the lowest.
func bandParams(key string, lo, hi, def float64) []ParamSpec {
	specs := make([]ParamSpec, multibandBands)
	for i := range specs {
		specs[i] = ParamSpec{Key: fmt.Sprintf("%s%d", key, i), Min: lo, Max: hi, Default: def}
	}

	return specs
}

// splitParams are the crossover frequencies. The ranges do not overlap so
// the splits stay strictly ascending whatever order they are set in.
func splitParams() []ParamSpec {
	return []ParamSpec{
		{Key: "split1", Min: 20, Max: 250, Default: defaultSplits[0], Structural: true},
		{Key: "split2", Min: 300, Max: 3000, Default: defaultSplits[1], Structural: true},
		{Key: "split3", Min: 3500, Max: 12000, Default: defaultSplits[2], Structural: true},
	}
}
