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
	"math"

	"fox-fx/bridge"

	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
	"github.com/cwbudde/algo-dsp/dsp/filter/crossover"
)

// multibandGateEffect gates four bands independently per channel. Band
// gates survive a split change, only the crossovers are rebuilt.
type multibandGateEffect struct {
	sampleRate float64
	buf        stereoBuffer
	splits     [multibandBands - 1]float64
	xover      [2]*crossover.MultiBand
	gates      [2][multibandBands]*dynamics.Gate
	peaks      [2][multibandBands]float64
}

func newMultibandGate(ctx Context) (Effect, error) {
	m := &multibandGateEffect{
		sampleRate: float64(ctx.SampleRate),
		buf:        newStereoBuffer(ctx.blockSize()),
		splits:     defaultSplits,
	}

	for ch := range m.gates {
		for band := range m.gates[ch] {
			gate, err := dynamics.NewGate(m.sampleRate)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
			}

			m.gates[ch][band] = gate
		}
	}

	if err := m.rebuild(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return m, nil
}

func (m *multibandGateEffect) rebuild() error {
	var xover [2]*crossover.MultiBand

	for ch := range xover {
		mb, err := crossover.NewMultiBand(m.splits[:], multibandOrder, m.sampleRate)
		if err != nil {
			return err
		}

		xover[ch] = mb
	}

	m.xover = xover

	return nil
}

func (m *multibandGateEffect) Process(li, ri, lo, ro []float32) {
	m.buf.process(m, li, ri, lo, ro)
}

func (m *multibandGateEffect) processChunk(left []float64, right []float64) {
	m.gateBands(0, left)
	m.gateBands(1, right)
}

func (m *multibandGateEffect) gateBands(ch int, buf []float64) {
	stages := m.xover[ch].Stages()
	gates := &m.gates[ch]
	peaks := &m.peaks[ch]
	top := len(stages)

	for i, x := range buf {
		sum := 0.0

		for band, stage := range stages {
			lo, hi := stage.ProcessSample(x)
			y := gates[band].ProcessSample(lo)
			peaks[band] = max(peaks[band], math.Abs(y))
			sum += y
			x = hi
		}

		y := gates[top].ProcessSample(x)
		peaks[top] = max(peaks[top], math.Abs(y))
		buf[i] = sum + y
	}
}

func (m *multibandGateEffect) LatencySeconds() float64 {
	return 0
}

func (m *multibandGateEffect) SetParam(key string, value float64) error {
	if split, ok := splitIndex(key); ok {
		m.splits[split] = value
		return m.rebuild()
	}

	param, band, ok := bandKey(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, key)
	}

	for ch := range m.gates {
		gate := m.gates[ch][band]

		var err error

		switch param {
		case "threshold":
			err = gate.SetThreshold(value)
		case "range":
			err = gate.SetRange(value)
		case "attack":
			err = gate.SetAttack(value)
		case "hold":
			err = gate.SetHold(value)
		case "release":
			err = gate.SetRelease(value)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, key)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Report posts the attenuation and the output peak of every band.
func (m *multibandGateEffect) Report(r Reporter) {
	for band := range multibandBands {
		left := m.gates[0][band]
		right := m.gates[1][band]

		r.Post(bridge.GatingBand(band),
			AmplitudeToDb(left.GetMetrics().GainReduction),
			AmplitudeToDb(right.GetMetrics().GainReduction))
		r.Post(bridge.OutputBand(band), AmplitudeToDb(m.peaks[0][band]), AmplitudeToDb(m.peaks[1][band]))

		left.ResetMetrics()
		right.ResetMetrics()
	}

	m.peaks = [2][multibandBands]float64{}
}
