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

type deesserEffect struct {
	buf       stereoBuffer
	deessers  [2]*dynamics.DeEsser
	threshold float64
}

func newDeesser(ctx Context) (Effect, error) {
	d := &deesserEffect{
		buf:       newStereoBuffer(ctx.blockSize()),
		threshold: -20,
	}

	for i := range d.deessers {
		deesser, err := dynamics.NewDeEsser(float64(ctx.SampleRate))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}

		if err := deesser.SetThreshold(d.threshold); err != nil {
			return nil, err
		}

		d.deessers[i] = deesser
	}

	return d, nil
}

func (d *deesserEffect) Process(li, ri, lo, ro []float32) {
	d.buf.process(d, li, ri, lo, ro)
}

func (d *deesserEffect) processChunk(left []float64, right []float64) {
	d.deessers[0].ProcessInPlace(left)
	d.deessers[1].ProcessInPlace(right)
}

func (d *deesserEffect) LatencySeconds() float64 {
	return 0
}

func (d *deesserEffect) SetParam(key string, value float64) error {
	for _, deesser := range d.deessers {
		var err error

		switch key {
		case "frequency":
			err = deesser.SetFrequency(value)
		case "q":
			err = deesser.SetQ(value)
		case "threshold":
			err = deesser.SetThreshold(value)
		case "ratio":
			err = deesser.SetRatio(value)
		case "range":
			err = deesser.SetRange(value)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, key)
		}

		if err != nil {
			return err
		}
	}

	if key == "threshold" {
		d.threshold = value
	}

	return nil
}

// Report posts the gain reduction and a 0/1 flag telling whether sibilance
// crossed the threshold during the interval.
func (d *deesserEffect) Report(r Reporter) {
	left := d.deessers[0].GetMetrics()
	right := d.deessers[1].GetMetrics()

	r.Post(bridge.Compression, AmplitudeToDb(left.GainReduction), AmplitudeToDb(right.GainReduction))
	r.Post(bridge.Detected, d.detected(left), d.detected(right))

	for _, deesser := range d.deessers {
		deesser.ResetMetrics()
	}
}

func (d *deesserEffect) detected(m dynamics.DeEsserMetrics) float64 {
	if AmplitudeToDb(m.DetectionLevel) >= d.threshold {
		return 1
	}

	return 0
}
