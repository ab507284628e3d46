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

	"github.com/cwbudde/algo-dsp/dsp/effects"
)

// delayEffect is a feedback echo. The dry signal is not delayed, so it adds
// no latency to the path.
type delayEffect struct {
	buf    stereoBuffer
	delays [2]*effects.Delay
}

func newDelay(ctx Context) (Effect, error) {
	d := &delayEffect{buf: newStereoBuffer(ctx.blockSize())}

	for i := range d.delays {
		delay, err := effects.NewDelay(float64(ctx.SampleRate))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}

		d.delays[i] = delay
	}

	return d, nil
}

func (d *delayEffect) Process(li, ri, lo, ro []float32) {
	d.buf.process(d, li, ri, lo, ro)
}

func (d *delayEffect) processChunk(left []float64, right []float64) {
	d.delays[0].ProcessInPlace(left)
	d.delays[1].ProcessInPlace(right)
}

func (d *delayEffect) LatencySeconds() float64 {
	return 0
}

func (d *delayEffect) SetParam(key string, value float64) error {
	for _, delay := range d.delays {
		var err error

		switch key {
		case "time":
			err = delay.SetTime(value)
		case "feedback":
			err = delay.SetFeedback(value)
		case "mix":
			err = delay.SetMix(value)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, key)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (d *delayEffect) Report(r Reporter) {}
