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

type compressorEffect struct {
	buf         stereoBuffer
	compressors [2]*dynamics.Compressor
}

func newCompressor(ctx Context) (Effect, error) {
	c := &compressorEffect{buf: newStereoBuffer(ctx.blockSize())}

	for i := range c.compressors {
		comp, err := dynamics.NewCompressor(float64(ctx.SampleRate))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}

		if err := comp.SetAutoMakeup(false); err != nil {
			return nil, err
		}

		comp.ResetMetrics()

		c.compressors[i] = comp
	}

	return c, nil
}

func (c *compressorEffect) Process(li, ri, lo, ro []float32) {
	c.buf.process(c, li, ri, lo, ro)
}

func (c *compressorEffect) processChunk(left []float64, right []float64) {
	c.compressors[0].ProcessInPlace(left)
	c.compressors[1].ProcessInPlace(right)
}

func (c *compressorEffect) LatencySeconds() float64 {
	return 0
}

func (c *compressorEffect) SetParam(key string, value float64) error {
	for _, comp := range c.compressors {
		var err error

		switch key {
		case "threshold":
			err = comp.SetThreshold(value)
		case "ratio":
			err = comp.SetRatio(value)
		case "knee":
			err = comp.SetKnee(value)
		case "attack":
			err = comp.SetAttack(value)
		case "release":
			err = comp.SetRelease(value)
		case "makeup":
			err = comp.SetMakeupGain(value)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, key)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (c *compressorEffect) Report(r Reporter) {
	left := AmplitudeToDb(c.compressors[0].GetMetrics().GainReduction)
	right := AmplitudeToDb(c.compressors[1].GetMetrics().GainReduction)

	r.Post(bridge.Reduction, left, right)

	for _, comp := range c.compressors {
		comp.ResetMetrics()
	}
}
