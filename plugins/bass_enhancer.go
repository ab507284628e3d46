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

	"github.com/cwbudde/algo-dsp/dsp/effects"
)

type bassEnhancerEffect struct {
	buf       stereoBuffer
	dry       stereoBuffer
	enhancers [2]*effects.HarmonicBass

	harmonics [2]float64
}

func newBassEnhancer(ctx Context) (Effect, error) {
	b := &bassEnhancerEffect{
		buf: newStereoBuffer(ctx.blockSize()),
		dry: newStereoBuffer(ctx.blockSize()),
	}

	for i := range b.enhancers {
		enhancer, err := effects.NewHarmonicBass(float64(ctx.SampleRate))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}

		b.enhancers[i] = enhancer
	}

	return b, nil
}

func (b *bassEnhancerEffect) Process(li, ri, lo, ro []float32) {
	b.buf.process(b, li, ri, lo, ro)
}

func (b *bassEnhancerEffect) processChunk(left []float64, right []float64) {
	dryL := b.dry.left[:len(left)]
	dryR := b.dry.right[:len(right)]
	copy(dryL, left)
	copy(dryR, right)

	b.enhancers[0].ProcessInPlace(left)
	b.enhancers[1].ProcessInPlace(right)

	for i := range left {
		b.harmonics[0] = max(b.harmonics[0], math.Abs(left[i]-dryL[i]))
		b.harmonics[1] = max(b.harmonics[1], math.Abs(right[i]-dryR[i]))
	}
}

func (b *bassEnhancerEffect) LatencySeconds() float64 {
	return 0
}

func (b *bassEnhancerEffect) SetParam(key string, value float64) error {
	for _, enhancer := range b.enhancers {
		var err error

		switch key {
		case "frequency":
			err = enhancer.SetFrequency(value)
		case "ratio":
			err = enhancer.SetRatio(value)
		case "response":
			err = enhancer.SetResponse(value)
		case "harmonics":
			err = enhancer.SetHarmonicBassLevel(value)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, key)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// Report posts the peak level of what the enhancer added to the signal.
func (b *bassEnhancerEffect) Report(r Reporter) {
	r.Post(bridge.Harmonics, AmplitudeToDb(b.harmonics[0]), AmplitudeToDb(b.harmonics[1]))
	b.harmonics = [2]float64{}
}
