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
)

// limiterEffect is a stereo-linked lookahead limiter: both channels are
// driven by the louder of the two, so the image does not shift.
type limiterEffect struct {
	sampleRate float64
	buf        stereoBuffer
	sidechain  []float64
	limiters   [2]*dynamics.LookaheadLimiter

	inPeak  float64
	outPeak float64
}

func newLimiter(ctx Context) (Effect, error) {
	l := &limiterEffect{
		sampleRate: float64(ctx.SampleRate),
		buf:        newStereoBuffer(ctx.blockSize()),
		sidechain:  make([]float64, ctx.blockSize()),
	}

	for i := range l.limiters {
		limiter, err := dynamics.NewLookaheadLimiter(l.sampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}

		l.limiters[i] = limiter
	}

	return l, nil
}

func (l *limiterEffect) Process(li, ri, lo, ro []float32) {
	l.buf.process(l, li, ri, lo, ro)
}

func (l *limiterEffect) processChunk(left []float64, right []float64) {
	sc := l.sidechain[:len(left)]

	for i := range sc {
		sc[i] = max(math.Abs(left[i]), math.Abs(right[i]))
		l.inPeak = max(l.inPeak, sc[i])
	}

	l.limiters[0].ProcessInPlaceSidechain(left, sc)
	l.limiters[1].ProcessInPlaceSidechain(right, sc)

	for i := range left {
		l.outPeak = max(l.outPeak, math.Abs(left[i]), math.Abs(right[i]))
	}
}

// LatencySeconds is the lookahead rounded to whole samples, which is what
// the delay line actually holds.
func (l *limiterEffect) LatencySeconds() float64 {
	samples := math.Round(l.limiters[0].Lookahead() * l.sampleRate / 1000.0)
	return samples / l.sampleRate
}

func (l *limiterEffect) SetParam(key string, value float64) error {
	for _, limiter := range l.limiters {
		var err error

		switch key {
		case "threshold":
			err = limiter.SetThreshold(value)
		case "release":
			err = limiter.SetRelease(value)
		case "lookahead":
			err = limiter.SetLookahead(value)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, key)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (l *limiterEffect) Report(r Reporter) {
	reduction := 0.0
	if l.inPeak > 0 {
		reduction = min(0, AmplitudeToDb(l.outPeak)-AmplitudeToDb(l.inPeak))
	}

	r.Post(bridge.Reduction, reduction, reduction)

	l.inPeak, l.outPeak = 0, 0
}
