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

	"github.com/cwbudde/algo-dsp/dsp/effects/spatial"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// stereoToolsEffect adjusts width and balance and measures the correlation
// between the output channels.
type stereoToolsEffect struct {
	buf     stereoBuffer
	widener *spatial.StereoWidener
	balance float64

	sumLR, sumLL, sumRR float64
}

func newStereoTools(ctx Context) (Effect, error) {
	widener, err := spatial.NewStereoWidener(float64(ctx.SampleRate), spatial.WithWidth(1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	return &stereoToolsEffect{
		buf:     newStereoBuffer(ctx.blockSize()),
		widener: widener,
	}, nil
}

func (s *stereoToolsEffect) Process(li, ri, lo, ro []float32) {
	s.buf.process(s, li, ri, lo, ro)
}

func (s *stereoToolsEffect) processChunk(left []float64, right []float64) {
	gainL := min(1, 1-s.balance)
	gainR := min(1, 1+s.balance)

	for i := range left {
		l, r := s.widener.ProcessStereo(left[i], right[i])
		left[i] = l * gainL
		right[i] = r * gainR
	}

	s.sumLR += vecmath.DotProduct(left, right)
	s.sumLL += vecmath.DotProduct(left, left)
	s.sumRR += vecmath.DotProduct(right, right)
}

func (s *stereoToolsEffect) LatencySeconds() float64 {
	return 0
}

func (s *stereoToolsEffect) SetParam(key string, value float64) error {
	switch key {
	case "width":
		return s.widener.SetWidth(value)
	case "balance":
		s.balance = max(-1, min(1, value))
		return nil
	case "bass_mono":
		return s.widener.SetBassMonoFreq(value)
	}

	return fmt.Errorf("%w: %s", ErrUnknownParam, key)
}

func (s *stereoToolsEffect) Report(r Reporter) {
	corr := correlationFromSums(s.sumLR, s.sumLL, s.sumRR)
	r.Post(bridge.Correlation, corr, corr)

	s.sumLR, s.sumLL, s.sumRR = 0, 0, 0
}
