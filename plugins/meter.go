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
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// MinDb is the floor reported for silence.
const MinDb = -150.0

func AmplitudeToDb(amplitude float64) float64 {
	if amplitude <= 0 {
		return MinDb
	}

	return max(MinDb, math.Log10(amplitude)*20.0)
}

// Correlation returns the normalized cross-correlation of two channels:
// 1 for identical signals, -1 for inverted ones and 0 when either is silent.
func Correlation(left []float64, right []float64) float64 {
	return correlationFromSums(
		vecmath.DotProduct(left, right),
		vecmath.DotProduct(left, left),
		vecmath.DotProduct(right, right),
	)
}

func correlationFromSums(lr float64, ll float64, rr float64) float64 {
	if ll <= 0 || rr <= 0 {
		return 0
	}

	return max(-1, min(1, lr/math.Sqrt(ll*rr)))
}

// meter accumulates peak levels between two emissions. Audio thread only.
type meter struct {
	scratch []float64

	inL, inR   float64
	outL, outR float64
	frames     int
}

func newMeter(size int) meter {
	return meter{scratch: make([]float64, max(1, size))}
}

func (m *meter) accumulate(li, ri, lo, ro []float32) {
	m.inL = max(m.inL, m.peak(li))
	m.inR = max(m.inR, m.peak(ri))
	m.outL = max(m.outL, m.peak(lo))
	m.outR = max(m.outR, m.peak(ro))
	m.frames += len(li)
}

func (m *meter) reset() {
	m.inL, m.inR, m.outL, m.outR = 0, 0, 0, 0
	m.frames = 0
}

func (m *meter) peak(buf []float32) float64 {
	peak := 0.0

	for start := 0; start < len(buf); start += len(m.scratch) {
		chunk := buf[start:min(len(buf), start+len(m.scratch))]
		s := m.scratch[:len(chunk)]

		for i, v := range chunk {
			s[i] = float64(v)
		}

		peak = max(peak, vecmath.MaxAbs(s))
	}

	return peak
}
