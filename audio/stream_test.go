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
package audio

import (
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rampSource struct {
	next  int
	total int
}

func (s *rampSource) ReadStereo(left []float32, right []float32) (int, error) {
	n := 0
	for n < len(left) && s.next < s.total {
		left[n] = float32(s.next)
		right[n] = -float32(s.next)
		s.next++
		n++
	}

	if n == 0 {
		return 0, io.EOF
	}

	return n, nil
}

func TestStreamInterleavesProcessedFrames(t *testing.T) {
	src := &rampSource{total: 10}
	gain := func(inL, inR, outL, outR []float32) {
		for i := range inL {
			outL[i] = inL[i] * 2
			outR[i] = inR[i] * 2
		}
	}

	s := NewStream(src, gain, 4)

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Len(t, data, 10*8)

	for i := range 10 {
		l := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8:]))
		r := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8+4:]))

		assert.Equal(t, float32(i*2), l)
		assert.Equal(t, -float32(i*2), r)
	}
}

func TestStreamShortReads(t *testing.T) {
	s := NewStream(&rampSource{total: 3}, func(inL, inR, outL, outR []float32) {
		copy(outL, inL)
		copy(outR, inR)
	}, 2)

	buf := make([]byte, 5)
	total := 0

	for {
		n, err := s.Read(buf)
		total += n

		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, 3*8, total)
}
