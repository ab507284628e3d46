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
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWavRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	out, err := CreateOutputFile(path, 48000, 16)
	require.NoError(t, err)

	left := []float32{0, 0.5, -0.5, 1, 2}
	right := []float32{0.25, -0.25, 0, -1, -2}

	require.NoError(t, out.WriteStereo(left, right))
	require.NoError(t, out.Close())

	in, err := OpenInputFile(path, 16)
	require.NoError(t, err)
	defer in.Close()

	assert.Equal(t, 2, in.ChannelCount)
	assert.Equal(t, 16, in.BitDepth)
	assert.Equal(t, 48000, in.SampleRate)

	gotL := make([]float32, 16)
	gotR := make([]float32, 16)

	n, err := in.ReadStereo(gotL, gotR)
	require.NoError(t, err)
	require.Equal(t, len(left), n)

	for i := range n {
		// out of range samples are clamped
		assert.InDelta(t, clamp(left[i]), gotL[i], 1e-4)
		assert.InDelta(t, clamp(right[i]), gotR[i], 1e-4)
	}

	_, err = in.ReadStereo(gotL, gotR)
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenInputFileRejectsGarbage(t *testing.T) {
	_, err := OpenInputFile(filepath.Join(t.TempDir(), "missing.wav"), 16)
	assert.Error(t, err)
}
