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

type chunkProcessor interface {
	processChunk(left []float64, right []float64)
}

// stereoBuffer converts float32 blocks to float64 for the DSP backends.
// Blocks longer than the buffer are processed in buffer-sized chunks.
type stereoBuffer struct {
	left  []float64
	right []float64
}

func newStereoBuffer(size int) stereoBuffer {
	size = max(1, size)

	return stereoBuffer{
		left:  make([]float64, size),
		right: make([]float64, size),
	}
}

func (b *stereoBuffer) process(p chunkProcessor, li, ri, lo, ro []float32) {
	size := len(b.left)

	for start := 0; start < len(li); start += size {
		end := min(len(li), start+size)
		l := b.left[:end-start]
		r := b.right[:end-start]

		for i := range l {
			l[i] = float64(li[start+i])
			r[i] = float64(ri[start+i])
		}

		p.processChunk(l, r)

		for i := range l {
			lo[start+i] = float32(l[i])
			ro[start+i] = float32(r[i])
		}
	}
}
