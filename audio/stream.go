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
	"errors"
	"io"
	"math"
)

// StereoSource produces deinterleaved stereo frames.
type StereoSource interface {
	ReadStereo(left []float32, right []float32) (int, error)
}

// ProcessFunc renders one block from the input buffers into the output
// buffers, all of the same length.
type ProcessFunc func(inL, inR, outL, outR []float32)

// Stream pulls blocks from a source, runs them through a process func and
// serves the result as interleaved float32 little-endian PCM. All buffers
// are allocated up front so Read does not allocate.
type Stream struct {
	source  StereoSource
	process ProcessFunc

	inL, inR, outL, outR []float32

	// rendered bytes not yet handed out
	pending []byte
	encoded []byte
	eof     bool
}

func NewStream(source StereoSource, process ProcessFunc, blockSize int) *Stream {
	return &Stream{
		source:  source,
		process: process,
		inL:     make([]float32, blockSize),
		inR:     make([]float32, blockSize),
		outL:    make([]float32, blockSize),
		outR:    make([]float32, blockSize),
		encoded: make([]byte, blockSize*2*4),
	}
}

func (s *Stream) Read(p []byte) (int, error) {
	written := 0

	for written < len(p) {
		if len(s.pending) == 0 {
			if s.eof {
				break
			}

			if err := s.fill(); err != nil {
				if written > 0 {
					return written, nil
				}
				return 0, err
			}

			continue
		}

		n := copy(p[written:], s.pending)
		s.pending = s.pending[n:]
		written += n
	}

	if written == 0 && s.eof {
		return 0, io.EOF
	}

	return written, nil
}

func (s *Stream) fill() error {
	frames, err := s.source.ReadStereo(s.inL, s.inR)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if frames == 0 {
		s.eof = true
		return nil
	}

	s.process(s.inL[:frames], s.inR[:frames], s.outL[:frames], s.outR[:frames])

	for i := range frames {
		binary.LittleEndian.PutUint32(s.encoded[i*8:], math.Float32bits(s.outL[i]))
		binary.LittleEndian.PutUint32(s.encoded[i*8+4:], math.Float32bits(s.outR[i]))
	}

	s.pending = s.encoded[:frames*8]

	return nil
}
