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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// InputFile streams a WAV file as deinterleaved stereo float32. Mono files
// feed both channels, channels beyond the second are dropped.
type InputFile struct {
	FilePath     string
	FileHandle   *os.File
	Decoder      *wav.Decoder
	ChannelCount int
	BitDepth     int
	SampleRate   int

	pcm   *audio.IntBuffer
	scale float32
}

func OpenInputFile(filePath string, framesPerRead int) (*InputFile, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%s is not a valid wav file", filePath)
	}

	format := decoder.Format()
	bitDepth := int(decoder.SampleBitDepth())

	if format.NumChannels < 1 {
		f.Close()
		return nil, fmt.Errorf("%s has no audio channels", filePath)
	}

	return &InputFile{
		FilePath:     filePath,
		FileHandle:   f,
		Decoder:      decoder,
		ChannelCount: format.NumChannels,
		BitDepth:     bitDepth,
		SampleRate:   format.SampleRate,

		pcm: &audio.IntBuffer{
			Format:         format,
			Data:           make([]int, framesPerRead*format.NumChannels),
			SourceBitDepth: bitDepth,
		},
		scale: float32(audio.IntMaxSignedValue(bitDepth)),
	}, nil
}

// ReadStereo fills left and right with up to len(left) frames and returns
// the number of frames read. It returns io.EOF once the file is exhausted.
func (in *InputFile) ReadStereo(left []float32, right []float32) (int, error) {
	frames := min(len(left), len(right), len(in.pcm.Data)/in.ChannelCount)
	data := in.pcm.Data[:frames*in.ChannelCount]

	n, err := in.Decoder.PCMBuffer(&audio.IntBuffer{Format: in.pcm.Format, Data: data})
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}

	read := n / in.ChannelCount
	if read == 0 {
		return 0, io.EOF
	}

	for i := range read {
		l := float32(data[i*in.ChannelCount]) / in.scale
		r := l

		if in.ChannelCount > 1 {
			r = float32(data[i*in.ChannelCount+1]) / in.scale
		}

		left[i] = l
		right[i] = r
	}

	return read, nil
}

func (in *InputFile) Close() {
	if in.FileHandle != nil {
		in.FileHandle.Close()
	}
}
