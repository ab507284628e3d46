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
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/transforms"
	"github.com/go-audio/wav"
)

const wavFormatPCM = 1

// OutputFile writes interleaved stereo PCM through a go-audio encoder.
type OutputFile struct {
	FilePath   string
	FileHandle *os.File
	Encoder    *wav.Encoder
	BitDepth   int
	SampleRate int

	interleaved []float32
}

func CreateOutputFile(filePath string, sampleRate int, bitDepth int) (*OutputFile, error) {
	f, err := os.Create(filePath)
	if err != nil {
		return nil, err
	}

	return &OutputFile{
		FilePath:   filePath,
		FileHandle: f,
		Encoder:    wav.NewEncoder(f, sampleRate, bitDepth, 2, wavFormatPCM),
		BitDepth:   bitDepth,
		SampleRate: sampleRate,
	}, nil
}

// WriteStereo appends one block. Samples are expected in [-1, 1].
func (of *OutputFile) WriteStereo(left []float32, right []float32) error {
	frames := min(len(left), len(right))

	if cap(of.interleaved) < frames*2 {
		of.interleaved = make([]float32, frames*2)
	}
	data := of.interleaved[:frames*2]

	for i := range frames {
		data[i*2] = clamp(left[i])
		data[i*2+1] = clamp(right[i])
	}

	fBuf := &audio.Float32Buffer{
		Data: data,
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  of.SampleRate,
		},
		SourceBitDepth: of.BitDepth,
	}

	transforms.PCMScaleF32(fBuf, of.BitDepth)

	return of.Write(fBuf.AsIntBuffer())
}

func (of *OutputFile) Write(buf *audio.IntBuffer) error {
	return of.Encoder.Write(buf)
}

func (of *OutputFile) Close() error {
	var err error

	if of.Encoder != nil {
		err = of.Encoder.Close()
	}

	if of.FileHandle != nil {
		if closeErr := of.FileHandle.Close(); err == nil {
			err = closeErr
		}
	}

	return err
}

func clamp(sample float32) float32 {
	return max(-1, min(1, sample))
}
