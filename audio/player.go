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

//go:build !headless

package audio

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player plays a float32 stereo stream through the default output device.
type Player struct {
	context *oto.Context
	player  *oto.Player
}

func NewPlayer(sampleRate int, bufferSize time.Duration) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}

	<-ready

	slog.Info(fmt.Sprintf("Audio device ready at %d Hz", sampleRate))

	return &Player{context: ctx}, nil
}

// Play starts pulling from src and returns immediately.
func (p *Player) Play(src io.Reader) {
	p.player = p.context.NewPlayer(src)
	p.player.Play()
}

func (p *Player) IsPlaying() bool {
	return p.player != nil && p.player.IsPlaying()
}

func (p *Player) Close() error {
	if p.player == nil {
		return nil
	}

	return p.player.Close()
}
