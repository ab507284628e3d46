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

//go:build headless

package audio

import (
	"errors"
	"io"
	"time"
)

var ErrNoAudioDevice = errors.New("audio playback is not available in headless builds")

type Player struct{}

func NewPlayer(sampleRate int, bufferSize time.Duration) (*Player, error) {
	return nil, ErrNoAudioDevice
}

func (p *Player) Play(src io.Reader) {}

func (p *Player) IsPlaying() bool {
	return false
}

func (p *Player) Close() error {
	return nil
}
