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
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"fox-fx/audio"
	"fox-fx/model"
)

const (
	playerBufferSize   = 100 * time.Millisecond
	playerPollInterval = 100 * time.Millisecond
)

// RunPlay streams a WAV file through one chain to the default audio device.
// Commands work as they do against a live chain.
func RunPlay(ctx context.Context, config *model.Config, profile *model.Profile, profileName string, inputPath string, role string, input io.Reader) error {
	if role == "" {
		role = model.RoleOutput
	}

	s := newSession(config, profile, profileName)

	blockSize := profile.AudioServer.FramesPerPeriod

	in, err := audio.OpenInputFile(inputPath, blockSize)
	if err != nil {
		return s.fail(err)
	}

	engine, err := s.newEngine(in.SampleRate, blockSize, role)
	if err != nil {
		in.Close()
		return s.fail(err)
	}

	m, ok := engine.Manager(role)
	if !ok {
		in.Close()
		return s.fail(fmt.Errorf("profile has no '%s' chain", role))
	}

	player, err := audio.NewPlayer(in.SampleRate, playerBufferSize)
	if err != nil {
		in.Close()
		return s.fail(err)
	}

	s.reaper.Callback("close player", func() {
		if err := player.Close(); err != nil {
			slog.Warn("Failed to close player: " + err.Error())
		}
		in.Close()
	})

	stream := audio.NewStream(in, func(inL, inR, outL, outR []float32) {
		engine.stats.beginCycle()
		m.Process(inL, inR, outL, outR)
		engine.stats.endCycle(len(inL))
	}, blockSize)

	player.Play(stream)

	go func() {
		err := processOnInterval(ctx, s.reaper, "playback", playerPollInterval, func() {
			if !player.IsPlaying() && !s.reaper.Reaped() {
				slog.Info("Playback finished")
				go s.reaper.Reap()
			}
		})
		if err != nil {
			slog.Warn(err.Error())
		}
	}()

	slog.Info(fmt.Sprintf("Playing %s through the %s chain", inputPath, role))

	return s.run(ctx, engine, input)
}
