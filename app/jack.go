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

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"fox-fx/audio"
	"fox-fx/chain"
	"fox-fx/model"
)

type jackRole struct {
	ports   *audio.RolePorts
	manager *chain.Manager
}

// RunJack runs every chain of the profile as a JACK client until it is
// interrupted or the server goes away.
func RunJack(ctx context.Context, config *model.Config, profile *model.Profile, profileName string, input io.Reader) error {
	s := newSession(config, profile, profileName)

	server := audio.NewServer(config.JackClientName)
	server.SetVerbose(config.VerboseJackServer)
	server.SetErrorCallback(jackError)
	server.SetInfoCallback(jackInfo)

	if config.StartJackServer {
		audioInterface := strings.Join(profile.AudioServer.Interface, "/")

		if err := server.StartServer(config.JackdBinary, audioInterface, profile.AudioServer.SampleRate, profile.AudioServer.FramesPerPeriod); err != nil {
			return s.fail(err)
		}

		s.reaper.Callback("stop jack server", server.StopServer)
	}

	if err := server.Connect(); err != nil {
		return s.fail(err)
	}

	engine, err := s.newEngine(server.GetSampleRate(), server.GetFramesPerPeriod())
	if err != nil {
		server.Disconnect()
		return s.fail(err)
	}

	// registered after the engine so the client stops before chains close
	s.reaper.Callback("disconnect jack server", server.Disconnect)

	roles := make([]jackRole, 0)
	for _, m := range engine.Managers() {
		sources, sinks := chainPorts(profile, profileName, m.Role())

		roles = append(roles, jackRole{
			ports:   server.AddRole(m.Role(), sources, sinks),
			manager: m,
		})
	}

	if err := server.RegisterPorts(); err != nil {
		return s.fail(err)
	}

	err = server.SetProcessCallback(func(nframes uint32) int {
		engine.stats.beginCycle()

		for _, role := range roles {
			inL, inR, outL, outR := role.ports.Buffers(nframes)
			role.manager.Process(inL, inR, outL, outR)
		}

		engine.stats.endCycle(int(nframes))

		return 0
	})
	if err != nil {
		return s.fail(err)
	}

	server.SetXrunCallback(func() int {
		engine.stats.xrun()
		return 0
	})

	server.SetShutdownCallback(func() {
		slog.Info("JACK connection shutting down")
		go s.reaper.Reap()
	})

	if err := server.ActivateClient(); err != nil {
		return s.fail(err)
	}

	server.ConnectPorts()

	slog.Info(fmt.Sprintf("Running %d chain(s) at %d Hz, %d frames per period", len(roles), server.GetSampleRate(), server.GetFramesPerPeriod()))

	return s.run(ctx, engine, input)
}

func jackError(message string) {
	slog.Error("JACK: " + message)
}

func jackInfo(message string) {
	slog.Info("JACK: " + message)
}
