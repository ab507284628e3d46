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

	"fox-fx/display"
	"fox-fx/model"
	"fox-fx/reaper"
	"fox-fx/shared"
)

// session is the part of a run every host shares: the display, the logger
// feeding it and the reaper that tears everything down.
type session struct {
	config      *model.Config
	profile     *model.Profile
	profileName string
	ui          display.UI
	reaper      *reaper.Reaper
}

func newSession(config *model.Config, profile *model.Profile, profileName string) *session {
	s := &session{
		config:      config,
		profile:     profile,
		profileName: profileName,
		reaper:      reaper.New(),
	}

	// the display writes to the real stdout, HijackLogging only takes over
	// the file descriptors native libraries print to
	s.ui = display.New(config.OutputType, shared.Stdout(), config.StatusInterval())
	s.ui.Initialize()
	s.ui.SetTransportStatus(display.StatusStarting)
	s.ui.SetProfileName(profileName)
	s.ui.Start()
	s.reaper.Callback("display", s.ui.Shutdown)

	ConfigureUiLogger(s.ui, slog.Level(config.LogLevel))

	shared.CatchSigint(func() {
		slog.Info("Caught interrupt, calling reaper")
		s.reaper.Reap()
	})

	return s
}

func (s *session) newEngine(sampleRate int, blockSize int, roles ...string) (*Engine, error) {
	engine, err := NewEngine(EngineOptions{
		Config:      s.config,
		Profile:     s.profile,
		ProfileName: s.profileName,
		SampleRate:  sampleRate,
		BlockSize:   blockSize,
		UI:          s.ui,
		Reaper:      s.reaper,
		Roles:       roles,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build chains: %w", err)
	}

	s.reaper.Callback("engine", engine.Close)

	return engine, nil
}

// run attaches the display, serves commands from input and blocks until the
// reaper fires. Hosts register their own teardown before calling run so it
// happens before the chains are closed.
func (s *session) run(ctx context.Context, engine *Engine, input io.Reader) error {
	engine.AttachUI()

	shared.CatchSighup(func() {
		if err := engine.Reload(); err != nil {
			slog.Error("Reload failed: " + err.Error())
		}
	})

	if input != nil {
		go func() {
			if err := engine.RunCommands(ctx, input); err != nil {
				slog.Warn("Command input closed: " + err.Error())
			}
		}()
	}

	s.reaper.Callback("shutdown status", func() {
		s.ui.SetTransportStatus(display.StatusShuttingDown)
	})

	s.ui.SetTransportStatus(display.StatusRunning)

	err := engine.Run(ctx)

	s.reaper.Reap()
	s.reaper.Wait()

	return err
}

// fail tears the session down after a startup error.
func (s *session) fail(err error) error {
	slog.Error(err.Error())
	s.reaper.Reap()

	return err
}
