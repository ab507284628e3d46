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
package display

import (
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"fox-fx/bridge"
	"fox-fx/model"
)

// state holds everything a display shows. Setters are called from the
// engine's control loops and OnEvent from the bridge drain, so all of it
// sits behind one mutex.
type state struct {
	mu sync.Mutex

	output   io.Writer
	outputMu sync.Mutex
	interval time.Duration

	statusTransport   Status
	statusDuration    float64
	statusFormat      string
	statusProfileName string
	statusErrorCount  int

	metricAudioLoadPct int
	metricXruns        uint64

	chains []model.UiChain
	meters map[string]map[bridge.Metric]bridge.Event

	shutdownOnce sync.Once
	shutdown     chan struct{}
	finished     chan struct{}
	started      bool
}

func newState(output io.Writer, interval time.Duration) *state {
	if interval <= 0 {
		interval = time.Second
	}

	return &state{
		output:          output,
		interval:        interval,
		statusTransport: StatusStarting,
		chains:          make([]model.UiChain, 0),
		meters:          make(map[string]map[bridge.Metric]bridge.Event),
		shutdown:        make(chan struct{}),
		finished:        make(chan struct{}),
	}
}

// start runs render on every interval until Shutdown.
func (s *state) start(render func()) {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.finished)

		slog.Debug("Display loop started")

		t := time.NewTicker(s.interval)
		defer t.Stop()

		for {
			select {
			case <-s.shutdown:
				render()
				return
			case <-t.C:
				render()
			}
		}
	}()
}

func (s *state) Shutdown() {
	s.shutdownOnce.Do(func() {
		slog.Debug("Shutting down display")
		close(s.shutdown)

		s.mu.Lock()
		started := s.started
		s.mu.Unlock()

		if !started {
			close(s.finished)
		}
	})

	s.WaitForShutdown()
}

func (s *state) IsShutdown() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}

func (s *state) WaitForShutdown() {
	<-s.finished
}

func (s *state) SetTransportStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusTransport = status
}

func (s *state) SetDuration(duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusDuration = duration
}

func (s *state) SetAudioFormat(format string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusFormat = format
}

func (s *state) SetProfileName(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusProfileName = value
}

func (s *state) IncrementErrorCount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusErrorCount += 1
}

func (s *state) SetAudioLoad(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metricAudioLoadPct = percent
}

func (s *state) SetXrunCount(count uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metricXruns = count
}

// SetChains replaces the chain overview and forgets meters of plugins that
// are no longer configured.
func (s *state) SetChains(chains []model.UiChain) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chains = slices.Clone(chains)

	configured := make(map[string]bool)
	for _, chain := range chains {
		for _, plugin := range chain.Plugins {
			configured[plugin.Tag] = true
		}
	}

	maps.DeleteFunc(s.meters, func(tag string, _ map[bridge.Metric]bridge.Event) bool {
		return !configured[tag]
	})
}

func (s *state) OnEvent(e bridge.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics, ok := s.meters[e.Plugin]
	if !ok {
		metrics = make(map[bridge.Metric]bridge.Event)
		s.meters[e.Plugin] = metrics
	}

	metrics[e.Metric] = e
}

func (s *state) write(line string) {
	s.outputMu.Lock()
	defer s.outputMu.Unlock()

	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	io.WriteString(s.output, line)
}

// meterTags lists plugins with meters, sorted.
func (s *state) meterTags() []string {
	return slices.Sorted(maps.Keys(s.meters))
}
