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
	"math"
	"sync/atomic"
	"time"

	"fox-fx/reaper"
	"fox-fx/util"
)

// statistics measures how much of each audio period the process callback
// uses. The audio thread only touches atomics.
type statistics struct {
	sampleRate int

	lastStartTime atomic.Int64
	lastEndTime   atomic.Int64
	busyMicros    atomic.Int64
	idleMicros    atomic.Int64

	samplesProcessed atomic.Uint64
	xruns            atomic.Uint64
}

func newStatistics(sampleRate int) *statistics {
	return &statistics{sampleRate: sampleRate}
}

func (s *statistics) beginCycle() {
	now := time.Now().UnixMicro()

	if last := s.lastEndTime.Load(); last > 0 {
		s.idleMicros.Add(now - last)
	}

	s.lastStartTime.Store(now)
}

func (s *statistics) endCycle(frames int) {
	now := time.Now().UnixMicro()

	s.busyMicros.Add(now - s.lastStartTime.Load())
	s.lastEndTime.Store(now)
	s.samplesProcessed.Add(uint64(frames))
}

func (s *statistics) xrun() {
	s.xruns.Add(1)
}

// load returns the share of wall time spent processing since the previous
// call, in percent.
func (s *statistics) load() (int, bool) {
	busy := float64(s.busyMicros.Swap(0))
	idle := float64(s.idleMicros.Swap(0))

	pct := busy / (busy + idle) * 100.0
	if math.IsNaN(pct) {
		return 0, false
	}

	util.TraceLog(fmt.Sprintf("audio busy time: %0.0f us, idle time: %0.0f us, load %0.3f%%", busy, idle, pct))

	return int(math.Round(pct)), true
}

func (s *statistics) duration() float64 {
	if s.sampleRate <= 0 {
		return 0
	}

	return float64(s.samplesProcessed.Load()) / float64(s.sampleRate)
}

// processOnInterval calls process immediately and then on every interval
// until ctx is done or the reaper fires.
func processOnInterval(ctx context.Context, r *reaper.Reaper, name string, interval time.Duration, process func()) error {
	r.Register(name)
	defer r.Done(name)

	process()

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.Reaping():
			return nil
		case <-t.C:
			process()
		}
	}
}
