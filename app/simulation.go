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
	"math"
	"math/rand/v2"
	"time"

	"fox-fx/model"
)

// sineSource generates a stereo test tone. The right channel runs
// stereoOffset radians ahead of the left.
type sineSource struct {
	sampleRate   float64
	frequency    float64
	amplitude    float64
	stereoOffset float64
	modulate     bool

	phase float64
	gain  float64
}

func newSineSource(sampleRate int, options *model.SimulationOptions) *sineSource {
	return &sineSource{
		sampleRate:   float64(sampleRate),
		frequency:    options.Frequency,
		amplitude:    options.Amplitude,
		stereoOffset: options.StereoOffset,
		modulate:     !options.FreezeMeters,
		gain:         1,
	}
}

func (s *sineSource) ReadStereo(left []float32, right []float32) (int, error) {
	frames := min(len(left), len(right))

	if s.modulate {
		// drift the level so the meters have something to show
		s.gain = math.Max(0.05, math.Min(1, s.gain+(rand.Float64()-0.5)*0.2))
	}

	step := 2 * math.Pi * s.frequency / s.sampleRate
	amplitude := s.amplitude * s.gain

	for i := range frames {
		left[i] = float32(amplitude * math.Sin(s.phase))
		right[i] = float32(amplitude * math.Sin(s.phase+s.stereoOffset))

		s.phase += step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}

	return frames, nil
}

// RunSimulation drives every chain with a generated tone at the profile's
// sample rate and period, paced by the wall clock.
func RunSimulation(ctx context.Context, config *model.Config, profile *model.Profile, profileName string, input io.Reader) error {
	s := newSession(config, profile, profileName)

	sampleRate := profile.AudioServer.SampleRate
	blockSize := profile.AudioServer.FramesPerPeriod

	engine, err := s.newEngine(sampleRate, blockSize)
	if err != nil {
		return s.fail(err)
	}

	source := newSineSource(sampleRate, config.SimulationOptions)
	period := time.Duration(float64(time.Second) * float64(blockSize) / float64(sampleRate))

	managers := engine.Managers()

	s.reaper.Register("simulation")

	go func() {
		defer s.reaper.Done("simulation")

		inL := make([]float32, blockSize)
		inR := make([]float32, blockSize)
		outL := make([]float32, blockSize)
		outR := make([]float32, blockSize)

		t := time.NewTicker(period)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.reaper.Reaping():
				return
			case <-t.C:
			}

			engine.stats.beginCycle()

			source.ReadStereo(inL, inR)
			for _, m := range managers {
				m.Process(inL, inR, outL, outR)
			}

			engine.stats.endCycle(blockSize)
		}
	}()

	slog.Info(fmt.Sprintf("Simulating %g Hz tone at %d Hz, %d frames per period", source.frequency, sampleRate, blockSize))

	return s.run(ctx, engine, input)
}
