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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"fox-fx/audio"
	"fox-fx/display"
	"fox-fx/model"
	"fox-fx/reaper"
	"fox-fx/util"
)

type RenderOptions struct {
	InputPath  string
	OutputPath string
	Role       string
	BitDepth   int

	// Compensate drops the chain's latency from the head of the output
	// and flushes the tail, so output lines up with input.
	Compensate bool

	// Report receives the final summary, nothing is printed when nil.
	Report io.Writer
}

// RenderResult describes a finished render.
type RenderResult struct {
	Frames         int
	SampleRate     int
	LatencySeconds float64
	Chain          model.UiChain
}

// RunRender processes a WAV file through one chain of the profile as fast
// as possible and writes the result to another WAV file.
func RunRender(ctx context.Context, config *model.Config, profile *model.Profile, profileName string, opts RenderOptions) (*RenderResult, error) {
	if opts.Role == "" {
		opts.Role = model.RoleOutput
	}

	if opts.BitDepth == 0 {
		opts.BitDepth = 24
	}

	blockSize := profile.AudioServer.FramesPerPeriod

	in, err := audio.OpenInputFile(opts.InputPath, blockSize)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	report := opts.Report
	if report == nil {
		report = io.Discard
	}

	ui := display.New(config.OutputType, report, config.StatusInterval())

	engine, err := NewEngine(EngineOptions{
		Config:      config,
		Profile:     profile,
		ProfileName: profileName,
		SampleRate:  in.SampleRate,
		BlockSize:   blockSize,
		UI:          ui,
		Reaper:      reaper.New(),
		Roles:       []string{opts.Role},
	})
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	m, ok := engine.Manager(opts.Role)
	if !ok {
		return nil, fmt.Errorf("profile has no '%s' chain", opts.Role)
	}

	out, err := audio.CreateOutputFile(opts.OutputPath, in.SampleRate, opts.BitDepth)
	if err != nil {
		return nil, err
	}

	inL := make([]float32, blockSize)
	inR := make([]float32, blockSize)
	outL := make([]float32, blockSize)
	outR := make([]float32, blockSize)

	written := 0
	read := 0
	skip := -1
	flush := 0

	for {
		if err := ctx.Err(); err != nil {
			out.Close()
			return nil, err
		}

		n, err := in.ReadStereo(inL, inR)
		if errors.Is(err, io.EOF) {
			if flush <= 0 {
				break
			}

			// feed silence until the delayed tail is out
			n = min(flush, blockSize)
			clear(inL[:n])
			clear(inR[:n])
			flush -= n
		} else if err != nil {
			out.Close()
			return nil, fmt.Errorf("failed to read %s: %w", opts.InputPath, err)
		} else {
			read += n
		}

		m.Process(inL[:n], inR[:n], outL[:n], outR[:n])

		// parameters land with the first block, latency is known after it
		if skip < 0 {
			skip = 0
			if opts.Compensate {
				skip = int(math.Round(m.Latency() * float64(in.SampleRate)))
				flush = skip
			}
		}

		start := min(skip, n)
		skip -= start

		if err := out.WriteStereo(outL[start:n], outR[start:n]); err != nil {
			out.Close()
			return nil, fmt.Errorf("failed to write %s: %w", opts.OutputPath, err)
		}

		written += n - start
	}

	if err := out.Close(); err != nil {
		return nil, err
	}

	chains := engine.uiChains()

	result := &RenderResult{
		Frames:         written,
		SampleRate:     in.SampleRate,
		LatencySeconds: m.Latency(),
		Chain:          chains[0],
	}

	slog.Info(fmt.Sprintf("Rendered %s of audio (%d frames read, %d written) to %s",
		util.FormatDuration(float64(written)/float64(in.SampleRate)), read, written, opts.OutputPath))

	ui.SetDuration(float64(read) / float64(in.SampleRate))
	ui.SetTransportStatus(display.StatusShuttingDown)
	ui.Refresh()

	return result, nil
}
