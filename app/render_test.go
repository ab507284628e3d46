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
	"bytes"
	"context"
	"io"
	"math"
	"path/filepath"
	"testing"

	"fox-fx/audio"
	"fox-fx/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const renderFrames = 1000

func writeTone(t *testing.T, path string) ([]float32, []float32) {
	t.Helper()

	left := make([]float32, renderFrames)
	right := make([]float32, renderFrames)

	for i := range left {
		left[i] = float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/48000))
		right[i] = -left[i]
	}

	out, err := audio.CreateOutputFile(path, 48000, 16)
	require.NoError(t, err)
	require.NoError(t, out.WriteStereo(left, right))
	require.NoError(t, out.Close())

	return left, right
}

func readAll(t *testing.T, path string) ([]float32, []float32) {
	t.Helper()

	in, err := audio.OpenInputFile(path, 128)
	require.NoError(t, err)
	defer in.Close()

	left := make([]float32, 0)
	right := make([]float32, 0)
	bufL := make([]float32, 128)
	bufR := make([]float32, 128)

	for {
		n, err := in.ReadStereo(bufL, bufR)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		left = append(left, bufL[:n]...)
		right = append(right, bufR[:n]...)
	}

	return left, right
}

func renderProfile(plugins ...string) *model.Profile {
	return &model.Profile{
		AudioServer: model.ProfileAudioServer{SampleRate: 48000, FramesPerPeriod: testBlockSize},
		Chains: []model.ProfileChain{
			{Role: model.RoleOutput, Plugins: plugins},
		},
	}
}

func TestRunRenderPassThrough(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.wav")

	left, right := writeTone(t, inPath)

	report := &bytes.Buffer{}

	result, err := RunRender(context.Background(), testConfig(), renderProfile("level_meter"), "test", RenderOptions{
		InputPath:  inPath,
		OutputPath: outPath,
		BitDepth:   16,
		Report:     report,
	})
	require.NoError(t, err)

	assert.Equal(t, renderFrames, result.Frames)
	assert.Equal(t, 48000, result.SampleRate)
	assert.Zero(t, result.LatencySeconds)
	assert.Equal(t, model.RoleOutput, result.Chain.Role)
	assert.Contains(t, report.String(), `"message_type":"status"`)

	gotL, gotR := readAll(t, outPath)
	require.Len(t, gotL, renderFrames)

	for i := range gotL {
		assert.InDelta(t, left[i], gotL[i], 1e-3)
		assert.InDelta(t, right[i], gotR[i], 1e-3)
	}
}

func TestRunRenderCompensatesLatency(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")

	writeTone(t, inPath)

	for _, compensate := range []bool{false, true} {
		outPath := filepath.Join(dir, "out.wav")

		result, err := RunRender(context.Background(), testConfig(), renderProfile("limiter"), "test", RenderOptions{
			InputPath:  inPath,
			OutputPath: outPath,
			BitDepth:   16,
			Compensate: compensate,
		})
		require.NoError(t, err)

		assert.InDelta(t, 0.003, result.LatencySeconds, 1e-9)
		assert.Equal(t, renderFrames, result.Frames)

		gotL, _ := readAll(t, outPath)
		assert.Len(t, gotL, renderFrames)
	}
}

func TestRunRenderMissingChain(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")

	writeTone(t, inPath)

	_, err := RunRender(context.Background(), testConfig(), renderProfile("gate"), "test", RenderOptions{
		InputPath:  inPath,
		OutputPath: filepath.Join(dir, "out.wav"),
		Role:       model.RoleInput,
	})
	assert.Error(t, err)
}

func TestRunRenderMissingInput(t *testing.T) {
	dir := t.TempDir()

	_, err := RunRender(context.Background(), testConfig(), renderProfile(), "test", RenderOptions{
		InputPath:  filepath.Join(dir, "missing.wav"),
		OutputPath: filepath.Join(dir, "out.wav"),
	})
	assert.Error(t, err)
}

func TestSineSource(t *testing.T) {
	source := newSineSource(48000, &model.SimulationOptions{
		Frequency:    1000,
		Amplitude:    0.5,
		StereoOffset: math.Pi,
		FreezeMeters: true,
	})

	left := make([]float32, 48)
	right := make([]float32, 48)

	n, err := source.ReadStereo(left, right)
	require.NoError(t, err)
	require.Equal(t, 48, n)

	peak := float32(0)
	for i := range left {
		assert.InDelta(t, -left[i], right[i], 1e-6)
		peak = max(peak, left[i])
	}

	assert.InDelta(t, 0.5, peak, 1e-3)
}
