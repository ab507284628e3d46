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
package shared

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLine(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, classifyLine("jackd 1.9.22", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, classifyLine("xrun of 2 ms", slog.LevelWarn))
	assert.Equal(t, slog.LevelError, classifyLine("Cannot connect to server socket", slog.LevelInfo))
	assert.Equal(t, slog.LevelError, classifyLine("ALSA: ERROR opening device", slog.LevelWarn))
}

func TestCaptureLines(t *testing.T) {
	type entry struct {
		level   slog.Level
		message string
	}

	got := make([]entry, 0)
	AddLogSink(func(level slog.Level, message string) {
		got = append(got, entry{level, message})
	})

	r, w := io.Pipe()
	done := make(chan struct{})

	go func() {
		captureLines(r, slog.LevelInfo)
		close(done)
	}()

	io.Copy(w, strings.NewReader("first line\n\n  failed to open\n"))
	w.Close()
	<-done

	assert.Equal(t, []entry{
		{slog.LevelInfo, "first line"},
		{slog.LevelError, "failed to open"},
	}, got)
}
