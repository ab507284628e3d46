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
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogSink receives one line captured from a hijacked stream.
type LogSink func(level slog.Level, message string)

var (
	stockStderr *os.File
	stockStdout *os.File
	logSinks    = make([]LogSink, 0)
	sinksMu     sync.Mutex
)

// HijackLogging swaps the process stdout and stderr for pipes so that
// whatever native libraries (libjack, the audio device) print ends up in the
// log sinks instead of on top of the display. Calling it twice is a no-op.
func HijackLogging() {
	if stockStdout != nil {
		return
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	stockStdout = os.Stdout
	stockStderr = os.Stderr

	go captureLines(stdoutR, slog.LevelInfo)
	go captureLines(stderrR, slog.LevelWarn)

	os.Stdout = stdoutW
	os.Stderr = stderrW
}

// Stdout is the process stdout as it was before HijackLogging.
func Stdout() *os.File {
	if stockStdout != nil {
		return stockStdout
	}

	return os.Stdout
}

// Stderr is the process stderr as it was before HijackLogging.
func Stderr() *os.File {
	if stockStderr != nil {
		return stockStderr
	}

	return os.Stderr
}

// EnableSlogLogging forwards captured lines to the default slog logger.
func EnableSlogLogging() {
	AddLogSink(func(level slog.Level, message string) {
		slog.Log(context.Background(), level, message)
	})
}

func AddLogSink(sink LogSink) {
	sinksMu.Lock()
	defer sinksMu.Unlock()

	logSinks = append(logSinks, sink)
}

func captureLines(r io.Reader, level slog.Level) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		lineLevel := classifyLine(line, level)

		sinksMu.Lock()
		sinks := logSinks
		sinksMu.Unlock()

		for _, sink := range sinks {
			sink(lineLevel, line)
		}
	}
}

// classifyLine raises lines that look like failures to error level.
func classifyLine(line string, level slog.Level) slog.Level {
	lower := strings.ToLower(line)

	for _, marker := range []string{"error", "cannot", "failed"} {
		if strings.Contains(lower, marker) {
			return slog.LevelError
		}
	}

	return level
}
