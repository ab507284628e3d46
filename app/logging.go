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
	"log/slog"
	"os"

	"fox-fx/display"
	"fox-fx/shared"
)

func ConfigureTextLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func ConfigureJsonLogger(level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(shared.Stderr(), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// ConfigureUiLogger routes slog and anything native libraries print on
// stdout/stderr into the display.
func ConfigureUiLogger(ui display.UI, level slog.Level) {
	shared.HijackLogging()

	handler := shared.NewUiLogHandler(ui, level, func(message string) {
		ui.IncrementErrorCount()
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	shared.EnableSlogLogging()
}
