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
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"fox-fx/util"
)

// TextUI prints a compact human readable summary on every refresh.
type TextUI struct {
	*state
}

func NewTextUI(output io.Writer, interval time.Duration) *TextUI {
	return &TextUI{state: newState(output, interval)}
}

func (t *TextUI) Initialize() {
	// nothing to do here
}

func (t *TextUI) Start() {
	t.start(t.Refresh)
}

func (t *TextUI) Refresh() {
	t.write(t.render())
}

func (t *TextUI) WriteLevelLog(level slog.Level, message string) {
	dtm := time.Now().Format("2006-01-02 15:04:05")
	t.write(fmt.Sprintf("[%s] [%s] %s", dtm, level.String(), message))
}

func (t *TextUI) WriteResponse(message string) {
	t.write("> " + message)
}

func (t *TextUI) render() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s | %s | %s | %s | load %d%% | xruns %d | errors %d\n",
		t.statusTransport.String(),
		t.statusProfileName,
		util.FormatDuration(t.statusDuration),
		t.statusFormat,
		t.metricAudioLoadPct,
		t.metricXruns,
		t.statusErrorCount,
	)

	for _, chain := range t.chains {
		names := make([]string, 0, len(chain.Plugins))

		for _, plugin := range chain.Plugins {
			flags := make([]string, 0, 2)

			if !plugin.Installed {
				flags = append(flags, "not installed")
			} else if !plugin.Enabled {
				flags = append(flags, "disabled")
			}

			if plugin.Bypass {
				flags = append(flags, "bypass")
			}

			if len(flags) == 0 {
				names = append(names, plugin.Name)
			} else {
				names = append(names, fmt.Sprintf("%s (%s)", plugin.Name, strings.Join(flags, ", ")))
			}
		}

		if len(names) == 0 {
			names = append(names, "passthrough")
		}

		fmt.Fprintf(&sb, "  %-6s %6.2f ms  %s\n", chain.Role, chain.LatencyMs, strings.Join(names, " -> "))
	}

	for _, tag := range t.meterTags() {
		metrics := t.meters[tag]
		order := slices.Sorted(maps.Keys(metrics))

		values := make([]string, 0, len(order))
		for _, metric := range order {
			event := metrics[metric]
			values = append(values, fmt.Sprintf("%s %.1f/%.1f", metric.String(), event.Left, event.Right))
		}

		fmt.Fprintf(&sb, "  %-24s %s\n", tag, strings.Join(values, "  "))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}
