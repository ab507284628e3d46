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
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"fox-fx/bridge"
	"fox-fx/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChains() []model.UiChain {
	return []model.UiChain{
		{
			Role:      "output",
			LatencyMs: 3,
			Plugins: []model.UiPlugin{
				{Tag: "output:limiter", Name: "limiter", Installed: true, Enabled: true, Bound: true, NodeID: 3, LatencyMs: 3},
				{Tag: "output:rnnoise", Name: "rnnoise"},
			},
		},
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	messages := make([]map[string]any, 0)
	scanner := bufio.NewScanner(buf)

	for scanner.Scan() {
		message := make(map[string]any)
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &message), scanner.Text())
		messages = append(messages, message)
	}

	return messages
}

func TestJsonRefresh(t *testing.T) {
	buf := &bytes.Buffer{}
	ui := NewJsonUI(buf, time.Second)

	ui.SetTransportStatus(StatusRunning)
	ui.SetProfileName("studio")
	ui.SetXrunCount(2)
	ui.SetChains(testChains())
	ui.OnEvent(bridge.Event{Plugin: "output:limiter", Metric: bridge.Reduction, Left: -3, Right: -3})

	ui.Refresh()

	messages := decodeLines(t, buf)
	require.Len(t, messages, 3)

	assert.Equal(t, "status", messages[0]["message_type"])
	assert.Equal(t, "running", messages[0]["status"])
	assert.Equal(t, "studio", messages[0]["profile_name"])
	assert.EqualValues(t, 2, messages[0]["xrun_count"])

	assert.Equal(t, "chains", messages[1]["message_type"])
	chains := messages[1]["chains"].([]any)
	require.Len(t, chains, 1)
	plugins := chains[0].(map[string]any)["plugins"].([]any)
	require.Len(t, plugins, 2)
	assert.Equal(t, "output:limiter", plugins[0].(map[string]any)["tag"])
	assert.Equal(t, false, plugins[1].(map[string]any)["installed"])

	assert.Equal(t, "meters", messages[2]["message_type"])
	meters := messages[2]["plugins"].([]any)
	require.Len(t, meters, 1)
	reduction := meters[0].(map[string]any)["metrics"].(map[string]any)["reduction"].(map[string]any)
	assert.EqualValues(t, -3, reduction["left"])
}

func TestJsonLogAndResponse(t *testing.T) {
	buf := &bytes.Buffer{}
	ui := NewJsonUI(buf, time.Second)

	ui.WriteLevelLog(slog.LevelWarn, "careful")
	ui.WriteResponse("ok")

	messages := decodeLines(t, buf)
	require.Len(t, messages, 2)

	assert.Equal(t, "log", messages[0]["message_type"])
	assert.Equal(t, "WARN", messages[0]["level"])
	assert.Equal(t, "careful", messages[0]["message"])
	assert.Equal(t, "response", messages[1]["message_type"])
	assert.Equal(t, "ok", messages[1]["message"])
}

func TestSetChainsDropsStaleMeters(t *testing.T) {
	ui := NewJsonUI(&bytes.Buffer{}, time.Second)

	ui.SetChains(testChains())
	ui.OnEvent(bridge.Event{Plugin: "output:limiter", Metric: bridge.InputLevel})
	ui.OnEvent(bridge.Event{Plugin: "output:gate", Metric: bridge.InputLevel})

	ui.SetChains(testChains())

	assert.Equal(t, []string{"output:limiter"}, ui.meterTags())
}

func TestTextRefresh(t *testing.T) {
	buf := &bytes.Buffer{}
	ui := NewTextUI(buf, time.Second)

	ui.SetTransportStatus(StatusRunning)
	ui.SetChains(testChains())
	ui.OnEvent(bridge.Event{Plugin: "output:limiter", Metric: bridge.Reduction, Left: -3, Right: -2})

	ui.Refresh()

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "running |"))
	assert.Contains(t, out, "limiter -> rnnoise (not installed)")
	assert.Contains(t, out, "reduction -3.0/-2.0")
}

func TestShutdownStopsLoop(t *testing.T) {
	buf := &bytes.Buffer{}
	ui := NewTextUI(buf, 5*time.Millisecond)

	ui.Start()
	ui.Shutdown()

	assert.True(t, ui.IsShutdown())

	// a second shutdown does not block
	ui.Shutdown()
}

func TestShutdownWithoutStart(t *testing.T) {
	ui := NewJsonUI(&bytes.Buffer{}, time.Second)

	ui.Shutdown()
	assert.True(t, ui.IsShutdown())
}

func TestNewPicksOutputType(t *testing.T) {
	assert.IsType(t, &JsonUI{}, New(model.OutputJSON, &bytes.Buffer{}, time.Second))
	assert.IsType(t, &TextUI{}, New(model.OutputText, &bytes.Buffer{}, time.Second))
}
