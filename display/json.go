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
	"encoding/json"
	"io"
	"log/slog"
	"time"
)

// JsonUI prints one JSON object per line: status, chains and meters on
// every refresh, plus log records and command responses as they happen.
type JsonUI struct {
	*state
}

func NewJsonUI(output io.Writer, interval time.Duration) *JsonUI {
	return &JsonUI{state: newState(output, interval)}
}

func (j *JsonUI) Initialize() {
	// nothing to do here
}

func (j *JsonUI) Start() {
	j.start(j.Refresh)
}

func (j *JsonUI) Refresh() {
	status, chains, meters := j.snapshot()

	j.printJson(status)
	j.printJson(chains)
	j.printJson(meters)
}

func (j *JsonUI) WriteLevelLog(level slog.Level, message string) {
	logObj := JsonLog{
		MessageType: "log",

		Date:    time.Now().Format(time.RFC3339),
		Level:   level.String(),
		Message: message,
	}

	j.printJson(logObj)
}

func (j *JsonUI) WriteResponse(message string) {
	j.printJson(JsonResponse{
		MessageType: "response",
		Message:     message,
	})
}

//
// private functions
//

func (j *JsonUI) printJson(v any) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		// logging would recurse back into this display
		return
	}

	j.write(string(jsonBytes))
}

func (j *JsonUI) snapshot() (*JsonStatus, *JsonChains, *JsonMeters) {
	j.mu.Lock()
	defer j.mu.Unlock()

	status := &JsonStatus{
		MessageType: "status",

		Status: j.statusTransport.String(),

		Duration:    j.statusDuration,
		Format:      j.statusFormat,
		ErrorCount:  j.statusErrorCount,
		ProfileName: j.statusProfileName,

		AudioLoadPct: j.metricAudioLoadPct,
		XrunCount:    j.metricXruns,
	}

	chains := &JsonChains{
		MessageType: "chains",

		Chains: make([]JsonChain, len(j.chains)),
	}

	for i, chain := range j.chains {
		chains.Chains[i] = JsonChain{
			Role:      chain.Role,
			LatencyMs: chain.LatencyMs,
			Plugins:   make([]JsonPlugin, len(chain.Plugins)),
		}

		for k, plugin := range chain.Plugins {
			chains.Chains[i].Plugins[k] = JsonPlugin(plugin)
		}
	}

	meters := &JsonMeters{
		MessageType: "meters",

		Plugins: make([]JsonPluginMeters, 0, len(j.meters)),
	}

	for _, tag := range j.meterTags() {
		pluginMeters := JsonPluginMeters{
			Tag:     tag,
			Metrics: make(map[string]JsonMeterValue, len(j.meters[tag])),
		}

		for metric, event := range j.meters[tag] {
			pluginMeters.Metrics[metric.String()] = JsonMeterValue{Left: event.Left, Right: event.Right}
		}

		meters.Plugins = append(meters.Plugins, pluginMeters)
	}

	return status, chains, meters
}
