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

type JsonStatus struct {
	MessageType string `json:"message_type"`

	Status string `json:"status"`

	Duration    float64 `json:"duration"`
	Format      string  `json:"format"`
	ErrorCount  int     `json:"error_count"`
	ProfileName string  `json:"profile_name"`

	AudioLoadPct int    `json:"audio_load_pct"`
	XrunCount    uint64 `json:"xrun_count"`
}

type JsonLog struct {
	MessageType string `json:"message_type"`

	Date    string `json:"date"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type JsonResponse struct {
	MessageType string `json:"message_type"`

	Message string `json:"message"`
}

type JsonChains struct {
	MessageType string `json:"message_type"`

	Chains []JsonChain `json:"chains"`
}

type JsonChain struct {
	Role      string       `json:"role"`
	LatencyMs float64      `json:"latency_ms"`
	Plugins   []JsonPlugin `json:"plugins"`
}

type JsonPlugin struct {
	Tag       string  `json:"tag"`
	Name      string  `json:"name"`
	Installed bool    `json:"installed"`
	Enabled   bool    `json:"enabled"`
	Bypass    bool    `json:"bypass"`
	Bound     bool    `json:"bound"`
	NodeID    uint32  `json:"node_id"`
	LatencyMs float64 `json:"latency_ms"`
}

type JsonMeters struct {
	MessageType string `json:"message_type"`

	Plugins []JsonPluginMeters `json:"plugins"`
}

type JsonPluginMeters struct {
	Tag     string                    `json:"tag"`
	Metrics map[string]JsonMeterValue `json:"metrics"`
}

type JsonMeterValue struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}
