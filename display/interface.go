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
	"io"
	"log/slog"
	"time"

	"fox-fx/bridge"
	"fox-fx/model"
)

type Status int

const (
	StatusStarting Status = iota
	StatusRunning
	StatusReloading
	StatusShuttingDown
)

var statusNames = map[Status]string{
	StatusStarting:     "starting",
	StatusRunning:      "running",
	StatusReloading:    "reloading",
	StatusShuttingDown: "shutting down",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	return "unknown"
}

// UI is a display that receives engine status, plugin metrics and log
// records. It is a bridge.Observer so it can be subscribed directly.
type UI interface {
	bridge.Observer

	Initialize()
	Start()
	Shutdown()
	IsShutdown() bool
	WaitForShutdown()
	Refresh()
	SetTransportStatus(status Status)
	SetDuration(duration float64)
	SetAudioFormat(format string)
	SetProfileName(value string)
	IncrementErrorCount()
	SetAudioLoad(percent int)
	SetXrunCount(count uint64)
	SetChains(chains []model.UiChain)
	WriteLevelLog(level slog.Level, message string)
	WriteResponse(message string)
}

// New returns the display for an output type, refreshing every interval.
func New(outputType model.OutputType, output io.Writer, interval time.Duration) UI {
	if outputType == model.OutputJSON {
		return NewJsonUI(output, interval)
	}

	return NewTextUI(output, interval)
}
