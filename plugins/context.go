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
package plugins

import (
	"log/slog"
	"time"
)

// DefaultMessageInterval is how often a plugin publishes its meters while an
// observer is attached.
const DefaultMessageInterval = 100 * time.Millisecond

// Context carries the engine-wide settings every plugin is built with. It is
// created once at startup and passed down explicitly.
type Context struct {
	SampleRate      int
	BlockSize       int
	MessageInterval time.Duration
	Logger          *slog.Logger
}

func (ctx Context) Log() *slog.Logger {
	if ctx.Logger == nil {
		return slog.Default()
	}

	return ctx.Logger
}

// MessageFrames is the emission interval expressed in frames, at least one.
func (ctx Context) MessageFrames() int {
	interval := ctx.MessageInterval
	if interval <= 0 {
		interval = DefaultMessageInterval
	}

	return max(1, int(float64(ctx.SampleRate)*interval.Seconds()))
}

func (ctx Context) blockSize() int {
	return max(1, ctx.BlockSize)
}
