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
package bridge

import "sync/atomic"

// Gate is the per-plugin notification flag. Producers test it before doing
// any metering work, so a closed gate costs two atomic loads per block.
//
// The bridge opens and closes the gate as observers come and go. A mute is
// set by the user and keeps the gate shut through those changes.
type Gate struct {
	open  atomic.Bool
	muted atomic.Bool
}

func (g *Gate) Open() {
	g.open.Store(true)
}

func (g *Gate) Close() {
	g.open.Store(false)
}

func (g *Gate) Set(open bool) {
	g.open.Store(open)
}

func (g *Gate) Mute(muted bool) {
	g.muted.Store(muted)
}

func (g *Gate) Muted() bool {
	return g.muted.Load()
}

func (g *Gate) IsOpen() bool {
	return g.open.Load() && !g.muted.Load()
}
