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

import "sync/atomic"

const paramQueueSize = 64

type paramChange struct {
	key   string
	value float64
}

// paramQueue is a single-producer single-consumer ring. The control thread
// pushes, the audio thread pops at the start of each block.
type paramQueue struct {
	buf  [paramQueueSize]paramChange
	head atomic.Uint32
	tail atomic.Uint32
}

func (q *paramQueue) push(change paramChange) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == paramQueueSize {
		return false
	}

	q.buf[tail%paramQueueSize] = change
	q.tail.Store(tail + 1)

	return true
}

func (q *paramQueue) pop() (paramChange, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return paramChange{}, false
	}

	change := q.buf[head%paramQueueSize]
	q.head.Store(head + 1)

	return change, true
}

// reset drops queued changes. Only call while no audio thread can pop.
func (q *paramQueue) reset() {
	q.head.Store(q.tail.Load())
}
