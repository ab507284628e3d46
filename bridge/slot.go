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

import (
	"math"
	"sync/atomic"
)

// slot holds the latest value of one (plugin, metric) pair. It is a seqlock
// with a single writer: the sequence is odd while a write is in progress and
// advances by two for every completed write.
type slot struct {
	seq   atomic.Uint64
	left  atomic.Uint64
	right atomic.Uint64
}

func (s *slot) store(left, right float64) {
	s.seq.Add(1)
	s.left.Store(math.Float64bits(left))
	s.right.Store(math.Float64bits(right))
	s.seq.Add(1)
}

// load returns the current pair and the sequence it was written under. ok is
// false when the read raced a write; the caller retries on a later tick.
func (s *slot) load() (left, right float64, seq uint64, ok bool) {
	before := s.seq.Load()
	if before&1 == 1 {
		return 0, 0, 0, false
	}

	l := s.left.Load()
	r := s.right.Load()

	if s.seq.Load() != before {
		return 0, 0, 0, false
	}

	return math.Float64frombits(l), math.Float64frombits(r), before, true
}
