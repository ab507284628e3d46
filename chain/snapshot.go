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
package chain

import (
	"fox-fx/audio"
	"fox-fx/plugins"
)

type stage struct {
	plugin *plugins.Plugin

	upL, upR   []float32
	inL, inR   []float32
	outL, outR []float32
}

// snapshot is an immutable, fully wired view of a chain. The audio thread
// only ever reads the snapshot it loaded at the start of a block.
type snapshot struct {
	bufferSize int

	srcL, srcR   []float32
	stages       []stage
	tailL, tailR []float32
	sinkL, sinkR []float32
}

func newSnapshot(b *binding, bound []*plugins.Plugin) *snapshot {
	s := &snapshot{
		bufferSize: b.graph.BufferSize(),
		srcL:       b.source.Port(audio.OutLeft).Buffer(),
		srcR:       b.source.Port(audio.OutRight).Buffer(),
		stages:     make([]stage, 0, len(bound)),
		sinkL:      b.sink.Port(audio.InLeft).Buffer(),
		sinkR:      b.sink.Port(audio.InRight).Buffer(),
	}

	upL, upR := s.srcL, s.srcR

	for _, p := range bound {
		node := p.Node()
		st := stage{
			plugin: p,
			upL:    upL,
			upR:    upR,
			inL:    node.Port(audio.InLeft).Buffer(),
			inR:    node.Port(audio.InRight).Buffer(),
			outL:   node.Port(audio.OutLeft).Buffer(),
			outR:   node.Port(audio.OutRight).Buffer(),
		}

		s.stages = append(s.stages, st)
		upL, upR = st.outL, st.outR
	}

	s.tailL, s.tailR = upL, upR

	return s
}

// process moves one chunk of at most bufferSize frames through the chain.
func (s *snapshot) process(inL, inR, outL, outR []float32) {
	n := len(inL)

	copy(s.srcL[:n], inL)
	copy(s.srcR[:n], inR)

	for i := range s.stages {
		st := &s.stages[i]

		copy(st.inL[:n], st.upL[:n])
		copy(st.inR[:n], st.upR[:n])

		st.plugin.Process(st.inL[:n], st.inR[:n], st.outL[:n], st.outR[:n])
	}

	copy(s.sinkL[:n], s.tailL[:n])
	copy(s.sinkR[:n], s.tailR[:n])

	copy(outL, s.sinkL[:n])
	copy(outR, s.sinkR[:n])
}
