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
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"fox-fx/audio"
	"fox-fx/plugins"
)

type link struct {
	out *audio.Port
	in  *audio.Port
}

// binding keeps the graph links of one chain in step with its bound
// plugins: source -> plugin 1 -> ... -> plugin n -> sink, left to left and
// right to right.
type binding struct {
	graph  audio.Graph
	source *audio.Node
	sink   *audio.Node
	links  []link
}

func newBinding(graph audio.Graph, sourceName string, sinkName string) (*binding, error) {
	if graph.BufferSize() <= 0 {
		return nil, errors.New("graph buffer size must be positive")
	}

	source, err := graph.AddNode(sourceName)
	if err != nil {
		return nil, err
	}

	sink, err := graph.AddNode(sinkName)
	if err != nil {
		_ = graph.RemoveNode(source)
		return nil, err
	}

	return &binding{
		graph:  graph,
		source: source,
		sink:   sink,
		links:  make([]link, 0),
	}, nil
}

// bind links every installed and enabled candidate in order. A plugin whose
// link is refused is left out and the chain is linked around it; refused
// plugins are returned so the caller can mark them unavailable once the
// audio thread no longer sees them.
func (b *binding) bind(candidates []*plugins.Plugin) ([]*plugins.Plugin, map[*plugins.Plugin]error) {
	refused := make(map[*plugins.Plugin]error)

	for {
		bound := make([]*plugins.Plugin, 0, len(candidates))
		for _, p := range candidates {
			if _, skip := refused[p]; skip || !p.Installed() || !p.Enabled() || p.Node() == nil {
				continue
			}

			bound = append(bound, p)
		}

		failed, err := b.apply(b.chainLinks(bound))
		if err == nil {
			return bound, refused
		}

		culprit := b.owner(failed, bound)
		if culprit == nil {
			slog.Error(fmt.Sprintf("Failed to link %s to %s: %s", failed.out.Name(), failed.in.Name(), err.Error()))
			return bound, refused
		}

		refused[culprit] = err
	}
}

func (b *binding) chainLinks(bound []*plugins.Plugin) []link {
	want := make([]link, 0, 2*(len(bound)+1))
	prev := b.source

	for _, p := range bound {
		node := p.Node()
		want = append(want,
			link{out: prev.Port(audio.OutLeft), in: node.Port(audio.InLeft)},
			link{out: prev.Port(audio.OutRight), in: node.Port(audio.InRight)},
		)
		prev = node
	}

	return append(want,
		link{out: prev.Port(audio.OutLeft), in: b.sink.Port(audio.InLeft)},
		link{out: prev.Port(audio.OutRight), in: b.sink.Port(audio.InRight)},
	)
}

// apply unlinks what is no longer wanted, then links what is missing. It
// stops at the first refused link and returns it.
func (b *binding) apply(want []link) (link, error) {
	kept := make([]link, 0, len(want))

	for _, l := range b.links {
		if slices.Contains(want, l) {
			kept = append(kept, l)
			continue
		}

		if err := b.graph.Unlink(l.out, l.in); err != nil {
			slog.Debug(fmt.Sprintf("Unlink %s -> %s: %s", l.out.Name(), l.in.Name(), err.Error()))
		}
	}

	b.links = kept

	for _, l := range want {
		if slices.Contains(b.links, l) {
			continue
		}

		if err := b.graph.Link(l.out, l.in); err != nil {
			return l, err
		}

		b.links = append(b.links, l)
	}

	return link{}, nil
}

// owner blames the plugin on the downstream end of a refused link, or the
// upstream plugin when the link feeds the sink.
func (b *binding) owner(failed link, bound []*plugins.Plugin) *plugins.Plugin {
	node := failed.in.Node()
	if node == b.sink {
		node = failed.out.Node()
	}

	for _, p := range bound {
		if p.Node() == node {
			return p
		}
	}

	return nil
}

func (b *binding) close() {
	for _, l := range b.links {
		_ = b.graph.Unlink(l.out, l.in)
	}

	b.links = b.links[:0]

	for _, node := range []*audio.Node{b.source, b.sink} {
		if err := b.graph.RemoveNode(node); err != nil {
			slog.Debug("Remove node: " + err.Error())
		}
	}
}
