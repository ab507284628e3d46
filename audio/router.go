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
package audio

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Link is a single port-to-port connection as reported by Router.Links.
type Link struct {
	From string
	To   string
}

// Router is the in-process audio graph. It hands out node ids and port
// buffers and validates links. Samples are moved across links by the chain
// that owns the nodes; the router itself is never touched by the audio thread.
type Router struct {
	mu         sync.Mutex
	bufferSize int
	maxNodes   int
	lastID     NodeID
	nodes      map[NodeID]*Node

	// keyed by the input port, an input has at most one upstream
	links map[*Port]*Port
}

// NewRouter creates a graph whose ports hold bufferSize samples. maxNodes
// caps the number of live nodes, zero means no limit.
func NewRouter(bufferSize int, maxNodes int) *Router {
	return &Router{
		bufferSize: bufferSize,
		maxNodes:   maxNodes,
		nodes:      make(map[NodeID]*Node),
		links:      make(map[*Port]*Port),
	}
}

func (r *Router) BufferSize() int {
	return r.bufferSize
}

func (r *Router) AddNode(name string) (*Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxNodes > 0 && len(r.nodes) >= r.maxNodes {
		return nil, fmt.Errorf("%w: %d nodes registered, cannot add %s", ErrNodeLimit, len(r.nodes), name)
	}

	r.lastID++
	node := newNode(r.lastID, name, r.bufferSize)
	r.nodes[node.id] = node

	slog.Debug(fmt.Sprintf("router: added node %s (id %d)", name, node.id))

	return node, nil
}

// RemoveNode unregisters a node and drops every link touching its ports.
func (r *Router) RemoveNode(node *Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if node == nil || r.nodes[node.id] != node {
		return ErrUnknownNode
	}

	for in, out := range r.links {
		if in.node == node || out.node == node {
			delete(r.links, in)
		}
	}

	delete(r.nodes, node.id)

	slog.Debug(fmt.Sprintf("router: removed node %s (id %d)", node.name, node.id))

	return nil
}

func (r *Router) Link(out *Port, in *Port) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateLocked(out, in); err != nil {
		return err
	}

	if existing, ok := r.links[in]; ok {
		if existing == out {
			return nil
		}

		return fmt.Errorf("%w: %s already fed by %s", ErrLinkRefused, in.Name(), existing.Name())
	}

	r.links[in] = out

	return nil
}

func (r *Router) Unlink(out *Port, in *Port) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.links[in]; ok && existing == out {
		delete(r.links, in)
	}

	return nil
}

// Upstream returns the port feeding in, if any.
func (r *Router) Upstream(in *Port) (*Port, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, ok := r.links[in]
	return out, ok
}

func (r *Router) Node(id NodeID) (*Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[id]
	return node, ok
}

func (r *Router) NodeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.nodes)
}

// Links returns every connection sorted by source then destination name.
func (r *Router) Links() []Link {
	r.mu.Lock()
	defer r.mu.Unlock()

	links := make([]Link, 0, len(r.links))
	for in, out := range r.links {
		links = append(links, Link{From: out.Name(), To: in.Name()})
	}

	slices.SortFunc(links, func(a, b Link) int {
		if c := strings.Compare(a.From, b.From); c != 0 {
			return c
		}
		return strings.Compare(a.To, b.To)
	})

	return links
}

func (r *Router) validateLocked(out *Port, in *Port) error {
	if out == nil || in == nil {
		return fmt.Errorf("%w: nil port", ErrLinkRefused)
	}

	if out.portDirection != Out || in.portDirection != In {
		return fmt.Errorf("%w: %s -> %s has the wrong direction", ErrLinkRefused, out.Name(), in.Name())
	}

	if r.nodes[out.node.id] != out.node {
		return fmt.Errorf("%w: %s", ErrUnknownNode, out.node.name)
	}

	if r.nodes[in.node.id] != in.node {
		return fmt.Errorf("%w: %s", ErrUnknownNode, in.node.name)
	}

	if out.node == in.node {
		return fmt.Errorf("%w: %s cannot feed itself", ErrLinkRefused, out.node.name)
	}

	return nil
}
