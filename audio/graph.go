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

import "errors"

// NodeID is the graph's identifier for a node. Zero is never assigned.
type NodeID uint32

const InvalidNode NodeID = 0

var (
	ErrLinkRefused = errors.New("link refused")
	ErrNodeLimit   = errors.New("node limit reached")
	ErrUnknownNode = errors.New("unknown node")
)

type PortIndex int

const (
	InLeft PortIndex = iota
	InRight
	OutLeft
	OutRight

	portCount
)

var portNames = [portCount]string{"in_left", "in_right", "out_left", "out_right"}

// Node is a stereo processing endpoint with exactly four ports.
type Node struct {
	id    NodeID
	name  string
	ports [portCount]*Port
}

func newNode(id NodeID, name string, bufferSize int) *Node {
	node := &Node{id: id, name: name}

	for i := range node.ports {
		direction := In
		if PortIndex(i) >= OutLeft {
			direction = Out
		}

		node.ports[i] = newPort(node, direction, portNames[i], bufferSize)
	}

	return node
}

func (node *Node) ID() NodeID {
	return node.id
}

func (node *Node) Name() string {
	return node.name
}

func (node *Node) Port(index PortIndex) *Port {
	return node.ports[index]
}

func (node *Node) Ports() []*Port {
	return node.ports[:]
}

// Graph is the host audio graph a chain binds its plugins into.
type Graph interface {
	AddNode(name string) (*Node, error)
	RemoveNode(node *Node) error
	Link(out *Port, in *Port) error
	Unlink(out *Port, in *Port) error
	BufferSize() int
}
