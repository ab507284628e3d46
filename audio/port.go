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

type PortDirection int8

const (
	In PortDirection = iota
	Out
)

func (d PortDirection) String() string {
	if d == In {
		return "in"
	}

	return "out"
}

// Port is one mono channel of a node. It points back at its node for routing
// context but the node owns it.
type Port struct {
	portDirection PortDirection
	myName        string
	node          *Node
	buffer        []float32
}

func newPort(node *Node, direction PortDirection, myName string, bufferSize int) *Port {
	return &Port{
		portDirection: direction,
		myName:        myName,
		node:          node,
		buffer:        make([]float32, bufferSize),
	}
}

// Name returns the graph-wide name, "<node>:<port>".
func (port *Port) Name() string {
	return port.node.name + ":" + port.myName
}

func (port *Port) ShortName() string {
	return port.myName
}

func (port *Port) Direction() PortDirection {
	return port.portDirection
}

func (port *Port) Node() *Node {
	return port.node
}

// Buffer returns the port's sample buffer. Its length is the graph buffer
// size and it never changes for the lifetime of the port.
func (port *Port) Buffer() []float32 {
	return port.buffer
}
