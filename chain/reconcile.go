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

import "slices"

// Addition is a name that enters the chain at Position of the new order.
type Addition struct {
	Name     string
	Position int
}

// Move is a retained name whose place among the retained names changed.
// From and To index the retained names only, so removals and additions
// around a plugin do not count as moving it.
type Move struct {
	Name string
	From int
	To   int
}

// Diff describes how to turn one chain order into another.
type Diff struct {
	Remove  []string
	Add     []Addition
	Move    []Move
	Order   []string
	Ignored []string
}

// Empty reports whether applying the diff would leave the chain unchanged.
func (d Diff) Empty() bool {
	return len(d.Remove) == 0 && len(d.Add) == 0 && len(d.Move) == 0
}

// Reconcile computes the diff between the current chain order and a
// requested one. Names rejected by known and repeated names are dropped
// from the new order and reported as Ignored. A nil known accepts every
// name.
func Reconcile(current []string, requested []string, known func(string) bool) Diff {
	diff := Diff{
		Remove:  make([]string, 0),
		Add:     make([]Addition, 0),
		Move:    make([]Move, 0),
		Order:   make([]string, 0, len(requested)),
		Ignored: make([]string, 0),
	}

	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		if seen[name] || (known != nil && !known(name)) {
			diff.Ignored = append(diff.Ignored, name)
			continue
		}

		seen[name] = true
		diff.Order = append(diff.Order, name)
	}

	retainedBefore := make([]string, 0, len(current))
	for _, name := range current {
		if seen[name] {
			retainedBefore = append(retainedBefore, name)
		} else {
			diff.Remove = append(diff.Remove, name)
		}
	}

	retainedAfter := make([]string, 0, len(diff.Order))
	for position, name := range diff.Order {
		if slices.Contains(current, name) {
			retainedAfter = append(retainedAfter, name)
		} else {
			diff.Add = append(diff.Add, Addition{Name: name, Position: position})
		}
	}

	for to, name := range retainedAfter {
		from := slices.Index(retainedBefore, name)
		if from != to {
			diff.Move = append(diff.Move, Move{Name: name, From: from, To: to})
		}
	}

	return diff
}
