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

const loadRetries = 4

// Mailbox is the set of metric slots owned by one plugin. Post is called from
// the audio thread only, everything else from the control thread.
type Mailbox struct {
	tag   string
	gate  Gate
	slots [metricCount]slot

	// last sequence delivered per metric, touched by the drain loop only
	seen [metricCount]uint64
}

// NewMailbox creates a mailbox that is not registered with any bridge.
func NewMailbox(tag string) *Mailbox {
	return &Mailbox{tag: tag}
}

func (m *Mailbox) Tag() string {
	return m.tag
}

func (m *Mailbox) Gate() *Gate {
	return &m.gate
}

// Post overwrites the current value of a metric. It never blocks and is a
// no-op while the gate is closed.
func (m *Mailbox) Post(metric Metric, left, right float64) {
	if metric >= metricCount || !m.gate.IsOpen() {
		return
	}

	m.slots[metric].store(left, right)
}

// Latest returns the newest value of a metric whether or not it was
// delivered already.
func (m *Mailbox) Latest(metric Metric) (Event, bool) {
	if metric >= metricCount {
		return Event{}, false
	}

	for range loadRetries {
		left, right, seq, ok := m.slots[metric].load()
		if !ok {
			continue
		}

		if seq == 0 {
			return Event{}, false
		}

		return Event{Plugin: m.tag, Metric: metric, Left: left, Right: right}, true
	}

	return Event{}, false
}

// skip marks whatever is in the slots as delivered.
func (m *Mailbox) skip() {
	for i := range m.slots {
		for range loadRetries {
			_, _, seq, ok := m.slots[i].load()
			if ok {
				m.seen[i] = seq
				break
			}
		}
	}
}

// pending appends every metric that advanced since the previous call.
func (m *Mailbox) pending(events []Event) []Event {
	for i := range m.slots {
		for range loadRetries {
			left, right, seq, ok := m.slots[i].load()
			if !ok {
				continue
			}

			if seq != m.seen[i] {
				m.seen[i] = seq
				events = append(events, Event{Plugin: m.tag, Metric: Metric(i), Left: left, Right: right})
			}

			break
		}
	}

	return events
}
