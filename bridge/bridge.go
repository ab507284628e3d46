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
	"slices"
	"sync"
)

// AllPlugins subscribes an observer to every registered plugin.
const AllPlugins = "*"

type Event struct {
	Plugin string
	Metric Metric
	Left   float64
	Right  float64
}

// Value returns the larger channel, which is the only channel for mono metrics.
func (e Event) Value() float64 {
	return max(e.Left, e.Right)
}

type Observer interface {
	OnEvent(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) {
	f(e)
}

type subscription struct {
	id       uint64
	tag      string
	observer Observer
}

// Bridge moves diagnostic values from plugin mailboxes to observers. All
// methods run on control goroutines; the audio thread only sees Mailbox.Post.
type Bridge struct {
	mu            sync.Mutex
	mailboxes     map[string]*Mailbox
	subscriptions []subscription
	nextID        uint64

	drainMu sync.Mutex
	events  []Event
}

func New() *Bridge {
	return &Bridge{
		mailboxes:     make(map[string]*Mailbox),
		subscriptions: make([]subscription, 0),
		events:        make([]Event, 0, 64),
	}
}

// Register returns the mailbox for a plugin tag, creating it on first use.
// The gate opens immediately when an observer already covers the tag.
func (b *Bridge) Register(tag string) *Mailbox {
	b.mu.Lock()
	defer b.mu.Unlock()

	if mailbox, ok := b.mailboxes[tag]; ok {
		return mailbox
	}

	mailbox := NewMailbox(tag)
	mailbox.gate.Set(b.observedLocked(tag))
	b.mailboxes[tag] = mailbox

	return mailbox
}

func (b *Bridge) Unregister(tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if mailbox, ok := b.mailboxes[tag]; ok {
		mailbox.gate.Close()
		delete(b.mailboxes, tag)
	}
}

func (b *Bridge) Mailbox(tag string) (*Mailbox, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	mailbox, ok := b.mailboxes[tag]
	return mailbox, ok
}

// Subscribe attaches an observer to a plugin tag, or to every plugin with
// AllPlugins, and opens the matching gates. The returned func detaches it
// and closes gates that no longer have an observer.
func (b *Bridge) Subscribe(tag string, observer Observer) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	b.subscriptions = append(b.subscriptions, subscription{id: id, tag: tag, observer: observer})
	b.refreshGatesLocked()

	var once sync.Once

	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			b.subscriptions = slices.DeleteFunc(b.subscriptions, func(s subscription) bool {
				return s.id == id
			})
			b.refreshGatesLocked()
		})
	}
}

// Drain delivers every metric that changed since the last drain and returns
// the number of events dispatched. Mailboxes whose gate is closed deliver
// nothing. Observers run on the calling goroutine.
func (b *Bridge) Drain() int {
	b.drainMu.Lock()
	defer b.drainMu.Unlock()

	b.mu.Lock()
	mailboxes := make([]*Mailbox, 0, len(b.mailboxes))
	for _, mailbox := range b.mailboxes {
		mailboxes = append(mailboxes, mailbox)
	}
	subscriptions := slices.Clone(b.subscriptions)
	b.mu.Unlock()

	slices.SortFunc(mailboxes, func(a, c *Mailbox) int {
		switch {
		case a.tag < c.tag:
			return -1
		case a.tag > c.tag:
			return 1
		}
		return 0
	})

	events := b.events[:0]
	for _, mailbox := range mailboxes {
		// values posted before the gate closed are dropped, not delivered late
		if !mailbox.gate.IsOpen() {
			mailbox.skip()
			continue
		}

		events = mailbox.pending(events)
	}
	b.events = events

	delivered := 0
	for _, event := range events {
		for _, sub := range subscriptions {
			if sub.tag == AllPlugins || sub.tag == event.Plugin {
				sub.observer.OnEvent(event)
				delivered++
			}
		}
	}

	return delivered
}

func (b *Bridge) observedLocked(tag string) bool {
	for _, sub := range b.subscriptions {
		if sub.tag == AllPlugins || sub.tag == tag {
			return true
		}
	}

	return false
}

func (b *Bridge) refreshGatesLocked() {
	for tag, mailbox := range b.mailboxes {
		mailbox.gate.Set(b.observedLocked(tag))
	}
}
