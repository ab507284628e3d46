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
package reaper

import (
	"log/slog"
	"slices"
	"sync"
)

type callback struct {
	name         string
	callbackFunc func()
}

// Reaper coordinates shutdown. Callbacks run once, newest first, when Reap
// is called; background loops Register themselves and report Done so Wait
// can block until all of them have stopped.
type Reaper struct {
	mu            sync.Mutex
	reaped        chan struct{}
	callbacks     []callback
	registrations []string
	waitgroup     sync.WaitGroup
}

func New() *Reaper {
	return &Reaper{
		reaped:        make(chan struct{}),
		callbacks:     make([]callback, 0),
		registrations: make([]string, 0),
	}
}

func (r *Reaper) Reaped() bool {
	select {
	case <-r.reaped:
		return true
	default:
		return false
	}
}

// Reaping is closed once Reap has been called.
func (r *Reaper) Reaping() <-chan struct{} {
	return r.reaped
}

func (r *Reaper) Reap() {
	r.mu.Lock()

	if r.Reaped() {
		r.mu.Unlock()
		return
	}

	close(r.reaped)

	callbacksReversed := slices.Clone(r.callbacks)
	slices.Reverse(callbacksReversed)

	r.mu.Unlock()

	for _, callback := range callbacksReversed {
		slog.Info("reaper: calling reap callback for '" + callback.name + "'")
		callback.callbackFunc()
	}
}

func (r *Reaper) Callback(name string, callbackFunc func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.callbacks = append(r.callbacks, callback{
		name:         name,
		callbackFunc: callbackFunc,
	})
}

func (r *Reaper) Register(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.registrations, name) {
		slog.Warn("reaper: already registered '" + name + "'")
		return
	}

	r.registrations = append(r.registrations, name)
	r.waitgroup.Add(1)
	slog.Debug("reaper: registered '" + name + "'")
}

func (r *Reaper) Done(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.registrations, name) {
		slog.Warn("reaper: already done or doesn't exist: '" + name + "'")
		return
	}

	r.registrations = slices.DeleteFunc(r.registrations, func(test string) bool {
		return test == name
	})

	slog.Debug("reaper: done: '" + name + "'")
	r.waitgroup.Done()
}

func (r *Reaper) Wait() {
	r.waitgroup.Wait()
}
