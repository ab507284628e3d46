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
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fox-fx/audio"
	"fox-fx/bridge"
	"fox-fx/plugins"
)

var ErrUnknownPlugin = errors.New("unknown plugin")

const defaultQuiesceTimeout = 500 * time.Millisecond

type Options struct {
	// Role prefixes every plugin tag, "<role>:<name>".
	Role     string
	Context  plugins.Context
	Registry *plugins.Registry
	Bridge   *bridge.Bridge
	Graph    audio.Graph

	// QuiesceTimeout bounds how long a reconfiguration waits for the
	// in-flight block before releasing plugins that left the chain.
	QuiesceTimeout time.Duration
}

// Info is a point-in-time view of one configured plugin.
type Info struct {
	Tag            string
	Name           plugins.Name
	Installed      bool
	Enabled        bool
	Bypass         bool
	PostMessages   bool
	Bound          bool
	NodeID         audio.NodeID
	LatencySeconds float64
	ParamErrors    uint64
}

// Manager owns the ordered plugin chain of one role. Configure and the
// command methods run on the control thread; Process runs on the audio
// thread and only ever touches the current snapshot.
type Manager struct {
	role           string
	ctx            plugins.Context
	log            *slog.Logger
	registry       *plugins.Registry
	bridge         *bridge.Bridge
	graph          audio.Graph
	quiesceTimeout time.Duration

	// control thread only
	mu      sync.Mutex
	order   []string
	plugins map[string]*plugins.Plugin
	binding *binding

	snap     atomic.Pointer[snapshot]
	inFlight atomic.Bool
	cycles   atomic.Uint64
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Graph == nil {
		return nil, errors.New("chain: no graph")
	}

	if opts.Registry == nil {
		opts.Registry = plugins.DefaultRegistry()
	}

	if opts.Bridge == nil {
		opts.Bridge = bridge.New()
	}

	if opts.QuiesceTimeout <= 0 {
		opts.QuiesceTimeout = defaultQuiesceTimeout
	}

	m := &Manager{
		role:           opts.Role,
		ctx:            opts.Context,
		log:            opts.Context.Log().With("role", opts.Role),
		registry:       opts.Registry,
		bridge:         opts.Bridge,
		graph:          opts.Graph,
		quiesceTimeout: opts.QuiesceTimeout,
		order:          make([]string, 0),
		plugins:        make(map[string]*plugins.Plugin),
	}

	b, err := newBinding(opts.Graph, m.tag("source"), m.tag("sink"))
	if err != nil {
		return nil, fmt.Errorf("chain %s: %w", opts.Role, err)
	}

	m.binding = b

	m.mu.Lock()
	m.rebuildLocked(nil)
	m.mu.Unlock()

	return m, nil
}

func (m *Manager) Role() string {
	return m.role
}

func (m *Manager) Bridge() *bridge.Bridge {
	return m.bridge
}

// Configure reconciles the chain with an ordered list of effect names.
// Unknown and duplicate names are skipped. Plugins that stay in the list
// keep their instance and state.
func (m *Manager) Configure(names []string) Diff {
	m.mu.Lock()
	defer m.mu.Unlock()

	diff := Reconcile(m.order, names, m.registry.Known)

	for _, name := range diff.Ignored {
		m.log.Warn(fmt.Sprintf("Ignoring unknown or duplicate effect '%s'", name))
	}

	if diff.Empty() {
		m.order = diff.Order
		return diff
	}

	released := make([]*plugins.Plugin, 0, len(diff.Remove))
	for _, name := range diff.Remove {
		released = append(released, m.plugins[name])
		delete(m.plugins, name)
	}

	for _, add := range diff.Add {
		desc, err := m.registry.Lookup(plugins.Name(add.Name))
		if err != nil {
			m.log.Warn(err.Error())
			continue
		}

		tag := m.tag(add.Name)
		p := plugins.New(m.ctx, tag, desc, m.bridge.Register(tag))
		p.Enable(m.graph)

		m.plugins[add.Name] = p
	}

	m.order = diff.Order
	m.rebuildLocked(released)

	m.log.Info(fmt.Sprintf("Chain is now [%s], %d bound, latency %.2f ms",
		strings.Join(m.order, ", "), len(m.snap.Load().stages), m.Latency()*1000))

	return diff
}

// Order returns the configured effect names, bound or not.
func (m *Manager) Order() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.order)
}

// Bound returns the tags of the plugins audio currently flows through.
func (m *Manager) Bound() []string {
	snap := m.snap.Load()
	tags := make([]string, len(snap.stages))

	for i, st := range snap.stages {
		tags[i] = st.plugin.Tag()
	}

	return tags
}

// Latency is the summed latency of the physically bound plugins.
func (m *Manager) Latency() float64 {
	total := 0.0

	for _, st := range m.snap.Load().stages {
		total += st.plugin.LatencySeconds()
	}

	return total
}

// Plugin looks a plugin up by name or by tag.
func (m *Manager) Plugin(id string) (*plugins.Plugin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lookupLocked(id)
}

func (m *Manager) Plugins() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	bound := make(map[*plugins.Plugin]bool)
	for _, st := range m.snap.Load().stages {
		bound[st.plugin] = true
	}

	infos := make([]Info, 0, len(m.order))
	for _, name := range m.order {
		p, ok := m.plugins[name]
		if !ok {
			continue
		}

		infos = append(infos, Info{
			Tag:            p.Tag(),
			Name:           p.Name(),
			Installed:      p.Installed(),
			Enabled:        p.Enabled(),
			Bypass:         p.Bypass(),
			PostMessages:   p.PostMessages(),
			Bound:          bound[p],
			NodeID:         p.NodeID(),
			LatencySeconds: p.LatencySeconds(),
			ParamErrors:    p.ParamErrors(),
		})
	}

	return infos
}

func (m *Manager) SetBypass(id string, bypass bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.lookupLocked(id)
	if err != nil {
		return err
	}

	p.SetBypass(bypass)

	return nil
}

// SetBypassAll sets or clears bypass on every configured plugin.
func (m *Manager) SetBypassAll(bypass bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.plugins {
		p.SetBypass(bypass)
	}
}

// SetEnabled links a plugin into the chain or takes it out while keeping it
// configured. Enabling retries a plugin that was not installed.
func (m *Manager) SetEnabled(id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.lookupLocked(id)
	if err != nil {
		return err
	}

	if enabled == p.Enabled() {
		return nil
	}

	if enabled {
		p.Enable(m.graph)
		m.rebuildLocked(nil)
		return nil
	}

	// leave the snapshot first so Disable never races an in-flight block
	m.rebuildLocked(nil, p)
	p.Disable()
	m.rebuildLocked(nil)

	return nil
}

func (m *Manager) SetPostMessages(id string, post bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.lookupLocked(id)
	if err != nil {
		return err
	}

	p.SetPostMessages(post)

	return nil
}

func (m *Manager) SetParam(id string, key string, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.lookupLocked(id)
	if err != nil {
		return err
	}

	return p.SetParam(key, value)
}

// Close releases every plugin and the chain's own graph nodes.
func (m *Manager) Close() {
	m.Configure(nil)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.binding.close()
}

// Process runs one host block through the current snapshot. Blocks larger
// than the graph buffer are processed in buffer-sized chunks. Audio thread
// only.
func (m *Manager) Process(inL, inR, outL, outR []float32) {
	m.inFlight.Store(true)

	snap := m.snap.Load()
	size := snap.bufferSize

	for start := 0; start < len(inL); start += size {
		end := min(len(inL), start+size)
		snap.process(inL[start:end], inR[start:end], outL[start:end], outR[start:end])
	}

	m.inFlight.Store(false)
	m.cycles.Add(1)
}

func (m *Manager) tag(name string) string {
	if m.role == "" {
		return name
	}

	return m.role + ":" + name
}

func (m *Manager) lookupLocked(id string) (*plugins.Plugin, error) {
	name := strings.TrimPrefix(id, m.role+":")

	p, ok := m.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, id)
	}

	return p, nil
}

// rebuildLocked rewires the graph for the current order, publishes a new
// snapshot and, once the audio thread has moved past the old one, releases
// plugins that left the chain. Plugins in exclude are kept out of the new
// snapshot without being touched.
func (m *Manager) rebuildLocked(released []*plugins.Plugin, exclude ...*plugins.Plugin) {
	candidates := make([]*plugins.Plugin, 0, len(m.order))
	for _, name := range m.order {
		p, ok := m.plugins[name]
		if !ok || slices.Contains(exclude, p) {
			continue
		}

		candidates = append(candidates, p)
	}

	bound, refused := m.binding.bind(candidates)

	m.snap.Store(newSnapshot(m.binding, bound))
	m.quiesce()

	for p, err := range refused {
		m.log.Warn(fmt.Sprintf("Graph refused %s: %s", p.Tag(), err.Error()))
		p.MarkUnavailable(err)
	}

	for _, p := range released {
		p.Disable()
		m.bridge.Unregister(p.Tag())
	}
}

// quiesce waits until the audio thread is not inside a block that may have
// loaded the previous snapshot.
func (m *Manager) quiesce() {
	cycle := m.cycles.Load()
	if !m.inFlight.Load() {
		return
	}

	deadline := time.Now().Add(m.quiesceTimeout)

	for m.cycles.Load() == cycle {
		if time.Now().After(deadline) {
			m.log.Warn("Timed out waiting for the audio thread to finish a block")
			return
		}

		time.Sleep(100 * time.Microsecond)
	}
}
