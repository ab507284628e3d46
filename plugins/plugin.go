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
package plugins

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"sync"
	"sync/atomic"

	"fox-fx/audio"
	"fox-fx/bridge"
)

// instance is what exists only while a plugin is enabled.
type instance struct {
	effect Effect
	node   *audio.Node
	meter  meter
}

// Plugin is one effect unit in a chain. Flags are atomics so the control
// thread can flip them while the audio thread reads them every block.
type Plugin struct {
	tag     string
	desc    Descriptor
	ctx     Context
	log     *slog.Logger
	mailbox *bridge.Mailbox

	messageFrames int

	installed atomic.Bool
	enabled   atomic.Bool
	bypass    atomic.Bool
	nodeID    atomic.Uint32
	latency   atomic.Uint64
	processed atomic.Uint64

	// changes the backend rejected on the audio thread
	paramErrors atomic.Uint64

	instance atomic.Pointer[instance]
	params   paramQueue

	// control thread only
	mu             sync.Mutex
	graph          audio.Graph
	settings       map[string]float64
	reportedErrors uint64
}

func New(ctx Context, tag string, desc Descriptor, mailbox *bridge.Mailbox) *Plugin {
	if mailbox == nil {
		mailbox = bridge.NewMailbox(tag)
	}

	p := &Plugin{
		tag:           tag,
		desc:          desc,
		ctx:           ctx,
		log:           ctx.Log().With("plugin", tag),
		mailbox:       mailbox,
		messageFrames: ctx.MessageFrames(),
		settings:      make(map[string]float64),
	}

	p.installed.Store(true)

	return p
}

func (p *Plugin) Tag() string {
	return p.tag
}

func (p *Plugin) Name() Name {
	return p.desc.Name
}

func (p *Plugin) Descriptor() Descriptor {
	return p.desc
}

func (p *Plugin) Mailbox() *bridge.Mailbox {
	return p.mailbox
}

func (p *Plugin) Installed() bool {
	return p.installed.Load()
}

func (p *Plugin) Enabled() bool {
	return p.enabled.Load()
}

func (p *Plugin) Bypass() bool {
	return p.bypass.Load()
}

func (p *Plugin) SetBypass(bypass bool) {
	p.bypass.Store(bypass)
}

func (p *Plugin) PostMessages() bool {
	return p.mailbox.Gate().IsOpen()
}

// SetPostMessages mutes or unmutes the plugin's notifications. A mute holds
// until it is lifted here, whatever observers come and go on the bridge.
func (p *Plugin) SetPostMessages(post bool) {
	gate := p.mailbox.Gate()
	gate.Mute(!post)

	if post {
		gate.Open()
	}
}

// NodeID returns the graph node id, or audio.InvalidNode while disabled.
func (p *Plugin) NodeID() audio.NodeID {
	return audio.NodeID(p.nodeID.Load())
}

// Node returns the plugin's graph node, nil while disabled.
func (p *Plugin) Node() *audio.Node {
	if inst := p.instance.Load(); inst != nil {
		return inst.node
	}

	return nil
}

// LatencySeconds is the delay the plugin adds to the signal path. Zero while
// disabled or bypassed.
func (p *Plugin) LatencySeconds() float64 {
	if !p.enabled.Load() || p.bypass.Load() {
		return 0
	}

	return math.Float64frombits(p.latency.Load())
}

// ProcessedFrames counts frames processed by the current instance.
func (p *Plugin) ProcessedFrames() uint64 {
	return p.processed.Load()
}

// ParamErrors counts queued parameter changes the backend refused.
func (p *Plugin) ParamErrors() uint64 {
	return p.paramErrors.Load()
}

// Enable creates the native element and registers the plugin's node. If the
// backend or the graph refuses, the plugin is marked as not installed and
// stays disabled.
func (p *Plugin) Enable(graph audio.Graph) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.enabled.Load() {
		return
	}

	effect, err := p.desc.Backend(p.ctx)
	if err != nil {
		p.unavailableLocked(err)
		return
	}

	if err := p.desc.Apply(effect, p.settings); err != nil {
		p.log.Warn("Failed to restore parameters: " + err.Error())
	}

	node, err := graph.AddNode(p.tag)
	if err != nil {
		p.unavailableLocked(fmt.Errorf("%w: %w", ErrBackendUnavailable, err))
		return
	}

	p.params.reset()
	p.processed.Store(0)
	p.latency.Store(math.Float64bits(effect.LatencySeconds()))
	p.nodeID.Store(uint32(node.ID()))
	p.graph = graph

	p.instance.Store(&instance{
		effect: effect,
		node:   node,
		meter:  newMeter(p.ctx.blockSize()),
	})

	p.installed.Store(true)
	p.enabled.Store(true)

	p.log.Debug(fmt.Sprintf("Enabled %s on node %d", p.tag, node.ID()))
}

// Disable releases the node and the native element. A block already running
// keeps the instance it loaded; the next block passes audio through.
func (p *Plugin) Disable() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reportParamErrorsLocked()
	p.disableLocked()
}

// MarkUnavailable degrades the plugin to not installed, for example when the
// graph refused one of its links.
func (p *Plugin) MarkUnavailable(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.disableLocked()
	p.unavailableLocked(err)
}

// SetParam validates a parameter change and hands it to the audio thread.
// Structural changes build a replacement effect here instead, so the audio
// thread never allocates. The value is also kept so it survives a
// disable/enable cycle.
func (p *Plugin) SetParam(key string, value float64) error {
	spec, ok := p.desc.Param(key)
	if !ok {
		return fmt.Errorf("%w: %s has no parameter %s", ErrUnknownParam, p.desc.Name, key)
	}

	if err := spec.Check(value); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.reportParamErrorsLocked()

	if p.enabled.Load() {
		switch {
		case spec.Structural && p.currentLocked(spec) == value:
			// unchanged, keep the running effect and its state
		case spec.Structural:
			if err := p.replaceLocked(key, value); err != nil {
				return err
			}
		case !p.params.push(paramChange{key: key, value: value}):
			return fmt.Errorf("%w: %s", ErrQueueFull, p.tag)
		}
	}

	p.settings[key] = value

	return nil
}

// replaceLocked publishes a new effect built with the current settings plus
// key=value. The running block keeps the instance it loaded.
func (p *Plugin) replaceLocked(key string, value float64) error {
	current := p.instance.Load()
	if current == nil {
		return nil
	}

	settings := maps.Clone(p.settings)
	settings[key] = value

	effect, err := p.desc.Build(p.ctx, settings)
	if err != nil {
		return fmt.Errorf("%s: rebuilding for %s=%g: %w", p.tag, key, value, err)
	}

	p.instance.Store(&instance{
		effect: effect,
		node:   current.node,
		meter:  newMeter(p.ctx.blockSize()),
	})
	p.latency.Store(math.Float64bits(effect.LatencySeconds()))

	p.log.Debug(fmt.Sprintf("Rebuilt %s for %s=%g", p.tag, key, value))

	return nil
}

func (p *Plugin) currentLocked(spec ParamSpec) float64 {
	if value, ok := p.settings[spec.Key]; ok {
		return value
	}

	return spec.Default
}

func (p *Plugin) reportParamErrorsLocked() {
	total := p.paramErrors.Load()
	if total == p.reportedErrors {
		return
	}

	p.log.Warn(fmt.Sprintf("%s rejected %d parameter changes", p.tag, total-p.reportedErrors))
	p.reportedErrors = total
}

func (p *Plugin) Settings() map[string]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return maps.Clone(p.settings)
}

// Process runs one block. Audio thread only.
func (p *Plugin) Process(li, ri, lo, ro []float32) {
	inst := p.instance.Load()
	if inst == nil {
		copy(lo, li)
		copy(ro, ri)
		return
	}

	p.applyParams(inst)

	bypass := p.bypass.Load()
	if bypass {
		copy(lo, li)
		copy(ro, ri)
	} else {
		inst.effect.Process(li, ri, lo, ro)
	}

	p.processed.Add(uint64(len(li)))

	if p.mailbox.Gate().IsOpen() {
		p.emit(inst, bypass, li, ri, lo, ro)
	} else if inst.meter.frames > 0 {
		inst.meter.reset()
	}
}

func (p *Plugin) applyParams(inst *instance) {
	applied := false

	for {
		change, ok := p.params.pop()
		if !ok {
			break
		}

		if err := inst.effect.SetParam(change.key, change.value); err != nil {
			p.paramErrors.Add(1)
			continue
		}

		applied = true
	}

	// a replacement published meanwhile owns the latency
	if applied && p.instance.Load() == inst {
		p.latency.Store(math.Float64bits(inst.effect.LatencySeconds()))
	}
}

func (p *Plugin) emit(inst *instance, bypass bool, li, ri, lo, ro []float32) {
	m := &inst.meter
	m.accumulate(li, ri, lo, ro)

	if m.frames < p.messageFrames {
		return
	}

	p.mailbox.Post(bridge.InputLevel, AmplitudeToDb(m.inL), AmplitudeToDb(m.inR))
	p.mailbox.Post(bridge.OutputLevel, AmplitudeToDb(m.outL), AmplitudeToDb(m.outR))

	if !bypass {
		inst.effect.Report(p.mailbox)
	}

	m.reset()
}

func (p *Plugin) disableLocked() {
	if !p.enabled.Load() {
		return
	}

	inst := p.instance.Swap(nil)

	p.enabled.Store(false)
	p.nodeID.Store(uint32(audio.InvalidNode))
	p.latency.Store(0)

	if inst != nil && p.graph != nil {
		if err := p.graph.RemoveNode(inst.node); err != nil {
			p.log.Warn("Failed to remove node: " + err.Error())
		}
	}

	p.log.Debug("Disabled " + p.tag)
}

func (p *Plugin) unavailableLocked(err error) {
	p.installed.Store(false)
	p.log.Warn(fmt.Sprintf("%s is not installed, passing audio through: %s", p.tag, err.Error()))
}
