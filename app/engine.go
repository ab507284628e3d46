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
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"fox-fx/audio"
	"fox-fx/bridge"
	"fox-fx/chain"
	"fox-fx/display"
	"fox-fx/model"
	"fox-fx/plugins"
	"fox-fx/reaper"
	"fox-fx/util"

	"golang.org/x/sync/errgroup"
)

type EngineOptions struct {
	Config      *model.Config
	Profile     *model.Profile
	ProfileName string
	SampleRate  int
	BlockSize   int
	UI          display.UI
	Reaper      *reaper.Reaper

	// Roles limits the chains that are built. Empty builds every chain in
	// the profile.
	Roles []string
}

// Engine owns the chains of every role and the control loops around them.
// It is the context object the hosts (JACK, simulation, render, play) are
// built on.
type Engine struct {
	config      *model.Config
	profileName string
	sampleRate  int
	blockSize   int

	bridge *bridge.Bridge
	router *audio.Router
	ui     display.UI
	reaper *reaper.Reaper
	stats  *statistics

	mu          sync.Mutex
	managers    []*chain.Manager
	unsubscribe func()
}

func NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Config == nil || opts.Profile == nil || opts.UI == nil || opts.Reaper == nil {
		return nil, errors.New("engine needs a config, a profile, a display and a reaper")
	}

	if opts.SampleRate <= 0 || opts.BlockSize <= 0 {
		return nil, fmt.Errorf("invalid audio format: %d Hz, %d frames", opts.SampleRate, opts.BlockSize)
	}

	e := &Engine{
		config:      opts.Config,
		profileName: opts.ProfileName,
		sampleRate:  opts.SampleRate,
		blockSize:   opts.BlockSize,
		bridge:      bridge.New(),
		router:      audio.NewRouter(opts.BlockSize, opts.Config.MaxNodes),
		ui:          opts.UI,
		reaper:      opts.Reaper,
		stats:       newStatistics(opts.SampleRate),
		managers:    make([]*chain.Manager, 0),
	}

	ctx := plugins.Context{
		SampleRate:      opts.SampleRate,
		BlockSize:       opts.BlockSize,
		MessageInterval: opts.Config.MessageInterval(),
		Logger:          slog.Default(),
	}

	registry := plugins.DefaultRegistry()

	for _, pc := range opts.Profile.Chains {
		if len(opts.Roles) > 0 && !slices.Contains(opts.Roles, pc.Role) {
			continue
		}

		m, err := chain.NewManager(chain.Options{
			Role:     pc.Role,
			Context:  ctx,
			Registry: registry,
			Bridge:   e.bridge,
			Graph:    e.router,
		})
		if err != nil {
			e.Close()
			return nil, err
		}

		e.managers = append(e.managers, m)
	}

	if len(e.managers) == 0 {
		return nil, errors.New("profile has no chain to run")
	}

	e.applyProfile(opts.Profile)

	e.ui.SetProfileName(opts.ProfileName)
	e.ui.SetAudioFormat(fmt.Sprintf("%d Hz / %d frames", opts.SampleRate, opts.BlockSize))
	e.updateUI()

	return e, nil
}

func (e *Engine) Managers() []*chain.Manager {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.managers)
}

func (e *Engine) Manager(role string) (*chain.Manager, bool) {
	for _, m := range e.Managers() {
		if m.Role() == role {
			return m, true
		}
	}

	return nil, false
}


// AttachUI subscribes the display to every plugin, which opens all
// notification gates.
func (e *Engine) AttachUI() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.unsubscribe != nil {
		return
	}

	e.unsubscribe = e.bridge.Subscribe(bridge.AllPlugins, e.ui)
}

// DetachUI closes every gate again and clears bypass on all plugins.
func (e *Engine) DetachUI() {
	e.mu.Lock()
	unsubscribe := e.unsubscribe
	e.unsubscribe = nil
	managers := slices.Clone(e.managers)
	e.mu.Unlock()

	if unsubscribe == nil {
		return
	}

	unsubscribe()

	for _, m := range managers {
		m.SetBypassAll(false)
	}
}

// Reload reads the profile again and reconciles every chain with it.
func (e *Engine) Reload() error {
	if e.profileName == "" {
		return errors.New("no profile to reload")
	}

	profile, err := util.ReadProfile(e.profileName)
	if err != nil {
		return err
	}

	e.ui.SetTransportStatus(display.StatusReloading)
	e.applyProfile(profile)
	e.ui.SetTransportStatus(display.StatusRunning)
	e.updateUI()

	slog.Info("Reloaded profile " + e.profileName)

	return nil
}

// Run drives the bridge drain and the status loop until ctx is done or the
// reaper fires.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-e.reaper.Reaping():
			cancel()
		}
		return nil
	})

	g.Go(func() error {
		return processOnInterval(ctx, e.reaper, "bridge drain", e.config.DrainInterval(), func() {
			e.bridge.Drain()
		})
	})

	g.Go(func() error {
		return processOnInterval(ctx, e.reaper, "status", e.config.StatusInterval(), e.updateUI)
	})

	return g.Wait()
}

func (e *Engine) Close() {
	e.DetachUI()

	for _, m := range e.Managers() {
		m.Close()
	}
}

func (e *Engine) applyProfile(profile *model.Profile) {
	for _, m := range e.Managers() {
		pc, ok := profile.Chain(m.Role())
		if !ok {
			m.Configure(nil)
			continue
		}

		applyChain(m, pc)
	}

	for _, pc := range profile.Chains {
		if _, ok := e.Manager(pc.Role); !ok {
			slog.Warn(fmt.Sprintf("Chain '%s' is not running, restart to add it", pc.Role))
		}
	}
}

// chainPorts returns the external ports a role connects to. A role the
// profile does not describe keeps its ports unconnected.
func chainPorts(profile *model.Profile, profileName string, role string) (sources []string, sinks []string) {
	pc, ok := profile.Chain(role)
	if !ok {
		slog.Warn(fmt.Sprintf("Profile %s has no chain for role %s, its ports stay unconnected", profileName, role))
		return nil, nil
	}

	return pc.Source, pc.Sink
}

func applyChain(m *chain.Manager, pc *model.ProfileChain) {
	m.Configure(pc.Plugins)

	for _, info := range m.Plugins() {
		name := string(info.Name)

		if err := m.SetBypass(name, slices.Contains(pc.Bypass, name)); err != nil {
			slog.Warn(err.Error())
		}

		disabled := slices.Contains(pc.Disabled, name)
		if disabled && info.Enabled {
			if err := m.SetEnabled(name, false); err != nil {
				slog.Warn(err.Error())
			}
		} else if !disabled && !info.Enabled && info.Installed {
			if err := m.SetEnabled(name, true); err != nil {
				slog.Warn(err.Error())
			}
		}

		for key, value := range pc.Params[name] {
			if err := m.SetParam(name, key, value); err != nil {
				slog.Warn(fmt.Sprintf("Profile parameter %s.%s: %s", name, key, err.Error()))
			}
		}
	}
}

func (e *Engine) updateUI() {
	e.ui.SetChains(e.uiChains())
	e.ui.SetDuration(e.stats.duration())
	e.ui.SetXrunCount(e.stats.xruns.Load())

	if load, ok := e.stats.load(); ok {
		e.ui.SetAudioLoad(load)
	}
}

func (e *Engine) uiChains() []model.UiChain {
	managers := e.Managers()
	chains := make([]model.UiChain, 0, len(managers))

	for _, m := range managers {
		infos := m.Plugins()
		uiChain := model.UiChain{
			Role:      m.Role(),
			LatencyMs: m.Latency() * 1000,
			Plugins:   make([]model.UiPlugin, len(infos)),
		}

		for i, info := range infos {
			uiChain.Plugins[i] = model.UiPlugin{
				Tag:       info.Tag,
				Name:      string(info.Name),
				Installed: info.Installed,
				Enabled:   info.Enabled,
				Bypass:    info.Bypass,
				Bound:     info.Bound,
				NodeID:    uint32(info.NodeID),
				LatencyMs: info.LatencySeconds * 1000,
			}
		}

		chains = append(chains, uiChain)
	}

	return chains
}
