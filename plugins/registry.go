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
	"errors"
	"fmt"
	"slices"

	"fox-fx/bridge"
)

type Registry struct {
	descriptors map[Name]Descriptor
	order       []Name
}

func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[Name]Descriptor),
		order:       make([]Name, 0),
	}
}

// DefaultRegistry returns a registry holding every built-in effect.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, name := range AllNames {
		desc, ok := builtin(name)
		if !ok {
			panic("plugins: no built-in effect for " + string(name))
		}

		r.MustRegister(desc)
	}

	return r
}

func (r *Registry) Register(desc Descriptor) error {
	if desc.Name == "" {
		return errors.New("effect name is empty")
	}

	if desc.Backend == nil {
		return fmt.Errorf("effect %s has no backend", desc.Name)
	}

	if _, exists := r.descriptors[desc.Name]; exists {
		return fmt.Errorf("effect %s already registered", desc.Name)
	}

	r.descriptors[desc.Name] = desc
	r.order = append(r.order, desc.Name)

	return nil
}

func (r *Registry) MustRegister(desc Descriptor) {
	if err := r.Register(desc); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name Name) (Descriptor, error) {
	desc, ok := r.descriptors[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownEffect, name)
	}

	return desc, nil
}

func (r *Registry) Known(name string) bool {
	_, ok := r.descriptors[Name(name)]
	return ok
}

// Names lists registered effects in registration order.
func (r *Registry) Names() []Name {
	return slices.Clone(r.order)
}

func builtin(name Name) (Descriptor, bool) {
	switch name {
	case Gate:
		return Descriptor{
			Name:    Gate,
			Backend: newGate,
			Params: []ParamSpec{
				{Key: "threshold", Min: -80, Max: 0, Default: -40},
				{Key: "ratio", Min: 1, Max: 100, Default: 10},
				{Key: "knee", Min: 0, Max: 24, Default: 6},
				{Key: "attack", Min: 0.1, Max: 1000, Default: 0.1},
				{Key: "hold", Min: 0, Max: 5000, Default: 50},
				{Key: "release", Min: 1, Max: 5000, Default: 100},
				{Key: "range", Min: -120, Max: 0, Default: -80},
			},
			Metrics: []bridge.Metric{bridge.Gating},
		}, true
	case Compressor:
		return Descriptor{
			Name:    Compressor,
			Backend: newCompressor,
			Params: []ParamSpec{
				{Key: "threshold", Min: -60, Max: 0, Default: -20},
				{Key: "ratio", Min: 1, Max: 100, Default: 4},
				{Key: "knee", Min: 0, Max: 24, Default: 6},
				{Key: "attack", Min: 0.1, Max: 1000, Default: 10},
				{Key: "release", Min: 1, Max: 5000, Default: 100},
				{Key: "makeup", Min: -24, Max: 24, Default: 0},
			},
			Metrics: []bridge.Metric{bridge.Reduction},
		}, true
	case MultibandGate:
		return Descriptor{
			Name:    MultibandGate,
			Backend: newMultibandGate,
			Params: slices.Concat(
				splitParams(),
				bandParams("threshold", -80, 0, -60),
				bandParams("range", -120, 0, -40),
				bandParams("attack", 0.1, 1000, 1),
				bandParams("hold", 0, 5000, 50),
				bandParams("release", 1, 5000, 150),
			),
			Metrics: []bridge.Metric{
				bridge.Gating0, bridge.Gating1, bridge.Gating2, bridge.Gating3,
				bridge.Output0, bridge.Output1, bridge.Output2, bridge.Output3,
			},
		}, true
	case MultibandCompressor:
		return Descriptor{
			Name:    MultibandCompressor,
			Backend: newMultibandCompressor,
			Params: slices.Concat(
				splitParams(),
				bandParams("threshold", -60, 0, -20),
				bandParams("ratio", 1, 100, 4),
				bandParams("attack", 0.1, 1000, 10),
				bandParams("release", 1, 5000, 100),
				bandParams("makeup", -24, 24, 0),
			),
			Metrics: []bridge.Metric{bridge.Reduction0, bridge.Reduction1, bridge.Reduction2, bridge.Reduction3},
		}, true
	case Limiter:
		return Descriptor{
			Name:    Limiter,
			Backend: newLimiter,
			Params: []ParamSpec{
				{Key: "threshold", Min: -24, Max: 0, Default: -0.1},
				{Key: "release", Min: 1, Max: 5000, Default: 100},
				{Key: "lookahead", Min: 0, Max: 200, Default: 3, Structural: true},
			},
			Metrics: []bridge.Metric{bridge.Reduction},
		}, true
	case Deesser:
		return Descriptor{
			Name:    Deesser,
			Backend: newDeesser,
			Params: []ParamSpec{
				{Key: "frequency", Min: 1000, Max: 20000, Default: 6000, Structural: true},
				{Key: "q", Min: 0.1, Max: 10, Default: 1.5, Structural: true},
				{Key: "threshold", Min: -60, Max: 0, Default: -20},
				{Key: "ratio", Min: 1, Max: 100, Default: 4},
				{Key: "range", Min: -60, Max: 0, Default: -24},
			},
			Metrics: []bridge.Metric{bridge.Compression, bridge.Detected},
		}, true
	case BassEnhancer:
		return Descriptor{
			Name:    BassEnhancer,
			Backend: newBassEnhancer,
			Params: []ParamSpec{
				{Key: "frequency", Min: 10, Max: 500, Default: 80, Structural: true},
				{Key: "ratio", Min: 0.1, Max: 10, Default: 1},
				{Key: "response", Min: 1, Max: 200, Default: 20},
				{Key: "harmonics", Min: 0, Max: 4, Default: 1},
			},
			Metrics: []bridge.Metric{bridge.Harmonics},
		}, true
	case StereoTools:
		return Descriptor{
			Name:    StereoTools,
			Backend: newStereoTools,
			Params: []ParamSpec{
				{Key: "width", Min: 0, Max: 4, Default: 1},
				{Key: "balance", Min: -1, Max: 1, Default: 0},
				{Key: "bass_mono", Min: 0, Max: 500, Default: 0, Structural: true, Validate: validateBassMono},
			},
			Metrics: []bridge.Metric{bridge.Correlation},
		}, true
	case Pitch:
		return Descriptor{
			Name:    Pitch,
			Backend: newPitch,
			Params: []ParamSpec{
				{Key: "semitones", Min: -12, Max: 12, Default: 0},
				{Key: "window", Min: minPitchWindowMs, Max: maxPitchWindowMs, Default: defaultPitchWindowMs},
			},
		}, true
	case Delay:
		return Descriptor{
			Name:    Delay,
			Backend: newDelay,
			Params: []ParamSpec{
				{Key: "time", Min: 0.001, Max: 2, Default: 0.25, Structural: true},
				{Key: "feedback", Min: 0, Max: 0.95, Default: 0.35},
				{Key: "mix", Min: 0, Max: 1, Default: 0.25},
			},
		}, true
	case LevelMeter:
		return Descriptor{
			Name:    LevelMeter,
			Backend: newLevelMeter,
		}, true
	case RNNoise:
		return Descriptor{
			Name:    RNNoise,
			Backend: newRNNoise,
		}, true
	}

	return Descriptor{}, false
}

// validateBassMono accepts 0, which turns the crossover off, or a crossover
// frequency the widener can build.
func validateBassMono(value float64) error {
	if value == 0 || (value >= 20 && value <= 500) {
		return nil
	}

	return errors.New("must be 0 or in [20, 500]")
}
