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
	"math"

	"fox-fx/bridge"
)

var (
	ErrBackendUnavailable = errors.New("effect backend unavailable")
	ErrUnknownEffect      = errors.New("unknown effect")
	ErrUnknownParam       = errors.New("unknown parameter")
	ErrParamRange         = errors.New("parameter out of range")
	ErrQueueFull          = errors.New("parameter queue full")
)

// Reporter receives effect-specific metrics. *bridge.Mailbox implements it.
type Reporter interface {
	Post(metric bridge.Metric, left float64, right float64)
}

// Effect is the native processing element behind a plugin. Process, SetParam
// and Report run on the audio thread only; LatencySeconds is read there too
// and cached by the plugin for the control thread.
type Effect interface {
	Process(li, ri, lo, ro []float32)
	LatencySeconds() float64
	SetParam(key string, value float64) error
	Report(r Reporter)
}

// Backend creates a new effect instance.
type Backend func(ctx Context) (Effect, error)

// ParamSpec describes one effect parameter. Default is applied whenever the
// profile does not set the parameter. A structural parameter reshapes the
// effect's buffers or filters, so changing it builds a replacement effect on
// the control thread instead of going through the audio thread's queue.
// Validate checks constraints the range alone cannot express.
type ParamSpec struct {
	Key        string
	Min        float64
	Max        float64
	Default    float64
	Structural bool
	Validate   func(value float64) error
}

// Check reports whether value is acceptable to the backend.
func (s ParamSpec) Check(value float64) error {
	if math.IsNaN(value) || value < s.Min || value > s.Max {
		return fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrParamRange, s.Key, value, s.Min, s.Max)
	}

	if s.Validate != nil {
		if err := s.Validate(value); err != nil {
			return fmt.Errorf("%w: %s=%g: %w", ErrParamRange, s.Key, value, err)
		}
	}

	return nil
}

// Descriptor is everything the chain needs to know about an effect type.
type Descriptor struct {
	Name    Name
	Backend Backend
	Params  []ParamSpec
	Metrics []bridge.Metric
}

func (d Descriptor) Param(key string) (ParamSpec, bool) {
	for _, spec := range d.Params {
		if spec.Key == key {
			return spec, true
		}
	}

	return ParamSpec{}, false
}

// Apply sets every parameter on a freshly built effect, taking the value from
// settings when present and the default otherwise. It keeps going after a
// failure and returns all of them.
func (d Descriptor) Apply(effect Effect, settings map[string]float64) error {
	var errs []error

	for _, spec := range d.Params {
		value, ok := settings[spec.Key]
		if !ok {
			value = spec.Default
		}

		if err := effect.SetParam(spec.Key, value); err != nil {
			errs = append(errs, fmt.Errorf("%s=%g: %w", spec.Key, value, err))
		}
	}

	return errors.Join(errs...)
}

// Build creates a backend instance with every parameter applied.
func (d Descriptor) Build(ctx Context, settings map[string]float64) (Effect, error) {
	effect, err := d.Backend(ctx)
	if err != nil {
		return nil, err
	}

	if err := d.Apply(effect, settings); err != nil {
		return nil, err
	}

	return effect, nil
}
