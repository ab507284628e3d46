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

	"fox-fx/bridge"

	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
)

type gateEffect struct {
	buf   stereoBuffer
	gates [2]*dynamics.Gate
}

func newGate(ctx Context) (Effect, error) {
	g := &gateEffect{buf: newStereoBuffer(ctx.blockSize())}

	for i := range g.gates {
		gate, err := dynamics.NewGate(float64(ctx.SampleRate))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}

		g.gates[i] = gate
	}

	return g, nil
}

func (g *gateEffect) Process(li, ri, lo, ro []float32) {
	g.buf.process(g, li, ri, lo, ro)
}

func (g *gateEffect) processChunk(left []float64, right []float64) {
	g.gates[0].ProcessInPlace(left)
	g.gates[1].ProcessInPlace(right)
}

func (g *gateEffect) LatencySeconds() float64 {
	return 0
}

func (g *gateEffect) SetParam(key string, value float64) error {
	for _, gate := range g.gates {
		var err error

		switch key {
		case "threshold":
			err = gate.SetThreshold(value)
		case "ratio":
			err = gate.SetRatio(value)
		case "knee":
			err = gate.SetKnee(value)
		case "attack":
			err = gate.SetAttack(value)
		case "hold":
			err = gate.SetHold(value)
		case "release":
			err = gate.SetRelease(value)
		case "range":
			err = gate.SetRange(value)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, key)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (g *gateEffect) Report(r Reporter) {
	gain := min(g.gates[0].GetMetrics().GainReduction, g.gates[1].GetMetrics().GainReduction)
	gating := AmplitudeToDb(gain)

	r.Post(bridge.Gating, gating, gating)

	for _, gate := range g.gates {
		gate.ResetMetrics()
	}
}
