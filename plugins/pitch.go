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
	"math"
)

const (
	minPitchWindowMs     = 10.0
	maxPitchWindowMs     = 100.0
	defaultPitchWindowMs = 30.0
)

// pitchShifter is a two-tap delay-line shifter. The taps sweep across a
// window at a speed set by the pitch ratio and are crossfaded with
// complementary sin^2 gains. The line is sized for the largest window so
// parameter changes never allocate.
type pitchShifter struct {
	line   []float64
	write  int
	phase  float64
	window float64
}

func newPitchShifter(size int) pitchShifter {
	return pitchShifter{line: make([]float64, size)}
}

func (ps *pitchShifter) reset() {
	clear(ps.line)
	ps.write = 0
	ps.phase = 0
}

func (ps *pitchShifter) process(buf []float64, ratio float64) {
	step := (1 - ratio) / ps.window

	for i, x := range buf {
		ps.line[ps.write] = x

		second := ps.phase + 0.5
		if second >= 1 {
			second--
		}

		a := ps.tap(ps.phase * ps.window)
		b := ps.tap(second * ps.window)

		ga := math.Sin(math.Pi * ps.phase)
		gb := math.Sin(math.Pi * second)

		buf[i] = a*ga*ga + b*gb*gb

		ps.phase += step
		ps.phase -= math.Floor(ps.phase)

		ps.write++
		if ps.write == len(ps.line) {
			ps.write = 0
		}
	}
}

// tap reads the line delay samples behind the write head with linear
// interpolation.
func (ps *pitchShifter) tap(delay float64) float64 {
	pos := float64(ps.write) - delay
	for pos < 0 {
		pos += float64(len(ps.line))
	}

	i := int(pos)
	frac := pos - float64(i)
	j := i + 1

	if i >= len(ps.line) {
		i -= len(ps.line)
	}
	if j >= len(ps.line) {
		j -= len(ps.line)
	}

	return ps.line[i]*(1-frac) + ps.line[j]*frac
}

type pitchEffect struct {
	sampleRate float64
	buf        stereoBuffer
	shifters   [2]pitchShifter
	semitones  float64
	ratio      float64
	windowMs   float64
}

func newPitch(ctx Context) (Effect, error) {
	if ctx.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrBackendUnavailable, ctx.SampleRate)
	}

	p := &pitchEffect{
		sampleRate: float64(ctx.SampleRate),
		buf:        newStereoBuffer(ctx.blockSize()),
		ratio:      1,
	}

	size := int(math.Ceil(maxPitchWindowMs*p.sampleRate/1000.0)) + 2
	for i := range p.shifters {
		p.shifters[i] = newPitchShifter(size)
	}

	p.setWindow(defaultPitchWindowMs)

	return p, nil
}

func (p *pitchEffect) Process(li, ri, lo, ro []float32) {
	p.buf.process(p, li, ri, lo, ro)
}

func (p *pitchEffect) processChunk(left []float64, right []float64) {
	p.shifters[0].process(left, p.ratio)
	p.shifters[1].process(right, p.ratio)
}

// LatencySeconds is the resting delay of the dominant tap, half a window.
func (p *pitchEffect) LatencySeconds() float64 {
	return p.shifters[0].window / 2 / p.sampleRate
}

func (p *pitchEffect) SetParam(key string, value float64) error {
	switch key {
	case "semitones":
		p.semitones = value
		p.ratio = math.Pow(2, value/12)
		return nil
	case "window":
		if value < minPitchWindowMs || value > maxPitchWindowMs {
			return fmt.Errorf("%w: window %g ms", ErrParamRange, value)
		}
		p.setWindow(value)
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnknownParam, key)
}

func (p *pitchEffect) Report(r Reporter) {}

func (p *pitchEffect) setWindow(ms float64) {
	p.windowMs = ms

	for i := range p.shifters {
		p.shifters[i].window = math.Round(ms * p.sampleRate / 1000.0)
		p.shifters[i].reset()
	}
}
