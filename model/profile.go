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
package model

import (
	"errors"
	"fmt"
	"slices"
)

const (
	RoleOutput = "output"
	RoleInput  = "input"
)

var Roles = []string{RoleOutput, RoleInput}

type Profile struct {
	AudioServer ProfileAudioServer `yaml:"audio_server"`
	Chains      []ProfileChain     `yaml:"chains"`
}

type ProfileAudioServer struct {
	Interface       []string `yaml:"interface"`
	SampleRate      int      `yaml:"sample_rate"`
	FramesPerPeriod int      `yaml:"frames_per_period"`
}

// ProfileChain is the effect chain of one role. Source and Sink name the
// JACK ports wired to the chain's inputs and outputs, left then right.
type ProfileChain struct {
	Role     string                        `yaml:"role"`
	Plugins  []string                      `yaml:"plugins"`
	Bypass   []string                      `yaml:"bypass"`
	Disabled []string                      `yaml:"disabled"`
	Params   map[string]map[string]float64 `yaml:"params"`
	Source   []string                      `yaml:"source"`
	Sink     []string                      `yaml:"sink"`
}

func (p *Profile) Chain(role string) (*ProfileChain, bool) {
	for i := range p.Chains {
		if p.Chains[i].Role == role {
			return &p.Chains[i], true
		}
	}

	return nil, false
}

func (p *Profile) Validate() error {
	if p.AudioServer.SampleRate <= 0 {
		return errors.New("audio_server.sample_rate must be positive")
	}

	if p.AudioServer.FramesPerPeriod <= 0 {
		return errors.New("audio_server.frames_per_period must be positive")
	}

	seen := make(map[string]bool)

	for _, chain := range p.Chains {
		if !slices.Contains(Roles, chain.Role) {
			return fmt.Errorf("unknown chain role '%s', expected one of %v", chain.Role, Roles)
		}

		if seen[chain.Role] {
			return fmt.Errorf("chain role '%s' is defined twice", chain.Role)
		}

		seen[chain.Role] = true

		if len(chain.Source) > 2 || len(chain.Sink) > 2 {
			return fmt.Errorf("chain '%s' takes at most two source and two sink ports", chain.Role)
		}
	}

	return nil
}
