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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	known := func(name string) bool { return name != "reverb" }

	tests := []struct {
		name      string
		current   []string
		requested []string
		want      Diff
	}{
		{
			name:      "empty to empty",
			current:   nil,
			requested: nil,
			want:      Diff{Remove: []string{}, Add: []Addition{}, Move: []Move{}, Order: []string{}, Ignored: []string{}},
		},
		{
			name:      "append",
			current:   []string{"gate"},
			requested: []string{"gate", "pitch"},
			want: Diff{
				Remove:  []string{},
				Add:     []Addition{{Name: "pitch", Position: 1}},
				Move:    []Move{},
				Order:   []string{"gate", "pitch"},
				Ignored: []string{},
			},
		},
		{
			name:      "remove keeps survivors in place",
			current:   []string{"gate", "compressor", "limiter"},
			requested: []string{"compressor", "limiter"},
			want: Diff{
				Remove:  []string{"gate"},
				Add:     []Addition{},
				Move:    []Move{},
				Order:   []string{"compressor", "limiter"},
				Ignored: []string{},
			},
		},
		{
			name:      "swap",
			current:   []string{"gate", "stereo_tools"},
			requested: []string{"stereo_tools", "gate"},
			want: Diff{
				Remove:  []string{},
				Add:     []Addition{},
				Move:    []Move{{Name: "stereo_tools", From: 1, To: 0}, {Name: "gate", From: 0, To: 1}},
				Order:   []string{"stereo_tools", "gate"},
				Ignored: []string{},
			},
		},
		{
			name:      "unknown and duplicate ignored",
			current:   []string{},
			requested: []string{"gate", "reverb", "gate", "delay"},
			want: Diff{
				Remove:  []string{},
				Add:     []Addition{{Name: "gate", Position: 0}, {Name: "delay", Position: 1}},
				Move:    []Move{},
				Order:   []string{"gate", "delay"},
				Ignored: []string{"reverb", "gate"},
			},
		},
		{
			name:      "mixed",
			current:   []string{"gate", "compressor", "delay"},
			requested: []string{"delay", "limiter", "gate"},
			want: Diff{
				Remove:  []string{"compressor"},
				Add:     []Addition{{Name: "limiter", Position: 1}},
				Move:    []Move{{Name: "delay", From: 1, To: 0}, {Name: "gate", From: 0, To: 1}},
				Order:   []string{"delay", "limiter", "gate"},
				Ignored: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconcile(tt.current, tt.requested, known))
		})
	}
}

func TestReconcileEmpty(t *testing.T) {
	assert.True(t, Reconcile([]string{"gate"}, []string{"gate"}, nil).Empty())
	assert.False(t, Reconcile([]string{"gate"}, nil, nil).Empty())
}
