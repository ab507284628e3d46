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

// Name is an effect type. The set is closed: every value is listed in
// AllNames and handled by builtin.
type Name string

const (
	Gate                Name = "gate"
	Compressor          Name = "compressor"
	MultibandGate       Name = "multiband_gate"
	MultibandCompressor Name = "multiband_compressor"
	Limiter             Name = "limiter"
	Deesser             Name = "deesser"
	BassEnhancer        Name = "bass_enhancer"
	StereoTools         Name = "stereo_tools"
	Pitch               Name = "pitch"
	Delay               Name = "delay"
	LevelMeter          Name = "level_meter"
	RNNoise             Name = "rnnoise"
)

var AllNames = []Name{
	Gate,
	Compressor,
	MultibandGate,
	MultibandCompressor,
	Limiter,
	Deesser,
	BassEnhancer,
	StereoTools,
	Pitch,
	Delay,
	LevelMeter,
	RNNoise,
}
