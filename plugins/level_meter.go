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

import "fmt"

// levelMeterEffect passes audio through unchanged; the plugin's own input
// and output meters are its whole purpose.
type levelMeterEffect struct{}

func newLevelMeter(ctx Context) (Effect, error) {
	return levelMeterEffect{}, nil
}

func (levelMeterEffect) Process(li, ri, lo, ro []float32) {
	copy(lo, li)
	copy(ro, ri)
}

func (levelMeterEffect) LatencySeconds() float64 {
	return 0
}

func (levelMeterEffect) SetParam(key string, value float64) error {
	return fmt.Errorf("%w: %s", ErrUnknownParam, key)
}

func (levelMeterEffect) Report(r Reporter) {}
