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
package bridge

// Metric names one diagnostic channel of a plugin.
type Metric uint8

const (
	InputLevel Metric = iota
	OutputLevel
	Gating
	Reduction
	Compression
	Detected
	Harmonics
	Correlation

	// per band, lowest band first
	Reduction0
	Reduction1
	Reduction2
	Reduction3
	Gating0
	Gating1
	Gating2
	Gating3
	Output0
	Output1
	Output2
	Output3

	metricCount
)

// BandMetrics is the number of bands that have their own metrics.
const BandMetrics = 4

// ReductionBand returns the reduction metric of band i.
func ReductionBand(i int) Metric {
	return Reduction0 + Metric(i)
}

// GatingBand returns the gating metric of band i.
func GatingBand(i int) Metric {
	return Gating0 + Metric(i)
}

// OutputBand returns the output level metric of band i.
func OutputBand(i int) Metric {
	return Output0 + Metric(i)
}

var metricNames = [metricCount]string{
	InputLevel:  "input_level",
	OutputLevel: "output_level",
	Gating:      "gating",
	Reduction:   "reduction",
	Compression: "compression",
	Detected:    "detected",
	Harmonics:   "harmonics",
	Correlation: "correlation",
	Reduction0:  "reduction0",
	Reduction1:  "reduction1",
	Reduction2:  "reduction2",
	Reduction3:  "reduction3",
	Gating0:     "gating0",
	Gating1:     "gating1",
	Gating2:     "gating2",
	Gating3:     "gating3",
	Output0:     "output0",
	Output1:     "output1",
	Output2:     "output2",
	Output3:     "output3",
}

func (m Metric) String() string {
	if m >= metricCount {
		return "unknown"
	}

	return metricNames[m]
}

// ParseMetric looks up a metric by its wire name.
func ParseMetric(name string) (Metric, bool) {
	for i, n := range metricNames {
		if n == name {
			return Metric(i), true
		}
	}

	return 0, false
}

// Metrics returns every metric kind in declaration order.
func Metrics() []Metric {
	metrics := make([]Metric, metricCount)
	for i := range metrics {
		metrics[i] = Metric(i)
	}

	return metrics
}
