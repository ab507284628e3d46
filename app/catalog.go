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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fox-fx/model"
	"fox-fx/plugins"
)

type ParamDescription struct {
	Key     string  `json:"key"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// PluginDescription is what the plugins command reports for one effect.
type PluginDescription struct {
	Name      string             `json:"name"`
	Available bool               `json:"available"`
	Error     string             `json:"error,omitempty"`
	LatencyMs float64            `json:"latency_ms"`
	Params    []ParamDescription `json:"params"`
	Metrics   []string           `json:"metrics"`
}

// DescribePlugins checks every registered effect by building one instance
// with ctx and the default parameters.
func DescribePlugins(registry *plugins.Registry, ctx plugins.Context) []PluginDescription {
	descriptions := make([]PluginDescription, 0)

	for _, name := range registry.Names() {
		desc, err := registry.Lookup(name)
		if err != nil {
			continue
		}

		description := PluginDescription{
			Name:    string(name),
			Params:  make([]ParamDescription, len(desc.Params)),
			Metrics: make([]string, len(desc.Metrics)),
		}

		for i, spec := range desc.Params {
			description.Params[i] = ParamDescription{
				Key:     spec.Key,
				Min:     spec.Min,
				Max:     spec.Max,
				Default: spec.Default,
			}
		}

		for i, metric := range desc.Metrics {
			description.Metrics[i] = metric.String()
		}

		effect, err := desc.Build(ctx, nil)
		if err != nil {
			description.Error = err.Error()
		} else {
			description.Available = true
			description.LatencyMs = effect.LatencySeconds() * 1000
		}

		descriptions = append(descriptions, description)
	}

	return descriptions
}

func WritePluginList(w io.Writer, outputType model.OutputType, descriptions []PluginDescription) error {
	if outputType == model.OutputJSON {
		encoder := json.NewEncoder(w)
		for _, description := range descriptions {
			if err := encoder.Encode(description); err != nil {
				return err
			}
		}
		return nil
	}

	for _, d := range descriptions {
		status := "available"
		if !d.Available {
			status = "not installed"
		}

		fmt.Fprintf(w, "%-14s %-14s latency %.2f ms\n", d.Name, status, d.LatencyMs)

		for _, p := range d.Params {
			fmt.Fprintf(w, "    %-12s %10g .. %-10g default %g\n", p.Key, p.Min, p.Max, p.Default)
		}

		if len(d.Metrics) > 0 {
			fmt.Fprintf(w, "    metrics: %s\n", strings.Join(d.Metrics, ", "))
		}
	}

	return nil
}
