// The MIT License (MIT)
//
// Copyright (c) 2019 West Damron
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package limits

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// file is the YAML form of a set of limits. Absent fields keep the value from the base profile.
type file struct {
	Profile            string         `yaml:"profile"`
	MaxIterations      *int           `yaml:"max_iterations"`
	MaxTypeVariables   *int           `yaml:"max_type_variables"`
	MaxConstraints     *int           `yaml:"max_constraints"`
	MaxRecursionDepth  *int           `yaml:"max_recursion_depth"`
	PhaseTimeout       *time.Duration `yaml:"phase_timeout"`
	TotalTimeout       *time.Duration `yaml:"total_timeout"`
	MaxSpecializations *int           `yaml:"max_specializations"`
	MaxWorkQueueSize   *int           `yaml:"max_work_queue_size"`
	MaxMemoryBytes     *int64         `yaml:"max_memory_bytes"`
	CheckInterval      *int           `yaml:"check_interval"`
}

// LoadYAML reads limits from r. The document selects a base profile and overrides individual
// fields; durations are written the way time.ParseDuration accepts them:
//
//	profile: development
//	max_type_variables: 5000
//	phase_timeout: 10s
//
// Unknown fields are rejected, and the result is validated.
func LoadYAML(r io.Reader) (Limits, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return Limits{}, fmt.Errorf("limits: decoding yaml: %w", err)
	}
	base, err := Profile(f.Profile)
	if err != nil {
		return Limits{}, fmt.Errorf("limits: %w", err)
	}
	var opts []Option
	if f.MaxIterations != nil {
		opts = append(opts, WithMaxIterations(*f.MaxIterations))
	}
	if f.MaxTypeVariables != nil {
		opts = append(opts, WithMaxTypeVariables(*f.MaxTypeVariables))
	}
	if f.MaxConstraints != nil {
		opts = append(opts, WithMaxConstraints(*f.MaxConstraints))
	}
	if f.MaxRecursionDepth != nil {
		opts = append(opts, WithMaxRecursionDepth(*f.MaxRecursionDepth))
	}
	if f.PhaseTimeout != nil {
		opts = append(opts, WithPhaseTimeout(*f.PhaseTimeout))
	}
	if f.TotalTimeout != nil {
		opts = append(opts, WithTotalTimeout(*f.TotalTimeout))
	}
	if f.MaxSpecializations != nil {
		opts = append(opts, WithMaxSpecializations(*f.MaxSpecializations))
	}
	if f.MaxWorkQueueSize != nil {
		opts = append(opts, WithMaxWorkQueueSize(*f.MaxWorkQueueSize))
	}
	if f.MaxMemoryBytes != nil {
		opts = append(opts, WithMaxMemoryBytes(*f.MaxMemoryBytes))
	}
	if f.CheckInterval != nil {
		opts = append(opts, WithCheckInterval(*f.CheckInterval))
	}
	return New(base, opts...)
}
