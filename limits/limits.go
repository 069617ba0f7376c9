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

// Package limits bounds the resources consumed by type inference.
//
// Limits are value objects selected by the embedding compiler: Production for untrusted input,
// Development for local builds, and Testing for test suites. A Monitor tracks usage for a single
// compilation attempt and fails as soon as any configured ceiling is crossed.
package limits

import (
	"errors"
	"math"
	"time"
)

const (
	safeIterations = 100_000
	safeTimeout    = 60 * time.Second
	safeMemory     = 1 << 30
	safeDepth      = 1000
)

// Limits configures the ceilings enforced during inference.
type Limits struct {
	// Maximum iterations for any single named operation (unification, constraint solving)
	MaxIterations int `yaml:"max_iterations"`
	// Maximum number of type-variables created within one context
	MaxTypeVariables int `yaml:"max_type_variables"`
	// Maximum number of constraints recorded within one context
	MaxConstraints int `yaml:"max_constraints"`
	// Maximum recursion depth for unify, occurs, and resolve
	MaxRecursionDepth int `yaml:"max_recursion_depth"`
	// Maximum wall-time for each phase
	PhaseTimeout time.Duration `yaml:"phase_timeout"`
	// Maximum wall-time for the whole compilation attempt
	TotalTimeout time.Duration `yaml:"total_timeout"`
	// Maximum number of generic instantiations
	MaxSpecializations int `yaml:"max_specializations"`
	// Maximum length of any pending work queue
	MaxWorkQueueSize int `yaml:"max_work_queue_size"`
	// Maximum estimated bytes allocated by the engine
	MaxMemoryBytes int64 `yaml:"max_memory_bytes"`
	// High-frequency checks via Monitor.Tick run every CheckInterval calls. 1 checks every call.
	CheckInterval int `yaml:"check_interval"`
}

// Production returns conservative limits, suitable for untrusted input.
func Production() Limits {
	return Limits{
		MaxIterations:      safeIterations,
		MaxTypeVariables:   safeIterations,
		MaxConstraints:     safeIterations * 2,
		MaxRecursionDepth:  safeDepth,
		PhaseTimeout:       safeTimeout,
		TotalTimeout:       safeTimeout * 3,
		MaxSpecializations: 1_000,
		MaxWorkQueueSize:   10_000,
		MaxMemoryBytes:     safeMemory,
		CheckInterval:      1,
	}
}

// Development returns limits twice as permissive as Production.
func Development() Limits {
	p := Production()
	return Limits{
		MaxIterations:      p.MaxIterations * 2,
		MaxTypeVariables:   p.MaxTypeVariables * 2,
		MaxConstraints:     p.MaxConstraints * 2,
		MaxRecursionDepth:  p.MaxRecursionDepth * 2,
		PhaseTimeout:       p.PhaseTimeout * 2,
		TotalTimeout:       p.TotalTimeout * 2,
		MaxSpecializations: p.MaxSpecializations * 2,
		MaxWorkQueueSize:   p.MaxWorkQueueSize * 2,
		MaxMemoryBytes:     p.MaxMemoryBytes * 2,
		CheckInterval:      p.CheckInterval,
	}
}

// Testing returns effectively unlimited counts with generous timeouts.
func Testing() Limits {
	return Limits{
		MaxIterations:      math.MaxInt,
		MaxTypeVariables:   math.MaxInt,
		MaxConstraints:     math.MaxInt,
		MaxRecursionDepth:  math.MaxInt,
		PhaseTimeout:       5 * time.Minute,
		TotalTimeout:       10 * time.Minute,
		MaxSpecializations: math.MaxInt,
		MaxWorkQueueSize:   math.MaxInt,
		MaxMemoryBytes:     math.MaxInt64,
		CheckInterval:      1,
	}
}

// Profile returns the named profile: "production", "development", or "testing".
func Profile(name string) (Limits, error) {
	switch name {
	case "production", "":
		return Production(), nil
	case "development":
		return Development(), nil
	case "testing":
		return Testing(), nil
	}
	return Limits{}, errors.New("unknown resource limits profile " + name)
}

// Validate checks that the limits are internally consistent.
func (l Limits) Validate() error {
	counts := []struct {
		name  string
		value int64
	}{
		{"max_iterations", int64(l.MaxIterations)},
		{"max_type_variables", int64(l.MaxTypeVariables)},
		{"max_constraints", int64(l.MaxConstraints)},
		{"max_recursion_depth", int64(l.MaxRecursionDepth)},
		{"max_specializations", int64(l.MaxSpecializations)},
		{"max_work_queue_size", int64(l.MaxWorkQueueSize)},
		{"max_memory_bytes", l.MaxMemoryBytes},
		{"check_interval", int64(l.CheckInterval)},
	}
	for _, c := range counts {
		if c.value <= 0 {
			return &InvalidError{Field: c.name, Reason: "must be greater than 0"}
		}
	}
	if l.PhaseTimeout <= 0 {
		return &InvalidError{Field: "phase_timeout", Reason: "must be greater than 0"}
	}
	if l.TotalTimeout < l.PhaseTimeout {
		return &InvalidError{Field: "total_timeout", Reason: "must be greater than or equal to phase_timeout"}
	}
	return nil
}

// InvalidError reports an inconsistent set of limits.
type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string { return "invalid resource limits: " + e.Field + " " + e.Reason }

// Option modifies a set of limits during construction.
type Option func(*Limits)

func WithMaxIterations(n int) Option      { return func(l *Limits) { l.MaxIterations = n } }
func WithMaxTypeVariables(n int) Option   { return func(l *Limits) { l.MaxTypeVariables = n } }
func WithMaxConstraints(n int) Option     { return func(l *Limits) { l.MaxConstraints = n } }
func WithMaxRecursionDepth(n int) Option  { return func(l *Limits) { l.MaxRecursionDepth = n } }
func WithMaxSpecializations(n int) Option { return func(l *Limits) { l.MaxSpecializations = n } }
func WithMaxWorkQueueSize(n int) Option   { return func(l *Limits) { l.MaxWorkQueueSize = n } }
func WithMaxMemoryBytes(n int64) Option   { return func(l *Limits) { l.MaxMemoryBytes = n } }
func WithCheckInterval(n int) Option      { return func(l *Limits) { l.CheckInterval = n } }

func WithPhaseTimeout(d time.Duration) Option { return func(l *Limits) { l.PhaseTimeout = d } }
func WithTotalTimeout(d time.Duration) Option { return func(l *Limits) { l.TotalTimeout = d } }

// New applies opts to a copy of base and validates the result. Invalid limits are rejected,
// never clamped.
func New(base Limits, opts ...Option) (Limits, error) {
	for _, opt := range opts {
		opt(&base)
	}
	if err := base.Validate(); err != nil {
		return Limits{}, err
	}
	return base, nil
}

// Custom applies opts to Production limits and validates the result.
func Custom(opts ...Option) (Limits, error) { return New(Production(), opts...) }
