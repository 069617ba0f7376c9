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
	"time"
)

// Monitor tracks resource usage for a single compilation attempt.
//
// Every Add* and Check* operation validates before it commits: a call which fails leaves the
// tracked quantity unchanged, so callers never observe a value above its limit. The exception
// is Tick, which counts every call but only compares against the limits every CheckInterval
// calls.
//
// A Monitor cannot be used concurrently; create one Monitor for each compilation unit.
type Monitor struct {
	limits Limits
	now    func() time.Time

	start      time.Time
	phases     map[string]time.Time
	iterations map[string]int
	depths     map[string]int
	queues     map[string]int

	memory          int64
	typeVars        int
	constraints     int
	specializations int
}

// NewMonitor creates a monitor for limits. The limits are assumed to be valid.
func NewMonitor(limits Limits) *Monitor {
	m := &Monitor{limits: limits, now: time.Now}
	m.Reset()
	return m
}

// Limits returns the configured limits.
func (m *Monitor) Limits() Limits { return m.limits }

// SetClock replaces the monitor's time source and restarts the total timer.
func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
	m.start = now()
}

// Reset all counters and restart the total timer.
func (m *Monitor) Reset() {
	m.start = m.now()
	m.phases = make(map[string]time.Time)
	m.iterations = make(map[string]int)
	m.depths = make(map[string]int)
	m.queues = make(map[string]int)
	m.memory, m.typeVars, m.constraints, m.specializations = 0, 0, 0, 0
}

// StartPhase anchors the phase timer for name.
func (m *Monitor) StartPhase(name string) { m.phases[name] = m.now() }

// EndPhase stops the phase timer for name.
func (m *Monitor) EndPhase(name string) { delete(m.phases, name) }

// CheckTotalTimeout fails if the compilation attempt has run longer than TotalTimeout.
func (m *Monitor) CheckTotalTimeout() error {
	if elapsed := m.now().Sub(m.start); elapsed > m.limits.TotalTimeout {
		return exceeded(TotalTimeout, "", int64(elapsed), int64(m.limits.TotalTimeout))
	}
	return nil
}

// CheckPhaseTimeout fails if the named phase has run longer than PhaseTimeout. Phases which
// have not been started are not checked.
func (m *Monitor) CheckPhaseTimeout(name string) error {
	started, ok := m.phases[name]
	if !ok {
		return nil
	}
	if elapsed := m.now().Sub(started); elapsed > m.limits.PhaseTimeout {
		return exceeded(PhaseTimeout, name, int64(elapsed), int64(m.limits.PhaseTimeout))
	}
	return nil
}

// CheckTimeouts checks the total timeout, then the timeout of every active phase.
func (m *Monitor) CheckTimeouts() error {
	if err := m.CheckTotalTimeout(); err != nil {
		return err
	}
	for name := range m.phases {
		if err := m.CheckPhaseTimeout(name); err != nil {
			return err
		}
	}
	return nil
}

// CheckIterationLimit adds increment to the running total for op and fails if the total would
// exceed MaxIterations.
func (m *Monitor) CheckIterationLimit(op string, increment int) error {
	next := m.iterations[op] + increment
	if next > m.limits.MaxIterations || next < 0 {
		return exceeded(Iterations, op, int64(next), int64(m.limits.MaxIterations))
	}
	m.iterations[op] = next
	return nil
}

// Tick counts one iteration of op and fails once the count would exceed MaxIterations. The
// count never runs past MaxIterations, so every call after the first failure fails too.
// Timeouts are checked on every CheckInterval-th call.
func (m *Monitor) Tick(op string) error {
	n := m.iterations[op] + 1
	if n > m.limits.MaxIterations {
		return exceeded(Iterations, op, int64(n), int64(m.limits.MaxIterations))
	}
	m.iterations[op] = n
	if n%m.limits.CheckInterval != 0 {
		return nil
	}
	return m.CheckTimeouts()
}

// Iterations returns the running iteration total for op.
func (m *Monitor) Iterations(op string) int { return m.iterations[op] }

// CheckRecursionDepth fails if depth exceeds MaxRecursionDepth. The deepest accepted depth is
// recorded for each operation.
func (m *Monitor) CheckRecursionDepth(op string, depth int) error {
	if depth > m.limits.MaxRecursionDepth {
		return exceeded(RecursionDepth, op, int64(depth), int64(m.limits.MaxRecursionDepth))
	}
	if depth > m.depths[op] {
		m.depths[op] = depth
	}
	return nil
}

// CheckMemoryUsage fails if adding bytes would exceed MaxMemoryBytes. Nothing is recorded.
func (m *Monitor) CheckMemoryUsage(bytes int64) error {
	next := m.memory + bytes
	if next > m.limits.MaxMemoryBytes || next < m.memory {
		return exceeded(Memory, "", next, m.limits.MaxMemoryBytes)
	}
	return nil
}

// AddMemoryUsage adds bytes to the running memory estimate.
func (m *Monitor) AddMemoryUsage(bytes int64) error {
	if err := m.CheckMemoryUsage(bytes); err != nil {
		return err
	}
	m.memory += bytes
	return nil
}

// AddTypeVariable counts one type-variable.
func (m *Monitor) AddTypeVariable() error {
	if m.typeVars >= m.limits.MaxTypeVariables {
		return exceeded(TypeVariables, "", int64(m.typeVars)+1, int64(m.limits.MaxTypeVariables))
	}
	m.typeVars++
	return nil
}

// AddConstraint counts one constraint.
func (m *Monitor) AddConstraint() error {
	if m.constraints >= m.limits.MaxConstraints {
		return exceeded(Constraints, "", int64(m.constraints)+1, int64(m.limits.MaxConstraints))
	}
	m.constraints++
	return nil
}

// AddSpecialization counts one generic instantiation.
func (m *Monitor) AddSpecialization() error {
	if m.specializations >= m.limits.MaxSpecializations {
		return exceeded(Specializations, "", int64(m.specializations)+1, int64(m.limits.MaxSpecializations))
	}
	m.specializations++
	return nil
}

// CheckSpecializationLimit fails if count exceeds MaxSpecializations.
func (m *Monitor) CheckSpecializationLimit(count int) error {
	if count > m.limits.MaxSpecializations {
		return exceeded(Specializations, "", int64(count), int64(m.limits.MaxSpecializations))
	}
	return nil
}

// CheckWorkQueueSize records the size of the named queue and fails if it exceeds
// MaxWorkQueueSize.
func (m *Monitor) CheckWorkQueueSize(name string, size int) error {
	if size > m.limits.MaxWorkQueueSize {
		return exceeded(WorkQueueSize, name, int64(size), int64(m.limits.MaxWorkQueueSize))
	}
	m.queues[name] = size
	return nil
}

// Stats returns a snapshot of the current usage.
func (m *Monitor) Stats() Stats {
	return Stats{
		Elapsed:         m.now().Sub(m.start),
		Iterations:      copyCounts(m.iterations),
		RecursionDepths: copyCounts(m.depths),
		WorkQueues:      copyCounts(m.queues),
		MemoryBytes:     m.memory,
		TypeVariables:   m.typeVars,
		Constraints:     m.constraints,
		Specializations: m.specializations,
	}
}

func copyCounts(m map[string]int) map[string]int {
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
