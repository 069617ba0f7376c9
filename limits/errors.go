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
	"errors"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// ErrExceeded matches every error returned when a resource ceiling is crossed:
//
//	errors.Is(err, limits.ErrExceeded)
var ErrExceeded = errors.New("resource limit exceeded")

// Kind identifies a configured ceiling.
type Kind int

const (
	Iterations Kind = iota
	TypeVariables
	Constraints
	RecursionDepth
	PhaseTimeout
	TotalTimeout
	Specializations
	WorkQueueSize
	Memory
)

// String returns the configuration name of the limit.
func (k Kind) String() string {
	switch k {
	case Iterations:
		return "max_iterations"
	case TypeVariables:
		return "max_type_variables"
	case Constraints:
		return "max_constraints"
	case RecursionDepth:
		return "max_recursion_depth"
	case PhaseTimeout:
		return "phase_timeout"
	case TotalTimeout:
		return "total_timeout"
	case Specializations:
		return "max_specializations"
	case WorkQueueSize:
		return "max_work_queue_size"
	case Memory:
		return "max_memory_bytes"
	}
	return "unknown_limit"
}

// ExceededError reports a crossed ceiling. It is a protective limit, not a defect in the
// program being checked.
type ExceededError struct {
	Limit Kind
	// Operation, phase, or queue which crossed the limit (may be empty)
	Operation string
	// Observed value and configured maximum. Timeouts are in nanoseconds, memory in bytes.
	Value int64
	Max   int64
}

func (e *ExceededError) Is(target error) bool { return target == ErrExceeded }

func (e *ExceededError) Error() string {
	msg := "resource limit exceeded: " + e.Limit.String() + " = " + e.format(e.Max)
	if e.Operation != "" {
		msg += " for " + strconv.Quote(e.Operation)
	}
	switch e.Limit {
	case PhaseTimeout, TotalTimeout:
		msg += " (elapsed " + e.format(e.Value) + ")"
	default:
		msg += " (reached " + e.format(e.Value) + ")"
	}
	return msg
}

func (e *ExceededError) format(v int64) string {
	switch e.Limit {
	case PhaseTimeout, TotalTimeout:
		return time.Duration(v).String()
	case Memory:
		if v < 0 {
			v = 0
		}
		return humanize.IBytes(uint64(v))
	}
	return humanize.Comma(v)
}

func exceeded(kind Kind, op string, value, max int64) error {
	return &ExceededError{Limit: kind, Operation: op, Value: value, Max: max}
}
