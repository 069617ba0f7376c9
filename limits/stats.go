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
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats is a snapshot of the resources consumed by a compilation attempt.
type Stats struct {
	Elapsed time.Duration
	// Running iteration totals per operation
	Iterations map[string]int
	// Deepest accepted recursion depth per operation
	RecursionDepths map[string]int
	// Last recorded size per work queue
	WorkQueues map[string]int

	MemoryBytes     int64
	TypeVariables   int
	Constraints     int
	Specializations int
}

// concernThreshold is the fraction of a limit above which usage is reported as a concern.
const concernThreshold = 0.8

// Concerns lists every quantity above 80% of its configured limit, sorted by name.
func (s Stats) Concerns(l Limits) []string {
	var concerns []string
	check := func(name string, value, max int64) {
		if max > 0 && float64(value) > float64(max)*concernThreshold {
			concerns = append(concerns, name)
		}
	}
	for op, n := range s.Iterations {
		check(Iterations.String()+"."+op, int64(n), int64(l.MaxIterations))
	}
	for op, n := range s.RecursionDepths {
		check(RecursionDepth.String()+"."+op, int64(n), int64(l.MaxRecursionDepth))
	}
	for name, n := range s.WorkQueues {
		check(WorkQueueSize.String()+"."+name, int64(n), int64(l.MaxWorkQueueSize))
	}
	check(Memory.String(), s.MemoryBytes, l.MaxMemoryBytes)
	check(TypeVariables.String(), int64(s.TypeVariables), int64(l.MaxTypeVariables))
	check(Constraints.String(), int64(s.Constraints), int64(l.MaxConstraints))
	check(Specializations.String(), int64(s.Specializations), int64(l.MaxSpecializations))
	check(TotalTimeout.String(), int64(s.Elapsed), int64(l.TotalTimeout))
	sort.Strings(concerns)
	return concerns
}

// String summarizes the snapshot on a single line.
func (s Stats) String() string {
	var sb strings.Builder
	sb.WriteString("elapsed=" + s.Elapsed.String())
	sb.WriteString(" vars=" + humanize.Comma(int64(s.TypeVariables)))
	sb.WriteString(" constraints=" + humanize.Comma(int64(s.Constraints)))
	sb.WriteString(" specializations=" + humanize.Comma(int64(s.Specializations)))
	sb.WriteString(" memory=" + humanize.IBytes(uint64(max(s.MemoryBytes, 0))))
	writeCounts(&sb, "iterations", s.Iterations)
	writeCounts(&sb, "depth", s.RecursionDepths)
	writeCounts(&sb, "queue", s.WorkQueues)
	return sb.String()
}

func writeCounts(sb *strings.Builder, prefix string, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(" " + prefix + "." + name + "=" + humanize.Comma(int64(counts[name])))
	}
}
