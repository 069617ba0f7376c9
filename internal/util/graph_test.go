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

package util

import (
	"sort"
	"testing"
)

func TestCycles(t *testing.T) {
	g := NewGraph()
	g.AddEdge("Ord", "Eq")
	g.AddEdge("Copy", "Clone")
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "A")
	g.AddEdge("Self", "Self")
	g.AddEdge("Ord", "Eq")

	if g.Len() != 8 {
		t.Fatalf("expected 8 vertices, found %d", g.Len())
	}
	cycles := g.Cycles()
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, found %v", cycles)
	}
	for _, c := range cycles {
		sort.Strings(c)
	}
	sort.Slice(cycles, func(i, j int) bool { return len(cycles[i]) > len(cycles[j]) })
	if len(cycles[0]) != 3 || cycles[0][0] != "A" || cycles[0][1] != "B" || cycles[0][2] != "C" {
		t.Fatalf("unexpected cycle %v", cycles[0])
	}
	if len(cycles[1]) != 1 || cycles[1][0] != "Self" {
		t.Fatalf("unexpected cycle %v", cycles[1])
	}
}

func TestSCCTopologicalOrder(t *testing.T) {
	g := NewGraph()
	g.AddEdge("PartialOrd", "Eq")
	g.AddEdge("Ord", "PartialOrd")
	g.AddEdge("Ord", "Eq")

	pos := make(map[string]int)
	for i, c := range g.SCC() {
		if len(c) != 1 {
			t.Fatalf("unexpected cycle %v", c)
		}
		pos[g.Name(c[0])] = i
	}
	if !(pos["Ord"] < pos["PartialOrd"] && pos["PartialOrd"] < pos["Eq"]) {
		t.Fatalf("components are not in topological order: %v", pos)
	}
}
