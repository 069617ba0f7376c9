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

// Package util holds small graph helpers shared by the inference packages.
package util

// Graph is a directed graph over named vertices. Vertices are numbered in the order they are
// first mentioned.
type Graph struct {
	names []string
	index map[string]int
	succs [][]int
}

func NewGraph() *Graph { return &Graph{index: make(map[string]int)} }

// Vertex returns the number of the vertex name, adding it when missing.
func (g *Graph) Vertex(name string) int {
	if v, ok := g.index[name]; ok {
		return v
	}
	v := len(g.names)
	g.names = append(g.names, name)
	g.index[name] = v
	g.succs = append(g.succs, nil)
	return v
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.names) }

// Name returns the name of vertex v.
func (g *Graph) Name(v int) string { return g.names[v] }

// AddEdge adds an edge between two named vertices. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	f, t := g.Vertex(from), g.Vertex(to)
	if !g.HasEdge(f, t) {
		g.succs[f] = append(g.succs[f], t)
	}
}

func (g *Graph) HasEdge(from, to int) bool {
	for _, succ := range g.succs[from] {
		if succ == to {
			return true
		}
	}
	return false
}

// Cycles returns the names within each strongly connected component which contains a cycle,
// including vertices with an edge to themselves.
func (g *Graph) Cycles() [][]string {
	var cycles [][]string
	for _, c := range g.SCC() {
		if len(c) == 1 && !g.HasEdge(c[0], c[0]) {
			continue
		}
		names := make([]string, len(c))
		for i, v := range c {
			names[i] = g.names[v]
		}
		cycles = append(cycles, names)
	}
	return cycles
}

// SCC returns the strongly connected components of g in topological order: a component is
// listed before every component reachable from it.
func (g *Graph) SCC() [][]int {
	state := sccState{
		indexTable: make([]int, len(g.succs)),
		lowLink:    make([]int, len(g.succs)),
		onStack:    make([]bool, len(g.succs)),
	}
	for v := range g.succs {
		if state.indexTable[v] == 0 {
			g.tarjan(&state, v)
		}
	}
	sccs := state.sccs
	for i, j := 0, len(sccs)-1; i < j; i, j = i+1, j-1 {
		sccs[i], sccs[j] = sccs[j], sccs[i]
	}
	return sccs
}

type sccState struct {
	index      int
	indexTable []int
	lowLink    []int
	onStack    []bool

	stack []int
	sccs  [][]int
}

// Tarjan's SCC algorithm, based on https://github.com/gonum/gonum/blob/master/graph/topo/tarjan.go
//
// Components are found in reverse topological order.
func (g *Graph) tarjan(state *sccState, v int) {
	state.index++
	state.indexTable[v] = state.index
	state.lowLink[v] = state.index
	state.stack = append(state.stack, v)
	state.onStack[v] = true

	for _, succ := range g.succs[v] {
		switch {
		case state.indexTable[succ] == 0:
			g.tarjan(state, succ)
			state.lowLink[v] = min(state.lowLink[v], state.lowLink[succ])
		case state.onStack[succ]:
			state.lowLink[v] = min(state.lowLink[v], state.indexTable[succ])
		}
	}

	if state.lowLink[v] != state.indexTable[v] {
		return
	}
	var c []int
	for {
		top := state.stack[len(state.stack)-1]
		state.stack = state.stack[:len(state.stack)-1]
		state.onStack[top] = false
		c = append(c, top)
		if top == v {
			break
		}
	}
	state.sccs = append(state.sccs, c)
}
