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

package typeutil

import (
	"math"

	"fortio.org/safecast"

	"github.com/wdamron/infer/limits"
	"github.com/wdamron/infer/types"
)

// Operation names reported to the resource monitor.
const (
	OpUnification = "unification"
	OpOccurs      = "occurs_check"
	OpResolve     = "resolve"
)

// Estimated bytes retained by each entry of the store.
const entryBytes = 4 + 1 + 16

// Store is a union-find substitution store for type-variables.
//
// Entries are kept in a flat arena indexed by type-variable id. An entry is a representative
// when its parent is itself; only representatives carry a binding. A nil binding marks an
// unbound equivalence class.
type Store struct {
	monitor *limits.Monitor

	parent  []uint32
	rank    []uint8
	binding []types.Type

	generation uint64

	speculate bool
	trail     []trailEntry
}

// trailEntry restores a single entry during rollback of speculative unification.
type trailEntry struct {
	id      uint32
	parent  uint32
	rank    uint8
	binding types.Type
}

// NewStore creates an empty store which reports usage to monitor.
func NewStore(monitor *limits.Monitor) *Store {
	return &Store{monitor: monitor}
}

// Len returns the number of allocated type-variables.
func (s *Store) Len() int { return len(s.parent) }

// Generation changes whenever a binding or union is made or rolled back.
func (s *Store) Generation() uint64 { return s.generation }

// Fresh allocates a new unbound type-variable.
func (s *Store) Fresh() (types.Var, error) {
	id, err := safecast.Convert[uint32](len(s.parent))
	if err != nil {
		return types.Var{}, &limits.ExceededError{Limit: limits.TypeVariables, Value: int64(len(s.parent)), Max: math.MaxUint32}
	}
	if err := s.monitor.CheckMemoryUsage(entryBytes); err != nil {
		return types.Var{}, err
	}
	if err := s.monitor.AddTypeVariable(); err != nil {
		return types.Var{}, err
	}
	s.monitor.AddMemoryUsage(entryBytes)
	s.parent = append(s.parent, id)
	s.rank = append(s.rank, 0)
	s.binding = append(s.binding, nil)
	return types.Var{Id: id}, nil
}

// owns reports whether id was allocated by the store.
func (s *Store) owns(id uint32) bool { return int(id) < len(s.parent) }

// Find returns the representative of id, re-pointing every visited entry directly at the
// representative. Ids which were not allocated by the store are their own representative.
func (s *Store) Find(id uint32) uint32 {
	if int(id) >= len(s.parent) {
		return id
	}
	root := id
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for s.parent[id] != root {
		next := s.parent[id]
		s.save(id)
		s.parent[id] = root
		id = next
	}
	return root
}

// Binding returns the type bound to the equivalence class of id, or nil if it is unbound.
func (s *Store) Binding(id uint32) types.Type {
	root := s.Find(id)
	if int(root) >= len(s.binding) {
		return nil
	}
	return s.binding[root]
}

// shallow replaces a type-variable with its binding, or with its representative when unbound.
// Bindings are never type-variables, so a single step suffices.
func (s *Store) shallow(t types.Type) types.Type {
	v, ok := t.(types.Var)
	if !ok {
		return t
	}
	root := s.Find(v.Id)
	if int(root) < len(s.binding) && s.binding[root] != nil {
		return s.binding[root]
	}
	return types.Var{Id: root}
}

// union merges two distinct unbound representatives by rank. Ties are broken toward the
// lower id.
func (s *Store) union(a, b uint32) {
	if s.rank[a] < s.rank[b] || (s.rank[a] == s.rank[b] && b < a) {
		a, b = b, a
	}
	s.save(a)
	s.save(b)
	s.parent[b] = a
	if s.rank[a] == s.rank[b] && s.rank[a] < math.MaxUint8 {
		s.rank[a]++
	}
	s.generation++
}

func (s *Store) bind(root uint32, t types.Type) {
	s.save(root)
	s.binding[root] = t
	s.generation++
}

func (s *Store) save(id uint32) {
	if s.speculate {
		s.trail = append(s.trail, trailEntry{id, s.parent[id], s.rank[id], s.binding[id]})
	}
}

// Txn marks the start of speculative unification.
type Txn struct {
	speculate bool
	trail     int
}

// Begin speculative unification. Every change made after Begin can be undone with Rollback.
func (s *Store) Begin() Txn {
	txn := Txn{s.speculate, len(s.trail)}
	s.speculate = true
	return txn
}

// Rollback undoes every change made since txn began. Type-variables allocated since then
// remain allocated, unbound.
func (s *Store) Rollback(txn Txn) {
	for i := len(s.trail) - 1; i >= txn.trail; i-- {
		e := s.trail[i]
		s.parent[e.id], s.rank[e.id], s.binding[e.id] = e.parent, e.rank, e.binding
	}
	s.speculate, s.trail = txn.speculate, s.trail[:txn.trail]
	s.generation++
}

// Commit keeps every change made since txn began.
func (s *Store) Commit(txn Txn) {
	s.speculate = txn.speculate
	if !s.speculate {
		s.trail = s.trail[:txn.trail]
	}
}

// TryUnify unifies a and b, undoing any partial changes if unification fails.
func (s *Store) TryUnify(a, b types.Type) error {
	txn := s.Begin()
	if err := s.Unify(a, b); err != nil {
		s.Rollback(txn)
		return err
	}
	s.Commit(txn)
	return nil
}

// CanUnify reports whether a and b could be unified, without changing the store.
func (s *Store) CanUnify(a, b types.Type) bool {
	txn := s.Begin()
	err := s.Unify(a, b)
	s.Rollback(txn)
	return err == nil
}

// Stats describes the shape of the store.
type Stats struct {
	TotalVariables     int
	EquivalenceClasses int
	BoundClasses       int
	MaxRank            int
}

func (s *Store) Stats() Stats {
	st := Stats{TotalVariables: len(s.parent)}
	for i, p := range s.parent {
		if int(p) != i {
			continue
		}
		st.EquivalenceClasses++
		if s.binding[i] != nil {
			st.BoundClasses++
		}
		if r := int(s.rank[i]); r > st.MaxRank {
			st.MaxRank = r
		}
	}
	return st
}
