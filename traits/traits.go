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

// Package traits provides the default trait oracle used during inference.
//
// The oracle answers whether a resolved type implements a named trait. Primitive types have a
// fixed set of builtin implementations; arrays and options implement a trait when their element
// does, and results when both sides do. Embedders may declare custom traits and register
// implementations for individual types.
package traits

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"

	"github.com/wdamron/infer/internal/util"
	"github.com/wdamron/infer/types"
)

// Builtin trait names.
const (
	Eq      = "Eq"
	Ord     = "Ord"
	Clone   = "Clone"
	Display = "Display"
	Debug   = "Debug"
	Default = "Default"
	Copy    = "Copy"
	Hash    = "Hash"
)

var builtinTraits = []string{Eq, Ord, Clone, Display, Debug, Default, Copy, Hash}

// ErrFrozen is returned when a frozen checker is modified.
var ErrFrozen = errors.New("trait checker is frozen")

// Checker is the default trait oracle.
//
// A Checker cannot be modified concurrently with queries. After Freeze, a Checker is read-only
// and may be shared between inference contexts running in parallel.
type Checker struct {
	supers map[string]*set.Set[string]
	impls  map[string]*set.Set[string]
	frozen bool

	mu   sync.Mutex
	memo map[memoKey]bool
}

type memoKey struct{ typ, trait string }

// New creates a checker with the builtin traits and implementations.
func New() *Checker {
	c := &Checker{
		supers: make(map[string]*set.Set[string], len(builtinTraits)),
		impls:  make(map[string]*set.Set[string]),
		memo:   make(map[memoKey]bool),
	}
	for _, name := range builtinTraits {
		c.supers[name] = set.New[string](0)
	}
	c.supers[Ord].Insert(Eq)
	c.supers[Copy].Insert(Clone)

	primitive := []string{Eq, Clone, Display, Debug, Default, Hash}
	for _, s := range []types.Scalar{types.I32, types.F32, types.Bool, types.String} {
		impls := set.From(primitive)
		switch s {
		case types.I32, types.F32:
			impls.Insert(Ord)
			impls.Insert(Copy)
		case types.Bool:
			impls.Insert(Copy)
		}
		c.impls[types.Key(s)] = impls
	}
	return c
}

// Freeze makes the checker read-only.
func (c *Checker) Freeze() { c.frozen = true }

// Frozen reports whether the checker is read-only.
func (c *Checker) Frozen() bool { return c.frozen }

// Known reports whether trait is builtin or was declared.
func (c *Checker) Known(trait string) bool {
	_, ok := c.supers[trait]
	return ok
}

// Declare a custom trait with the given supertraits, or add supertraits to a trait which
// was already declared. Every supertrait must already be known. Declarations which would make
// a trait depend on itself are rejected and leave the checker unchanged.
func (c *Checker) Declare(name string, supers ...string) error {
	if c.frozen {
		return ErrFrozen
	}
	if name == "" {
		return errors.New("trait name must not be empty")
	}
	for _, s := range supers {
		if !c.Known(s) {
			return errors.New("cannot declare trait " + name + ": unknown supertrait " + s)
		}
	}

	g := util.NewGraph()
	for trait, ss := range c.supers {
		g.Vertex(trait)
		for _, s := range ss.Slice() {
			g.AddEdge(trait, s)
		}
	}
	for _, s := range supers {
		g.AddEdge(name, s)
	}
	if cycles := g.Cycles(); len(cycles) != 0 {
		cycle := cycles[0]
		slices.Sort(cycle)
		return errors.New("cannot declare trait " + name + ": cyclic trait dependencies between " + strings.Join(cycle, ", "))
	}

	ss, ok := c.supers[name]
	if !ok {
		ss = set.New[string](len(supers))
		c.supers[name] = ss
	}
	for _, s := range supers {
		ss.Insert(s)
	}
	c.clearMemo()
	return nil
}

// Implement registers an implementation of trait for the resolved type t. The type must
// already implement every supertrait of trait.
func (c *Checker) Implement(t types.Type, trait string) error {
	if c.frozen {
		return ErrFrozen
	}
	if !c.Known(trait) {
		return errors.New("cannot implement unknown trait " + trait)
	}
	if types.HasVars(t) {
		return errors.New("cannot implement trait " + trait + " for unresolved type " + types.TypeString(t))
	}
	if missing := c.MissingDependencies(t, trait); len(missing) != 0 {
		return errors.New("cannot implement trait " + trait + " for " + types.TypeString(t) + ": missing supertraits " + strings.Join(missing, ", "))
	}
	key := types.Key(t)
	impls, ok := c.impls[key]
	if !ok {
		impls = set.New[string](1)
		c.impls[key] = impls
	}
	impls.Insert(trait)
	c.clearMemo()
	return nil
}

// ImplementsTrait reports whether t implements trait. Unknown implements every trait;
// unresolved type-variables, type-parameters, and functions implement none.
func (c *Checker) ImplementsTrait(t types.Type, trait string) bool {
	key := memoKey{types.Key(t), trait}
	c.mu.Lock()
	result, ok := c.memo[key]
	c.mu.Unlock()
	if ok {
		return result
	}
	result = c.implements(t, trait)
	c.mu.Lock()
	c.memo[key] = result
	c.mu.Unlock()
	return result
}

func (c *Checker) implements(t types.Type, trait string) bool {
	if _, ok := t.(types.Unknown); ok {
		return true
	}
	if impls, ok := c.impls[types.Key(t)]; ok && impls.Contains(trait) {
		return true
	}
	switch t := t.(type) {
	case *types.Array:
		return c.implements(t.Elem, trait)
	case *types.Option:
		return c.implements(t.Inner, trait)
	case *types.Result:
		return c.implements(t.Ok, trait) && c.implements(t.Err, trait)
	}
	return false
}

// ValidateTraitBounds returns the bounds which t does not implement, in order.
func (c *Checker) ValidateTraitBounds(t types.Type, bounds []string) []string {
	return lo.Filter(lo.Uniq(bounds), func(trait string, _ int) bool {
		return !c.ImplementsTrait(t, trait)
	})
}

// MissingDependencies returns the direct and indirect supertraits of trait which t does not
// implement, sorted by name.
func (c *Checker) MissingDependencies(t types.Type, trait string) []string {
	seen := set.New[string](4)
	var visit func(string)
	visit = func(trait string) {
		ss, ok := c.supers[trait]
		if !ok {
			return
		}
		for _, s := range ss.Slice() {
			if seen.Insert(s) {
				visit(s)
			}
		}
	}
	visit(trait)
	missing := lo.Filter(seen.Slice(), func(s string, _ int) bool { return !c.ImplementsTrait(t, s) })
	slices.Sort(missing)
	return missing
}

// ImplementedTraits returns the builtin traits implemented by t, in declaration order.
func (c *Checker) ImplementedTraits(t types.Type) []string {
	return lo.Filter(builtinTraits, func(trait string, _ int) bool { return c.ImplementsTrait(t, trait) })
}

// ClearCache discards memoized results.
func (c *Checker) ClearCache() { c.clearMemo() }

func (c *Checker) clearMemo() {
	c.mu.Lock()
	clear(c.memo)
	c.mu.Unlock()
}
