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

package infer

import (
	"errors"

	"github.com/benbjohnson/immutable"

	"github.com/wdamron/infer/types"
)

var emptyScope = immutable.NewSortedMap(nil)

// ErrScopeUnderflow is returned when the global scope of a type-environment would be popped.
var ErrScopeUnderflow = errors.New("cannot pop the global scope of a type-environment")

// TypeEnv is a type-environment containing lexically scoped mappings from identifiers to
// types, and from type names to named type definitions.
//
// Scopes are persistent maps, so creating a child environment is cheap and never affects the
// parent. A type-environment cannot be used concurrently for inference; to share a
// type-environment across threads, create a new type-environment for each thread which
// inherits from the shared environment.
type TypeEnv struct {
	values []*immutable.SortedMap
	named  []*immutable.SortedMap
}

// Create a type-environment with a single global scope. The new environment will inherit
// every visible binding from the parent, if the parent is not nil.
func NewTypeEnv(parent *TypeEnv) *TypeEnv {
	if parent == nil {
		return &TypeEnv{
			values: []*immutable.SortedMap{emptyScope},
			named:  []*immutable.SortedMap{emptyScope},
		}
	}
	env := &TypeEnv{
		values: make([]*immutable.SortedMap, len(parent.values), len(parent.values)+4),
		named:  make([]*immutable.SortedMap, len(parent.named), len(parent.named)+4),
	}
	copy(env.values, parent.values)
	copy(env.named, parent.named)
	return env
}

// Depth returns the number of active scopes, including the global scope.
func (e *TypeEnv) Depth() int { return len(e.values) }

// PushScope opens a new innermost scope.
func (e *TypeEnv) PushScope() {
	e.values = append(e.values, emptyScope)
	e.named = append(e.named, emptyScope)
}

// PopScope discards the innermost scope and every binding defined within it.
func (e *TypeEnv) PopScope() error {
	if len(e.values) <= 1 {
		return ErrScopeUnderflow
	}
	n := len(e.values) - 1
	e.values[n], e.named[n] = nil, nil
	e.values, e.named = e.values[:n], e.named[:n]
	return nil
}

// Scoped runs f within a new scope. The scope is popped when f returns, even if f fails.
func (e *TypeEnv) Scoped(f func() error) error {
	depth := len(e.values)
	e.PushScope()
	defer func() {
		for len(e.values) > depth {
			e.PopScope()
		}
	}()
	return f()
}

// Define a type for an identifier within the innermost scope, shadowing outer bindings.
func (e *TypeEnv) Define(name string, t types.Type) {
	n := len(e.values) - 1
	e.values[n] = e.values[n].Set(name, t)
}

// Lookup the type for an identifier, searching the innermost scope first.
func (e *TypeEnv) Lookup(name string) (types.Type, bool) { return lookup(e.values, name) }

// DefineType declares a named type definition within the innermost scope.
func (e *TypeEnv) DefineType(name string, t types.Type) {
	n := len(e.named) - 1
	e.named[n] = e.named[n].Set(name, t)
}

// LookupType finds a named type definition, searching the innermost scope first.
func (e *TypeEnv) LookupType(name string) (types.Type, bool) { return lookup(e.named, name) }

// Names returns the identifiers visible from the innermost scope, in sorted order.
func (e *TypeEnv) Names() []string {
	visible := immutable.NewSortedMapBuilder(emptyScope)
	for _, scope := range e.values {
		for itr := scope.Iterator(); !itr.Done(); {
			k, v := itr.Next()
			visible.Set(k, v)
		}
	}
	m := visible.Map()
	names := make([]string, 0, m.Len())
	for itr := m.Iterator(); !itr.Done(); {
		k, _ := itr.Next()
		names = append(names, k.(string))
	}
	return names
}

func lookup(scopes []*immutable.SortedMap, name string) (types.Type, bool) {
	for i := len(scopes) - 1; i >= 0; i-- {
		if t, ok := scopes[i].Get(name); ok {
			return t.(types.Type), true
		}
	}
	return nil, false
}
