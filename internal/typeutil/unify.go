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
	"strconv"

	"github.com/wdamron/infer/types"
)

// MismatchError reports two types which cannot be unified.
type MismatchError struct {
	A, B   types.Type
	Reason string
}

func (e *MismatchError) Error() string {
	msg := "cannot unify " + types.TypeString(e.A) + " with " + types.TypeString(e.B)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// OccursError reports a type-variable which would be bound to a type containing itself.
type OccursError struct {
	Var  types.Var
	Type types.Type
}

func (e *OccursError) Error() string {
	return "infinite type: " + types.TypeString(e.Var) + " occurs in " + types.TypeString(e.Type)
}

// ForeignVarError reports a type-variable which the store never allocated, such as one taken
// from another context.
type ForeignVarError struct {
	Var types.Var
}

func (e *ForeignVarError) Error() string {
	return "type-variable " + types.TypeString(e.Var) + " was not allocated by this context"
}

func mismatch(a, b types.Type, reason string) error { return &MismatchError{a, b, reason} }

func arity(kind string, a, b int) string {
	return kind + " arity " + strconv.Itoa(a) + " does not match " + strconv.Itoa(b)
}

// Unify a and b, binding or merging type-variables within the store.
//
// Unknown unifies with any type without binding anything. Never unifies only with Never.
// Failures are returned as *MismatchError, *OccursError, *ForeignVarError, or
// *limits.ExceededError.
func (s *Store) Unify(a, b types.Type) error { return s.unify(a, b, 0) }

func (s *Store) unify(a, b types.Type, depth int) error {
	if err := s.monitor.Tick(OpUnification); err != nil {
		return err
	}
	if err := s.monitor.CheckRecursionDepth(OpUnification, depth); err != nil {
		return err
	}
	a, b = s.shallow(a), s.shallow(b)

	av, aIsVar := a.(types.Var)
	bv, bIsVar := b.(types.Var)
	if aIsVar && !s.owns(av.Id) {
		return &ForeignVarError{av}
	}
	if bIsVar && !s.owns(bv.Id) {
		return &ForeignVarError{bv}
	}
	switch {
	case aIsVar && bIsVar:
		if av.Id != bv.Id {
			s.union(av.Id, bv.Id)
		}
		return nil
	case aIsVar:
		return s.bindVar(av, b, depth)
	case bIsVar:
		return s.bindVar(bv, a, depth)
	}

	if _, ok := a.(types.Unknown); ok {
		return nil
	}
	if _, ok := b.(types.Unknown); ok {
		return nil
	}

	switch a := a.(type) {
	case types.Never:
		if _, ok := b.(types.Never); ok {
			return nil
		}

	case types.Scalar:
		if b, ok := b.(types.Scalar); ok && a == b {
			return nil
		}

	case *types.Named:
		if b, ok := b.(*types.Named); ok && a.Name == b.Name {
			return nil
		}

	case *types.Param:
		if b, ok := b.(*types.Param); ok && a.Name == b.Name {
			return nil
		}

	case *types.Generic:
		b, ok := b.(*types.Generic)
		if !ok || a.Name != b.Name {
			break
		}
		if len(a.Args) != len(b.Args) {
			return mismatch(a, b, arity("type argument", len(a.Args), len(b.Args)))
		}
		return s.unifyLists(a.Args, b.Args, depth)

	case *types.Function:
		b, ok := b.(*types.Function)
		if !ok {
			break
		}
		if len(a.Params) != len(b.Params) {
			return mismatch(a, b, arity("parameter", len(a.Params), len(b.Params)))
		}
		if err := s.unifyLists(a.Params, b.Params, depth); err != nil {
			return err
		}
		return s.unify(a.Return, b.Return, depth+1)

	case *types.Array:
		if b, ok := b.(*types.Array); ok {
			return s.unify(a.Elem, b.Elem, depth+1)
		}

	case *types.Tuple:
		b, ok := b.(*types.Tuple)
		if !ok {
			break
		}
		if len(a.Elems) != len(b.Elems) {
			return mismatch(a, b, arity("tuple", len(a.Elems), len(b.Elems)))
		}
		return s.unifyLists(a.Elems, b.Elems, depth)

	case *types.Option:
		if b, ok := b.(*types.Option); ok {
			return s.unify(a.Inner, b.Inner, depth+1)
		}

	case *types.Result:
		b, ok := b.(*types.Result)
		if !ok {
			break
		}
		if err := s.unify(a.Ok, b.Ok, depth+1); err != nil {
			return err
		}
		return s.unify(a.Err, b.Err, depth+1)

	case *types.Future:
		if b, ok := b.(*types.Future); ok {
			return s.unify(a.Inner, b.Inner, depth+1)
		}
	}

	return mismatch(a, b, "")
}

func (s *Store) unifyLists(as, bs []types.Type, depth int) error {
	for i := range as {
		if err := s.unify(as[i], bs[i], depth+1); err != nil {
			return err
		}
	}
	return nil
}

// bindVar binds the unbound representative v to t. Unknown is never bound, so the class
// remains free to unify with later constraints.
func (s *Store) bindVar(v types.Var, t types.Type, depth int) error {
	if _, ok := t.(types.Unknown); ok {
		return nil
	}
	occurs, err := s.occurs(v.Id, t, depth+1)
	if err != nil {
		return err
	}
	if occurs {
		return &OccursError{Var: v, Type: t}
	}
	s.bind(v.Id, t)
	return nil
}

// Occurs reports whether the equivalence class of id appears within t, following bindings of
// nested type-variables.
func (s *Store) Occurs(id uint32, t types.Type) (bool, error) {
	if !s.owns(id) {
		return false, &ForeignVarError{types.Var{Id: id}}
	}
	return s.occurs(s.Find(id), t, 0)
}

func (s *Store) occurs(root uint32, t types.Type, depth int) (bool, error) {
	if err := s.monitor.CheckRecursionDepth(OpOccurs, depth); err != nil {
		return false, err
	}
	switch t := t.(type) {
	case types.Var:
		if !s.owns(t.Id) {
			return false, &ForeignVarError{t}
		}
		r := s.Find(t.Id)
		if r == root {
			return true, nil
		}
		if int(r) < len(s.binding) && s.binding[r] != nil {
			return s.occurs(root, s.binding[r], depth+1)
		}
		return false, nil
	case *types.Generic:
		return s.occursList(root, t.Args, depth)
	case *types.Function:
		if found, err := s.occursList(root, t.Params, depth); found || err != nil {
			return found, err
		}
		return s.occurs(root, t.Return, depth+1)
	case *types.Array:
		return s.occurs(root, t.Elem, depth+1)
	case *types.Tuple:
		return s.occursList(root, t.Elems, depth)
	case *types.Option:
		return s.occurs(root, t.Inner, depth+1)
	case *types.Result:
		if found, err := s.occurs(root, t.Ok, depth+1); found || err != nil {
			return found, err
		}
		return s.occurs(root, t.Err, depth+1)
	case *types.Future:
		return s.occurs(root, t.Inner, depth+1)
	}
	return false, nil
}

func (s *Store) occursList(root uint32, ts []types.Type, depth int) (bool, error) {
	for _, t := range ts {
		if found, err := s.occurs(root, t, depth+1); found || err != nil {
			return found, err
		}
	}
	return false, nil
}
