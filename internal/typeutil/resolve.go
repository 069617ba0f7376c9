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
	"github.com/wdamron/infer/types"
)

// Resolve returns t with every reachable type-variable replaced by its binding, recursively.
// Unbound type-variables resolve to their representative. Types without type-variables are
// returned unchanged. Type-variables which the store never allocated fail with
// *ForeignVarError.
func (s *Store) Resolve(t types.Type) (types.Type, error) { return s.resolve(t, 0) }

func (s *Store) resolve(t types.Type, depth int) (types.Type, error) {
	if err := s.monitor.CheckRecursionDepth(OpResolve, depth); err != nil {
		return nil, err
	}
	switch t := t.(type) {
	case types.Var:
		if !s.owns(t.Id) {
			return nil, &ForeignVarError{t}
		}
		t2 := s.shallow(t)
		if v, ok := t2.(types.Var); ok {
			return v, nil
		}
		return s.resolve(t2, depth+1)

	case *types.Generic:
		args, changed, err := s.resolveList(t.Args, depth)
		if err != nil || !changed {
			return t, err
		}
		return &types.Generic{Name: t.Name, Args: args}, nil

	case *types.Function:
		params, changed, err := s.resolveList(t.Params, depth)
		if err != nil {
			return nil, err
		}
		ret, err := s.resolve(t.Return, depth+1)
		if err != nil {
			return nil, err
		}
		if !changed && ret == t.Return {
			return t, nil
		}
		return &types.Function{Params: params, Return: ret}, nil

	case *types.Array:
		elem, err := s.resolve(t.Elem, depth+1)
		if err != nil || elem == t.Elem {
			return t, err
		}
		return &types.Array{Elem: elem}, nil

	case *types.Tuple:
		elems, changed, err := s.resolveList(t.Elems, depth)
		if err != nil || !changed {
			return t, err
		}
		return &types.Tuple{Elems: elems}, nil

	case *types.Option:
		inner, err := s.resolve(t.Inner, depth+1)
		if err != nil || inner == t.Inner {
			return t, err
		}
		return &types.Option{Inner: inner}, nil

	case *types.Result:
		ok, err := s.resolve(t.Ok, depth+1)
		if err != nil {
			return nil, err
		}
		e, err := s.resolve(t.Err, depth+1)
		if err != nil {
			return nil, err
		}
		if ok == t.Ok && e == t.Err {
			return t, nil
		}
		return &types.Result{Ok: ok, Err: e}, nil

	case *types.Future:
		inner, err := s.resolve(t.Inner, depth+1)
		if err != nil || inner == t.Inner {
			return t, err
		}
		return &types.Future{Inner: inner}, nil
	}
	return t, nil
}

// resolveList resolves each type in ts. ts itself is returned when nothing changed.
func (s *Store) resolveList(ts []types.Type, depth int) ([]types.Type, bool, error) {
	var out []types.Type
	for i, t := range ts {
		r, err := s.resolve(t, depth+1)
		if err != nil {
			return nil, false, err
		}
		if out == nil && r != t {
			out = make([]types.Type, len(ts))
			copy(out, ts[:i])
		}
		if out != nil {
			out[i] = r
		}
	}
	if out == nil {
		return ts, false, nil
	}
	return out, true, nil
}
