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
	"github.com/wdamron/infer/types"
)

// Operation name reported to the resource monitor while substituting type-parameters.
const OpInstantiate = "instantiate"

// InstantiateParams defines each named type-parameter in the innermost scope of the
// type-environment as a fresh type-variable. Each call counts as one specialization.
func (ctx *InferenceContext) InstantiateParams(names ...string) ([]types.Var, error) {
	if err := ctx.monitor.AddSpecialization(); err != nil {
		return nil, ctx.fail(resourceError(err, Span{}))
	}
	vars := make([]types.Var, len(names))
	for i, name := range names {
		v, err := ctx.FreshTypeVar()
		if err != nil {
			return nil, err
		}
		ctx.env.Define(name, v)
		vars[i] = v
	}
	return vars, nil
}

// Instantiate replaces each type-parameter of t which is listed in names with a fresh
// type-variable, defining the type-parameters in the innermost scope.
func (ctx *InferenceContext) Instantiate(t types.Type, names []string) (types.Type, error) {
	vars, err := ctx.InstantiateParams(names...)
	if err != nil {
		return nil, err
	}
	params := make(map[string]types.Type, len(names))
	for i, name := range names {
		params[name] = vars[i]
	}
	return ctx.substitute(t, func(t types.Type) (types.Type, bool) {
		if p, ok := t.(*types.Param); ok {
			v, ok := params[p.Name]
			return v, ok
		}
		return nil, false
	})
}

// substitute rebuilds t bottom-up, replacing every sub-term for which replace returns true.
// Sub-terms without replacements are shared.
func (ctx *InferenceContext) substitute(t types.Type, replace func(types.Type) (types.Type, bool)) (types.Type, error) {
	s := substitution{ctx: ctx, replace: replace}
	r, err := s.visit(t, 0)
	if err != nil {
		return nil, ctx.fail(resourceError(err, Span{}))
	}
	return r, nil
}

type substitution struct {
	ctx     *InferenceContext
	replace func(types.Type) (types.Type, bool)
}

func (s *substitution) visit(t types.Type, depth int) (types.Type, error) {
	if err := s.ctx.monitor.CheckRecursionDepth(OpInstantiate, depth); err != nil {
		return nil, err
	}
	if r, ok := s.replace(t); ok {
		return r, nil
	}

	switch t := t.(type) {
	case *types.Generic:
		args, changed, err := s.list(t.Args, depth)
		if err != nil || !changed {
			return t, err
		}
		return &types.Generic{Name: t.Name, Args: args}, nil

	case *types.Function:
		params, changed, err := s.list(t.Params, depth)
		if err != nil {
			return nil, err
		}
		ret, err := s.visit(t.Return, depth+1)
		if err != nil {
			return nil, err
		}
		if !changed && ret == t.Return {
			return t, nil
		}
		return &types.Function{Params: params, Return: ret}, nil

	case *types.Array:
		elem, err := s.visit(t.Elem, depth+1)
		if err != nil || elem == t.Elem {
			return t, err
		}
		return &types.Array{Elem: elem}, nil

	case *types.Tuple:
		elems, changed, err := s.list(t.Elems, depth)
		if err != nil || !changed {
			return t, err
		}
		return &types.Tuple{Elems: elems}, nil

	case *types.Option:
		inner, err := s.visit(t.Inner, depth+1)
		if err != nil || inner == t.Inner {
			return t, err
		}
		return &types.Option{Inner: inner}, nil

	case *types.Result:
		ok, err := s.visit(t.Ok, depth+1)
		if err != nil {
			return nil, err
		}
		e, err := s.visit(t.Err, depth+1)
		if err != nil {
			return nil, err
		}
		if ok == t.Ok && e == t.Err {
			return t, nil
		}
		return &types.Result{Ok: ok, Err: e}, nil

	case *types.Future:
		inner, err := s.visit(t.Inner, depth+1)
		if err != nil || inner == t.Inner {
			return t, err
		}
		return &types.Future{Inner: inner}, nil
	}
	return t, nil
}

func (s *substitution) list(ts []types.Type, depth int) ([]types.Type, bool, error) {
	var out []types.Type
	for i, t := range ts {
		r, err := s.visit(t, depth+1)
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
