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

package construct

import (
	"github.com/wdamron/infer"
	"github.com/wdamron/infer/types"
)

// Types

// Named type: `Point`
func TNamed(name string) *types.Named {
	return &types.Named{Name: name}
}

// Named type-parameter: `T`
func TParam(name string) *types.Param {
	return &types.Param{Name: name}
}

// Generic type application: `Vec<i32>`
func TGeneric(name string, args ...types.Type) *types.Generic {
	return &types.Generic{Name: name, Args: args}
}

// Function type: `(i32, i32) -> i32`
func TFunc(params []types.Type, ret types.Type) *types.Function {
	return &types.Function{Params: params, Return: ret}
}

// Function type: `() -> i32`
func TFunc0(ret types.Type) *types.Function {
	return &types.Function{Return: ret}
}

// Function type: `(i32) -> i32`
func TFunc1(param, ret types.Type) *types.Function {
	return &types.Function{Params: []types.Type{param}, Return: ret}
}

// Function type: `(i32, i32) -> i32`
func TFunc2(param1, param2, ret types.Type) *types.Function {
	return &types.Function{Params: []types.Type{param1, param2}, Return: ret}
}

// Array type: `[i32]`
func TArray(elem types.Type) *types.Array {
	return &types.Array{Elem: elem}
}

// Tuple type: `(i32, bool)`
func TTuple(elems ...types.Type) *types.Tuple {
	return &types.Tuple{Elems: elems}
}

// Option type: `Option<i32>`
func TOption(inner types.Type) *types.Option {
	return &types.Option{Inner: inner}
}

// Result type: `Result<i32, string>`
func TResult(ok, err types.Type) *types.Result {
	return &types.Result{Ok: ok, Err: err}
}

// Future type: `Future<i32>`
func TFuture(inner types.Type) *types.Future {
	return &types.Future{Inner: inner}
}

// Constraints

// Source span from line:col to line:col
func Loc(line, col, endLine, endCol int) infer.Span {
	return infer.Span{
		Start: infer.Position{Line: line, Column: col},
		End:   infer.Position{Line: endLine, Column: endCol},
	}
}

// Equality: `a = b`
func Eq(a, b types.Type) infer.Constraint {
	return infer.Equality(a, b, infer.Span{})
}

// Trait bound: `T: Trait`
func Bound(t types.Type, trait string) infer.Constraint {
	return infer.TraitBound(t, trait, infer.Span{})
}

// Generic bounds: `T: A + B`
func Bounds(param string, traits ...string) infer.Constraint {
	return infer.GenericBounds(param, traits, infer.Span{})
}
