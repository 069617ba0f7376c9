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

package types

// Type is the base interface for all types.
//
// The set of types is closed: only the types declared in this package implement Type.
type Type interface {
	TypeName() string
	isType()
}

func (Unknown) TypeName() string   { return "Unknown" }
func (Never) TypeName() string     { return "Never" }
func (Scalar) TypeName() string    { return "Scalar" }
func (*Named) TypeName() string    { return "Named" }
func (*Generic) TypeName() string  { return "Generic" }
func (*Function) TypeName() string { return "Function" }
func (*Array) TypeName() string    { return "Array" }
func (*Tuple) TypeName() string    { return "Tuple" }
func (*Option) TypeName() string   { return "Option" }
func (*Result) TypeName() string   { return "Result" }
func (*Future) TypeName() string   { return "Future" }
func (Var) TypeName() string       { return "Var" }
func (*Param) TypeName() string    { return "Param" }

func (Unknown) isType()   {}
func (Never) isType()     {}
func (Scalar) isType()    {}
func (*Named) isType()    {}
func (*Generic) isType()  {}
func (*Function) isType() {}
func (*Array) isType()    {}
func (*Tuple) isType()    {}
func (*Option) isType()   {}
func (*Result) isType()   {}
func (*Future) isType()   {}
func (Var) isType()       {}
func (*Param) isType()    {}

// Unknown type for gradual typing. Unknown unifies with any type.
type Unknown struct{}

// Never type: the result of expressions which do not return.
type Never struct{}

// Scalar type: `i32`, `f32`, `bool`, `string`
type Scalar uint8

const (
	I32 Scalar = iota + 1
	F32
	Bool
	String
)

// Name returns the source-level name of the scalar.
func (s Scalar) Name() string {
	switch s {
	case I32:
		return "i32"
	case F32:
		return "f32"
	case Bool:
		return "bool"
	case String:
		return "string"
	}
	return "invalid"
}

// Named type: structs, actors, and other nominal types.
type Named struct {
	Name string
}

// Generic type application: `Vec<T>`, `Map<K, V>`
type Generic struct {
	Name string
	Args []Type
}

// Function type: `(i32, i32) -> i32`
type Function struct {
	Params []Type
	Return Type
}

// Array type: `[T]`
type Array struct {
	Elem Type
}

// Tuple type: `(i32, bool)`
type Tuple struct {
	Elems []Type
}

// Option type: `Option<T>`
type Option struct {
	Inner Type
}

// Result type: `Result<T, E>`
type Result struct {
	Ok  Type
	Err Type
}

// Future type for async operations: `Future<T>`
type Future struct {
	Inner Type
}

// Type-variable awaiting unification.
//
// A Var is only meaningful within the inference context which allocated it. Type-variables
// must not be constructed directly by callers outside of an inference context.
type Var struct {
	Id uint32
}

// Named type-parameter within a generic context: `T`
type Param struct {
	Name string
}

// Equal reports whether a and b have the same structure. Type-variables are equal only when
// their ids match; no substitution is applied.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case Unknown:
		_, ok := b.(Unknown)
		return ok
	case Never:
		_, ok := b.(Never)
		return ok
	case Scalar:
		b, ok := b.(Scalar)
		return ok && a == b
	case Var:
		b, ok := b.(Var)
		return ok && a.Id == b.Id
	case *Named:
		b, ok := b.(*Named)
		return ok && a.Name == b.Name
	case *Param:
		b, ok := b.(*Param)
		return ok && a.Name == b.Name
	case *Generic:
		b, ok := b.(*Generic)
		return ok && a.Name == b.Name && equalLists(a.Args, b.Args)
	case *Function:
		b, ok := b.(*Function)
		return ok && equalLists(a.Params, b.Params) && Equal(a.Return, b.Return)
	case *Array:
		b, ok := b.(*Array)
		return ok && Equal(a.Elem, b.Elem)
	case *Tuple:
		b, ok := b.(*Tuple)
		return ok && equalLists(a.Elems, b.Elems)
	case *Option:
		b, ok := b.(*Option)
		return ok && Equal(a.Inner, b.Inner)
	case *Result:
		b, ok := b.(*Result)
		return ok && Equal(a.Ok, b.Ok) && Equal(a.Err, b.Err)
	case *Future:
		b, ok := b.(*Future)
		return ok && Equal(a.Inner, b.Inner)
	}
	return false
}

func equalLists(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// HasVars reports whether any type-variable occurs within t.
func HasVars(t Type) bool {
	found := false
	Visit(t, func(t Type) bool {
		if _, ok := t.(Var); ok {
			found = true
		}
		return !found
	})
	return found
}

// Visit calls f for t and each type nested within t, in pre-order. If f returns false,
// types nested within the current type will not be visited.
func Visit(t Type, f func(Type) bool) {
	if t == nil || !f(t) {
		return
	}
	switch t := t.(type) {
	case *Generic:
		for _, arg := range t.Args {
			Visit(arg, f)
		}
	case *Function:
		for _, param := range t.Params {
			Visit(param, f)
		}
		Visit(t.Return, f)
	case *Array:
		Visit(t.Elem, f)
	case *Tuple:
		for _, el := range t.Elems {
			Visit(el, f)
		}
	case *Option:
		Visit(t.Inner, f)
	case *Result:
		Visit(t.Ok, f)
		Visit(t.Err, f)
	case *Future:
		Visit(t.Inner, f)
	}
}
