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
	"strings"

	"github.com/wdamron/infer/types"
)

// ConstraintKind identifies the form of a constraint.
type ConstraintKind uint8

const (
	// Two types must unify: `a = b`
	EqualityConstraint ConstraintKind = iota + 1
	// A type must implement a trait: `T: Trait`
	TraitBoundConstraint
	// A type-parameter must implement every listed trait: `T: A + B`
	GenericBoundsConstraint
)

func (k ConstraintKind) String() string {
	switch k {
	case EqualityConstraint:
		return "Equality"
	case TraitBoundConstraint:
		return "TraitBound"
	case GenericBoundsConstraint:
		return "GenericBounds"
	}
	return "Invalid"
}

// Constraint is an immutable requirement recorded during inference.
type Constraint struct {
	kind  ConstraintKind
	span  Span
	left  types.Type
	right types.Type
	name  string
	names []string
}

// Equality requires a and b to unify.
func Equality(a, b types.Type, span Span) Constraint {
	return Constraint{kind: EqualityConstraint, span: span, left: a, right: b}
}

// TraitBound requires t to implement trait.
func TraitBound(t types.Type, trait string, span Span) Constraint {
	return Constraint{kind: TraitBoundConstraint, span: span, left: t, name: trait}
}

// GenericBounds requires the type bound to param to implement every trait in bounds.
func GenericBounds(param string, bounds []string, span Span) Constraint {
	names := make([]string, len(bounds))
	copy(names, bounds)
	return Constraint{kind: GenericBoundsConstraint, span: span, name: param, names: names}
}

func (c Constraint) Kind() ConstraintKind { return c.kind }
func (c Constraint) Span() Span           { return c.span }

// Types returns both sides of an equality, or the bounded type of a trait bound (and nil).
func (c Constraint) Types() (types.Type, types.Type) { return c.left, c.right }

// Trait returns the trait of a trait bound.
func (c Constraint) Trait() string {
	if c.kind != TraitBoundConstraint {
		return ""
	}
	return c.name
}

// Param returns the type-parameter of generic bounds.
func (c Constraint) Param() string {
	if c.kind != GenericBoundsConstraint {
		return ""
	}
	return c.name
}

// Bounds returns a copy of the traits of generic bounds.
func (c Constraint) Bounds() []string {
	bounds := make([]string, len(c.names))
	copy(bounds, c.names)
	return bounds
}

func (c Constraint) String() string {
	switch c.kind {
	case EqualityConstraint:
		return types.TypeString(c.left) + " = " + types.TypeString(c.right)
	case TraitBoundConstraint:
		return types.TypeString(c.left) + ": " + c.name
	case GenericBoundsConstraint:
		return c.name + ": " + strings.Join(c.names, " + ")
	}
	return "<invalid constraint>"
}

func (c Constraint) validate() error {
	switch c.kind {
	case EqualityConstraint:
		if c.left == nil || c.right == nil {
			return invalidConstraint(c, "equality requires two types")
		}
	case TraitBoundConstraint:
		if c.left == nil || c.name == "" {
			return invalidConstraint(c, "trait bound requires a type and a trait")
		}
	case GenericBoundsConstraint:
		if c.name == "" {
			return invalidConstraint(c, "generic bounds require a type-parameter")
		}
	default:
		return invalidConstraint(c, "unknown constraint kind")
	}
	return nil
}
