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
	"fmt"
	"strings"

	"github.com/wdamron/infer/internal/typeutil"
	"github.com/wdamron/infer/limits"
	"github.com/wdamron/infer/types"
)

// ErrorKind classifies inference failures.
type ErrorKind uint8

const (
	// Two types have different shapes or arities
	TypeMismatch ErrorKind = iota + 1
	// A type-variable would be bound to a type containing itself
	OccursCheckFailed
	// A type does not implement a required trait
	TraitNotImplemented
	// A type-parameter is missing one or more required traits
	UnmetGenericBounds
	// A resource ceiling was crossed. This is a protective limit, not a type error in the input.
	ResourceExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "type mismatch"
	case OccursCheckFailed:
		return "occurs check failed"
	case TraitNotImplemented:
		return "trait not implemented"
	case UnmetGenericBounds:
		return "unmet generic bounds"
	case ResourceExceeded:
		return "resource exceeded"
	}
	return "unknown error"
}

// ErrInvalidConstraint is returned when a malformed constraint is recorded.
var ErrInvalidConstraint = errors.New("invalid constraint")

// TypeError reports a failure of inference, attributed to the span of the constraint which
// failed (when known).
type TypeError struct {
	Kind    ErrorKind
	Span    Span
	Message string
	// Underlying *typeutil.MismatchError, *typeutil.OccursError, *typeutil.ForeignVarError,
	// or *limits.ExceededError
	Err error
	// Missing traits, for TraitNotImplemented and UnmetGenericBounds
	Missing []string
}

func (e *TypeError) Error() string {
	if e.Span.IsValid() {
		return e.Span.String() + ": " + e.Message
	}
	return e.Message
}

func (e *TypeError) Unwrap() error { return e.Err }

// IsResourceExceeded reports whether err was caused by a crossed resource ceiling.
func IsResourceExceeded(err error) bool { return errors.Is(err, limits.ErrExceeded) }

// IsTypeError reports whether err is a *TypeError of the given kind.
func IsTypeError(err error, kind ErrorKind) bool {
	var te *TypeError
	return errors.As(err, &te) && te.Kind == kind
}

func invalidConstraint(c Constraint, reason string) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidConstraint, c, reason)
}

func resourceError(err error, span Span) *TypeError {
	return &TypeError{Kind: ResourceExceeded, Span: span, Message: err.Error(), Err: err}
}

// storeError converts a failure to resolve a type into a *TypeError.
func storeError(err error, span Span) *TypeError {
	var foreign *typeutil.ForeignVarError
	if errors.As(err, &foreign) {
		return &TypeError{Kind: TypeMismatch, Span: span, Message: "type mismatch: " + foreign.Error(), Err: err}
	}
	return resourceError(err, span)
}

// unifyError converts a failure of the store into a *TypeError. The expected and found types
// should be resolved before they are passed in.
func unifyError(err error, expected, found types.Type, span Span, resolve func(types.Type) types.Type) error {
	var (
		mismatch *typeutil.MismatchError
		occurs   *typeutil.OccursError
		foreign  *typeutil.ForeignVarError
	)
	switch {
	case errors.As(err, &foreign):
		return storeError(err, span)
	case errors.As(err, &mismatch):
		msg := "type mismatch: expected " + types.TypeString(expected) + ", found " + types.TypeString(found)
		a, b := resolve(mismatch.A), resolve(mismatch.B)
		if !types.Equal(a, expected) || !types.Equal(b, found) || mismatch.Reason != "" {
			msg += ": " + (&typeutil.MismatchError{A: a, B: b, Reason: mismatch.Reason}).Error()
		}
		return &TypeError{Kind: TypeMismatch, Span: span, Message: msg, Err: err}
	case errors.As(err, &occurs):
		msg := "occurs check failed: infinite type " + types.TypeString(occurs.Var) + " = " + types.TypeString(resolve(occurs.Type))
		return &TypeError{Kind: OccursCheckFailed, Span: span, Message: msg, Err: err}
	case IsResourceExceeded(err):
		return resourceError(err, span)
	}
	return err
}

func traitError(t types.Type, trait string, span Span) error {
	return &TypeError{
		Kind:    TraitNotImplemented,
		Span:    span,
		Message: "trait not implemented: " + types.TypeString(t) + " does not implement " + trait,
		Missing: []string{trait},
	}
}

func boundsError(param string, t types.Type, missing []string, span Span) error {
	return &TypeError{
		Kind:    UnmetGenericBounds,
		Span:    span,
		Message: "unmet generic bounds: " + param + " = " + types.TypeString(t) + " does not implement " + strings.Join(missing, " + "),
		Missing: missing,
	}
}
