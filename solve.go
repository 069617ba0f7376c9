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
	"time"

	"github.com/wdamron/infer/types"
)

// Phase and operation names reported to the resource monitor.
const (
	PhaseConstraintSolving = "constraint_solving"
	OpConstraintSolving    = "constraint_solving"
)

// SolveConstraints solves every pending constraint in the order it was recorded.
//
// Solving stops at the first failure, which is returned; the remaining constraints are
// discarded. Missing generic bounds are reported together in a single error. Cached
// resolutions are discarded before solving begins.
func (ctx *InferenceContext) SolveConstraints() error {
	ctx.cache.clear()
	pending := ctx.constraints
	ctx.constraints = emptyConstraints

	m := ctx.monitor
	m.StartPhase(PhaseConstraintSolving)
	defer m.EndPhase(PhaseConstraintSolving)

	start := time.Now()
	ctx.logger.Debug("solving constraints", "constraints", pending.Len(), "vars", ctx.store.Len())

	if err := m.CheckWorkQueueSize(constraintQueue, pending.Len()); err != nil {
		return ctx.fail(resourceError(err, Span{}))
	}
	solved := 0
	for itr := pending.Iterator(); !itr.Done(); {
		_, v := itr.Next()
		c := v.(Constraint)
		if err := m.CheckPhaseTimeout(PhaseConstraintSolving); err != nil {
			return ctx.fail(resourceError(err, c.span))
		}
		if err := m.CheckTotalTimeout(); err != nil {
			return ctx.fail(resourceError(err, c.span))
		}
		if err := m.Tick(OpConstraintSolving); err != nil {
			return ctx.fail(resourceError(err, c.span))
		}
		if err := ctx.solve(c); err != nil {
			ctx.logger.Debug("constraint failed", "constraint", c.String(), "span", c.span.String(), "solved", solved)
			return err
		}
		solved++
	}

	ctx.logger.Debug("solved constraints", "constraints", solved, "elapsed", time.Since(start), "vars", ctx.store.Len())
	if concerns := m.Stats().Concerns(m.Limits()); len(concerns) != 0 {
		ctx.logger.Warn("resource usage approaching limits", "concerns", concerns)
	}
	return nil
}

func (ctx *InferenceContext) solve(c Constraint) error {
	switch c.kind {
	case EqualityConstraint:
		a, err := ctx.resolve(c.left, c.span)
		if err != nil {
			return err
		}
		b, err := ctx.resolve(c.right, c.span)
		if err != nil {
			return err
		}
		return ctx.unify(a, b, c.span)

	case TraitBoundConstraint:
		t, err := ctx.resolve(c.left, c.span)
		if err != nil {
			return err
		}
		if !ctx.checker.ImplementsTrait(t, c.name) {
			return traitError(t, c.name, c.span)
		}
		return nil

	case GenericBoundsConstraint:
		bound, ok := ctx.env.Lookup(c.name)
		if !ok {
			return nil
		}
		t, err := ctx.resolve(bound, c.span)
		if err != nil {
			return err
		}
		if missing := ctx.checker.ValidateTraitBounds(t, c.names); len(missing) != 0 {
			return boundsError(c.name, t, missing, c.span)
		}
		return nil
	}
	return invalidConstraint(c, "unknown constraint kind")
}

func (ctx *InferenceContext) resolve(t types.Type, span Span) (types.Type, error) {
	r, err := ctx.store.Resolve(t)
	if err != nil {
		return nil, ctx.fail(storeError(err, span))
	}
	return r, nil
}
