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
	"io"
	"log/slog"

	"github.com/benbjohnson/immutable"
	"github.com/google/uuid"

	"github.com/wdamron/infer/internal/typeutil"
	"github.com/wdamron/infer/limits"
	"github.com/wdamron/infer/traits"
	"github.com/wdamron/infer/types"
)

// Estimated bytes retained by each recorded constraint.
const constraintBytes = 64

// Name of the work queue holding recorded constraints.
const constraintQueue = "constraints"

var emptyConstraints = immutable.NewList()

// TraitChecker answers trait queries for resolved types. Trait-matching semantics (supertraits,
// blanket implementations, coherence) are entirely the checker's responsibility.
type TraitChecker interface {
	ImplementsTrait(t types.Type, trait string) bool
	// ValidateTraitBounds returns the bounds which t does not implement.
	ValidateTraitBounds(t types.Type, bounds []string) []string
}

// UnionFindStats describes the shape of the substitution store of a context.
type UnionFindStats = typeutil.Stats

// InferenceContext owns the state of inference for a single compilation unit: the
// substitution store, the type-environment, pending constraints, the resolution cache, the
// trait oracle, and the resource monitor.
//
// An inference context cannot be used concurrently. Contexts share no mutable state, so
// independent compilation units may be inferred in parallel with one context each.
type InferenceContext struct {
	id        string
	untrusted bool

	monitor     *limits.Monitor
	store       *typeutil.Store
	env         *TypeEnv
	constraints *immutable.List
	cache       *resolutionCache
	checker     TraitChecker
	logger      *slog.Logger
}

// Option configures an inference context.
type Option func(*InferenceContext)

// WithTraitChecker replaces the builtin trait oracle. A checker shared between contexts must
// be safe for concurrent use.
func WithTraitChecker(c TraitChecker) Option {
	return func(ctx *InferenceContext) { ctx.checker = c }
}

// WithLogger sets the structured logger. By default, nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(ctx *InferenceContext) { ctx.logger = l }
}

// WithCacheCapacity bounds the resolution cache. A capacity of 0 disables caching.
func WithCacheCapacity(n int) Option {
	return func(ctx *InferenceContext) { ctx.cache = newResolutionCache(n) }
}

// WithEnv starts inference from env instead of an empty type-environment. The context takes
// ownership of env.
func WithEnv(env *TypeEnv) Option {
	return func(ctx *InferenceContext) { ctx.env = env }
}

// Create a new inference context bounded by l. Invalid limits are rejected.
func NewContext(l limits.Limits, opts ...Option) (*InferenceContext, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	ctx := &InferenceContext{
		id:          uuid.NewString(),
		monitor:     limits.NewMonitor(l),
		constraints: emptyConstraints,
	}
	for _, opt := range opts {
		opt(ctx)
	}
	if ctx.env == nil {
		ctx.env = NewTypeEnv(nil)
	}
	if ctx.cache == nil {
		ctx.cache = newResolutionCache(DefaultCacheCapacity)
	}
	if ctx.checker == nil {
		ctx.checker = traits.New()
	}
	if ctx.logger == nil {
		ctx.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx.logger = ctx.logger.With("context", ctx.id)
	ctx.store = typeutil.NewStore(ctx.monitor)
	return ctx, nil
}

// Create a new inference context for untrusted input. Production limits are always used.
func NewUntrustedContext(opts ...Option) *InferenceContext {
	ctx, err := NewContext(limits.Production(), opts...)
	if err != nil {
		panic("infer: invalid production limits: " + err.Error())
	}
	ctx.untrusted = true
	return ctx
}

// Id returns the unique identifier of the context, as it appears in log records.
func (ctx *InferenceContext) Id() string { return ctx.id }

// Untrusted reports whether the context was created for untrusted input.
func (ctx *InferenceContext) Untrusted() bool { return ctx.untrusted }

// Env returns the type-environment of the context.
func (ctx *InferenceContext) Env() *TypeEnv { return ctx.env }

// Monitor returns the resource monitor of the context.
func (ctx *InferenceContext) Monitor() *limits.Monitor { return ctx.monitor }

// TraitChecker returns the trait oracle of the context.
func (ctx *InferenceContext) TraitChecker() TraitChecker { return ctx.checker }

// ResourceStats returns a snapshot of the resources consumed so far.
func (ctx *InferenceContext) ResourceStats() limits.Stats { return ctx.monitor.Stats() }

// UnionFindStats describes the substitution store.
func (ctx *InferenceContext) UnionFindStats() UnionFindStats { return ctx.store.Stats() }

// CacheStats describes the resolution cache.
func (ctx *InferenceContext) CacheStats() CacheStats { return ctx.cache.stats() }

// PendingConstraints returns the number of constraints awaiting a solve.
func (ctx *InferenceContext) PendingConstraints() int { return ctx.constraints.Len() }

// Create a unbound type-variable with a unique id.
func (ctx *InferenceContext) FreshTypeVar() (types.Var, error) {
	v, err := ctx.store.Fresh()
	if err != nil {
		return types.Var{}, ctx.fail(resourceError(err, Span{}))
	}
	return v, nil
}

// AddConstraint records c for the next solve.
func (ctx *InferenceContext) AddConstraint(c Constraint) error {
	if err := c.validate(); err != nil {
		return err
	}
	if err := ctx.monitor.CheckWorkQueueSize(constraintQueue, ctx.constraints.Len()+1); err != nil {
		return ctx.fail(resourceError(err, c.span))
	}
	if err := ctx.monitor.CheckMemoryUsage(constraintBytes); err != nil {
		return ctx.fail(resourceError(err, c.span))
	}
	if err := ctx.monitor.AddConstraint(); err != nil {
		return ctx.fail(resourceError(err, c.span))
	}
	ctx.monitor.AddMemoryUsage(constraintBytes)
	ctx.constraints = ctx.constraints.Append(c)
	return nil
}

// AddEquality records that a and b must unify.
func (ctx *InferenceContext) AddEquality(a, b types.Type, span Span) error {
	return ctx.AddConstraint(Equality(a, b, span))
}

// AddTraitBound records that t must implement trait.
func (ctx *InferenceContext) AddTraitBound(t types.Type, trait string, span Span) error {
	return ctx.AddConstraint(TraitBound(t, trait, span))
}

// AddGenericBounds records that the type bound to param must implement every trait in bounds.
func (ctx *InferenceContext) AddGenericBounds(param string, bounds []string, span Span) error {
	return ctx.AddConstraint(GenericBounds(param, bounds, span))
}

// Unify a and b immediately, without recording a constraint.
func (ctx *InferenceContext) Unify(a, b types.Type) error { return ctx.unify(a, b, Span{}) }

// CanUnify reports whether a and b could be unified, without binding any type-variables.
func (ctx *InferenceContext) CanUnify(a, b types.Type) bool { return ctx.store.CanUnify(a, b) }

func (ctx *InferenceContext) unify(a, b types.Type, span Span) error {
	if err := ctx.store.TryUnify(a, b); err != nil {
		return ctx.fail(unifyError(err, ctx.tryResolve(a), ctx.tryResolve(b), span, ctx.tryResolve))
	}
	return nil
}

// ApplySubstitution returns t with every bound type-variable replaced by its binding.
func (ctx *InferenceContext) ApplySubstitution(t types.Type) (types.Type, error) {
	if t == nil || !types.HasVars(t) {
		return t, nil
	}
	gen := ctx.store.Generation()
	key := types.Key(t)
	if r, ok := ctx.cache.get(key, gen); ok {
		return r, nil
	}
	r, err := ctx.store.Resolve(t)
	if err != nil {
		return nil, ctx.fail(storeError(err, Span{}))
	}
	ctx.cache.put(key, gen, r)
	return r, nil
}

// BatchResolveTypes applies the current substitution to each type in ts.
func (ctx *InferenceContext) BatchResolveTypes(ts []types.Type) ([]types.Type, error) {
	if err := ctx.monitor.CheckWorkQueueSize("batch_resolve", len(ts)); err != nil {
		return nil, ctx.fail(resourceError(err, Span{}))
	}
	out := make([]types.Type, len(ts))
	for i, t := range ts {
		r, err := ctx.ApplySubstitution(t)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// Export resolves t and replaces every remaining type-variable with Unknown. Exported types
// are independent of the context and may be shared with other compilation units.
func (ctx *InferenceContext) Export(t types.Type) (types.Type, error) {
	r, err := ctx.ApplySubstitution(t)
	if err != nil || r == nil || !types.HasVars(r) {
		return r, err
	}
	return ctx.substitute(r, func(t types.Type) (types.Type, bool) {
		if _, ok := t.(types.Var); ok {
			return types.Unknown{}, true
		}
		return nil, false
	})
}

// tryResolve resolves t for error messages, falling back to t itself.
func (ctx *InferenceContext) tryResolve(t types.Type) types.Type {
	if r, err := ctx.store.Resolve(t); err == nil {
		return r
	}
	return t
}

// fail logs resource failures before returning err.
func (ctx *InferenceContext) fail(err error) error {
	var exceeded *limits.ExceededError
	if errors.As(err, &exceeded) {
		ctx.logger.Warn("resource limit exceeded",
			"limit", exceeded.Limit.String(),
			"operation", exceeded.Operation,
			"value", exceeded.Value,
			"max", exceeded.Max)
	}
	return err
}
