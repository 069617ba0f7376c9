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

package infer_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/kr/pretty"

	. "github.com/wdamron/infer"
	. "github.com/wdamron/infer/construct"

	"github.com/wdamron/infer/internal/typeutil"
	"github.com/wdamron/infer/limits"
	"github.com/wdamron/infer/traits"
	"github.com/wdamron/infer/types"
)

func newContext(t *testing.T, opts ...limits.Option) *InferenceContext {
	t.Helper()
	l, err := limits.New(limits.Testing(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := NewContext(l)
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

func freshVars(t *testing.T, ctx *InferenceContext, n int) []types.Var {
	t.Helper()
	vs := make([]types.Var, n)
	for i := range vs {
		v, err := ctx.FreshTypeVar()
		if err != nil {
			t.Fatal(err)
		}
		vs[i] = v
	}
	return vs
}

func expectType(t *testing.T, ctx *InferenceContext, ty types.Type, want types.Type) {
	t.Helper()
	r, err := ctx.ApplySubstitution(ty)
	if err != nil {
		t.Fatal(err)
	}
	if !types.Equal(r, want) {
		t.Fatalf("expected %s, found %s", types.TypeString(want), types.TypeString(r))
	}
}

func expectKind(t *testing.T, err error, kind ErrorKind) *TypeError {
	t.Helper()
	var te *TypeError
	if !errors.As(err, &te) || te.Kind != kind {
		t.Fatalf("expected %s, found %v", kind, err)
	}
	return te
}

func addAll(t *testing.T, ctx *InferenceContext, cs ...Constraint) {
	t.Helper()
	for _, c := range cs {
		if err := ctx.AddConstraint(c); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReflexivity(t *testing.T) {
	ctx := newContext(t)
	a := freshVars(t, ctx, 1)[0]
	before := ctx.UnionFindStats()
	if err := ctx.Unify(a, a); err != nil {
		t.Fatal(err)
	}
	if after := ctx.UnionFindStats(); after != before {
		t.Fatalf("unifying a type-variable with itself modified the store: %# v", pretty.Formatter(after))
	}
	expectType(t, ctx, a, a)
}

func TestTransitivePropagation(t *testing.T) {
	ctx := newContext(t)
	vs := freshVars(t, ctx, 2)
	a, b := vs[0], vs[1]
	if err := ctx.Unify(a, b); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Unify(a, types.I32); err != nil {
		t.Fatal(err)
	}
	expectType(t, ctx, a, types.I32)
	expectType(t, ctx, b, types.I32)
}

func TestStructuralDecomposition(t *testing.T) {
	ctx := newContext(t)
	vs := freshVars(t, ctx, 2)
	a, b := vs[0], vs[1]
	if err := ctx.Unify(TFunc1(a, b), TFunc1(types.I32, types.String)); err != nil {
		t.Fatal(err)
	}
	expectType(t, ctx, a, types.I32)
	expectType(t, ctx, b, types.String)
}

func TestOccursCheck(t *testing.T) {
	ctx := newContext(t)
	a := freshVars(t, ctx, 1)[0]
	if err := ctx.AddEquality(a, TArray(a), Loc(3, 5, 3, 12)); err != nil {
		t.Fatal(err)
	}
	te := expectKind(t, ctx.SolveConstraints(), OccursCheckFailed)
	if te.Error() != "3:5: occurs check failed: infinite type T0 = [T0]" {
		t.Fatalf("unexpected message %q", te)
	}
	expectType(t, ctx, a, a)
}

func TestShapeMismatch(t *testing.T) {
	ctx := newContext(t)
	err := ctx.Unify(TTuple(types.I32, types.Bool), TTuple(types.I32))
	te := expectKind(t, err, TypeMismatch)
	if !strings.Contains(te.Message, "expected (i32, bool), found (i32,)") || !strings.Contains(te.Message, "tuple arity 2 does not match 1") {
		t.Fatalf("unexpected message %q", te.Message)
	}

	ctx = newContext(t)
	a := freshVars(t, ctx, 1)[0]
	if err := ctx.AddEquality(TFunc1(types.I32, a), TFunc1(types.I32, types.Bool), Span{}); err != nil {
		t.Fatal(err)
	}
	if err := ctx.AddEquality(TFunc1(types.I32, a), TFunc1(types.F32, types.Bool), Span{}); err != nil {
		t.Fatal(err)
	}
	te = expectKind(t, ctx.SolveConstraints(), TypeMismatch)
	if te.Message != "type mismatch: expected (i32) -> bool, found (f32) -> bool: cannot unify i32 with f32" {
		t.Fatalf("unexpected message %q", te.Message)
	}
}

func TestIdempotentResolution(t *testing.T) {
	ctx := newContext(t)
	vs := freshVars(t, ctx, 4)
	a, b, c, d := vs[0], vs[1], vs[2], vs[3]
	addAll(t, ctx, Eq(a, TOption(b)), Eq(b, TResult(c, types.String)), Eq(c, TTuple(types.I32, d)))
	if err := ctx.SolveConstraints(); err != nil {
		t.Fatal(err)
	}
	for _, ty := range []types.Type{a, b, c, d, TFunc2(a, d, c)} {
		once, err := ctx.ApplySubstitution(ty)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := ctx.ApplySubstitution(once)
		if err != nil {
			t.Fatal(err)
		}
		if !types.Equal(once, twice) {
			t.Fatalf("resolution is not idempotent: %s != %s", types.TypeString(once), types.TypeString(twice))
		}
	}
	expectType(t, ctx, a, TOption(TResult(TTuple(types.I32, d), types.String)))
}

func TestTypeVariableCeiling(t *testing.T) {
	ctx := newContext(t, limits.WithMaxTypeVariables(2))
	freshVars(t, ctx, 2)
	_, err := ctx.FreshTypeVar()
	expectKind(t, err, ResourceExceeded)
	if !IsResourceExceeded(err) {
		t.Fatalf("expected IsResourceExceeded")
	}
	var exceeded *limits.ExceededError
	if !errors.As(err, &exceeded) || exceeded.Limit != limits.TypeVariables || exceeded.Max != 2 {
		t.Fatalf("unexpected error %v", err)
	}
	if n := ctx.UnionFindStats().TotalVariables; n != 2 {
		t.Fatalf("expected 2 type-variables, found %d", n)
	}
}

func TestTraitBounds(t *testing.T) {
	ctx := newContext(t)
	if err := ctx.AddTraitBound(types.I32, traits.Eq, Span{}); err != nil {
		t.Fatal(err)
	}
	if err := ctx.SolveConstraints(); err != nil {
		t.Fatal(err)
	}
	if err := ctx.AddTraitBound(types.String, traits.Ord, Loc(7, 1, 7, 4)); err != nil {
		t.Fatal(err)
	}
	te := expectKind(t, ctx.SolveConstraints(), TraitNotImplemented)
	if te.Error() != "7:1: trait not implemented: string does not implement Ord" {
		t.Fatalf("unexpected message %q", te)
	}

	// resolved before the oracle is consulted
	a := freshVars(t, ctx, 1)[0]
	addAll(t, ctx, Eq(TArray(a), TArray(types.F32)), Bound(TOption(a), traits.Ord))
	if err := ctx.SolveConstraints(); err != nil {
		t.Fatal(err)
	}
}

func TestBatchedGenericBounds(t *testing.T) {
	ctx := newContext(t)
	vs, err := ctx.InstantiateParams("T")
	if err != nil {
		t.Fatal(err)
	}
	addAll(t, ctx,
		Eq(vs[0], TNamed("Widget")),
		Bounds("U", traits.Clone),
		GenericBounds("T", []string{traits.Clone, "Send"}, Loc(2, 3, 2, 20)))
	te := expectKind(t, ctx.SolveConstraints(), UnmetGenericBounds)
	if diff := pretty.Diff(te.Missing, []string{"Clone", "Send"}); len(diff) != 0 {
		t.Fatalf("expected both missing bounds: %v", diff)
	}
	if te.Error() != "2:3: unmet generic bounds: T = Widget does not implement Clone + Send" {
		t.Fatalf("unexpected message %q", te)
	}
}

func TestEndToEnd(t *testing.T) {
	ctx := newContext(t)
	vs := freshVars(t, ctx, 3)
	a, b, c := vs[0], vs[1], vs[2]
	addAll(t, ctx, Eq(a, b), Eq(a, types.I32), Eq(c, TFunc1(a, types.Bool)))
	if err := ctx.SolveConstraints(); err != nil {
		t.Fatal(err)
	}
	expectType(t, ctx, c, TFunc1(types.I32, types.Bool))
	expectType(t, ctx, b, types.I32)
	if n := ctx.PendingConstraints(); n != 0 {
		t.Fatalf("expected solved constraints to be drained, found %d", n)
	}
	resolved, err := ctx.BatchResolveTypes([]types.Type{a, b, c})
	if err != nil {
		t.Fatal(err)
	}
	if s := types.TypeString(TTuple(resolved...)); s != "(i32, i32, (i32) -> bool)" {
		t.Fatalf("unexpected resolved types %s", s)
	}
}

func TestFailFast(t *testing.T) {
	ctx := newContext(t)
	vs := freshVars(t, ctx, 2)
	a, b := vs[0], vs[1]
	addAll(t, ctx, Eq(a, types.I32), Eq(a, types.Bool), Bound(types.String, traits.Ord), Eq(b, types.F32))
	expectKind(t, ctx.SolveConstraints(), TypeMismatch)
	expectType(t, ctx, a, types.I32)
	expectType(t, ctx, b, b)
	if n := ctx.PendingConstraints(); n != 0 {
		t.Fatalf("expected remaining constraints to be discarded, found %d", n)
	}
}

func TestUnknownIsGradual(t *testing.T) {
	ctx := newContext(t)
	a := freshVars(t, ctx, 1)[0]
	addAll(t, ctx, Eq(a, types.Unknown{}), Eq(TArray(types.Unknown{}), TArray(types.Bool)), Eq(a, types.I32))
	if err := ctx.SolveConstraints(); err != nil {
		t.Fatal(err)
	}
	expectType(t, ctx, a, types.I32)
	if err := ctx.Unify(types.Never{}, types.I32); err == nil {
		t.Fatalf("never must only unify with never")
	}
}

func TestCacheInvalidation(t *testing.T) {
	ctx := newContext(t)
	a := freshVars(t, ctx, 1)[0]
	arr := TArray(a)
	expectType(t, ctx, arr, arr)
	expectType(t, ctx, arr, arr)
	if err := ctx.Unify(a, types.I32); err != nil {
		t.Fatal(err)
	}
	expectType(t, ctx, arr, TArray(types.I32))
	if s := ctx.CacheStats(); s.Hits != 1 || s.Misses != 2 || s.Entries != 1 {
		t.Fatalf("unexpected cache stats %+v", s)
	}
	if err := ctx.SolveConstraints(); err != nil {
		t.Fatal(err)
	}
	if s := ctx.CacheStats(); s.Entries != 0 {
		t.Fatalf("expected the cache to be cleared by a solve, found %+v", s)
	}

	l, _ := limits.New(limits.Testing())
	uncached, err := NewContext(l, WithCacheCapacity(0))
	if err != nil {
		t.Fatal(err)
	}
	b := freshVars(t, uncached, 1)[0]
	expectType(t, uncached, TOption(b), TOption(b))
	if s := uncached.CacheStats(); s.Entries != 0 {
		t.Fatalf("expected caching to be disabled, found %+v", s)
	}
}

func TestCacheKeysDistinguishNames(t *testing.T) {
	ctx := newContext(t)
	v := freshVars(t, ctx, 1)[0]
	if err := ctx.Unify(v, types.I32); err != nil {
		t.Fatal(err)
	}
	expectType(t, ctx, TTuple(TNamed("x, %z"), v), TTuple(TNamed("x, %z"), types.I32))
	expectType(t, ctx, TTuple(TNamed("x"), TNamed("z"), v), TTuple(TNamed("x"), TNamed("z"), types.I32))
	if s := ctx.CacheStats(); s.Hits != 0 || s.Entries != 2 {
		t.Fatalf("unexpected cache stats %+v", s)
	}
}

func TestForeignTypeVariable(t *testing.T) {
	ctx, other := newContext(t), newContext(t)
	a := freshVars(t, ctx, 1)[0]
	foreign := freshVars(t, other, 3)[2]

	var fe *typeutil.ForeignVarError
	err := ctx.Unify(a, foreign)
	expectKind(t, err, TypeMismatch)
	if !errors.As(err, &fe) || IsResourceExceeded(err) {
		t.Fatalf("expected a foreign type-variable error, found %v", err)
	}
	expectKind(t, ctx.Unify(a, TArray(foreign)), TypeMismatch)
	if _, err := ctx.ApplySubstitution(TOption(foreign)); !errors.As(err, &fe) {
		t.Fatalf("expected a foreign type-variable error, found %v", err)
	}
	expectType(t, ctx, a, a)

	addAll(t, ctx, Eq(foreign, types.I32))
	expectKind(t, ctx.SolveConstraints(), TypeMismatch)
}

func TestTypeEnvScopes(t *testing.T) {
	ctx := newContext(t)
	env := ctx.Env()
	env.Define("x", types.I32)
	env.DefineType("Meters", types.F32)
	err := env.Scoped(func() error {
		env.Define("x", types.Bool)
		env.Define("y", types.String)
		if x, _ := env.Lookup("x"); x != types.Type(types.Bool) {
			t.Fatalf("expected the inner binding of x, found %s", types.TypeString(x))
		}
		if m, ok := env.LookupType("Meters"); !ok || m != types.Type(types.F32) {
			t.Fatalf("expected outer type definitions to be visible")
		}
		if env.Depth() != 2 {
			t.Fatalf("expected depth 2, found %d", env.Depth())
		}
		if names := env.Names(); len(names) != 2 || names[0] != "x" || names[1] != "y" {
			t.Fatalf("unexpected names %v", names)
		}
		return errors.New("boom")
	})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected the error returned within the scope, found %v", err)
	}
	if x, _ := env.Lookup("x"); x != types.Type(types.I32) {
		t.Fatalf("expected the outer binding of x, found %s", types.TypeString(x))
	}
	if _, ok := env.Lookup("y"); ok {
		t.Fatalf("y must not be visible after its scope is popped")
	}
	if env.Depth() != 1 {
		t.Fatalf("expected depth 1, found %d", env.Depth())
	}
	if err := env.PopScope(); !errors.Is(err, ErrScopeUnderflow) {
		t.Fatalf("expected ErrScopeUnderflow, found %v", err)
	}

	child := NewTypeEnv(env)
	child.Define("x", types.String)
	if x, _ := env.Lookup("x"); x != types.Type(types.I32) {
		t.Fatalf("a child environment must not modify its parent")
	}
	if _, ok := child.LookupType("Meters"); !ok {
		t.Fatalf("a child environment must inherit type definitions")
	}
}

func TestInstantiate(t *testing.T) {
	ctx := newContext(t, limits.WithMaxSpecializations(1))
	generic := TFunc2(TParam("T"), TParam("U"), TOption(TParam("T")))
	inst, err := ctx.Instantiate(generic, []string{"T"})
	if err != nil {
		t.Fatal(err)
	}
	if s := types.TypeString(inst); s != "(T0, U) -> Option<T0>" {
		t.Fatalf("unexpected instance %s", s)
	}
	if v, ok := ctx.Env().Lookup("T"); !ok || v != types.Type(types.Var{Id: 0}) {
		t.Fatalf("expected T to be defined as T0")
	}
	_, err = ctx.InstantiateParams("V")
	expectKind(t, err, ResourceExceeded)
	if n := ctx.ResourceStats().Specializations; n != 1 {
		t.Fatalf("expected 1 specialization, found %d", n)
	}
}

func TestExport(t *testing.T) {
	ctx := newContext(t)
	vs := freshVars(t, ctx, 2)
	if err := ctx.Unify(vs[0], types.I32); err != nil {
		t.Fatal(err)
	}
	exported, err := ctx.Export(TFunc1(vs[1], TResult(vs[0], vs[1])))
	if err != nil {
		t.Fatal(err)
	}
	if s := types.TypeString(exported); s != "(unknown) -> Result<i32, unknown>" {
		t.Fatalf("unexpected exported type %s", s)
	}
}

func TestConstraintLimits(t *testing.T) {
	ctx := newContext(t, limits.WithMaxConstraints(2))
	addAll(t, ctx, Eq(types.I32, types.I32), Eq(types.Bool, types.Bool))
	err := ctx.AddEquality(types.F32, types.F32, Span{})
	expectKind(t, err, ResourceExceeded)
	if n := ctx.PendingConstraints(); n != 2 {
		t.Fatalf("rejected constraint was recorded")
	}

	ctx = newContext(t, limits.WithMaxWorkQueueSize(1))
	addAll(t, ctx, Eq(types.I32, types.I32))
	var exceeded *limits.ExceededError
	if err := ctx.AddConstraint(Eq(types.I32, types.I32)); !errors.As(err, &exceeded) || exceeded.Limit != limits.WorkQueueSize {
		t.Fatalf("expected work queue limit, found %v", err)
	}
	if err := ctx.SolveConstraints(); err != nil {
		t.Fatal(err)
	}
	addAll(t, ctx, Eq(types.I32, types.I32))

	if err := ctx.AddConstraint(Eq(nil, types.I32)); !errors.Is(err, ErrInvalidConstraint) {
		t.Fatalf("expected ErrInvalidConstraint, found %v", err)
	}

	ctx = newContext(t, limits.WithMaxMemoryBytes(1))
	if err := ctx.AddEquality(types.I32, types.I32, Span{}); !errors.As(err, &exceeded) || exceeded.Limit != limits.Memory {
		t.Fatalf("expected memory limit, found %v", err)
	}
	if st := ctx.ResourceStats(); st.Constraints != 0 || st.MemoryBytes != 0 {
		t.Fatalf("rejected constraint was counted: %+v", st)
	}
}

func TestRecursionDepthDuringSolve(t *testing.T) {
	ctx := newContext(t, limits.WithMaxRecursionDepth(64))
	a := freshVars(t, ctx, 1)[0]
	var deep types.Type = types.I32
	for i := 0; i < 256; i++ {
		deep = TOption(deep)
	}
	addAll(t, ctx, Eq(a, deep))
	err := ctx.SolveConstraints()
	expectKind(t, err, ResourceExceeded)
	var exceeded *limits.ExceededError
	if !errors.As(err, &exceeded) || exceeded.Limit != limits.RecursionDepth {
		t.Fatalf("expected recursion depth limit, found %v", err)
	}
}

type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func TestPhaseTimeout(t *testing.T) {
	ctx := newContext(t, limits.WithPhaseTimeout(2*time.Second))
	clock := &stepClock{now: time.Unix(0, 0), step: time.Second}
	ctx.Monitor().SetClock(clock.Now)
	for i := 0; i < 10; i++ {
		addAll(t, ctx, Eq(types.I32, types.I32))
	}
	err := ctx.SolveConstraints()
	var exceeded *limits.ExceededError
	if !errors.As(err, &exceeded) || exceeded.Limit != limits.PhaseTimeout || exceeded.Operation != PhaseConstraintSolving {
		t.Fatalf("expected phase timeout, found %v", err)
	}
	if IsTypeError(err, TypeMismatch) || !IsTypeError(err, ResourceExceeded) {
		t.Fatalf("timeouts must be distinguishable from type errors")
	}
}

func TestIterationLimitDuringSolve(t *testing.T) {
	ctx := newContext(t, limits.WithMaxIterations(100), limits.WithCheckInterval(8))
	elems := make([]types.Type, 200)
	for i := range elems {
		elems[i] = types.I32
	}
	addAll(t, ctx, Eq(TTuple(elems...), TTuple(elems...)))
	if err := ctx.SolveConstraints(); !IsResourceExceeded(err) {
		t.Fatalf("expected iteration limit, found %v", err)
	}
}

func TestUntrustedContext(t *testing.T) {
	ctx := NewUntrustedContext()
	if !ctx.Untrusted() || ctx.Monitor().Limits() != limits.Production() {
		t.Fatalf("untrusted contexts must use production limits")
	}
	if _, err := NewContext(limits.Limits{}); err == nil {
		t.Fatalf("expected invalid limits to be rejected")
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l, err := limits.New(limits.Testing(), limits.WithMaxTypeVariables(1))
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := NewContext(l, WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.SolveConstraints(); err != nil {
		t.Fatal(err)
	}
	freshVars(t, ctx, 1)
	if _, err := ctx.FreshTypeVar(); err == nil {
		t.Fatalf("expected type-variable limit")
	}
	out := buf.String()
	for _, want := range []string{
		`msg="solving constraints"`,
		`msg="solved constraints"`,
		`level=WARN msg="resource limit exceeded" context=` + ctx.Id() + ` limit=max_type_variables`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output:\n%s", want, out)
		}
	}
}

func TestConstraintString(t *testing.T) {
	cases := []struct {
		c    Constraint
		want string
	}{
		{Eq(types.I32, TArray(types.Bool)), "i32 = [bool]"},
		{Bound(TParam("T"), traits.Eq), "T: Eq"},
		{Bounds("T", "Clone", "Send"), "T: Clone + Send"},
	}
	for _, c := range cases {
		if s := c.c.String(); s != c.want {
			t.Fatalf("expected %q, found %q", c.want, s)
		}
	}
}

func TestCustomTraitChecker(t *testing.T) {
	checker := traits.New()
	if err := checker.Declare("Send"); err != nil {
		t.Fatal(err)
	}
	widget := TNamed("Widget")
	if err := checker.Implement(widget, "Send"); err != nil {
		t.Fatal(err)
	}
	l, _ := limits.New(limits.Testing())
	ctx, err := NewContext(l, WithTraitChecker(checker))
	if err != nil {
		t.Fatal(err)
	}
	a := freshVars(t, ctx, 1)[0]
	addAll(t, ctx, Eq(a, TArray(widget)), Bound(a, "Send"))
	if err := ctx.SolveConstraints(); err != nil {
		t.Fatal(err)
	}
}

func TestInferUnits(t *testing.T) {
	prelude := NewTypeEnv(nil)
	prelude.Define("len", TFunc1(TArray(types.Unknown{}), types.I32))
	checker := traits.New()
	checker.Freeze()

	units := make([]Unit, 0, 9)
	for i := 0; i < 8; i++ {
		units = append(units, Unit{
			Name:      "unit",
			Untrusted: i%2 == 0,
			Build: func(ctx *InferenceContext) (map[string]types.Type, error) {
				if ctx.Untrusted() != (i%2 == 0) {
					t.Errorf("unexpected trust for unit %d", i)
				}
				lenFn, ok := ctx.Env().Lookup("len")
				if !ok {
					return nil, errors.New("len is not defined")
				}
				a, err := ctx.FreshTypeVar()
				if err != nil {
					return nil, err
				}
				b, err := ctx.FreshTypeVar()
				if err != nil {
					return nil, err
				}
				if err := ctx.AddEquality(TFunc1(TArray(types.Unknown{}), a), lenFn, Span{}); err != nil {
					return nil, err
				}
				if err := ctx.AddTraitBound(a, traits.Ord, Span{}); err != nil {
					return nil, err
				}
				return map[string]types.Type{"n": a, "free": TOption(b)}, nil
			},
		})
	}
	units = append(units, Unit{
		Name: "invalid",
		Build: func(ctx *InferenceContext) (map[string]types.Type, error) {
			a, err := ctx.FreshTypeVar()
			if err != nil {
				return nil, err
			}
			return nil, ctx.AddEquality(a, TArray(a), Span{})
		},
	})

	results, err := InferUnits(context.Background(), units,
		WithWorkers(3),
		WithPrelude(prelude),
		WithContextOptions(WithTraitChecker(checker)))
	if err != nil {
		t.Fatal(err)
	}
	for _, res := range results[:8] {
		if res.Err != nil {
			t.Fatal(res.Err)
		}
		if s := types.TypeString(res.Types["n"]); s != "i32" {
			t.Fatalf("expected i32, found %s", s)
		}
		if s := types.TypeString(res.Types["free"]); s != "Option<unknown>" {
			t.Fatalf("expected Option<unknown>, found %s", s)
		}
		if res.Stats.TypeVariables != 2 || res.Stats.Constraints != 2 {
			t.Fatalf("unexpected stats %s", res.Stats)
		}
	}
	expectKind(t, results[8].Err, OccursCheckFailed)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	results, err = InferUnits(cancelled, units)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, found %v", err)
	}
	for _, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Fatalf("expected unit %s to be cancelled, found %v", res.Name, res.Err)
		}
	}
}
