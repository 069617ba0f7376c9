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
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wdamron/infer/limits"
	"github.com/wdamron/infer/types"
)

// Unit is an independent compilation unit.
type Unit struct {
	Name string
	// Untrusted units are always inferred with production limits.
	Untrusted bool
	// Build records type-variables and constraints within ctx and returns the types to export,
	// by name. Constraints are solved after Build returns.
	Build func(ctx *InferenceContext) (map[string]types.Type, error)
}

// UnitResult holds the exported types of a compilation unit. Exported types never contain
// type-variables; unresolved type-variables are exported as Unknown.
type UnitResult struct {
	Name  string
	Types map[string]types.Type
	Stats limits.Stats
	Err   error
}

type unitConfig struct {
	workers int
	limits  limits.Limits
	prelude *TypeEnv
	opts    []Option
}

// UnitOption configures InferUnits.
type UnitOption func(*unitConfig)

// WithWorkers bounds the number of units inferred at once. By default, GOMAXPROCS units are
// inferred at once.
func WithWorkers(n int) UnitOption { return func(c *unitConfig) { c.workers = n } }

// WithUnitLimits sets the limits for trusted units. By default, development limits are used.
func WithUnitLimits(l limits.Limits) UnitOption { return func(c *unitConfig) { c.limits = l } }

// WithPrelude makes every binding visible in env available to each unit. The prelude must
// only contain exported types, and must not be modified while units are inferred.
func WithPrelude(env *TypeEnv) UnitOption { return func(c *unitConfig) { c.prelude = env } }

// WithContextOptions applies opts to the context of each unit. Trait checkers shared through
// these options must be safe for concurrent use.
func WithContextOptions(opts ...Option) UnitOption {
	return func(c *unitConfig) { c.opts = append(c.opts, opts...) }
}

// InferUnits infers each unit with its own inference context, in parallel. Failures of
// individual units are reported in their results. The returned error is non-nil only when
// ctx is cancelled or the unit limits are invalid; units which were not started report the
// cancellation as their error.
func InferUnits(ctx context.Context, units []Unit, opts ...UnitOption) ([]UnitResult, error) {
	cfg := unitConfig{workers: runtime.GOMAXPROCS(0), limits: limits.Development()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.limits.Validate(); err != nil {
		return nil, err
	}

	results := make([]UnitResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.workers, 1))
	for i, u := range units {
		results[i].Name = u.Name
		if err := gctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			results[i] = inferUnit(u, &cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func inferUnit(u Unit, cfg *unitConfig) (res UnitResult) {
	res.Name = u.Name
	opts := make([]Option, 0, len(cfg.opts)+1)
	opts = append(opts, cfg.opts...)
	if cfg.prelude != nil {
		opts = append(opts, WithEnv(NewTypeEnv(cfg.prelude)))
	}

	var ctx *InferenceContext
	if u.Untrusted {
		ctx = NewUntrustedContext(opts...)
	} else {
		var err error
		if ctx, err = NewContext(cfg.limits, opts...); err != nil {
			res.Err = err
			return res
		}
	}
	defer func() { res.Stats = ctx.ResourceStats() }()

	if u.Build == nil {
		return res
	}
	roots, err := u.Build(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	if err = ctx.SolveConstraints(); err != nil {
		res.Err = err
		return res
	}
	res.Types = make(map[string]types.Type, len(roots))
	for name, t := range roots {
		if res.Types[name], err = ctx.Export(t); err != nil {
			res.Types, res.Err = nil, err
			return res
		}
	}
	return res
}
