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

// infer provides resource-bounded type inference for a statically-typed language with generics
// and traits.
//
// Inference is constraint based: an embedding compiler allocates type-variables, records
// equality and trait constraints while walking its syntax tree, then solves the constraints
// with a union-find substitution store. Every stage reports to a resource monitor which aborts
// inference as soon as a configured ceiling is crossed, so adversarial input cannot exhaust
// memory or CPU.
//
//
// Supported Features:
//
//   * Robinson unification with an occurs check over a union-find store
//   * Scalar, nominal, generic, function, array, tuple, option, result, and future types
//   * Gradual typing through an unknown type which unifies with every type
//   * Trait bounds and batched generic bounds checked by a pluggable trait oracle
//   * Lexically scoped type-environments built on persistent maps
//   * Speculative unification with rollback
//   * Hard limits on iterations, type-variables, constraints, recursion depth, specializations,
//     work queues, memory, and wall time
//   * Parallel inference of independent compilation units
//
//
// Links:
//
// Union-find (disjoint-set) data structure: https://en.wikipedia.org/wiki/Disjoint-set_data_structure
//
// Unification (Robinson, 1965): https://en.wikipedia.org/wiki/Unification_(computer_science)
//
// Occurs check: https://en.wikipedia.org/wiki/Occurs_check
package infer
