// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ipa

import (
	"golang.org/x/exp/slices"

	"github.com/awslabs/ar-py-tools/internal/funcutil"
	"github.com/awslabs/ar-py-tools/internal/graphutil"
)

// BottomUp walks the invocation graph in post order, building each context's
// heap summary after all of its callees have one. Recursion makes that order
// impossible, so any cycle aborts the pass with a RecursionError describing
// the cycles found.
func (s *State) BottomUp() error {
	processed := map[*Context]bool{}
	onPath := map[*Context]bool{}
	var path []*Context

	var visit func(ctx *Context) error
	visit = func(ctx *Context) error {
		if processed[ctx] {
			return nil
		}
		if onPath[ctx] {
			return s.recursionError(ctx, path)
		}
		onPath[ctx] = true
		path = append(path, ctx)

		for _, inv := range ctx.outInvocations() {
			if err := visit(inv.callee); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		onPath[ctx] = false
		processed[ctx] = true

		ctx.summarize()
		for _, inv := range ctx.outInvocations() {
			inv.Apply()
		}
		return nil
	}

	for _, ctx := range s.contextList {
		if err := visit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// outInvocations returns the context's outgoing invocations ordered by
// callee creation, keeping traversal and reporting deterministic.
func (ctx *Context) outInvocations() []*Invocation {
	out := make([]*Invocation, 0, len(ctx.invokeOut))
	for _, inv := range ctx.invokeOut {
		out = append(out, inv)
	}
	slices.SortFunc(out, func(a, b *Invocation) bool {
		if a.callee.id != b.callee.id {
			return a.callee.id < b.callee.id
		}
		return a.caller.id < b.caller.id
	})
	return out
}

// recursionError builds a RecursionError for the cycle closing at repeated,
// with the full elementary cycle report of the invocation graph attached.
func (s *State) recursionError(repeated *Context, path []*Context) error {
	start := 0
	for i, ctx := range path {
		if ctx == repeated {
			start = i
			break
		}
	}
	err := &RecursionError{}
	for _, ctx := range path[start:] {
		err.Path = append(err.Path, ctx.String())
	}
	err.Path = append(err.Path, repeated.String())

	for _, cycle := range graphutil.FindAllElementaryCycles(s.invocationGraph()) {
		var names []string
		for _, id := range cycle {
			names = append(names, s.contextList[int(id)].String())
		}
		err.Cycles = append(err.Cycles, names)
	}
	err.Groups = s.recursiveGroups()
	return err
}

// recursiveGroups returns the recursive groups of the invocation graph: the
// strongly connected components of size two or more, plus any context that
// invokes itself directly. Elementary cycle enumeration skips the latter.
func (s *State) recursiveGroups() [][]string {
	callees := func(ctx *Context) []*Context {
		return funcutil.Map(ctx.outInvocations(), func(inv *Invocation) *Context {
			return inv.callee
		})
	}
	var groups [][]string
	for _, scc := range graphutil.StronglyConnectedComponents(s.contextList, callees) {
		if len(scc) == 1 && !funcutil.Contains(callees(scc[0]), scc[0]) {
			continue
		}
		groups = append(groups, funcutil.Map(scc, (*Context).String))
	}
	return groups
}

// invocationGraph projects the contexts and invocations into a plain labeled
// directed graph.
func (s *State) invocationGraph() graphutil.CGraph {
	edges := map[int64][]int64{}
	labels := map[int64]string{}
	for _, ctx := range s.contextList {
		labels[ctx.id] = ctx.String()
		edges[ctx.id] = nil
		for _, inv := range ctx.outInvocations() {
			edges[ctx.id] = append(edges[ctx.id], inv.callee.id)
		}
	}
	return graphutil.NewGraph(edges, labels)
}
