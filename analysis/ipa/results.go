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
	"fmt"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/awslabs/ar-py-tools/analysis/ir"
	"github.com/awslabs/ar-py-tools/internal/funcutil"
	"github.com/awslabs/ar-py-tools/internal/graphutil"
)

// Results is the read-only view of a solved analysis.
type Results struct {
	state *State

	// Converged is false when the solver hit its round bound while the state
	// was still changing; the results are then valid but possibly incomplete
	Converged bool

	// Rounds is the number of solver rounds actually run
	Rounds int
}

// State exposes the underlying analysis state.
func (r *Results) State() *State { return r.state }

// Root returns the synthetic external context.
func (r *Results) Root() *Context { return r.state.root }

// Contexts returns every analyzed context in creation order.
func (r *Results) Contexts() []*Context { return r.state.contextList }

// ContextsOf returns the contexts specializing code.
func (r *Results) ContextsOf(code *ir.Code) []*Context {
	var out []*Context
	for _, ctx := range r.state.contextList {
		if ctx.signature.code == code {
			out = append(out, ctx)
		}
	}
	return out
}

// PointsTo returns the objects local l may hold in ctx, deterministically
// ordered.
func (r *Results) PointsTo(ctx *Context, l *ir.Local) []*ObjectName {
	slot, ok := ctx.locals[l]
	if !ok {
		return nil
	}
	return slot.Values().Sorted()
}

// Returns returns the objects ctx may return at result position i.
func (r *Results) Returns(ctx *Context, i int) []*ObjectName {
	if i >= len(ctx.returns) {
		return nil
	}
	return ctx.returns[i].Values().Sorted()
}

// Callees returns the distinct contexts ctx invokes.
func (r *Results) Callees(ctx *Context) []*Context {
	seen := map[*Context]bool{}
	var out []*Context
	for _, inv := range ctx.outInvocations() {
		if !seen[inv.callee] {
			seen[inv.callee] = true
			out = append(out, inv.callee)
		}
	}
	return out
}

// Callers returns the distinct contexts invoking ctx.
func (r *Results) Callers(ctx *Context) []*Context {
	set := map[*Context]bool{}
	for _, inv := range ctx.invokeIn {
		set[inv.caller] = true
	}
	out := make([]*Context, 0, len(set))
	for caller := range set {
		out = append(out, caller)
	}
	slices.SortFunc(out, func(a, b *Context) bool { return a.id < b.id })
	return out
}

// InvocationGraph returns the context-level call graph as a labeled directed
// graph suitable for the graphutil algorithms.
func (r *Results) InvocationGraph() graphutil.CGraph {
	return r.state.invocationGraph()
}

// CallGraph exports the context-level call graph as a gonum directed graph,
// one node per context ID.
func (r *Results) CallGraph() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for _, ctx := range r.state.contextList {
		g.AddNode(simple.Node(ctx.id))
	}
	for _, ctx := range r.state.contextList {
		for _, inv := range ctx.outInvocations() {
			if inv.caller.id != inv.callee.id {
				g.SetEdge(g.NewEdge(simple.Node(inv.caller.id), simple.Node(inv.callee.id)))
			}
		}
	}
	return g
}

// BottomUpOrder returns the contexts ordered callees-first. It fails on a
// cyclic call graph, which a completed bottom-up pass has already ruled out.
func (r *Results) BottomUpOrder() ([]*Context, error) {
	sorted, err := topo.Sort(r.CallGraph())
	if err != nil {
		return nil, fmt.Errorf("call graph not acyclic: %w", err)
	}
	out := funcutil.Map(sorted, func(n graph.Node) *Context {
		return r.state.contextList[int(n.ID())]
	})
	// topo.Sort orders callers first; summaries flow the other way.
	funcutil.Reverse(out)
	return out, nil
}

// LiveCodes returns the code objects reached by at least one context.
func (r *Results) LiveCodes() []*ir.Code {
	seen := map[*ir.Code]bool{}
	var out []*ir.Code
	for _, ctx := range r.state.contextList {
		code := ctx.signature.code
		if code != nil && !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out
}

// Unsupported returns the constructs the extractor degraded on.
func (r *Results) Unsupported() []*UnsupportedConstructError {
	return r.state.unsupported
}
