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

package ipa_test

import (
	"errors"
	"io"
	"testing"

	"github.com/awslabs/ar-py-tools/analysis/config"
	"github.com/awslabs/ar-py-tools/analysis/ipa"
	"github.com/awslabs/ar-py-tools/analysis/ir"
)

func solverState(prog *ir.Program) *ipa.State {
	cfg := config.NewDefault()
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	return ipa.NewState(prog, cfg, logger)
}

// onlyContext returns the single analyzed context of code, failing the test
// when resolution produced none or several.
func onlyContext(t *testing.T, res *ipa.Results, code *ir.Code) *ipa.Context {
	t.Helper()
	ctxs := res.ContextsOf(code)
	if len(ctxs) != 1 {
		t.Fatalf("expected one context for %s, got %d", code.Name(), len(ctxs))
	}
	return ctxs[0]
}

// returnObjects collects the objects a context can return in position i.
func returnObjects(res *ipa.Results, ctx *ipa.Context, i int) map[*ir.Object]bool {
	out := map[*ir.Object]bool{}
	for _, o := range res.Returns(ctx, i) {
		out[o.Object()] = true
	}
	return out
}

func TestIdentityFunction(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Function(ir.FuncSpec{Name: "id", Params: []string{"x"}, Returns: 1})
	f.SetBody(&ir.Return{Exprs: []ir.Expr{f.Local("x")}})

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, f.Code, nil, []*ipa.EntryArg{{Constants: []any{5}}})
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Converged {
		t.Errorf("a single call should converge")
	}

	ctxs := res.ContextsOf(f.Code)
	if len(ctxs) != 1 {
		t.Fatalf("expected one context for id, got %d", len(ctxs))
	}
	if !returnObjects(res, ctxs[0], 0)[b.Program().Constant(5)] {
		t.Errorf("id should return its argument")
	}
	if callees := res.Callees(res.Root()); len(callees) != 1 || callees[0] != ctxs[0] {
		t.Errorf("the root context should call exactly the id context")
	}
	if codes := res.LiveCodes(); len(codes) != 1 || codes[0] != f.Code {
		t.Errorf("only id should be live, got %v", codes)
	}
	if res.InvocationGraph().Order() != len(res.Contexts()) {
		t.Errorf("the invocation graph should cover every context")
	}
}

func TestDynamicCallBindsFunction(t *testing.T) {
	b := ir.NewBuilder()
	id := b.Function(ir.FuncSpec{Name: "id", Params: []string{"x"}, Returns: 1})
	id.SetBody(&ir.Return{Exprs: []ir.Expr{id.Local("x")}})
	main := b.Function(ir.FuncSpec{Name: "main", Returns: 1})
	main.SetBody(&ir.Return{Exprs: []ir.Expr{
		&ir.Call{Expr: id.Ref(), Args: []ir.Expr{b.Const(5)}},
	}})

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, main.Code, nil, nil)
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	idCtx := onlyContext(t, res, id.Code)
	mainCtx := onlyContext(t, res, main.Code)
	if callees := res.Callees(mainCtx); len(callees) != 1 || callees[0] != idCtx {
		t.Errorf("main should invoke exactly the id context, got %v", callees)
	}
	if !returnObjects(res, mainCtx, 0)[b.Program().Constant(5)] {
		t.Errorf("the dynamic call's value should flow back to main")
	}
}

func TestContextsSplitByArgumentType(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Function(ir.FuncSpec{Name: "id", Params: []string{"x"}, Returns: 1})
	f.SetBody(&ir.Return{Exprs: []ir.Expr{f.Local("x")}})

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, f.Code, nil, []*ipa.EntryArg{{Constants: []any{5, "s"}}})
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	ctxs := res.ContextsOf(f.Code)
	if len(ctxs) != 2 {
		t.Fatalf("two argument types should give two contexts, got %d", len(ctxs))
	}
	for _, ctx := range ctxs {
		rets := returnObjects(res, ctx, 0)
		if len(rets) != 1 {
			t.Errorf("each context should return only its own argument, got %v", rets)
		}
	}
}

func TestMegamorphicArgumentCollapses(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Function(ir.FuncSpec{Name: "id", Params: []string{"x"}, Returns: 1})
	f.SetBody(&ir.Return{Exprs: []ir.Expr{f.Local("x")}})

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, f.Code, nil, []*ipa.EntryArg{{Constants: []any{1, 2, 3, 4, 5}}})
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	wild := false
	for _, ctx := range res.ContextsOf(f.Code) {
		if ctx.Signature().Params()[0] == ipa.AnyType {
			wild = true
		}
	}
	if !wild {
		t.Errorf("too many argument types should collapse to a wildcard context")
	}
}

func TestSelfRecursionIsRejected(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Function(ir.FuncSpec{Name: "loop", Params: []string{"x"}, Returns: 1})
	f.SetBody(&ir.Return{Exprs: []ir.Expr{
		&ir.DirectCall{Code: f.Code, Args: []ir.Expr{f.Local("x")}},
	}})

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, f.Code, nil, []*ipa.EntryArg{{Constants: []any{5}}})
	_, err := ipa.Solve(s)

	var recErr *ipa.RecursionError
	if !errors.As(err, &recErr) {
		t.Fatalf("recursive calls should abort the solve, got %v", err)
	}
	if len(recErr.Path) == 0 {
		t.Errorf("the error should carry the offending path")
	}
	if len(recErr.Groups) != 1 {
		t.Errorf("a self call should form exactly one recursive group, got %v", recErr.Groups)
	}
}

func TestAllocateStoreLoad(t *testing.T) {
	b := ir.NewBuilder()
	widget := b.Class("Widget")
	f := b.Function(ir.FuncSpec{Name: "make", Returns: 1})
	w := f.Local("w")
	v := f.Local("v")
	f.SetBody(
		&ir.Assign{Expr: &ir.Allocate{Expr: widget}, Targets: []*ir.Local{w}},
		&ir.Store{Value: b.Const("payload"), Expr: w, FieldType: ir.AttributeField, Name: b.Const("attr")},
		&ir.Assign{Expr: &ir.Load{Expr: w, FieldType: ir.AttributeField, Name: b.Const("attr")}, Targets: []*ir.Local{v}},
		&ir.Return{Exprs: []ir.Expr{v}},
	)

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, f.Code, nil, nil)
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	ctx := onlyContext(t, res, f.Code)
	if !returnObjects(res, ctx, 0)[b.Program().Constant("payload")] {
		t.Errorf("the stored value should flow through the load into the return")
	}
	pts := res.PointsTo(ctx, w)
	if len(pts) != 1 || pts[0].Class() != b.Program().Class("Widget") {
		t.Errorf("w should point to one Widget instance, got %v", pts)
	}
}

func TestConstantFolding(t *testing.T) {
	b := ir.NewBuilder()
	add := b.Function(ir.FuncSpec{Name: "add", Params: []string{"a", "b"}, Returns: 1})
	add.SetBody(&ir.Return{Exprs: []ir.Expr{add.Local("a")}})
	add.Code.Fold = func(args []any) (any, bool) {
		return args[0].(int) + args[1].(int), true
	}
	main := b.Function(ir.FuncSpec{Name: "main", Returns: 1})
	main.SetBody(&ir.Return{Exprs: []ir.Expr{
		&ir.DirectCall{Code: add.Code, Args: []ir.Expr{b.Const(2), b.Const(3)}},
	}})

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, main.Code, nil, nil)
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	rets := returnObjects(res, onlyContext(t, res, main.Code), 0)
	if !rets[b.Program().Constant(5)] {
		t.Errorf("a foldable call on constants should yield the folded constant, got %v", rets)
	}
	if rets[b.Program().Constant(2)] {
		t.Errorf("the callee's value flow should be short-circuited by the fold")
	}
}

func TestVarargPacking(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Function(ir.FuncSpec{Name: "first", VParam: "rest", Returns: 1})
	v := f.Local("v")
	f.SetBody(
		&ir.Assign{Expr: &ir.Load{Expr: f.Local("rest"), FieldType: ir.ArrayField, Name: b.Const(0)}, Targets: []*ir.Local{v}},
		&ir.Return{Exprs: []ir.Expr{v}},
	)

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, f.Code, nil, []*ipa.EntryArg{
		{Constants: []any{"a"}},
		{Constants: []any{"b"}},
	})
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	rets := returnObjects(res, onlyContext(t, res, f.Code), 0)
	if !rets[b.Program().Constant("a")] || rets[b.Program().Constant("b")] {
		t.Errorf("rest[0] should hold exactly the first surplus argument, got %v", rets)
	}
}

func TestSpreadCall(t *testing.T) {
	b := ir.NewBuilder()
	second := b.Function(ir.FuncSpec{Name: "second", Params: []string{"a", "b"}, Returns: 1})
	second.SetBody(&ir.Return{Exprs: []ir.Expr{second.Local("b")}})
	caller := b.Function(ir.FuncSpec{Name: "caller", Returns: 1})
	tup := caller.Local("tup")
	caller.SetBody(
		&ir.Assign{Expr: &ir.BuildTuple{Args: []ir.Expr{b.Const("x"), b.Const("y")}}, Targets: []*ir.Local{tup}},
		&ir.Return{Exprs: []ir.Expr{&ir.Call{Expr: second.Ref(), VArgs: tup}}},
	)

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, caller.Code, nil, nil)
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	callerCtx := onlyContext(t, res, caller.Code)
	calleeCtx := onlyContext(t, res, second.Code)
	rets := returnObjects(res, callerCtx, 0)
	if !rets[b.Program().Constant("y")] || rets[b.Program().Constant("x")] {
		t.Errorf("spreading an exact tuple should bind parameters positionally, got %v", rets)
	}

	order, err := res.BottomUpOrder()
	if err != nil {
		t.Fatalf("BottomUpOrder: %v", err)
	}
	pos := map[*ipa.Context]int{}
	for i, ctx := range order {
		pos[ctx] = i
	}
	if pos[calleeCtx] > pos[callerCtx] {
		t.Errorf("bottom-up order should visit callees before callers")
	}
}

func TestAnalyzeSeedsConfiguredEntryPoints(t *testing.T) {
	b := ir.NewBuilder()
	b.Class("Widget")
	f := b.Function(ir.FuncSpec{Name: "probe", Params: []string{"w"}, Returns: 1})
	f.SetBody(&ir.Return{Exprs: []ir.Expr{f.Local("w")}})

	cfg := config.NewDefault()
	cfg.EntryPoints = []config.EntryPointSpec{
		{Function: "probe", Args: [][]string{{"Widget"}}},
	}
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)

	res, err := ipa.Analyze(b.Program(), cfg, logger)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	ctxs := res.ContextsOf(f.Code)
	if len(ctxs) != 1 {
		t.Fatalf("expected one probe context, got %d", len(ctxs))
	}
	rets := res.Returns(ctxs[0], 0)
	if len(rets) != 1 || rets[0].Class() != b.Program().Class("Widget") {
		t.Errorf("probe should return an external Widget instance, got %v", rets)
	}
}

func TestUnsupportedConstructsDegradeConservatively(t *testing.T) {
	b := ir.NewBuilder()
	widget := b.Class("Widget")
	b.Class("Crate")
	f := b.Function(ir.FuncSpec{Name: "stash", Params: []string{"o"}, Returns: 1})
	w := f.Local("w")
	v := f.Local("v")
	// The field name is a local, which the extractor cannot resolve to a key.
	key := f.Local("k")
	f.SetBody(
		&ir.Assign{Expr: &ir.Allocate{Expr: widget}, Targets: []*ir.Local{w}},
		&ir.Store{Value: w, Expr: f.Local("o"), FieldType: ir.AttributeField, Name: key},
		&ir.Assign{Expr: &ir.Load{Expr: f.Local("o"), FieldType: ir.AttributeField, Name: key}, Targets: []*ir.Local{v}},
		&ir.Return{Exprs: []ir.Expr{v}},
	)

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, f.Code, nil, []*ipa.EntryArg{
		{Classes: []*ir.Class{b.Program().Class("Crate")}},
	})
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	if len(res.Unsupported()) == 0 {
		t.Fatalf("computed field names should be reported as unsupported")
	}

	ctx := onlyContext(t, res, f.Code)
	wildReturned := false
	for _, o := range res.Returns(ctx, 0) {
		if o.XType() == ipa.AnyType {
			wildReturned = true
		}
	}
	if !wildReturned {
		t.Errorf("a load through an unresolved name should yield the wildcard")
	}

	escaped := false
	for o := range ctx.Summary().Escapes {
		if o.Class() == b.Program().Class("Widget") {
			escaped = true
		}
	}
	if !escaped {
		t.Errorf("a store through an unresolved name should escape the stored value")
	}
}

func TestSummaryPropagation(t *testing.T) {
	b := ir.NewBuilder()
	widget := b.Class("Widget")
	crate := b.Class("Crate")
	fill := b.Function(ir.FuncSpec{Name: "fill", Params: []string{"box"}, Returns: 1})
	w := fill.Local("w")
	got := fill.Local("got")
	fill.SetBody(
		&ir.Assign{Expr: &ir.Allocate{Expr: widget}, Targets: []*ir.Local{w}},
		&ir.Store{Value: w, Expr: fill.Local("box"), FieldType: ir.AttributeField, Name: b.Const("item")},
		&ir.Assign{Expr: &ir.Load{Expr: fill.Local("box"), FieldType: ir.AttributeField, Name: b.Const("item")}, Targets: []*ir.Local{got}},
		&ir.Return{Exprs: []ir.Expr{got}},
	)
	run := b.Function(ir.FuncSpec{Name: "run", Returns: 1})
	box := run.Local("box")
	run.SetBody(
		&ir.Assign{Expr: &ir.Allocate{Expr: crate}, Targets: []*ir.Local{box}},
		&ir.Return{Exprs: []ir.Expr{&ir.DirectCall{Code: fill.Code, Args: []ir.Expr{box}}}},
	)

	s := solverState(b.Program())
	ipa.BuildEntryPoint(s, run.Code, nil, nil)
	res, err := ipa.Solve(s)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	widgetCls := b.Program().Class("Widget")
	crateCls := b.Program().Class("Crate")
	hasClass := func(vs ipa.ValueSet, cls *ir.Class) bool {
		for o := range vs {
			if o.Class() == cls {
				return true
			}
		}
		return false
	}

	calleeSum := onlyContext(t, res, fill.Code).Summary()
	if calleeSum == nil {
		t.Fatalf("the bottom-up pass should leave a summary on every context")
	}
	if !hasClass(calleeSum.Reads, crateCls) || !hasClass(calleeSum.Modifies, crateCls) {
		t.Errorf("fill reads and modifies the crate it receives, got reads %v modifies %v",
			calleeSum.Reads, calleeSum.Modifies)
	}
	if !hasClass(calleeSum.Allocates, widgetCls) {
		t.Errorf("fill allocates a widget, got %v", calleeSum.Allocates)
	}
	if !hasClass(calleeSum.Escapes, widgetCls) {
		t.Errorf("the widget is returned and stored into the caller's crate, it escapes fill")
	}

	callerSum := onlyContext(t, res, run.Code).Summary()
	if !hasClass(callerSum.Reads, crateCls) || !hasClass(callerSum.Modifies, crateCls) {
		t.Errorf("run should absorb fill's reads and modifications")
	}
	if !hasClass(callerSum.Allocates, widgetCls) || !hasClass(callerSum.Allocates, crateCls) {
		t.Errorf("run's summary should cover both its own and fill's allocations")
	}
	if !hasClass(callerSum.Escapes, widgetCls) {
		t.Errorf("the widget is returned out of run, it escapes")
	}
	if hasClass(callerSum.Escapes, crateCls) {
		t.Errorf("the crate never leaves run, got escapes %v", callerSum.Escapes)
	}
}

func TestAnalyzeRejectsUnknownEntryPoint(t *testing.T) {
	cfg := config.NewDefault()
	cfg.EntryPoints = []config.EntryPointSpec{{Function: "missing"}}
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)

	if _, err := ipa.Analyze(ir.NewProgram(), cfg, logger); err == nil {
		t.Errorf("an unknown entry function should be an error")
	}
}
