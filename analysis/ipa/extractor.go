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

	"github.com/awslabs/ar-py-tools/analysis/ir"
)

// extractor walks a code body once per context, turning every statement and
// expression into constraints over the context's slots. Control flow is
// ignored: branches and loops contribute their bodies unconditionally.
//
// Constructs the extractor does not model are reported as unsupported and
// their results treated conservatively; they never abort the analysis.
type extractor struct {
	ctx  *Context
	code *ir.Code

	// existing caches the slot of each preexisting object referenced by the
	// body
	existing map[*ir.Object]*Slot
}

func (s *State) extract(ctx *Context) {
	ex := &extractor{ctx: ctx, code: ctx.signature.code, existing: map[*ir.Object]*Slot{}}
	ex.process()
}

func (ex *extractor) process() {
	params := ex.code.Parameters()
	for _, ret := range params.Returns {
		ex.ctx.returns = append(ex.ctx.returns, ex.ctx.Local(ret))
	}
	if params.VParam != nil && !params.VParam.IsDoNotCare() {
		ex.setupVParam()
	}
	ex.stmt(ex.code.Body())
	ex.fold()
}

// setupVParam materializes the tuple packing surplus positional arguments.
// The signature fixes its length exactly, so its fields are definite.
func (ex *extractor) setupVParam() {
	ctx := ex.ctx
	s := ctx.state
	sig := ctx.signature
	prog := s.program

	obj := s.objectName(s.contextType(prog.TupleClass.Instance(), sig), HZ)
	ctx.Local(ex.code.Parameters().VParam).UpdateSingleValue(obj)

	length := ctx.Field(obj, ir.LowLevelField, prog.Constant("length"))
	length.ClearNull()
	length.UpdateSingleValue(ctx.existingName(prog.Constant(len(sig.vparams))))

	for i := range sig.vparams {
		field := ctx.Field(obj, ir.ArrayField, prog.Constant(i))
		field.ClearNull()
		ctx.vparamFields = append(ctx.vparamFields, field)
	}
}

// fold short-circuits the context to a constant when the code folds and the
// signature bound only constants.
func (ex *extractor) fold() {
	if ex.code.Fold == nil || len(ex.ctx.signature.vparams) > 0 {
		return
	}
	var args []any
	for _, p := range ex.ctx.signature.params {
		if p == nil || !p.IsExisting() {
			return
		}
		v, ok := p.Object().Constant()
		if !ok {
			return
		}
		args = append(args, v)
	}
	result, ok := ex.code.Fold(args)
	if !ok {
		return
	}
	ex.ctx.foldObj = ex.ctx.existingName(ex.ctx.state.program.Constant(result))
}

func (ex *extractor) stmt(stmt ir.Stmt) {
	if stmt == nil {
		return
	}
	ctx := ex.ctx
	switch n := stmt.(type) {
	case *ir.Suite:
		for _, s := range n.Stmts {
			ex.stmt(s)
		}
	case *ir.Assign:
		targets := make([]*Slot, len(n.Targets))
		for i, t := range n.Targets {
			targets[i] = ctx.Local(t)
		}
		ex.expr(n.Expr, targets)
	case *ir.Discard:
		ex.expr(n.Expr, nil)
	case *ir.Return:
		for i, e := range n.Exprs {
			if i < len(ctx.returns) {
				ctx.assign(ex.slotOf(e), ctx.returns[i])
			} else {
				ex.expr(e, nil)
			}
		}
	case *ir.Store:
		name, ok := ex.fieldName(n.Name)
		if !ok {
			// The write lands somewhere the analysis cannot see.
			ex.escape(ex.slotOf(n.Value))
			ex.expr(n.Expr, nil)
			return
		}
		initConstraint(ctx, &storeConstraint{
			op:        n,
			value:     ex.slotOf(n.Value),
			expr:      ex.slotOf(n.Expr),
			fieldtype: n.FieldType,
			name:      name,
		})
	case *ir.Switch:
		ex.condition(n.Cond)
		ex.stmt(n.True)
		ex.stmt(n.Else)
	case *ir.While:
		ex.condition(n.Cond)
		ex.stmt(n.Body)
		ex.stmt(n.Else)
	case *ir.For:
		ex.stmt(n.LoopPreamble)
		ex.stmt(n.BodyPreamble)
		ex.stmt(n.Body)
		ex.stmt(n.Else)
	case *ir.TryExcept:
		ex.stmt(n.Body)
		for _, h := range n.Handlers {
			ex.stmt(h.Preamble)
			ex.stmt(h.Body)
		}
		ex.stmt(n.Else)
		ex.stmt(n.Finally)
	case *ir.Raise:
		for _, e := range []ir.Expr{n.Exception, n.Parameter, n.Traceback} {
			if e != nil {
				ex.expr(e, nil)
			}
		}
	case *ir.Break, *ir.Continue:
		// no value flow
	default:
		ex.unsupported(stmt)
	}
}

func (ex *extractor) condition(cond *ir.Condition) {
	if cond == nil {
		return
	}
	ex.stmt(cond.Preamble)
	if cond.Conditional != nil {
		ex.expr(cond.Conditional, nil)
	}
}

// slotOf evaluates e into a slot, materializing a temporary when e is not
// already a value reference.
func (ex *extractor) slotOf(e ir.Expr) *Slot {
	ctx := ex.ctx
	switch n := e.(type) {
	case *ir.Local:
		return ctx.Local(n)
	case *ir.Existing:
		slot, ok := ex.existing[n.Object]
		if !ok {
			slot = ctx.TempLocal(n.Object.String())
			slot.UpdateSingleValue(ctx.existingName(n.Object))
			ex.existing[n.Object] = slot
		}
		return slot
	default:
		tmp := ctx.TempLocal("t")
		ex.expr(e, []*Slot{tmp})
		return tmp
	}
}

// expr extracts the constraints of one expression, flowing its value into
// targets (which may be empty for effect-only evaluation).
func (ex *extractor) expr(e ir.Expr, targets []*Slot) {
	ctx := ex.ctx
	switch n := e.(type) {
	case *ir.Local, *ir.Existing:
		src := ex.slotOf(e)
		for _, t := range targets {
			ctx.assign(src, t)
		}
	case *ir.Call:
		if n.KArgs != nil {
			ex.unsupported(e)
			ex.escape(ex.slotOf(n.KArgs))
		}
		ctx.call(n, ex.slotOf(n.Expr), ex.slots(n.Args), ex.optSlot(n.VArgs), targets)
	case *ir.DirectCall:
		if n.KArgs != nil {
			ex.unsupported(e)
			ex.escape(ex.slotOf(n.KArgs))
		}
		ctx.dcall(n, n.Code, ex.optSlot(n.SelfArg), ex.slots(n.Args), ex.optSlot(n.VArgs), targets)
	case *ir.Load:
		name, ok := ex.fieldName(n.Name)
		if !ok {
			ex.markUnknown(targets)
			return
		}
		initConstraint(ctx, &loadConstraint{
			op:        n,
			expr:      ex.slotOf(n.Expr),
			fieldtype: n.FieldType,
			name:      name,
			dst:       ex.first(targets),
		})
	case *ir.Check:
		name, ok := ex.fieldName(n.Name)
		if !ok {
			ex.markUnknown(targets)
			return
		}
		initConstraint(ctx, &checkConstraint{
			op:        n,
			expr:      ex.slotOf(n.Expr),
			fieldtype: n.FieldType,
			name:      name,
			dst:       ex.firstOrTemp(targets),
		})
	case *ir.Allocate:
		initConstraint(ctx, &allocateConstraint{
			op:   n,
			expr: ex.slotOf(n.Expr),
			dst:  ex.firstOrTemp(targets),
		})
	case *ir.Is:
		initConstraint(ctx, &isConstraint{
			left:  ex.slotOf(n.Left),
			right: ex.slotOf(n.Right),
			dst:   ex.firstOrTemp(targets),
		})
	case *ir.BuildTuple:
		ex.build(n, ex.ctx.state.program.TupleClass, n.Args, true, targets)
	case *ir.BuildList:
		ex.build(n, ex.ctx.state.program.ListClass, n.Args, false, targets)
	case *ir.BuildMap:
		ex.build(n, ex.ctx.state.program.DictClass, nil, false, targets)
	default:
		ex.unsupported(e)
		ex.markUnknown(targets)
	}
}

// build allocates a container at the expression site and fills its element
// slots. Tuples additionally carry their exact length, which spread calls
// rely on.
func (ex *extractor) build(op ir.Expr, class *ir.Class, args []ir.Expr, exactLength bool, targets []*Slot) {
	ctx := ex.ctx
	s := ctx.state
	prog := s.program

	obj := s.objectName(s.pathType(class.Instance(), ctx, op), HZ)
	ctx.annotateAllocate(op, obj)

	if exactLength {
		length := ctx.Field(obj, ir.LowLevelField, prog.Constant("length"))
		length.ClearNull()
		length.UpdateSingleValue(ctx.existingName(prog.Constant(len(args))))
	}
	for i, arg := range args {
		field := ctx.Field(obj, ir.ArrayField, prog.Constant(i))
		field.ClearNull()
		ctx.assign(ex.slotOf(arg), field)
	}
	for _, t := range targets {
		t.UpdateSingleValue(obj)
	}
}

func (ex *extractor) slots(exprs []ir.Expr) []*Slot {
	out := make([]*Slot, len(exprs))
	for i, e := range exprs {
		out[i] = ex.slotOf(e)
	}
	return out
}

func (ex *extractor) optSlot(e ir.Expr) *Slot {
	if e == nil {
		return nil
	}
	return ex.slotOf(e)
}

func (ex *extractor) first(targets []*Slot) *Slot {
	if len(targets) == 0 {
		return nil
	}
	return targets[0]
}

func (ex *extractor) firstOrTemp(targets []*Slot) *Slot {
	if len(targets) == 0 {
		return ex.ctx.TempLocal("t")
	}
	return targets[0]
}

// fieldName resolves a field-name expression to its key object. Only
// preexisting names are modeled; computed names degrade.
func (ex *extractor) fieldName(e ir.Expr) (*ir.Object, bool) {
	if ref, ok := e.(*ir.Existing); ok {
		return ref.Object, true
	}
	ex.unsupported(e)
	return nil, false
}

// markUnknown records that targets hold a value the analysis cannot see.
// They get the wildcard name so every downstream use stays sound.
func (ex *extractor) markUnknown(targets []*Slot) {
	wild := ex.ctx.state.objectName(AnyType, HZ)
	for _, t := range targets {
		t.MarkNull()
		t.UpdateSingleValue(wild)
	}
}

// escape routes a value whose destination the analysis cannot model into the
// context's escape sink.
func (ex *extractor) escape(slot *Slot) {
	ex.ctx.assign(slot, ex.ctx.escapeSink())
}

func (ex *extractor) unsupported(node any) {
	err := &UnsupportedConstructError{
		Code:      ex.code.Name(),
		Construct: fmt.Sprintf("%T", node),
	}
	ex.ctx.state.unsupported = append(ex.ctx.state.unsupported, err)
	ex.ctx.state.logger.Warnf("%s", err)
}
