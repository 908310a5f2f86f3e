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
	"github.com/awslabs/ar-py-tools/internal/funcutil"
)

// Context is one analyzed calling context: a code object specialized to the
// concrete argument types of its signature. It owns the slots for its locals,
// its view of the heap, the constraints extracted from its body, and the
// invocation edges connecting it to callers and callees.
type Context struct {
	state     *State
	signature *Signature
	region    *Region

	locals map[*ir.Local]*Slot
	temps  int

	constraints []Constraint

	// returns are the slots the code's return parameters resolve to
	returns []*Slot

	// vparamFields are the element slots of the tuple packing surplus
	// positional arguments, in order
	vparamFields []*Slot

	// foldObj, when non-nil, replaces this context's return value: the
	// signature bound only constants and the code folds
	foldObj *ObjectName

	calls []*callConstraint

	invokeOut map[invokeKey]*Invocation
	invokeIn  []*Invocation

	annotations map[any]*OpAnnotations
	summary     *Summary

	// escapes collects values whose destination the analysis cannot model;
	// everything flowing into it is classified as escaping
	escapes *Slot

	id int64
}

func newContext(s *State, sig *Signature) *Context {
	ctx := &Context{
		state:       s,
		signature:   sig,
		locals:      map[*ir.Local]*Slot{},
		invokeOut:   map[invokeKey]*Invocation{},
		annotations: map[any]*OpAnnotations{},
		id:          int64(len(s.contextList)),
	}
	ctx.region = newRegion(ctx)
	return ctx
}

func (ctx *Context) Signature() *Signature { return ctx.signature }

func (ctx *Context) ID() int64 { return ctx.id }

// Code returns the analyzed code object, nil for the root context.
func (ctx *Context) Code() *ir.Code { return ctx.signature.code }

// External reports whether this is the synthetic root context that seeds
// entry points.
func (ctx *Context) External() bool { return ctx.signature.External() }

func (ctx *Context) String() string { return ctx.signature.String() }

// Local returns the slot of l, creating it on first use. The do-not-care
// placeholder gets a fresh throwaway slot each time so unrelated values never
// merge through it.
func (ctx *Context) Local(l *ir.Local) *Slot {
	if l.IsDoNotCare() {
		return ctx.TempLocal("_")
	}
	slot, ok := ctx.locals[l]
	if !ok {
		slot = newSlot(ctx, l.Name, false)
		ctx.locals[l] = slot
	}
	return slot
}

// TempLocal returns a fresh anonymous slot.
func (ctx *Context) TempLocal(name string) *Slot {
	ctx.temps++
	return newSlot(ctx, fmt.Sprintf("%s#%d", name, ctx.temps), false)
}

// Returns are the slots holding the context's return values.
func (ctx *Context) Returns() []*Slot { return ctx.returns }

// escapeSink returns the slot absorbing values the context loses track of.
func (ctx *Context) escapeSink() *Slot {
	if ctx.escapes == nil {
		ctx.escapes = newSlot(ctx, "escapes", false)
	}
	return ctx.escapes
}

// Field returns the slot of field (fieldtype, name) on the object named obj.
func (ctx *Context) Field(obj *ObjectName, fieldtype ir.FieldType, name *ir.Object) *Slot {
	return ctx.region.Object(obj).Field(fieldtype, name)
}

// assign adds a copy edge from src to dst.
func (ctx *Context) assign(src, dst *Slot) {
	initConstraint(ctx, &copyConstraint{src: src, dst: dst})
}

// existingName names a preexisting object.
func (ctx *Context) existingName(obj *ir.Object) *ObjectName {
	return ctx.state.objectName(ctx.state.existingType(obj), GLBL)
}

func (ctx *Context) trueName() *ObjectName {
	return ctx.existingName(ctx.state.program.True())
}

func (ctx *Context) falseName() *ObjectName {
	return ctx.existingName(ctx.state.program.False())
}

// updateCallgraph reprocesses dirty call sites, binding any call targets
// discovered since the last pass. It reports whether anything new was bound.
func (ctx *Context) updateCallgraph() bool {
	changed := false
	for _, call := range ctx.calls {
		if call.dirty {
			call.dirty = false
			if call.resolve(ctx) {
				changed = true
			}
		}
	}
	return changed
}

// OpAnnotations records what one operation touched, per heap effect.
type OpAnnotations struct {
	Reads     map[*ObjectName][]*Slot
	Modifies  map[*ObjectName][]*Slot
	Allocates ValueSet
}

func (ctx *Context) annotation(op any) *OpAnnotations {
	ann, ok := ctx.annotations[op]
	if !ok {
		ann = &OpAnnotations{
			Reads:     map[*ObjectName][]*Slot{},
			Modifies:  map[*ObjectName][]*Slot{},
			Allocates: ValueSet{},
		}
		ctx.annotations[op] = ann
	}
	return ann
}

// Annotation returns what op touched in this context, or nil.
func (ctx *Context) Annotation(op any) *OpAnnotations {
	return ctx.annotations[op]
}

func (ctx *Context) annotateRead(op any, obj *ObjectName, field *Slot) {
	ann := ctx.annotation(op)
	if !funcutil.Contains(ann.Reads[obj], field) {
		ann.Reads[obj] = append(ann.Reads[obj], field)
	}
}

func (ctx *Context) annotateModify(op any, obj *ObjectName, field *Slot) {
	ann := ctx.annotation(op)
	if !funcutil.Contains(ann.Modifies[obj], field) {
		ann.Modifies[obj] = append(ann.Modifies[obj], field)
	}
}

func (ctx *Context) annotateAllocate(op any, obj *ObjectName) {
	ctx.annotation(op).Allocates.Add(obj)
}


type invokeKey struct {
	op     ir.Expr
	callee *Context
}

// Invocation is one edge of the call graph: a call site in the caller bound
// to one callee context. Value flow across the edge renames qualifiers so
// each side sees objects relative to its own frame.
type Invocation struct {
	caller *Context
	callee *Context
	op     ir.Expr
}

// getInvoke returns the invocation for (op, callee), creating and recording
// it on first use.
func (ctx *Context) getInvoke(op ir.Expr, callee *Context) *Invocation {
	key := invokeKey{op, callee}
	if inv, ok := ctx.invokeOut[key]; ok {
		return inv
	}
	inv := &Invocation{caller: ctx, callee: callee, op: op}
	ctx.invokeOut[key] = inv
	callee.invokeIn = append(callee.invokeIn, inv)
	ctx.state.generation++
	ctx.state.logger.Debugf("bind %s -> %s", ctx, callee)
	return inv
}

func (inv *Invocation) Caller() *Context { return inv.caller }

func (inv *Invocation) Callee() *Context { return inv.callee }

// Site returns the call expression this invocation binds.
func (inv *Invocation) Site() ir.Expr { return inv.op }

// copyDown renames an object flowing into the callee.
func (inv *Invocation) copyDown(o *ObjectName) *ObjectName {
	return inv.caller.state.remap(o, DN)
}

// copyUp renames an object returned to the caller.
func (inv *Invocation) copyUp(o *ObjectName) *ObjectName {
	return inv.caller.state.remap(o, UP)
}

// down transfers src in the caller into dst in the callee.
func (inv *Invocation) down(src, dst *Slot) {
	initConstraint(inv.caller, &downwardConstraint{invoke: inv, src: src, dst: dst})
}

// downFields is down for field slots, carrying the null flag as well.
func (inv *Invocation) downFields(src, dst *Slot) {
	initConstraint(inv.caller, &downwardConstraint{invoke: inv, src: src, dst: dst, fields: true})
}

// up transfers src in the callee into dst in the caller.
func (inv *Invocation) up(src, dst *Slot) {
	initConstraint(inv.callee, &upwardConstraint{invoke: inv, src: src, dst: dst})
}

// Apply folds the callee's summarized heap effects into the caller. The
// bottom-up pass calls this once per invocation after the callee's summary
// settles.
func (inv *Invocation) Apply() {
	if inv.callee.summary == nil || inv.caller.summary == nil {
		return
	}
	inv.caller.summary.absorb(inv.callee.summary)
}
