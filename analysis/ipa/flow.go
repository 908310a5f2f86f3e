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

// copyConstraint forwards every object of src to dst unchanged.
type copyConstraint struct {
	src, dst *Slot
}

func (c *copyConstraint) attach() {
	c.src.addNext(c)
	c.dst.addPrev(c)
}

func (c *copyConstraint) makeConsistent(ctx *Context) {
	if len(c.src.values) > 0 {
		c.changed(ctx, c.src, c.src.values)
	}
}

func (c *copyConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	c.dst.UpdateValues(diff)
}

// downwardConstraint forwards objects across an invocation edge from caller
// to callee, renaming their qualifiers to the callee's frame. With fields
// set it also carries the null flag, for field-to-field transfers.
type downwardConstraint struct {
	invoke   *Invocation
	src, dst *Slot
	fields   bool
}

func (c *downwardConstraint) attach() {
	c.src.addNext(c)
	c.dst.addPrev(c)
}

func (c *downwardConstraint) makeConsistent(ctx *Context) {
	if len(c.src.values) > 0 {
		c.changed(ctx, c.src, c.src.values)
	}
	if c.fields && c.src.null {
		c.dst.MarkNull()
	}
}

func (c *downwardConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	for o := range diff {
		c.dst.UpdateSingleValue(c.invoke.copyDown(o))
	}
	if c.fields && c.src.null {
		c.dst.MarkNull()
	}
}

// upwardConstraint forwards returned objects from callee to caller,
// renaming their qualifiers to the caller's frame.
type upwardConstraint struct {
	invoke   *Invocation
	src, dst *Slot
}

func (c *upwardConstraint) attach() {
	c.src.addNext(c)
	c.dst.addPrev(c)
}

func (c *upwardConstraint) makeConsistent(ctx *Context) {
	if len(c.src.values) > 0 {
		c.changed(ctx, c.src, c.src.values)
	}
}

func (c *upwardConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	for o := range diff {
		c.dst.UpdateSingleValue(c.invoke.copyUp(o))
	}
}

// loadConstraint reads field (fieldtype, name) from every object flowing
// into expr and assigns the field's contents to dst. A nil dst records the
// read without consuming the value.
type loadConstraint struct {
	op        ir.Expr
	expr      *Slot
	fieldtype ir.FieldType
	name      *ir.Object
	dst       *Slot
}

func (c *loadConstraint) attach() {
	c.expr.addNext(c)
	if c.dst != nil {
		c.dst.addPrev(c)
	}
}

func (c *loadConstraint) makeConsistent(ctx *Context) {
	if len(c.expr.values) > 0 {
		c.changed(ctx, c.expr, c.expr.values)
	}
}

func (c *loadConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	for o := range diff {
		field := ctx.Field(o, c.fieldtype, c.name)
		ctx.annotateRead(c.op, o, field)
		if c.dst != nil {
			ctx.assign(field, c.dst)
		}
	}
}

// storeConstraint writes the contents of value into field (fieldtype, name)
// of every object flowing into expr. Stores are weak: they add to the field
// without clearing its null flag.
type storeConstraint struct {
	op        ir.Stmt
	value     *Slot
	expr      *Slot
	fieldtype ir.FieldType
	name      *ir.Object
}

func (c *storeConstraint) attach() {
	c.expr.addNext(c)
}

func (c *storeConstraint) makeConsistent(ctx *Context) {
	if len(c.expr.values) > 0 {
		c.changed(ctx, c.expr, c.expr.values)
	}
}

func (c *storeConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	for o := range diff {
		field := ctx.Field(o, c.fieldtype, c.name)
		ctx.annotateModify(c.op, o, field)
		ctx.assign(c.value, field)
	}
}

// checkConstraint tests whether field (fieldtype, name) is present on the
// objects flowing into expr, producing boolean constants in dst. Each
// concrete field answers True and False at most once each.
type checkConstraint struct {
	op        ir.Expr
	expr      *Slot
	fieldtype ir.FieldType
	name      *ir.Object
	dst       *Slot
}

func (c *checkConstraint) attach() {
	c.expr.addNext(c)
	c.dst.addPrev(c)
}

func (c *checkConstraint) makeConsistent(ctx *Context) {
	if len(c.expr.values) > 0 {
		c.changed(ctx, c.expr, c.expr.values)
	}
}

func (c *checkConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	for o := range diff {
		field := ctx.Field(o, c.fieldtype, c.name)
		ctx.annotateRead(c.op, o, field)
		initConstraint(ctx, &concreteCheckConstraint{field: field, dst: c.dst})
	}
}

// concreteCheckConstraint watches one field slot on behalf of a check.
type concreteCheckConstraint struct {
	field *Slot
	dst   *Slot
	t, f  bool
}

func (c *concreteCheckConstraint) attach() {
	c.field.addNext(c)
	c.dst.addPrev(c)
}

func (c *concreteCheckConstraint) makeConsistent(ctx *Context) {
	c.emit(ctx, len(c.field.values) > 0)
}

func (c *concreteCheckConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	c.emit(ctx, len(diff) > 0)
}

func (c *concreteCheckConstraint) emit(ctx *Context, hasValues bool) {
	if hasValues && !c.t {
		c.t = true
		c.dst.UpdateSingleValue(ctx.trueName())
	}
	if c.field.null && !c.f {
		c.f = true
		c.dst.UpdateSingleValue(ctx.falseName())
	}
}

// allocateConstraint instantiates every type object flowing into expr,
// producing a heap object named by the allocation site.
type allocateConstraint struct {
	op   ir.Expr
	expr *Slot
	dst  *Slot
}

func (c *allocateConstraint) attach() {
	c.expr.addNext(c)
	c.dst.addPrev(c)
}

func (c *allocateConstraint) makeConsistent(ctx *Context) {
	if len(c.expr.values) > 0 {
		c.changed(ctx, c.expr, c.expr.values)
	}
}

func (c *allocateConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	s := ctx.state
	for o := range diff {
		cls := o.Object().Reifies()
		if cls == nil {
			s.failInternal(fmt.Errorf("allocate of non-type object %s in %s", o, ctx))
			continue
		}
		inst := s.objectName(s.pathType(cls.Instance(), ctx, c.op), HZ)
		ctx.annotateAllocate(c.op, inst)
		c.dst.UpdateSingleValue(inst)
	}
}

// isConstraint compares the identities of the objects flowing into its two
// operands, producing boolean constants in dst. Answers are emitted at most
// once each.
type isConstraint struct {
	left, right *Slot
	dst         *Slot
	t, f        bool
}

func (c *isConstraint) attach() {
	c.left.addNext(c)
	if c.right != c.left {
		c.right.addNext(c)
	}
	c.dst.addPrev(c)
}

func (c *isConstraint) makeConsistent(ctx *Context) {
	for l := range c.left.values {
		for r := range c.right.values {
			c.concrete(ctx, l, r)
		}
	}
}

func (c *isConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	if slot == c.left {
		for l := range diff {
			for r := range c.right.values {
				c.concrete(ctx, l, r)
			}
		}
	}
	if slot == c.right {
		for r := range diff {
			for l := range c.left.values {
				c.concrete(ctx, l, r)
			}
		}
	}
}

// concrete decides identity for one pair of abstract objects. Preexisting
// objects are singletons, so their names decide exactly. Instances of a
// constant-pooled class may be interned by the runtime, so a pooled constant
// can coincide with any abstract instance of its class. Allocated objects
// sharing an extended type may or may not be the same runtime object, while
// distinct extended types never alias.
func (c *isConstraint) concrete(ctx *Context, l, r *ObjectName) {
	switch {
	case l.xtype == AnyType || r.xtype == AnyType:
		c.emitTrue(ctx)
		c.emitFalse(ctx)
	case l == r && l.xtype.IsExisting():
		c.emitTrue(ctx)
	case l.xtype.IsExisting() && r.xtype.IsExisting():
		c.emitFalse(ctx)
	case l.xtype.Class() != nil && l.xtype.Class() == r.xtype.Class() && l.xtype.Class().ConstantPooled:
		c.emitTrue(ctx)
		c.emitFalse(ctx)
	case l.xtype == r.xtype:
		c.emitTrue(ctx)
		c.emitFalse(ctx)
	default:
		c.emitFalse(ctx)
	}
}

func (c *isConstraint) emitTrue(ctx *Context) {
	if !c.t {
		c.t = true
		c.dst.UpdateSingleValue(ctx.trueName())
	}
}

func (c *isConstraint) emitFalse(ctx *Context) {
	if !c.f {
		c.f = true
		c.dst.UpdateSingleValue(ctx.falseName())
	}
}
