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

	"github.com/awslabs/ar-py-tools/analysis/calling"
	"github.com/awslabs/ar-py-tools/analysis/ir"
)

// callConstraint resolves one call site. It watches the types flowing into
// the callable and argument slots; whenever they grow it enumerates the
// cartesian product of per-position types, interns a signature per
// combination, and binds the site to the matching callee contexts.
type callConstraint struct {
	op ir.Expr

	// code pins the callee for direct calls; dynamic calls resolve through
	// expr instead
	code *ir.Code
	expr *Slot

	selfarg *Slot
	args    []*Slot
	vargs   *Slot
	targets []*Slot

	dirty bool

	// bound holds signature keys already bound at this site
	bound map[string]bool

	watched map[*Slot]bool

	// warnedAny suppresses repeated megamorphic-callable warnings
	warnedAny bool
}

// call records a dynamic call site: callable in expr, spread tuple in vargs
// when non-nil.
func (ctx *Context) call(op ir.Expr, expr *Slot, args []*Slot, vargs *Slot, targets []*Slot) {
	c := &callConstraint{
		op:      op,
		expr:    expr,
		args:    args,
		vargs:   vargs,
		targets: targets,
		dirty:   true,
		bound:   map[string]bool{},
		watched: map[*Slot]bool{},
	}
	ctx.calls = append(ctx.calls, c)
	c.watch(expr)
	c.watchAll(ctx)
}

// dcall records a direct call site to a statically known code.
func (ctx *Context) dcall(op ir.Expr, code *ir.Code, selfarg *Slot, args []*Slot, vargs *Slot, targets []*Slot) {
	c := &callConstraint{
		op:      op,
		code:    code,
		selfarg: selfarg,
		args:    args,
		vargs:   vargs,
		targets: targets,
		dirty:   true,
		bound:   map[string]bool{},
		watched: map[*Slot]bool{},
	}
	ctx.calls = append(ctx.calls, c)
	c.watchAll(ctx)
}

func (c *callConstraint) watchAll(ctx *Context) {
	if c.selfarg != nil {
		c.watch(c.selfarg)
	}
	for _, arg := range c.args {
		c.watch(arg)
	}
	if c.vargs != nil {
		c.watch(c.vargs)
	}
}

// watch attaches a type split on slot that re-resolves this site when the
// observed types grow. Attaching twice is a no-op.
func (c *callConstraint) watch(slot *Slot) *TypeSplit {
	if c.watched[slot] {
		return slot.typeSplit
	}
	c.watched[slot] = true
	return slot.attachTypeSplit(func() { c.dirty = true })
}

type callCandidate struct {
	code *ir.Code
	self *Slot
}

// resolve recomputes the candidate callees and signatures of the site,
// reporting whether any new binding was made.
func (c *callConstraint) resolve(ctx *Context) bool {
	changed := false
	for _, cand := range c.candidates(ctx) {
		if c.resolveCode(ctx, cand) {
			changed = true
		}
	}
	return changed
}

// candidates lists the callee codes the site may dispatch to. For dynamic
// calls the callable object doubles as the receiver when the callee declares
// one.
func (c *callConstraint) candidates(ctx *Context) []callCandidate {
	if c.code != nil {
		return []callCandidate{{code: c.code, self: c.selfarg}}
	}
	var out []callCandidate
	for _, t := range c.watch(c.expr).Types() {
		if t == AnyType {
			// The callable position collapsed. There is nothing to
			// dispatch on; the site degrades to unresolved.
			if !c.warnedAny {
				c.warnedAny = true
				ctx.state.logger.Warnf("megamorphic callable at call site in %s, dropping resolution", ctx)
			}
			continue
		}
		code := t.Object().CallableCode()
		if code == nil {
			ctx.state.failInternal(fmt.Errorf("call of non-callable object %s in %s", t, ctx))
			continue
		}
		cand := callCandidate{code: code}
		if code.Parameters().SelfParam != nil {
			cand.self = c.expr.Filtered(t)
		}
		out = append(out, cand)
	}
	return out
}

func (c *callConstraint) resolveCode(ctx *Context, cand callCandidate) bool {
	params := calling.ParamsOf(cand.code)
	if c.vargs == nil {
		return c.resolveArity(ctx, cand, params, c.args, false)
	}

	// Spread call: expand the spread tuples the analysis itself built, whose
	// lengths are exact; anything else keeps the arity uncertain.
	changed := false
	lengths := c.vargLengths(ctx)
	for obj, length := range lengths {
		allslots := append(append([]*Slot(nil), c.args...), c.vargElements(ctx, obj, length)...)
		if c.resolveArity(ctx, cand, params, allslots, false) {
			changed = true
		}
	}
	exact := true
	for obj := range c.vargs.Values() {
		if _, ok := lengths[obj]; !ok {
			exact = false
		}
	}
	if !exact {
		if c.resolveArity(ctx, cand, params, c.args, true) {
			changed = true
		}
	}
	return changed
}

// vargLengths maps each spread tuple with an exactly known length to that
// length. Lengths come from the tuple's low-level length field; a tuple with
// several observed lengths keeps only the largest, the shorter bindings being
// subsumed.
func (c *callConstraint) vargLengths(ctx *Context) map[*ObjectName]int {
	out := map[*ObjectName]int{}
	prog := ctx.state.program
	for obj := range c.vargs.Values() {
		lengthSlot := ctx.Field(obj, ir.LowLevelField, prog.Constant("length"))
		c.watch(lengthSlot)
		for l := range lengthSlot.Values() {
			v, ok := l.Object().Constant()
			if !ok {
				continue
			}
			if n, isInt := v.(int); isInt {
				if prev, seen := out[obj]; !seen || n > prev {
					out[obj] = n
				}
			}
		}
	}
	return out
}

func (c *callConstraint) vargElements(ctx *Context, obj *ObjectName, length int) []*Slot {
	prog := ctx.state.program
	slots := make([]*Slot, length)
	for i := 0; i < length; i++ {
		slots[i] = ctx.Field(obj, ir.ArrayField, prog.Constant(i))
		c.watch(slots[i])
	}
	return slots
}

// resolveArity matches one concrete argument list against the candidate and
// binds every new signature in the cartesian product of argument types.
func (c *callConstraint) resolveArity(ctx *Context, cand callCandidate, params calling.CalleeParams, argSlots []*Slot, uncertain bool) bool {
	info := calling.MatchCall(params, cand.self != nil, len(argSlots), uncertain)
	if !info.WillSucceed.MaybeTrue() {
		return false
	}
	if uncertain && params.HasVParam {
		ctx.state.logger.Debugf("untracked spread into %s from %s, vararg contents dropped", cand.code, ctx)
	}

	// Per-position type sets.
	var selfTypes []*XType
	if info.SelfTransfer {
		selfTypes = c.watch(cand.self).Types()
	} else {
		selfTypes = []*XType{nil}
	}

	paramSets := make([][]*XType, params.NumParams)
	info.ArgParam.Pairs(func(src, dst int) {
		paramSets[dst] = c.watch(argSlots[src]).Types()
	})
	for i := range paramSets {
		if paramSets[i] != nil {
			continue
		}
		if info.Defaults[i] {
			paramSets[i] = []*XType{nil}
		} else {
			// Only reachable with uncertain spread arity: the position may
			// be filled by an untracked value.
			paramSets[i] = []*XType{AnyType}
		}
	}

	vparamSets := make([][]*XType, info.ArgVParam.Count)
	info.ArgVParam.Pairs(func(src, dst int) {
		vparamSets[dst] = c.watch(argSlots[src]).Types()
	})

	changed := false
	forEachCombination(selfTypes, paramSets, vparamSets, func(self *XType, paramTs, vparamTs []*XType) {
		if c.bindSignature(ctx, cand, info, argSlots, self, paramTs, vparamTs) {
			changed = true
		}
	})
	return changed
}

// forEachCombination enumerates the cartesian product of the per-position
// type sets.
func forEachCombination(selfTypes []*XType, paramSets, vparamSets [][]*XType, f func(self *XType, paramTs, vparamTs []*XType)) {
	paramTs := make([]*XType, len(paramSets))
	vparamTs := make([]*XType, len(vparamSets))

	var walkVParams func(i int, self *XType)
	walkVParams = func(i int, self *XType) {
		if i == len(vparamSets) {
			f(self, paramTs, vparamTs)
			return
		}
		for _, t := range vparamSets[i] {
			vparamTs[i] = t
			walkVParams(i+1, self)
		}
	}

	var walkParams func(i int, self *XType)
	walkParams = func(i int, self *XType) {
		if i == len(paramSets) {
			walkVParams(0, self)
			return
		}
		for _, t := range paramSets[i] {
			paramTs[i] = t
			walkParams(i+1, self)
		}
	}

	for _, self := range selfTypes {
		walkParams(0, self)
	}
}

// bindSignature wires the call site to the callee context of one concrete
// signature. Binding is idempotent per signature.
func (c *callConstraint) bindSignature(ctx *Context, cand callCandidate, info calling.CallInfo, argSlots []*Slot, self *XType, paramTs, vparamTs []*XType) bool {
	s := ctx.state
	sig := s.signature(cand.code, self, paramTs, vparamTs)
	if c.bound[sig.key] {
		return false
	}
	c.bound[sig.key] = true

	callee := s.Context(sig)
	inv := ctx.getInvoke(c.op, callee)
	formals := cand.code.Parameters()

	if info.SelfTransfer && formals.SelfParam != nil && !formals.SelfParam.IsDoNotCare() {
		inv.down(cand.self.Filtered(self), callee.Local(formals.SelfParam))
	}

	info.ArgParam.Pairs(func(src, dst int) {
		param := formals.Params[dst]
		if param.IsDoNotCare() {
			return
		}
		inv.down(argSlots[src].Filtered(paramTs[dst]), callee.Local(param))
	})

	// Unbound trailing parameters take their defaults.
	defaultOffset := len(formals.Params) - len(formals.Defaults)
	for dst := range info.Defaults {
		param := formals.Params[dst]
		if param.IsDoNotCare() {
			continue
		}
		def := formals.Defaults[dst-defaultOffset]
		callee.Local(param).UpdateSingleValue(callee.existingName(def))
	}

	info.ArgVParam.Pairs(func(src, dst int) {
		if dst < len(callee.vparamFields) {
			// The destination is a field slot of the packed vararg tuple, so
			// the transfer also carries the null flag.
			inv.downFields(argSlots[src].Filtered(vparamTs[dst]), callee.vparamFields[dst])
		}
	})

	if callee.foldObj != nil {
		// The callee folds to a constant for this signature; short-circuit
		// the return flow.
		for _, tgt := range c.targets {
			tgt.UpdateSingleValue(callee.foldObj)
		}
		return true
	}
	for i, tgt := range c.targets {
		if i < len(callee.returns) {
			inv.up(callee.returns[i], tgt)
		}
	}
	return true
}
