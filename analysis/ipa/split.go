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

import "fmt"

// TypeSplit partitions a slot's objects by extended type, giving call
// constraints one filtered slot per observed type. When the number of types
// reaches the configured limit the split collapses to the wildcard type and
// never re-expands; filtered views then degenerate to the source slot.
type TypeSplit struct {
	src         *Slot
	targets     map[*XType]*Slot
	callbacks   []func()
	megamorphic bool
}

func newTypeSplit(src *Slot) *TypeSplit {
	return &TypeSplit{src: src, targets: map[*XType]*Slot{}}
}

func (ts *TypeSplit) attach() {
	if len(ts.src.values) > 0 {
		ts.changed(ts.src.context, ts.src, ts.src.values)
	}
}

func (ts *TypeSplit) addCallback(cb func()) {
	ts.callbacks = append(ts.callbacks, cb)
}

// Types returns the observed extended types, or just the wildcard after a
// megamorphic collapse.
func (ts *TypeSplit) Types() []*XType {
	if ts.megamorphic {
		return []*XType{AnyType}
	}
	out := make([]*XType, 0, len(ts.targets))
	for t := range ts.targets {
		out = append(out, t)
	}
	return out
}

// Target returns the slot holding exactly the source's objects of type t.
func (ts *TypeSplit) Target(t *XType) *Slot {
	if ts.megamorphic || t == AnyType {
		return ts.src
	}
	return ts.makeTarget(t)
}

func (ts *TypeSplit) makeTarget(t *XType) *Slot {
	tgt, ok := ts.targets[t]
	if !ok {
		tgt = newSlot(ts.src.context, fmt.Sprintf("%s|%s", ts.src.name, t), false)
		ts.targets[t] = tgt
	}
	return tgt
}

func (ts *TypeSplit) changed(ctx *Context, slot *Slot, diff ValueSet) {
	if ts.megamorphic {
		return
	}
	grew := false
	for o := range diff {
		t := o.XType()
		if _, ok := ts.targets[t]; !ok {
			grew = true
		}
		ts.makeTarget(t).UpdateSingleValue(o)
	}
	if len(ts.targets) >= ctx.state.config.TypeSplitLimit {
		ts.makeMegamorphic(ctx)
		grew = true
	}
	if grew {
		ts.notify()
	}
}

// makeMegamorphic gives up on per-type dispatch for this slot. Existing
// target slots are abandoned; future filtered views alias the source.
func (ts *TypeSplit) makeMegamorphic(ctx *Context) {
	ts.megamorphic = true
	ts.targets = nil
	if ctx.state.config.WarnOnCollapse {
		ctx.state.logger.Warnf("megamorphic collapse of %s", ts.src)
	} else {
		ctx.state.logger.Debugf("megamorphic collapse of %s", ts.src)
	}
}

func (ts *TypeSplit) notify() {
	for _, cb := range ts.callbacks {
		cb()
	}
}

// ExactSplit partitions a slot's objects by identity rather than by type.
// It backs exact dispatch on preexisting callables, where two objects of the
// same class can still lead to different code.
type ExactSplit struct {
	src       *Slot
	targets   map[*ObjectName]*Slot
	callbacks []func()
}

func newExactSplit(src *Slot) *ExactSplit {
	return &ExactSplit{src: src, targets: map[*ObjectName]*Slot{}}
}

func (es *ExactSplit) attach() {
	if len(es.src.values) > 0 {
		es.changed(es.src.context, es.src, es.src.values)
	}
}

func (es *ExactSplit) addCallback(cb func()) {
	es.callbacks = append(es.callbacks, cb)
}

// Objects returns the observed object names.
func (es *ExactSplit) Objects() []*ObjectName {
	out := make([]*ObjectName, 0, len(es.targets))
	for o := range es.targets {
		out = append(out, o)
	}
	return out
}

// Target returns the slot holding exactly the object o.
func (es *ExactSplit) Target(o *ObjectName) *Slot {
	tgt, ok := es.targets[o]
	if !ok {
		tgt = newSlot(es.src.context, fmt.Sprintf("%s|%s", es.src.name, o), false)
		es.targets[o] = tgt
	}
	return tgt
}

func (es *ExactSplit) changed(ctx *Context, slot *Slot, diff ValueSet) {
	grew := false
	for o := range diff {
		if _, ok := es.targets[o]; !ok {
			grew = true
		}
		es.Target(o).UpdateSingleValue(o)
	}
	if grew {
		for _, cb := range es.callbacks {
			cb()
		}
	}
}
