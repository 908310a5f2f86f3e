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

// Slot is a node in the constraint graph: a monotonically growing set of
// abstract objects plus the constraints observing it. Pending additions sit
// in valuediff until the solver propagates them, so observers see each
// object exactly once.
type Slot struct {
	context *Context
	name    string

	values    ValueSet
	valuediff ValueSet

	// null tracks whether the slot may be unassigned. Field slots start
	// null; locals do not.
	null      bool
	nullDirty bool

	dirty bool

	// prev are constraints writing this slot, next are constraints reading
	// it. prev is kept for reporting only.
	prev []Constraint
	next []Constraint

	typeSplit  *TypeSplit
	exactSplit *ExactSplit
}

func newSlot(context *Context, name string, null bool) *Slot {
	return &Slot{
		context:   context,
		name:      name,
		values:    ValueSet{},
		valuediff: ValueSet{},
		null:      null,
	}
}

func (s *Slot) Context() *Context { return s.context }

func (s *Slot) Name() string { return s.name }

// Values returns the settled objects of the slot. Pending diffs are not
// included until the solver propagates them.
func (s *Slot) Values() ValueSet { return s.values }

// Null reports whether the slot may be unassigned.
func (s *Slot) Null() bool { return s.null }

// UpdateValues adds vs to the slot and reports whether anything was new.
// With no observers the objects fold straight into values; otherwise they
// queue in valuediff and the slot is scheduled for propagation.
func (s *Slot) UpdateValues(vs ValueSet) bool {
	changed := false
	for o := range vs {
		if s.values[o] || s.valuediff[o] {
			continue
		}
		changed = true
		if len(s.next) == 0 && s.typeSplit == nil && s.exactSplit == nil {
			s.values[o] = true
		} else {
			s.valuediff[o] = true
		}
	}
	if changed && len(s.valuediff) > 0 {
		s.markDirty()
	}
	return changed
}

// UpdateSingleValue adds one object to the slot.
func (s *Slot) UpdateSingleValue(o *ObjectName) bool {
	return s.UpdateValues(ValueSet{o: true})
}

// MarkNull records that the slot may be unassigned.
func (s *Slot) MarkNull() {
	if !s.null {
		s.null = true
		s.nullDirty = true
		s.markDirty()
	}
}

// ClearNull records that the slot is definitely assigned.
func (s *Slot) ClearNull() {
	if s.null {
		s.null = false
		s.nullDirty = true
		s.markDirty()
	}
}

func (s *Slot) markDirty() {
	if !s.dirty {
		s.dirty = true
		s.context.state.dirtySlot(s)
	}
}

// Propagate settles the pending diff into values and notifies every
// observing constraint of exactly the new objects.
func (s *Slot) Propagate() {
	s.dirty = false
	diff := s.valuediff
	s.valuediff = ValueSet{}
	nullChanged := s.nullDirty
	s.nullDirty = false

	if len(diff) == 0 && !nullChanged {
		return
	}
	s.values.Merge(diff)

	if s.typeSplit != nil && len(diff) > 0 {
		s.typeSplit.changed(s.context, s, diff)
	}
	if s.exactSplit != nil && len(diff) > 0 {
		s.exactSplit.changed(s.context, s, diff)
	}
	for _, c := range s.next {
		c.changed(s.context, s, diff)
	}
}

func (s *Slot) addNext(c Constraint) { s.next = append(s.next, c) }
func (s *Slot) addPrev(c Constraint) { s.prev = append(s.prev, c) }

// attachTypeSplit lazily builds the per-type view of the slot and registers
// cb to run whenever the set of observed types changes.
func (s *Slot) attachTypeSplit(cb func()) *TypeSplit {
	if s.typeSplit == nil {
		s.typeSplit = newTypeSplit(s)
		s.typeSplit.attach()
	}
	s.typeSplit.addCallback(cb)
	return s.typeSplit
}

// attachExactSplit is attachTypeSplit for exact object identity.
func (s *Slot) attachExactSplit(cb func()) *ExactSplit {
	if s.exactSplit == nil {
		s.exactSplit = newExactSplit(s)
		s.exactSplit.attach()
	}
	s.exactSplit.addCallback(cb)
	return s.exactSplit
}

// Filtered returns the slot restricted to objects of type t. The wildcard
// type returns the slot itself.
func (s *Slot) Filtered(t *XType) *Slot {
	if t == AnyType || s.typeSplit == nil {
		return s
	}
	return s.typeSplit.Target(t)
}

func (s *Slot) String() string {
	return fmt.Sprintf("%s.%s", s.context, s.name)
}
