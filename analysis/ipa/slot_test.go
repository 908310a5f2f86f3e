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
	"io"
	"testing"

	"github.com/awslabs/ar-py-tools/analysis/config"
	"github.com/awslabs/ar-py-tools/analysis/ir"
)

func testState() *State {
	return testStateOver(ir.NewProgram())
}

func testStateOver(prog *ir.Program) *State {
	cfg := config.NewDefault()
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	return NewState(prog, cfg, logger)
}

// testName interns a fresh heap object name, one per site value.
func testName(s *State, site int) *ObjectName {
	cls := s.program.DeclareClass("T", false)
	op := &ir.Allocate{Expr: &ir.Existing{Object: s.program.Constant(site)}}
	return s.objectName(s.pathType(cls.Instance(), s.root, op), HZ)
}

// recordConstraint records every diff delivered by its source slot.
type recordConstraint struct {
	src  *Slot
	seen []ValueSet
}

func (c *recordConstraint) attach() { c.src.addNext(c) }

func (c *recordConstraint) makeConsistent(ctx *Context) {
	if len(c.src.values) > 0 {
		c.seen = append(c.seen, c.src.values.Copy())
	}
}

func (c *recordConstraint) changed(ctx *Context, slot *Slot, diff ValueSet) {
	c.seen = append(c.seen, diff.Copy())
}

func TestSlotLeafFoldsWithoutObservers(t *testing.T) {
	s := testState()
	slot := s.root.TempLocal("x")
	o := s.root.trueName()
	if !slot.UpdateSingleValue(o) {
		t.Fatalf("first add should report a change")
	}
	if !slot.Values().Contains(o) {
		t.Errorf("leaf slot should fold values in immediately")
	}
	if slot.UpdateSingleValue(o) {
		t.Errorf("re-adding a present value should not report a change")
	}
	if len(s.dirty) != 0 {
		t.Errorf("leaf update should not schedule propagation")
	}
}

func TestSlotDeliversEachObjectOnce(t *testing.T) {
	s := testState()
	slot := s.root.TempLocal("x")
	rec := &recordConstraint{src: slot}
	initConstraint(s.root, rec)

	a, b := s.root.trueName(), s.root.falseName()
	slot.UpdateSingleValue(a)
	s.updateConstraints()
	slot.UpdateSingleValue(a)
	s.updateConstraints()
	slot.UpdateSingleValue(b)
	s.updateConstraints()

	if len(rec.seen) != 2 {
		t.Fatalf("expected 2 deliveries, got %d: %v", len(rec.seen), rec.seen)
	}
	if !rec.seen[0].Contains(a) || len(rec.seen[0]) != 1 {
		t.Errorf("first delivery should be exactly {a}")
	}
	if !rec.seen[1].Contains(b) || len(rec.seen[1]) != 1 {
		t.Errorf("second delivery should be exactly {b}")
	}
	if !slot.Values().Contains(a) || !slot.Values().Contains(b) {
		t.Errorf("settled values should hold both objects")
	}
}

func TestSlotMakeConsistentReplaysValues(t *testing.T) {
	s := testState()
	slot := s.root.TempLocal("x")
	a := s.root.trueName()
	slot.UpdateSingleValue(a)

	rec := &recordConstraint{src: slot}
	initConstraint(s.root, rec)
	if len(rec.seen) != 1 || !rec.seen[0].Contains(a) {
		t.Errorf("late observer should be caught up with current values")
	}
}

func TestSlotNullFlags(t *testing.T) {
	s := testState()
	slot := newSlot(s.root, "f", true)
	if !slot.Null() {
		t.Fatalf("field slots start null")
	}
	slot.ClearNull()
	if slot.Null() {
		t.Errorf("ClearNull should clear the flag")
	}
	slot.MarkNull()
	if !slot.Null() {
		t.Errorf("MarkNull should set the flag")
	}
	local := s.root.TempLocal("x")
	if local.Null() {
		t.Errorf("local slots start non-null")
	}
}

func TestCopyConstraintChains(t *testing.T) {
	s := testState()
	a := s.root.TempLocal("a")
	b := s.root.TempLocal("b")
	c := s.root.TempLocal("c")
	s.root.assign(a, b)
	s.root.assign(b, c)

	o := s.root.trueName()
	a.UpdateSingleValue(o)
	s.updateConstraints()
	if !c.Values().Contains(o) {
		t.Errorf("value should flow through the copy chain")
	}
}
