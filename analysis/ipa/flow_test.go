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
	"errors"
	"testing"

	"github.com/awslabs/ar-py-tools/analysis/ir"
)

func TestIsConstraintIdentity(t *testing.T) {
	s := testState()
	five := s.root.existingName(s.program.Constant(5))
	six := s.root.existingName(s.program.Constant(6))
	heapA := testName(s, 1)
	heapB := testName(s, 2)
	wild := s.objectName(AnyType, HZ)
	anyInt := s.objectName(s.externalType(s.program.IntClass.Instance()), HZ)

	tests := []struct {
		name        string
		left, right *ObjectName
		wantTrue    bool
		wantFalse   bool
	}{
		{"same constant", five, five, true, false},
		{"distinct constants", five, six, false, true},
		{"same allocation site", heapA, heapA, true, true},
		{"distinct allocation sites", heapA, heapB, false, true},
		{"constant against heap", five, heapA, false, true},
		{"pooled constant against abstract int", five, anyInt, true, true},
		{"wildcard operand", wild, five, true, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			left := s.root.TempLocal("l")
			right := s.root.TempLocal("r")
			dst := s.root.TempLocal("d")
			initConstraint(s.root, &isConstraint{left: left, right: right, dst: dst})
			left.UpdateSingleValue(test.left)
			right.UpdateSingleValue(test.right)
			s.updateConstraints()

			if got := dst.Values().Contains(s.root.trueName()); got != test.wantTrue {
				t.Errorf("true answer = %v, want %v", got, test.wantTrue)
			}
			if got := dst.Values().Contains(s.root.falseName()); got != test.wantFalse {
				t.Errorf("false answer = %v, want %v", got, test.wantFalse)
			}
		})
	}
}

func TestIsConstraintEmitsOnce(t *testing.T) {
	s := testState()
	left := s.root.TempLocal("l")
	right := s.root.TempLocal("r")
	dst := s.root.TempLocal("d")
	rec := &recordConstraint{src: dst}
	initConstraint(s.root, rec)
	initConstraint(s.root, &isConstraint{left: left, right: right, dst: dst})

	five := s.root.existingName(s.program.Constant(5))
	six := s.root.existingName(s.program.Constant(6))
	left.UpdateSingleValue(five)
	right.UpdateSingleValue(six)
	s.updateConstraints()
	left.UpdateSingleValue(s.root.existingName(s.program.Constant(7)))
	s.updateConstraints()

	if len(dst.Values()) != 1 {
		t.Errorf("repeated negative pairs should produce one false answer, got %v", dst.Values())
	}
}

func TestCheckAnswersPerField(t *testing.T) {
	s := testState()
	fieldName := s.program.Constant("attr")
	obj := testName(s, 1)
	expr := s.root.TempLocal("e")
	dst := s.root.TempLocal("d")
	op := &ir.Check{Expr: &ir.Existing{Object: fieldName}, FieldType: ir.AttributeField, Name: &ir.Existing{Object: fieldName}}
	initConstraint(s.root, &checkConstraint{op: op, expr: expr, fieldtype: ir.AttributeField, name: fieldName, dst: dst})

	expr.UpdateSingleValue(obj)
	s.updateConstraints()
	if !dst.Values().Contains(s.root.falseName()) {
		t.Fatalf("an untouched field starts null, so the check should answer false")
	}
	if dst.Values().Contains(s.root.trueName()) {
		t.Fatalf("no value was stored yet, so the check must not answer true")
	}

	field := s.root.Field(obj, ir.AttributeField, fieldName)
	field.UpdateSingleValue(s.root.trueName())
	s.updateConstraints()
	if !dst.Values().Contains(s.root.trueName()) {
		t.Errorf("once the field holds a value the check should answer true")
	}
}

func TestStoreThenLoad(t *testing.T) {
	s := testState()
	fieldName := s.program.Constant("attr")
	obj := testName(s, 1)
	value := s.root.existingName(s.program.Constant("v"))

	target := s.root.TempLocal("t")
	src := s.root.TempLocal("s")
	dst := s.root.TempLocal("d")
	store := &ir.Store{}
	load := &ir.Load{}
	initConstraint(s.root, &storeConstraint{op: store, value: src, expr: target, fieldtype: ir.AttributeField, name: fieldName})
	initConstraint(s.root, &loadConstraint{op: load, expr: target, fieldtype: ir.AttributeField, name: fieldName, dst: dst})

	target.UpdateSingleValue(obj)
	src.UpdateSingleValue(value)
	s.updateConstraints()

	if !dst.Values().Contains(value) {
		t.Errorf("a stored value should flow back out through a load")
	}
	if !s.root.Field(obj, ir.AttributeField, fieldName).Null() {
		t.Errorf("stores are weak and must not clear the null flag")
	}
	ann := s.root.Annotation(store)
	if ann == nil || len(ann.Modifies[obj]) != 1 {
		t.Errorf("the store should be annotated as modifying the object")
	}
	fields := 0
	s.root.region.Object(obj).ForEachField(func(ir.FieldType, *ir.Object, *Slot) {
		fields++
	})
	if fields != 1 {
		t.Errorf("exactly one field slot should be materialized, got %d", fields)
	}
}

func TestAllocateIsSiteSensitive(t *testing.T) {
	s := testState()
	cls := s.program.DeclareClass("Widget", false)
	clsObj := s.program.DeclareClassObject(cls)
	typeName := s.root.existingName(clsObj)

	expr := s.root.TempLocal("e")
	dstA := s.root.TempLocal("a")
	dstB := s.root.TempLocal("b")
	opA := &ir.Allocate{Expr: &ir.Existing{Object: clsObj}}
	opB := &ir.Allocate{Expr: &ir.Existing{Object: clsObj}}
	initConstraint(s.root, &allocateConstraint{op: opA, expr: expr, dst: dstA})
	initConstraint(s.root, &allocateConstraint{op: opB, expr: expr, dst: dstB})

	expr.UpdateSingleValue(typeName)
	s.updateConstraints()

	if len(dstA.Values()) != 1 || len(dstB.Values()) != 1 {
		t.Fatalf("each allocation should produce exactly one object")
	}
	for a := range dstA.Values() {
		if dstB.Values().Contains(a) {
			t.Errorf("distinct sites must allocate distinct objects")
		}
		if a.Class() != cls {
			t.Errorf("allocated object should be an instance of its class")
		}
	}
}

func TestAllocateNonTypeIsFatal(t *testing.T) {
	s := testState()
	expr := s.root.TempLocal("e")
	dst := s.root.TempLocal("d")
	op := &ir.Allocate{Expr: &ir.Existing{Object: s.program.Constant(5)}}
	initConstraint(s.root, &allocateConstraint{op: op, expr: expr, dst: dst})

	expr.UpdateSingleValue(s.root.existingName(s.program.Constant(5)))
	s.updateConstraints()

	if !errors.Is(s.fatal, ErrInternal) {
		t.Errorf("allocating a non-type object should record a fatal internal error")
	}
	if len(dst.Values()) != 0 {
		t.Errorf("no object should be produced for the bad candidate")
	}
}

func TestDownwardFieldTransferCarriesNull(t *testing.T) {
	s := testState()
	inv := &Invocation{caller: s.root, callee: s.root}

	src := newSlot(s.root, "f", true)
	dst := newSlot(s.root, "g", false)
	inv.downFields(src, dst)
	s.updateConstraints()
	if !dst.null {
		t.Errorf("a field transfer should carry the null flag")
	}

	plain := newSlot(s.root, "h", false)
	inv.down(src, plain)
	s.updateConstraints()
	if plain.null {
		t.Errorf("a value transfer should not carry the null flag")
	}
}
