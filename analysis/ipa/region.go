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

// Region holds the per-context view of the heap: one Object per abstract
// object name the context has touched, each carrying its field slots.
type Region struct {
	context *Context
	objects map[*ObjectName]*Object
}

func newRegion(context *Context) *Region {
	return &Region{context: context, objects: map[*ObjectName]*Object{}}
}

// Object returns the region's view of name, creating it on first touch.
func (r *Region) Object(name *ObjectName) *Object {
	obj, ok := r.objects[name]
	if !ok {
		obj = &Object{context: r.context, name: name, fields: map[fieldKey]*Slot{}}
		r.objects[name] = obj
	}
	return obj
}

type fieldKey struct {
	fieldtype ir.FieldType
	name      *ir.Object
}

// Object is one abstract object as seen by one context: the name plus the
// field slots the context has read or written.
type Object struct {
	context *Context
	name    *ObjectName
	fields  map[fieldKey]*Slot
}

func (o *Object) Name() *ObjectName { return o.name }

// Field returns the slot for (fieldtype, name), creating it on first touch.
// Fresh field slots start null: nothing is known to have been stored yet.
func (o *Object) Field(fieldtype ir.FieldType, name *ir.Object) *Slot {
	key := fieldKey{fieldtype, name}
	slot, ok := o.fields[key]
	if !ok {
		slot = newSlot(o.context, fmt.Sprintf("%s.%s:%s", o.name, fieldtype, name), true)
		o.fields[key] = slot
	}
	return slot
}

// ForEachField calls f for every materialized field slot.
func (o *Object) ForEachField(f func(ir.FieldType, *ir.Object, *Slot)) {
	for key, slot := range o.fields {
		f(key.fieldtype, key.name, slot)
	}
}
