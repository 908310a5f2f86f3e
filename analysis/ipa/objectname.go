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

// Qualifier records where an object sits relative to the context naming it.
type Qualifier int8

const (
	// HZ names an object in the heap zone of the context that allocated it.
	HZ Qualifier = iota

	// DN names an object passed downward from a caller.
	DN

	// UP names an object returned upward from a callee.
	UP

	// GLBL names a global or preexisting object, visible everywhere under
	// the same name.
	GLBL
)

func (q Qualifier) String() string {
	switch q {
	case HZ:
		return "HZ"
	case DN:
		return "DN"
	case UP:
		return "UP"
	case GLBL:
		return "GLBL"
	default:
		return fmt.Sprintf("qualifier(%d)", int(q))
	}
}

// ObjectName is an abstract object: an extended type plus a qualifier.
// Values are canonical within a State, so names compare by pointer.
type ObjectName struct {
	xtype     *XType
	qualifier Qualifier
}

func (o *ObjectName) XType() *XType { return o.xtype }

func (o *ObjectName) Qualifier() Qualifier { return o.qualifier }

// Object returns the IR object underlying the name's type.
func (o *ObjectName) Object() *ir.Object { return o.xtype.Object() }

// Class returns the class of the named object.
func (o *ObjectName) Class() *ir.Class { return o.xtype.Class() }

func (o *ObjectName) String() string {
	return fmt.Sprintf("%s %s", o.qualifier, o.xtype)
}

type objectNameKey struct {
	xtype     *XType
	qualifier Qualifier
}

// objectName interns the name for xtype under qualifier.
func (s *State) objectName(xtype *XType, qualifier Qualifier) *ObjectName {
	key := objectNameKey{xtype, qualifier}
	if o, ok := s.objs[key]; ok {
		return o
	}
	o := &ObjectName{xtype: xtype, qualifier: qualifier}
	s.objs[key] = o
	return o
}

// remap renames obj under qualifier q, leaving globals alone.
func (s *State) remap(obj *ObjectName, q Qualifier) *ObjectName {
	if obj.qualifier == GLBL {
		return obj
	}
	return s.objectName(obj.xtype, q)
}
