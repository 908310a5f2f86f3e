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

// XTypeKind discriminates the provenance of an extended type.
type XTypeKind int8

const (
	// ExistingKind types objects that exist before the program runs:
	// constants, classes, function objects, globals.
	ExistingKind XTypeKind = iota

	// ExternalKind types objects supplied by the environment at an entry
	// point, with no allocation site inside the analyzed program.
	ExternalKind

	// PathKind types objects allocated at a program point, distinguished by
	// their allocation site.
	PathKind

	// ContextKind types objects allocated by the analysis itself on behalf
	// of a calling context, such as the tuple packing surplus arguments.
	ContextKind
)

func (k XTypeKind) String() string {
	switch k {
	case ExistingKind:
		return "existing"
	case ExternalKind:
		return "external"
	case PathKind:
		return "path"
	case ContextKind:
		return "context"
	default:
		return fmt.Sprintf("xtypekind(%d)", int(k))
	}
}

// XType is an extended type: an IR object plus the provenance that
// distinguishes two abstract objects of the same class. Values are canonical
// within a State; equality is pointer equality.
//
// For ExistingKind the object is the preexisting object itself. For the
// other kinds the object is the abstract instance of the allocated class.
type XType struct {
	kind XTypeKind
	obj  *ir.Object

	// site is the allocation site, for PathKind only
	site *siteKey

	// sig is the allocating context signature, for ContextKind only
	sig *Signature
}

// siteKey identifies an allocation site: an operation within a context.
type siteKey struct {
	context *Context
	op      ir.Expr
}

// AnyType is the wildcard type a megamorphic argument position collapses to.
// The wildcard object name built from it stands for any value, and seeds
// slots the analysis lost track of.
var AnyType = &XType{kind: ExternalKind}

func (x *XType) Kind() XTypeKind { return x.kind }

// Object returns the IR object this type describes.
func (x *XType) Object() *ir.Object { return x.obj }

// Class returns the class of the typed object.
func (x *XType) Class() *ir.Class {
	if x.obj == nil {
		return nil
	}
	return x.obj.Class()
}

// IsExisting reports whether the typed object predates execution.
func (x *XType) IsExisting() bool { return x.kind == ExistingKind }

func (x *XType) String() string {
	if x == AnyType {
		return "<any>"
	}
	switch x.kind {
	case ExistingKind:
		return fmt.Sprintf("existing(%s)", x.obj)
	case ExternalKind:
		return fmt.Sprintf("external(%s)", x.obj)
	case PathKind:
		return fmt.Sprintf("path(%s@%p)", x.obj, x.site.op)
	case ContextKind:
		return fmt.Sprintf("context(%s)", x.obj)
	default:
		return fmt.Sprintf("xtype(%s)", x.obj)
	}
}

type xtypeKey struct {
	kind XTypeKind
	obj  *ir.Object
	site siteKey
	sig  *Signature
}

// existingType interns the extended type of a preexisting object.
func (s *State) existingType(obj *ir.Object) *XType {
	return s.internXType(xtypeKey{kind: ExistingKind, obj: obj})
}

// externalType interns the extended type of an environment-supplied instance.
func (s *State) externalType(obj *ir.Object) *XType {
	return s.internXType(xtypeKey{kind: ExternalKind, obj: obj})
}

// pathType interns the extended type of an allocation at op inside context.
func (s *State) pathType(obj *ir.Object, context *Context, op ir.Expr) *XType {
	return s.internXType(xtypeKey{kind: PathKind, obj: obj, site: siteKey{context, op}})
}

// contextType interns the extended type of an analysis-made allocation
// belonging to a context signature.
func (s *State) contextType(obj *ir.Object, sig *Signature) *XType {
	return s.internXType(xtypeKey{kind: ContextKind, obj: obj, sig: sig})
}

func (s *State) internXType(key xtypeKey) *XType {
	if x, ok := s.xtypes[key]; ok {
		return x
	}
	x := &XType{kind: key.kind, obj: key.obj, sig: key.sig}
	if key.kind == PathKind {
		site := key.site
		x.site = &site
	}
	s.xtypes[key] = x
	return x
}
