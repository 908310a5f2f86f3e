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

package ir

import (
	"fmt"
)

// Class is a class of the subject language. Two classes are distinct whenever
// their pointers are distinct; names are for reporting only.
type Class struct {
	// Name of the class as it appears in the program
	Name string

	// ConstantPooled marks primitive classes whose instances may be interned
	// by the runtime, making identity comparison of two equal constants
	// ambiguous (int, float, str, bool, NoneType).
	ConstantPooled bool

	abstractInstance *Object
}

// Instance returns the canonical abstract instance of the class: the object
// standing for "some instance of c" before allocation-site information
// refines it. There is exactly one per class.
func (c *Class) Instance() *Object {
	if c.abstractInstance == nil {
		c.abstractInstance = &Object{
			name:  fmt.Sprintf("instance<%s>", c.Name),
			class: c,
		}
	}
	return c.abstractInstance
}

func (c *Class) String() string { return c.Name }

// Object is a program object: either an existing object discovered before the
// analysis runs (constants, globals, function and class objects) or an
// abstract instance of a class.
type Object struct {
	name     string
	class    *Class
	existing bool

	// constant value when this is a pooled constant object; nil otherwise
	constant any
	hasConst bool

	// code invoked when this object is called; nil for non-callable objects
	code *Code

	// the class this object reifies, when the object is a class object
	reifies *Class
}

// Class returns the runtime class of the object.
func (o *Object) Class() *Class { return o.class }

// IsExisting reports whether the object pre-exists the analyzed execution
// (constants, globals, functions, classes).
func (o *Object) IsExisting() bool { return o.existing }

// Constant returns the constant value carried by the object, if any.
func (o *Object) Constant() (any, bool) { return o.constant, o.hasConst }

// CallableCode returns the code this object dispatches to when called, or nil
// when the object is not callable.
func (o *Object) CallableCode() *Code { return o.code }

// IsType reports whether the object is a class object.
func (o *Object) IsType() bool { return o.reifies != nil }

// Reifies returns the class a class object stands for, or nil.
func (o *Object) Reifies() *Class { return o.reifies }

func (o *Object) String() string { return o.name }

// Program is a whole analyzable program: its classes, existing objects and
// function bodies. A Program is immutable once handed to an analysis.
type Program struct {
	classes   map[string]*Class
	codes     map[string]*Code
	constants map[constKey]*Object
	globals   map[string]*Object

	// builtin classes, always present
	TypeClass     *Class
	FunctionClass *Class
	TupleClass    *Class
	ListClass     *Class
	DictClass     *Class
	IntClass      *Class
	FloatClass    *Class
	StrClass      *Class
	BoolClass     *Class
	NoneClass     *Class
}

type constKey struct {
	class *Class
	value any
}

// NewProgram returns a program populated with the builtin classes.
func NewProgram() *Program {
	p := &Program{
		classes:   map[string]*Class{},
		codes:     map[string]*Code{},
		constants: map[constKey]*Object{},
		globals:   map[string]*Object{},
	}
	p.TypeClass = p.DeclareClass("type", false)
	p.FunctionClass = p.DeclareClass("function", false)
	p.TupleClass = p.DeclareClass("tuple", false)
	p.ListClass = p.DeclareClass("list", false)
	p.DictClass = p.DeclareClass("dict", false)
	p.IntClass = p.DeclareClass("int", true)
	p.FloatClass = p.DeclareClass("float", true)
	p.StrClass = p.DeclareClass("str", true)
	p.BoolClass = p.DeclareClass("bool", true)
	p.NoneClass = p.DeclareClass("NoneType", true)
	return p
}

// DeclareClass declares a class with the given name, or returns the existing
// one. pooled marks constant-pooled primitive classes.
func (p *Program) DeclareClass(name string, pooled bool) *Class {
	if c, ok := p.classes[name]; ok {
		return c
	}
	c := &Class{Name: name, ConstantPooled: pooled}
	p.classes[name] = c
	return c
}

// Class returns the class with the given name, or nil.
func (p *Program) Class(name string) *Class {
	return p.classes[name]
}

// Code returns the code object with the given name, or nil.
func (p *Program) Code(name string) *Code {
	return p.codes[name]
}

// Constant returns the interned constant object for the given value. Repeated
// calls with equal values return the same object.
func (p *Program) Constant(value any) *Object {
	class := p.constantClass(value)
	key := constKey{class: class, value: value}
	if obj, ok := p.constants[key]; ok {
		return obj
	}
	obj := &Object{
		name:     fmt.Sprintf("const<%v>", value),
		class:    class,
		existing: true,
		constant: value,
		hasConst: true,
	}
	p.constants[key] = obj
	return obj
}

func (p *Program) constantClass(value any) *Class {
	switch value.(type) {
	case bool:
		return p.BoolClass
	case int:
		return p.IntClass
	case float64:
		return p.FloatClass
	case string:
		return p.StrClass
	case nil:
		return p.NoneClass
	default:
		panic(fmt.Sprintf("unsupported constant %v (%T)", value, value))
	}
}

// True returns the interned boolean constant true.
func (p *Program) True() *Object { return p.Constant(true) }

// False returns the interned boolean constant false.
func (p *Program) False() *Object { return p.Constant(false) }

// None returns the interned None constant.
func (p *Program) None() *Object { return p.Constant(nil) }

// DeclareFunction declares a function object dispatching to code, registered
// under the code's name.
func (p *Program) DeclareFunction(code *Code) *Object {
	obj := &Object{
		name:     fmt.Sprintf("function<%s>", code.name),
		class:    p.FunctionClass,
		existing: true,
		code:     code,
	}
	p.codes[code.name] = code
	p.globals[code.name] = obj
	return obj
}

// DeclareClassObject declares the existing class object reifying class.
func (p *Program) DeclareClassObject(class *Class) *Object {
	name := fmt.Sprintf("class<%s>", class.Name)
	if obj, ok := p.globals[name]; ok {
		return obj
	}
	obj := &Object{
		name:     name,
		class:    p.TypeClass,
		existing: true,
		reifies:  class,
	}
	p.globals[name] = obj
	return obj
}

// Global returns the named global object (function objects are registered
// under their code name), or nil.
func (p *Program) Global(name string) *Object {
	return p.globals[name]
}
