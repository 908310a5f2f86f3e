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

import "fmt"

// Builder constructs programs in memory. It is the entry surface front ends
// and tests build against.
type Builder struct {
	prog *Program
}

// NewBuilder returns a builder over a fresh program.
func NewBuilder() *Builder {
	return &Builder{prog: NewProgram()}
}

// Program returns the program under construction.
func (b *Builder) Program() *Program { return b.prog }

// Const returns a reference to the interned constant object for v.
func (b *Builder) Const(v any) *Existing {
	return &Existing{Object: b.prog.Constant(v)}
}

// Class declares (or returns) the class named name and its class object,
// returning a reference to the class object.
func (b *Builder) Class(name string) *Existing {
	cls := b.prog.DeclareClass(name, false)
	return &Existing{Object: b.prog.DeclareClassObject(cls)}
}

// FuncSpec describes the shape of a function for the builder.
type FuncSpec struct {
	Name string

	// Self names the receiver: empty for none, "_" for declared-but-unused
	Self string

	Params []string

	// Defaults are constant default values for the trailing parameters
	Defaults []any

	// VParam names the vararg catch-all, empty for none
	VParam string

	// KParam names the keyword catch-all, empty for none
	KParam string

	// Returns is the number of return values
	Returns int
}

// FuncBuilder accumulates one function: its code object, the function object
// registered in the program, and the locals of its body.
type FuncBuilder struct {
	prog   *Program
	Code   *Code
	Object *Object

	locals  map[string]*Local
	returns []*Local
}

// Function declares a function from spec with an empty body; SetBody fills
// it in afterwards, so bodies may reference the function object itself.
func (b *Builder) Function(spec FuncSpec) *FuncBuilder {
	fb := &FuncBuilder{prog: b.prog, locals: map[string]*Local{}}

	params := CodeParameters{}
	if spec.Self != "" {
		params.SelfParam = fb.Local(spec.Self)
	}
	for _, name := range spec.Params {
		params.Params = append(params.Params, fb.Local(name))
		params.ParamNames = append(params.ParamNames, name)
	}
	for _, v := range spec.Defaults {
		params.Defaults = append(params.Defaults, b.prog.Constant(v))
	}
	if spec.VParam != "" {
		params.VParam = fb.Local(spec.VParam)
	}
	if spec.KParam != "" {
		params.KParam = fb.Local(spec.KParam)
	}
	for i := 0; i < spec.Returns; i++ {
		ret := fb.Local(fmt.Sprintf("ret%d", i))
		params.Returns = append(params.Returns, ret)
		fb.returns = append(fb.returns, ret)
	}

	fb.Code = NewCode(spec.Name, params, NewSuite())
	fb.Object = b.prog.DeclareFunction(fb.Code)
	return fb
}

// Local returns the local named name, interning it per function. The name
// "_" returns the shared do-not-care placeholder.
func (fb *FuncBuilder) Local(name string) *Local {
	if name == "_" {
		return DoNotCare
	}
	l, ok := fb.locals[name]
	if !ok {
		l = &Local{Name: name}
		fb.locals[name] = l
	}
	return l
}

// Return returns the i-th return-parameter local.
func (fb *FuncBuilder) Return(i int) *Local { return fb.returns[i] }

// Ref returns a reference to the function object.
func (fb *FuncBuilder) Ref() *Existing { return &Existing{Object: fb.Object} }

// SetBody replaces the function body with the given statements.
func (fb *FuncBuilder) SetBody(stmts ...Stmt) {
	fb.Code.body = NewSuite(stmts...)
}
