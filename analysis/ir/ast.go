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

// FieldType distinguishes the four field namespaces of an object.
type FieldType string

const (
	// AttributeField is a named attribute slot
	AttributeField FieldType = "Attribute"

	// ArrayField is an integer indexed slot (list/tuple elements)
	ArrayField FieldType = "Array"

	// DictionaryField is a dictionary value slot
	DictionaryField FieldType = "Dictionary"

	// LowLevelField is an internal slot maintained by the runtime model
	// (e.g. the length of a vararg tuple)
	LowLevelField FieldType = "LowLevel"
)

// Stmt is a statement of a function body. The interface is sealed: all
// variants are defined in this package.
type Stmt interface{ isStmt() }

// Expr is an expression. The interface is sealed: all variants are defined in
// this package.
type Expr interface{ isExpr() }

// Local is a function-local variable. Locals are compared by pointer: the
// front end creates one Local per distinct variable of a Code.
type Local struct {
	Name string
}

func (*Local) isExpr() {}

func (l *Local) String() string { return l.Name }

// DoNotCare is the placeholder local for parameters and arguments whose value
// is irrelevant to the program. The extractor skips it entirely.
var DoNotCare = &Local{Name: "_"}

// IsDoNotCare reports whether l is the DoNotCare placeholder.
func (l *Local) IsDoNotCare() bool { return l == DoNotCare }

// Existing references an object that exists before execution: a constant, a
// global, a function or a class object.
type Existing struct {
	Object *Object
}

func (*Existing) isExpr() {}

// Call invokes the value of Expr with the given arguments. VArgs, when
// non-nil, is a tuple local spread into extra positional arguments.
type Call struct {
	Expr  Expr
	Args  []Expr
	VArgs Expr
	KArgs Expr
}

func (*Call) isExpr() {}

// DirectCall invokes a statically known Code, bypassing callee resolution.
type DirectCall struct {
	Code    *Code
	SelfArg Expr
	Args    []Expr
	VArgs   Expr
	KArgs   Expr
}

func (*DirectCall) isExpr() {}

// Load reads the field Name (of namespace FieldType) from the object Expr.
type Load struct {
	Expr      Expr
	FieldType FieldType
	Name      Expr
}

func (*Load) isExpr() {}

// Check probes whether the field Name exists on the object Expr, producing a
// boolean.
type Check struct {
	Expr      Expr
	FieldType FieldType
	Name      Expr
}

func (*Check) isExpr() {}

// Allocate instantiates the class object that Expr evaluates to.
type Allocate struct {
	Expr Expr
}

func (*Allocate) isExpr() {}

// Is compares the identity of two values, producing a boolean.
type Is struct {
	Left  Expr
	Right Expr
}

func (*Is) isExpr() {}

// BuildList constructs a list value from its arguments.
type BuildList struct {
	Args []Expr
}

func (*BuildList) isExpr() {}

// BuildTuple constructs a tuple value from its arguments.
type BuildTuple struct {
	Args []Expr
}

func (*BuildTuple) isExpr() {}

// BuildMap constructs a dictionary value.
type BuildMap struct{}

func (*BuildMap) isExpr() {}

// Suite is a statement sequence.
type Suite struct {
	Stmts []Stmt
}

func (*Suite) isStmt() {}

// NewSuite builds a suite from the given statements.
func NewSuite(stmts ...Stmt) *Suite { return &Suite{Stmts: stmts} }

// Assign evaluates Expr and assigns its value(s) to Targets.
type Assign struct {
	Expr    Expr
	Targets []*Local
}

func (*Assign) isStmt() {}

// Discard evaluates Expr for its effects and drops the value.
type Discard struct {
	Expr Expr
}

func (*Discard) isStmt() {}

// Return assigns the given expressions to the code's return parameters.
type Return struct {
	Exprs []Expr
}

func (*Return) isStmt() {}

// Store writes Value into the field Name (of namespace FieldType) of the
// object Expr.
type Store struct {
	Value     Expr
	Expr      Expr
	FieldType FieldType
	Name      Expr
}

func (*Store) isStmt() {}

// Condition is a preamble of statements followed by the conditional
// expression they compute.
type Condition struct {
	Preamble    *Suite
	Conditional Expr
}

// Switch branches on a condition.
type Switch struct {
	Cond *Condition
	True *Suite
	Else *Suite
}

func (*Switch) isStmt() {}

// While loops on a condition.
type While struct {
	Cond *Condition
	Body *Suite
	Else *Suite
}

func (*While) isStmt() {}

// For iterates over a sequence. The preambles carry the desugared iterator
// setup and per-iteration binding.
type For struct {
	LoopPreamble *Suite
	BodyPreamble *Suite
	Body         *Suite
	Else         *Suite
}

func (*For) isStmt() {}

// ExceptionHandler is one except clause of a TryExcept.
type ExceptionHandler struct {
	Preamble *Suite
	Body     *Suite
}

// TryExcept is a try/except/else/finally statement.
type TryExcept struct {
	Body     *Suite
	Handlers []*ExceptionHandler
	Else     *Suite
	Finally  *Suite
}

func (*TryExcept) isStmt() {}

// Raise raises an exception.
type Raise struct {
	Exception Expr
	Parameter Expr
	Traceback Expr
}

func (*Raise) isStmt() {}

// Break exits the innermost loop.
type Break struct{}

func (*Break) isStmt() {}

// Continue resumes the innermost loop.
type Continue struct{}

func (*Continue) isStmt() {}
