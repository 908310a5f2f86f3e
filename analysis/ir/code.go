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

// CodeParameters describes the formal parameter shape of a Code: the receiver,
// positional parameters with trailing defaults, the vararg and keyword-arg
// catch-alls, and the return parameters results are assigned to.
type CodeParameters struct {
	// SelfParam is the receiver local, nil when the code is a plain function,
	// or the DoNotCare local when a receiver exists but is unused.
	SelfParam *Local

	// Params are the positional parameter locals, in order
	Params []*Local

	// ParamNames are the source-level names of Params
	ParamNames []string

	// Defaults holds default values for the trailing len(Defaults) parameters
	Defaults []*Object

	// VParam receives the tuple of extra positional arguments, nil if absent
	VParam *Local

	// KParam receives extra keyword arguments, nil if absent
	KParam *Local

	// Returns are the return-parameter locals return values are assigned to
	Returns []*Local
}

// NumParams returns the number of positional parameters.
func (cp CodeParameters) NumParams() int { return len(cp.Params) }

// Code is one function body: its parameter shape and statement list. Code
// objects are produced by the front end and never mutated by the analyses.
type Code struct {
	name   string
	params CodeParameters
	body   *Suite

	// Fold, when non-nil, computes the result of calling this code on
	// constant arguments. Resolution uses it to replace the call's value flow
	// with the folded constant when every argument is an existing constant.
	Fold func(args []any) (any, bool)
}

// NewCode returns a code object with the given name, parameters and body.
func NewCode(name string, params CodeParameters, body *Suite) *Code {
	return &Code{name: name, params: params, body: body}
}

// Name returns the function name.
func (c *Code) Name() string { return c.name }

// Parameters returns the formal parameter description.
func (c *Code) Parameters() CodeParameters { return c.params }

// Body returns the statement list of the function.
func (c *Code) Body() *Suite { return c.body }

func (c *Code) String() string { return c.name }
