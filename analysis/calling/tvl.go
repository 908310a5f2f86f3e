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

package calling

// TVL is a three-valued truth value: a static analysis often cannot decide
// whether a condition holds, so verdicts are True, False or Maybe.
type TVL int8

const (
	// False - the condition cannot hold
	False TVL = iota

	// Maybe - the condition may or may not hold
	Maybe

	// True - the condition always holds
	True
)

// And is three-valued conjunction: False dominates, then Maybe.
func (t TVL) And(other TVL) TVL {
	if t < other {
		return t
	}
	return other
}

// MaybeTrue reports whether the value can be true.
func (t TVL) MaybeTrue() bool { return t != False }

// MaybeFalse reports whether the value can be false.
func (t TVL) MaybeFalse() bool { return t != True }

// MustBeTrue reports whether the value is certainly true.
func (t TVL) MustBeTrue() bool { return t == True }

// MustBeFalse reports whether the value is certainly false.
func (t TVL) MustBeFalse() bool { return t == False }

func (t TVL) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "maybe"
	}
}
