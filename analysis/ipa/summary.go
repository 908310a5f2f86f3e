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

// Summary condenses one context's heap behavior for its callers: the objects
// whose fields it reads or modifies (directly or through callees), the
// objects it allocates, and the allocated objects that escape it.
type Summary struct {
	Reads     ValueSet
	Modifies  ValueSet
	Allocates ValueSet
	Escapes   ValueSet
}

func newSummary() *Summary {
	return &Summary{
		Reads:     ValueSet{},
		Modifies:  ValueSet{},
		Allocates: ValueSet{},
		Escapes:   ValueSet{},
	}
}

// absorb merges a callee summary into this one.
func (sum *Summary) absorb(callee *Summary) {
	sum.Reads.Merge(callee.Reads)
	sum.Modifies.Merge(callee.Modifies)
	sum.Allocates.Merge(callee.Allocates)
	sum.Escapes.Merge(callee.Escapes)
}

// Summary returns the context's heap summary, or nil before the bottom-up
// pass has built it.
func (ctx *Context) Summary() *Summary { return ctx.summary }

// summarize builds the context's own summary from its operation annotations.
// Callee effects are folded in afterwards, one invocation at a time, by
// Invocation.Apply.
func (ctx *Context) summarize() {
	sum := newSummary()
	for _, ann := range ctx.annotations {
		for obj := range ann.Reads {
			sum.Reads.Add(obj)
		}
		for obj, fields := range ann.Modifies {
			sum.Modifies.Add(obj)
			// writing into an object visible outside the context leaks
			// everything stored there
			if obj.Qualifier() != HZ {
				for _, field := range fields {
					sum.Escapes.Merge(field.Values())
				}
			}
		}
		sum.Allocates.Merge(ann.Allocates)
	}
	for _, ret := range ctx.returns {
		sum.Escapes.Merge(ret.Values())
	}
	if ctx.escapes != nil {
		sum.Escapes.Merge(ctx.escapes.Values())
	}
	ctx.summary = sum
}
