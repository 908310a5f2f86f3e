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

// Constraint is an edge of the constraint graph. A constraint registers on
// the slots it reads at attach time, is made consistent with their current
// values once, and afterwards only sees diffs.
type Constraint interface {
	// attach registers the constraint on its input slots
	attach()

	// makeConsistent replays the current values of the inputs as if they
	// had just arrived
	makeConsistent(ctx *Context)

	// changed delivers the objects newly added to slot
	changed(ctx *Context, slot *Slot, diff ValueSet)
}

// initConstraint wires a constraint into the graph and catches it up with
// values that flowed before it existed.
func initConstraint(ctx *Context, c Constraint) {
	ctx.constraints = append(ctx.constraints, c)
	c.attach()
	c.makeConsistent(ctx)
}
