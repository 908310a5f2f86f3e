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
	"golang.org/x/exp/slices"

	"github.com/awslabs/ar-py-tools/internal/funcutil"
)

// ValueSet is a set of abstract objects. Sets only ever grow.
type ValueSet map[*ObjectName]bool

func (v ValueSet) Contains(o *ObjectName) bool { return v[o] }

// Add inserts o and reports whether it was new.
func (v ValueSet) Add(o *ObjectName) bool {
	if v[o] {
		return false
	}
	v[o] = true
	return true
}

// Merge adds every element of other.
func (v ValueSet) Merge(other ValueSet) {
	funcutil.Merge(v, other, func(a, b bool) bool { return a || b })
}

func (v ValueSet) Copy() ValueSet {
	c := make(ValueSet, len(v))
	for o := range v {
		c[o] = true
	}
	return c
}

// Sorted returns the elements ordered by their printed form, for
// deterministic reporting.
func (v ValueSet) Sorted() []*ObjectName {
	out := make([]*ObjectName, 0, len(v))
	for o := range v {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *ObjectName) bool { return a.String() < b.String() })
	return out
}
