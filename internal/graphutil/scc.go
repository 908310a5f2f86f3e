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

package graphutil

// StronglyConnectedComponents computes the strongly connected components of
// the directed graph spanned by nodes and the successors function, using
// Tarjan's algorithm. The order within a component is arbitrary; components
// themselves come out successors-first, so a summary-based bottom-up pass can
// consume them in order.
func StronglyConnectedComponents[T comparable](nodes []T, successors func(T) []T) [][]T {
	t := &tarjan[T]{
		index:   map[T]int{},
		lowlink: map[T]int{},
		onStack: map[T]bool{},
	}
	for _, v := range nodes {
		if _, seen := t.index[v]; !seen {
			t.visit(v, successors)
		}
	}
	return t.sccs
}

type tarjan[T comparable] struct {
	index   map[T]int
	lowlink map[T]int
	stack   []T
	onStack map[T]bool
	next    int
	sccs    [][]T
}

func (t *tarjan[T]) visit(v T, successors func(T) []T) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range successors(v) {
		if _, seen := t.index[w]; !seen {
			t.visit(w, successors)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] && t.index[w] < t.lowlink[v] {
			t.lowlink[v] = t.index[w]
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []T
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
