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

import (
	"sort"

	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles enumerates the elementary cycles of cg with Donald
// B. Johnson's algorithm ("Finding All The Elementary Circuits of a Directed
// Graph", 1975). Each cycle is reported as a node path repeating its first
// node at the end. Self loops are not reported.
func FindAllElementaryCycles(cg CGraph) [][]int64 {
	j := &johnson{}
	for idx := 0; idx < len(cg.Keys); {
		fg := Subgraph(cg, cg.Keys[idx:])
		start, ok := leastCyclicNode(fg)
		if !ok {
			break
		}
		j.stack = nil
		j.blocked = map[int64]bool{}
		j.blist = map[int64]map[int64]bool{}
		j.circuit(start, start, fg)
		idx = keyIndex(cg.Keys, start) + 1
	}
	return j.cycles
}

// leastCyclicNode returns the smallest node belonging to a strongly connected
// component of size at least two.
func leastCyclicNode(g CGraph) (int64, bool) {
	best := int64(-1)
	for _, component := range graph.StrongComponents(g) {
		if len(component) < 2 {
			continue
		}
		for _, n := range component {
			if best < 0 || int64(n) < best {
				best = int64(n)
			}
		}
	}
	return best, best >= 0
}

func keyIndex(keys []int64, id int64) int {
	return sort.Search(len(keys), func(i int) bool { return keys[i] >= id })
}

type johnson struct {
	blocked map[int64]bool
	blist   map[int64]map[int64]bool
	stack   []int64
	cycles  [][]int64
}

func (j *johnson) unblock(u int64) {
	j.blocked[u] = false
	for w := range j.blist[u] {
		if j.blocked[w] {
			j.unblock(w)
		}
	}
}

// circuit explores every elementary path from v back to the start node i,
// recording each closed path as a cycle.
func (j *johnson) circuit(v int64, i int64, g CGraph) bool {
	found := false
	j.stack = append(j.stack, v)
	j.blocked[v] = true
	for w := range g.Edges[v] {
		if w == i {
			cycle := make([]int64, len(j.stack), len(j.stack)+1)
			copy(cycle, j.stack)
			j.cycles = append(j.cycles, append(cycle, w))
			found = true
		} else if !j.blocked[w] {
			if j.circuit(w, i, g) {
				found = true
			}
		}
	}

	if found {
		j.unblock(v)
	} else {
		for w := range g.Edges[v] {
			if j.blist[w] == nil {
				j.blist[w] = map[int64]bool{}
			}
			j.blist[w][v] = true
		}
	}
	j.stack = j.stack[:len(j.stack)-1]
	return found
}
