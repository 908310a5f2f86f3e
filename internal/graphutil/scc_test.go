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
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

type intGraph map[int][]int

func (m intGraph) nodes() []int {
	var ks []int
	for k := range m {
		ks = append(ks, k)
	}
	sort.Ints(ks)
	return ks
}

func (m intGraph) successors(k int) []int { return m[k] }

// reaches reports whether y is reachable from x in m.
func (m intGraph) reaches(x, y int) bool {
	visited := map[int]bool{}
	var visit func(int)
	visit = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, nn := range m[n] {
			visit(nn)
		}
	}
	visit(x)
	return visited[y]
}

// checkComponents verifies that sccs partitions the nodes of m into strongly
// connected groups ordered successors-first.
func checkComponents(m intGraph, sccs [][]int) error {
	covered := map[int]bool{}
	for i, scc := range sccs {
		for _, x := range scc {
			if covered[x] {
				return fmt.Errorf("repeated node %v in %v", x, m)
			}
			covered[x] = true
			for _, y := range scc {
				if x != y && !m.reaches(x, y) {
					return fmt.Errorf("component not strongly connected at %v, %v in %v", x, y, m)
				}
			}
			for _, later := range sccs[i+1:] {
				for _, y := range later {
					if m.reaches(x, y) {
						return fmt.Errorf("node %v listed before reachable node %v in %v", x, y, m)
					}
				}
			}
		}
	}
	for n := range m {
		if !covered[n] {
			return fmt.Errorf("missing node %v in %v", n, m)
		}
	}
	return nil
}

func TestStronglyConnectedComponents(t *testing.T) {
	tests := []struct {
		name string
		m    intGraph
		want int
	}{
		{"self loop", intGraph{0: {0}}, 1},
		{"single node", intGraph{0: {}}, 1},
		{"edge to sink", intGraph{0: {0, 1}, 1: {}}, 2},
		{"diamond acyclic", intGraph{0: {1, 2}, 1: {3}, 2: {1}, 3: {}}, 4},
		{"cycle through root", intGraph{0: {1, 2}, 1: {3}, 2: {1, 0}, 3: {}}, 3},
		{"two components", intGraph{0: {3, 1}, 1: {0}, 2: {1}, 3: {3}}, 3},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sccs := StronglyConnectedComponents(test.m.nodes(), test.m.successors)
			if len(sccs) != test.want {
				t.Errorf("expected %d components, got %v", test.want, sccs)
			}
			if err := checkComponents(test.m, sccs); err != nil {
				t.Errorf("%v", err)
			}
		})
	}
}

func TestStronglyConnectedComponentsRandom(t *testing.T) {
	for i := 0; i < 100; i++ {
		m := randomGraph(10, 68348438+int64(i))
		if err := checkComponents(m, StronglyConnectedComponents(m.nodes(), m.successors)); err != nil {
			t.Fatalf("%v", err)
		}
	}
	for i := 0; i < 10; i++ {
		m := randomGraph(50, 184618+int64(i))
		if err := checkComponents(m, StronglyConnectedComponents(m.nodes(), m.successors)); err != nil {
			t.Fatalf("%v", err)
		}
	}
}

func randomGraph(size int, seed int64) intGraph {
	m := intGraph{}
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < size; i++ {
		m[i] = []int{}
		for j := 0; j < 3; j++ {
			if r.Float32() < 0.7 {
				m[i] = append(m[i], int(r.Int63()%int64(size)))
			}
		}
	}
	return m
}
