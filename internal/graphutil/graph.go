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

// Package graphutil provides graph algorithms over the analysis' invocation
// graphs, on top of the yourbasic/graph and gonum graph libraries.
package graphutil

import (
	"sort"

	"gonum.org/v1/gonum/graph"
)

// CGraph is an abstraction over an invocation graph (or any directed graph with
// labeled integer nodes) to work with existing graph libraries. It implements
// the methods to satisfy yourbasic's graph.Iterator and gonum's graph.Graph.
type CGraph struct {
	// The order of the graph
	order int

	// Labels maps node IDs to a printable label (e.g. a context description)
	Labels map[int64]string

	// Keys are all the node IDs
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge between x and y
	Edges map[int64]map[int64]bool
}

// NewGraph returns a CGraph over the given adjacency map. Nodes without an
// entry in labels get an empty label. Every node mentioned as an edge target
// must have an entry in edges.
func NewGraph(edges map[int64][]int64, labels map[int64]string) CGraph {
	n := len(edges)
	adj := make(map[int64]map[int64]bool, n)
	keys := make([]int64, 0, n)
	for id, out := range edges {
		keys = append(keys, id)
		adj[id] = make(map[int64]bool, len(out))
		for _, o := range out {
			adj[id][o] = true
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	if labels == nil {
		labels = map[int64]string{}
	}

	return CGraph{
		order:  n,
		Labels: labels,
		Edges:  adj,
		Keys:   keys,
	}
}

// Subgraph returns a new graph that is the original graph with only the nodes in include. Only the edges that have
// both the origin and destination nodes in the include nodes are kept in the resulting graph.
// The subgraph's order and Labels are the same as in original, meaning that node indices will stay consistent
// across subgraphs.
func Subgraph(original CGraph, include []int64) CGraph {
	included := make(map[int64]bool, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	keys := make([]int64, len(include))

	for j, i := range include {
		keys[j] = i
		included[i] = true
	}

	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if included[e] {
				edges[i][e] = true
			}
		}
	}

	return CGraph{
		order:  original.Order(),
		Labels: original.Labels,
		Edges:  edges,
		Keys:   keys,
	}
}

// Order implements the order of the graph.Iterator interface for the CGraph
func (c CGraph) Order() int {
	return c.order
}

// Visit implements the graph.Iterator interface for the CGraph
func (c CGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := c.Edges[int64(v)]; !ok {
		return false
	}
	for w := range c.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (c CGraph) Node(v int) graph.Node {
	id := int64(v)
	if _, ok := c.Edges[id]; !ok {
		return nil
	}
	return CNode{id: id, label: c.Labels[id]}
}

// Nodes returns the set of nodes in the graph
func (c CGraph) Nodes() graph.Nodes {
	keys := make([]int64, len(c.Keys))
	copy(keys, c.Keys)
	return &NodeSet{
		labels: c.Labels,
		ids:    keys,
		cur:    0,
	}
}

// From returns the set of nodes reachable from the id
func (c CGraph) From(id int64) graph.Nodes {
	var keys []int64

	for out := range c.Edges[id] {
		keys = append(keys, out)
	}
	return &NodeSet{
		labels: c.Labels,
		ids:    keys,
		cur:    0,
	}
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (c CGraph) HasEdgeBetween(xid, yid int64) bool {
	xe := c.Edges[xid]
	ye := c.Edges[yid]
	return xe[yid] || ye[xid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (c CGraph) Edge(uid, vid int64) graph.Edge {
	ue := c.Edges[uid]
	if ue != nil {
		if ue[vid] {
			return CEdge{
				from: CNode{id: uid, label: c.Labels[uid]},
				to:   CNode{id: vid, label: c.Labels[vid]},
			}
		}
	}
	return nil
}

// CEdge is a directed edge between two CNodes, implementing the graph.Edge
// interface
type CEdge struct {
	from CNode
	to   CNode
}

// From returns the origin node of the edge
func (e CEdge) From() graph.Node {
	return e.from
}

// To returns the destination node of the edge
func (e CEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns the edge with origin and destination swapped
func (e CEdge) ReversedEdge() graph.Edge {
	return CEdge{from: e.to, to: e.from}
}

// *************** Nodes implementation **********************

// CNode is a labeled graph node that implements the graph.Node interface
type CNode struct {
	id    int64
	label string
}

// ID returns the id of the node
func (n CNode) ID() int64 {
	return n.id
}

func (n CNode) String() string {
	return n.label
}

// NodeSet implements the graph.Nodes interface, an iterator over a set of nodes
type NodeSet struct {
	labels map[int64]string
	ids    []int64
	cur    int
}

// Len returns the number of remaining nodes in the iterator
func (s *NodeSet) Len() int {
	return len(s.ids) - s.cur
}

// Next advances the iterator. It returns false when the iterator is exhausted.
func (s *NodeSet) Next() bool {
	if s.cur+1 < len(s.ids) {
		s.cur++
		return true
	}
	return false
}

// Node returns the current node of the iterator
func (s *NodeSet) Node() graph.Node {
	if s.cur < len(s.ids) {
		id := s.ids[s.cur]
		return CNode{id: id, label: s.labels[id]}
	}
	return nil
}

// Reset rewinds the iterator to its first node
func (s *NodeSet) Reset() {
	s.cur = 0
}
