// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package allelegraph decides which alleles reported by different
// tandem-repeat callers at one locus are the same biological allele.
//
// Every called allele is a node.  Two nodes are joined when they come from
// different callers and differ from the reference by the same number of
// bases; a caller never corroborates itself.  Each connected component is an
// equivalence class and is collapsed into one PreAllele, or into one
// PreAllele per anchor-caller genotype index when the anchor caller reported
// several alleles of that size.
//
// Nodes live in a flat arena and components are computed with union-find, so
// the graph holds no pointers between nodes.  A Graph is read-only once
// built and may be shared by concurrent readers.
package allelegraph

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/grailbio/base/log"
	"github.com/grailbio/trconsensus/caller"
	"github.com/grailbio/trconsensus/cluster"
)

// ComponentID identifies a connected component.  IDs are dense, starting at
// 0, and ordered by decreasing component size.
type ComponentID int

// String returns "cc<id>".
func (id ComponentID) String() string {
	return "cc" + strconv.Itoa(int(id))
}

// Component is an equivalence class of alleles.
type Component struct {
	ID ComponentID
	// Nodes are indices into the graph's node arena, ascending.
	Nodes []int
	// Callers is the set of callers owning at least one node.
	Callers    caller.Set
	Resolution Resolution

	byCaller [caller.NumCallers][]int
}

// Ambiguous reports whether some caller owns more than one node of c.
func (c *Component) Ambiguous() bool {
	return c.Callers.Len() != len(c.Nodes)
}

// CallerNodes returns the nodes of c owned by cl, ascending.
func (c *Component) CallerNodes(cl caller.Caller) []int {
	return c.byCaller[cl]
}

type nodeKey struct {
	caller caller.Caller
	index  int
}

// Graph is the allele equivalence graph of one cluster.
type Graph struct {
	nodes      []Allele
	edges      [][2]int
	index      map[nodeKey]int
	nodeComp   []ComponentID
	components []*Component
}

// Build checks c for duplicate callers and malformed records, and builds the
// graph over its called alleles.  It returns a *cluster.DuplicateCallerError
// or a *ResolutionError for clusters that cannot be resolved.
func Build(c *cluster.Cluster) (*Graph, error) {
	if err := c.CheckCallers(); err != nil {
		return nil, err
	}
	for _, r := range c.Records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	g, err := New(Alleles(c))
	if err != nil {
		return nil, err
	}
	log.Debug.Printf("allelegraph: %s:%d-%d: %d nodes, %d edges, %d components",
		c.Chrom, c.Start, c.End, len(g.nodes), len(g.edges), len(g.components))
	return g, nil
}

// New builds the graph over alleles, computes its components and resolves
// each of them to PreAlleles.  Each (caller, genotype index) pair may occur
// only once.
func New(alleles []Allele) (*Graph, error) {
	g := &Graph{
		nodes: append([]Allele(nil), alleles...),
		index: make(map[nodeKey]int, len(alleles)),
	}
	for i, a := range g.nodes {
		key := nodeKey{a.Caller, a.GenotypeIndex}
		if _, ok := g.index[key]; ok {
			return nil, fmt.Errorf("allelegraph.New: duplicate allele %v/%d", a.Caller, a.GenotypeIndex)
		}
		g.index[key] = i
	}

	uf := newUnionFind(len(g.nodes))
	for i := range g.nodes {
		for j := i + 1; j < len(g.nodes); j++ {
			if g.nodes[i].Caller != g.nodes[j].Caller && g.nodes[i].SizeDelta == g.nodes[j].SizeDelta {
				g.edges = append(g.edges, [2]int{i, j})
				uf.union(i, j)
			}
		}
	}

	// Collect components in order of their first node, then stable-sort by
	// size so that equal-sized components keep build order.
	rootComp := map[int]*Component{}
	for i := range g.nodes {
		root := uf.find(i)
		comp, ok := rootComp[root]
		if !ok {
			comp = &Component{}
			rootComp[root] = comp
			g.components = append(g.components, comp)
		}
		comp.Nodes = append(comp.Nodes, i)
		a := &g.nodes[i]
		comp.Callers.Add(a.Caller)
		comp.byCaller[a.Caller] = append(comp.byCaller[a.Caller], i)
	}
	sort.SliceStable(g.components, func(i, j int) bool {
		return len(g.components[i].Nodes) > len(g.components[j].Nodes)
	})

	g.nodeComp = make([]ComponentID, len(g.nodes))
	for id, comp := range g.components {
		comp.ID = ComponentID(id)
		for _, n := range comp.Nodes {
			g.nodeComp[n] = comp.ID
		}
		res, err := g.resolve(comp)
		if err != nil {
			return nil, err
		}
		comp.Resolution = res
	}
	return g, nil
}

// NumNodes returns the number of alleles in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Node returns allele i.
func (g *Graph) Node(i int) Allele { return g.nodes[i] }

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Edges returns the undirected edges as node pairs {i, j} with i < j.
func (g *Graph) Edges() [][2]int { return g.edges }

// Lookup returns the node for caller c's genotype index idx.
func (g *Graph) Lookup(c caller.Caller, idx int) (int, bool) {
	n, ok := g.index[nodeKey{c, idx}]
	return n, ok
}

// ComponentOf returns the component holding caller c's genotype index idx.
func (g *Graph) ComponentOf(c caller.Caller, idx int) (ComponentID, bool) {
	n, ok := g.index[nodeKey{c, idx}]
	if !ok {
		return 0, false
	}
	return g.nodeComp[n], true
}

// Components returns all components ordered by ID.
func (g *Graph) Components() []*Component { return g.components }

// Component returns the component with the given ID.
func (g *Graph) Component(id ComponentID) (*Component, bool) {
	if id < 0 || int(id) >= len(g.components) {
		return nil, false
	}
	return g.components[id], true
}

type unionFind struct {
	parent []int
	rank   []uint8
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]uint8, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y int) {
	rx, ry := uf.find(x), uf.find(y)
	switch {
	case rx == ry:
	case uf.rank[rx] < uf.rank[ry]:
		uf.parent[rx] = ry
	case uf.rank[rx] > uf.rank[ry]:
		uf.parent[ry] = rx
	default:
		uf.parent[ry] = rx
		uf.rank[rx]++
	}
}
