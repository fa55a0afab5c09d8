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
package allelegraph

// matrix is a row-major n x m Levenshtein matrix.
type matrix struct {
	nRow, nCol int
	data       []int
}

func newMatrix(n, m int) matrix {
	return matrix{
		nRow: n,
		nCol: m,
		data: make([]int, n*m),
	}
}

// computeCell fills in cell (i, j) from its upper, left and diagonal
// neighbors.
func (m matrix) computeCell(i, j int, s1, s2 string) {
	if i == 0 {
		m.data[j] = j
		return
	}
	if j == 0 {
		m.data[i*m.nCol] = i
		return
	}
	if s1[i-1] == s2[j-1] {
		m.data[i*m.nCol+j] = m.data[(i-1)*m.nCol+(j-1)]
		return
	}
	minValue := m.data[(i-1)*m.nCol+j] + 1
	if v := m.data[(i-1)*m.nCol+(j-1)] + 1; v < minValue {
		minValue = v
	}
	if v := m.data[i*m.nCol+(j-1)] + 1; v < minValue {
		minValue = v
	}
	m.data[i*m.nCol+j] = minValue
}

// levenshtein returns the number of single-base insertions, deletions and
// substitutions that turn s1 into s2.
func levenshtein(s1, s2 string) int {
	m := newMatrix(len(s1)+1, len(s2)+1)
	for i := 0; i < m.nRow; i++ {
		for j := 0; j < m.nCol; j++ {
			m.computeCell(i, j, s1, s2)
		}
	}
	return m.data[len(m.data)-1]
}

// Divergence returns the largest edit distance between the padded sequences
// of two alleles in the component.  Alleles are grouped by size change
// alone, so a nonzero value flags callers that agree on length but not on
// sequence, e.g. around an interruption of the repeat.
func (g *Graph) Divergence(comp *Component) int {
	maxDist := 0
	for i, a := range comp.Nodes {
		for _, b := range comp.Nodes[i+1:] {
			if d := levenshtein(g.nodes[a].Sequence, g.nodes[b].Sequence); d > maxDist {
				maxDist = d
			}
		}
	}
	return maxDist
}

// MaxDivergence is the largest Divergence over all components, or 0 for an
// empty graph.
func (g *Graph) MaxDivergence() int {
	maxDist := 0
	for _, comp := range g.components {
		if d := g.Divergence(comp); d > maxDist {
			maxDist = d
		}
	}
	return maxDist
}
