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

import "github.com/grailbio/trconsensus/caller"

// SingularityScore is the mean, over components, of the fraction of the
// graph's callers present in the component.  1 means every component is
// backed by every caller; lower values point at alleles only some callers
// report.  An empty graph scores 0.
func (g *Graph) SingularityScore() float64 {
	var all caller.Set
	for i := range g.nodes {
		all.Add(g.nodes[i].Caller)
	}
	if len(g.components) == 0 {
		return 0
	}
	sum := 0.0
	for _, comp := range g.components {
		sum += float64(comp.Callers.Len()) / float64(all.Len())
	}
	return sum / float64(len(g.components))
}

// ConfusionScore is the mean, over components, of nodes per distinct caller.
// 1 means every component is one-to-one across callers; higher values mean
// callers split what others call a single allele.  An empty graph scores 0.
func (g *Graph) ConfusionScore() float64 {
	if len(g.components) == 0 {
		return 0
	}
	sum := 0.0
	for _, comp := range g.components {
		sum += float64(len(comp.Nodes)) / float64(comp.Callers.Len())
	}
	return sum / float64(len(g.components))
}
