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

import (
	"fmt"

	"github.com/grailbio/trconsensus/caller"
)

// Resolution is the PreAllele lookup table of one component.  It is either
// Unambiguous, valid for any genotype index, or ByGenotypeIndex, keyed by the
// anchor caller's genotype index.
type Resolution interface {
	isResolution()
}

// Unambiguous is the resolution of a component that maps to one PreAllele
// regardless of how a sample's callers genotyped it.
type Unambiguous struct {
	Allele *PreAllele
}

// ByGenotypeIndex is the resolution of a component in which the anchor caller
// owns several alleles of equal length.  The PreAllele for a sample is picked
// by the anchor caller's genotype index.
type ByGenotypeIndex map[int]*PreAllele

func (Unambiguous) isResolution()     {}
func (ByGenotypeIndex) isResolution() {}

// ResolutionError reports a component that cannot be mapped to PreAlleles,
// or a lookup against a missing table entry.  It means the graph is unusable
// for the cluster.
type ResolutionError struct {
	Component ComponentID
	Reason    string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("component %v: %s", e.Component, e.Reason)
}

// resolve computes comp's Resolution.
//
// When every caller contributes at most one node, one PreAllele represents the
// component, built from the anchor node if there is one and supported by all
// callers.  Otherwise some caller reported two equally sized alleles and only
// the anchor caller can tell them apart: each anchor node gets its own
// PreAllele, supported by the anchor plus every other node carrying exactly
// the same sequence.
func (g *Graph) resolve(comp *Component) (Resolution, error) {
	anchors := comp.byCaller[caller.Anchor]
	if !comp.Ambiguous() {
		rep := comp.Nodes[0]
		if len(anchors) > 0 {
			rep = anchors[0]
		}
		return Unambiguous{newPreAllele(&g.nodes[rep], comp.Callers)}, nil
	}
	switch len(anchors) {
	case 0:
		return nil, &ResolutionError{
			Component: comp.ID,
			Reason:    fmt.Sprintf("%d alleles from %d callers and no %v allele to disambiguate", len(comp.Nodes), comp.Callers.Len(), caller.Anchor),
		}
	case 1:
		return Unambiguous{g.sequenceSupported(comp, anchors[0])}, nil
	}
	res := ByGenotypeIndex{}
	// New rejects duplicate (caller, index) pairs, so anchor indices are
	// distinct.
	for _, n := range anchors {
		res[g.nodes[n].GenotypeIndex] = g.sequenceSupported(comp, n)
	}
	return res, nil
}

// sequenceSupported returns a PreAllele for anchor node rep, supported by the
// anchor caller and by the caller of every other node in comp with an
// identical padded sequence.
func (g *Graph) sequenceSupported(comp *Component, rep int) *PreAllele {
	a := &g.nodes[rep]
	pa := newPreAllele(a, caller.NewSet(a.Caller))
	for _, n := range comp.Nodes {
		if n != rep && g.nodes[n].Sequence == a.Sequence {
			pa.AddSupport(g.nodes[n].Caller)
		}
	}
	return pa
}
