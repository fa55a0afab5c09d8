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
package resolve

import (
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/trconsensus/allelegraph"
	"github.com/grailbio/trconsensus/caller"
	"github.com/grailbio/trconsensus/cluster"
)

type tally struct {
	id      allelegraph.ComponentID
	support int
}

// Vote picks the components that best explain a sample's calls.
//
// Each allele slot of each caller that genotyped the sample is one vote for
// the component holding that allele.  With n such callers, components are
// visited by decreasing support (ties in order of first vote):
//
//   - support 2n: every caller put both alleles there; the sample is
//     homozygous for it, and the call is certain.
//   - n < support < 2n: a majority but not unanimous homozygous signal;
//     homozygous, uncertain.
//   - support n: a heterozygous candidate.  The first two are kept; any
//     further one only makes the call uncertain.
//   - anything else makes the call uncertain.
//
// The first two rules return immediately.  Otherwise the heterozygous
// candidates are returned, which may be zero, one or two components.
func (r *Resolver) Vote(call cluster.SampleCall) (ids []allelegraph.ComponentID, certain bool) {
	var (
		tallies  []tally
		position = map[allelegraph.ComponentID]int{}
		numValid int
	)
	for _, cc := range call {
		if cc.Genotype.IsNoCall() {
			continue
		}
		numValid++
		for _, idx := range cc.Genotype.Alleles() {
			// Every called genotype index of the cluster is a node.
			id, ok := r.graph.ComponentOf(cc.Caller, idx)
			if !ok {
				continue
			}
			if p, ok := position[id]; ok {
				tallies[p].support++
				continue
			}
			position[id] = len(tallies)
			tallies = append(tallies, tally{id: id, support: 1})
		}
	}
	sort.SliceStable(tallies, func(i, j int) bool {
		return tallies[i].support > tallies[j].support
	})

	certain = true
	for _, t := range tallies {
		switch {
		case t.support == 2*numValid:
			return []allelegraph.ComponentID{t.id, t.id}, certain
		case t.support > numValid && t.support < 2*numValid:
			return []allelegraph.ComponentID{t.id, t.id}, false
		case t.support == numValid:
			if len(ids) < 2 {
				ids = append(ids, t.id)
				continue
			}
			certain = false
			log.Debug.Printf("%s: extra heterozygous candidate %v (support %d)", r.locus(), t.id, t.support)
		default:
			certain = false
			log.Debug.Printf("%s: %v is not fully supported (support %d of %d callers)", r.locus(), t.id, t.support, numValid)
		}
	}
	return ids, certain
}

// ResolveSequence maps the components chosen by Vote to PreAlleles.
//
// Components resolved by the anchor caller's genotype index use the anchor's
// first genotype index for the sample; if the sample has no anchor call the
// component is skipped with a warning.  The result is the first two
// PreAlleles, a single one duplicated, or empty.  A component that is absent
// from the table, or whose table is empty, yields a *ResolutionError.
func (r *Resolver) ResolveSequence(ids []allelegraph.ComponentID, call cluster.SampleCall) ([]*allelegraph.PreAllele, error) {
	if call.AllNoCall() || len(ids) == 0 {
		return nil, nil
	}
	var out []*allelegraph.PreAllele
	for _, id := range ids {
		comp, ok := r.graph.Component(id)
		if !ok || comp.Resolution == nil {
			return nil, &allelegraph.ResolutionError{Component: id, Reason: "no resolved allele"}
		}
		switch res := comp.Resolution.(type) {
		case allelegraph.Unambiguous:
			out = append(out, res.Allele)
		case allelegraph.ByGenotypeIndex:
			if len(res) == 0 {
				return nil, &allelegraph.ResolutionError{Component: id, Reason: "no " + caller.Anchor.String() + " alleles to disambiguate"}
			}
			anchor, ok := call.Get(caller.Anchor)
			if !ok || anchor.IsNoCall() {
				log.Printf("warning: %s: %v needs a %v call to pick an allele, sample has none; skipping",
					r.locus(), id, caller.Anchor)
				continue
			}
			if pa, ok := res[anchor.Alleles()[0]]; ok {
				out = append(out, pa)
			} else {
				log.Debug.Printf("%s: %v has no allele for %v genotype %v", r.locus(), id, caller.Anchor, anchor)
			}
		}
	}
	switch len(out) {
	case 0:
		log.Printf("warning: %s: no alleles resolved for components %v", r.locus(), ids)
		return nil, nil
	case 1:
		return []*allelegraph.PreAllele{out[0], out[0]}, nil
	default:
		return out[:2], nil
	}
}
