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
	"strconv"

	"github.com/grailbio/trconsensus/caller"
	"github.com/grailbio/trconsensus/cluster"
)

// Allele is one caller's allele at a locus: the allele behind one genotype
// index of the caller's record.  Sequence and RefSequence include the
// cluster's padding, so alleles from different callers are directly
// comparable.
type Allele struct {
	Caller        caller.Caller
	GenotypeIndex int
	// SizeDelta is len(allele) - len(reference) in bp.  Alleles from
	// different callers with equal SizeDelta are candidates for being the
	// same allele.
	SizeDelta   int
	Sequence    string
	RefSequence string
	Copies      float64
	RefCopies   float64
	IsRef       bool
}

// Label returns "<caller>_*" for a reference allele and
// "<caller>_<size delta>" otherwise.
func (a *Allele) Label() string {
	if a.IsRef {
		return a.Caller.String() + "_*"
	}
	return a.Caller.String() + "_" + strconv.Itoa(a.SizeDelta)
}

// Alleles returns the alleles of c that are called in at least one sample,
// in record order and, within a record, by genotype index.
func Alleles(c *cluster.Cluster) []Allele {
	var out []Allele
	for _, r := range c.Records {
		for _, idx := range r.CalledIndices() {
			out = append(out, Allele{
				Caller:        r.Caller,
				GenotypeIndex: idx,
				SizeDelta:     len(r.Allele(idx)) - len(r.Ref),
				Sequence:      r.PaddedAllele(idx),
				RefSequence:   r.PaddedRef(),
				Copies:        r.Copies(idx),
				RefCopies:     r.RefCopies,
				IsRef:         idx == 0,
			})
		}
	}
	return out
}

// PreAllele is the consensus representative of an equivalence class of
// alleles.  The sequence and copy numbers come from one representative
// allele and never change; Support only grows.
type PreAllele struct {
	RefSequence string
	Sequence    string
	RefCopies   float64
	Copies      float64
	Support     caller.Set
}

func newPreAllele(a *Allele, support caller.Set) *PreAllele {
	return &PreAllele{
		RefSequence: a.RefSequence,
		Sequence:    a.Sequence,
		RefCopies:   a.RefCopies,
		Copies:      a.Copies,
		Support:     support,
	}
}

// AddSupport adds callers to the support set.  Callers already present are
// ignored.
func (p *PreAllele) AddSupport(callers ...caller.Caller) {
	p.Support.Add(callers...)
}
