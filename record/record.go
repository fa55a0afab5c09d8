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

// Package record holds the caller-independent ("harmonized") form of a
// tandem-repeat genotype record: one caller's view of one locus, with a
// genotype per sample.  Parsing caller-specific VCF dialects into this form
// happens upstream; see encoding/trtsv for the on-disk representation.
package record

import (
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/trconsensus/caller"
	"github.com/pkg/errors"
)

// Record is a harmonized tandem-repeat record.
//
// Pos and End are 1-based and inclusive, so the reference allele covers
// [Pos, End].  Genotypes has one entry per sample, in the sample order of the
// enclosing cluster.
type Record struct {
	Caller caller.Caller
	Chrom  string
	Pos    int
	End    int
	Motif  string

	Ref       string
	RefCopies float64
	Alts      []string
	AltCopies []float64

	Genotypes []Genotype

	// Prefix and Suffix are reference bases added in front of and behind
	// every allele so that records spanning slightly different coordinates
	// yield directly comparable sequences.  They are set by the cluster.
	Prefix string
	Suffix string
}

// Validate checks that r is internally consistent: copy numbers are given for
// every alternate allele, the span is non-empty, and every called genotype
// index names an allele of the record.
func (r *Record) Validate() error {
	if len(r.Alts) != len(r.AltCopies) {
		return errors.Errorf("record %s:%d (%v): %d alternate alleles but %d copy numbers",
			r.Chrom, r.Pos, r.Caller, len(r.Alts), len(r.AltCopies))
	}
	if r.End < r.Pos {
		return errors.Errorf("record %s:%d (%v): end %d precedes start", r.Chrom, r.Pos, r.Caller, r.End)
	}
	for i, g := range r.Genotypes {
		if g.IsNoCall() {
			continue
		}
		for _, idx := range g.Alleles() {
			if idx < 0 || idx > len(r.Alts) {
				return errors.Errorf("record %s:%d (%v): sample %d has genotype %v but only %d alternate alleles",
					r.Chrom, r.Pos, r.Caller, i, g, len(r.Alts))
			}
		}
	}
	return nil
}

// Allele returns the unpadded sequence of allele idx; 0 is the reference.
func (r *Record) Allele(idx int) string {
	if idx == 0 {
		return r.Ref
	}
	return r.Alts[idx-1]
}

// Copies returns the repeat copy number of allele idx; 0 is the reference.
func (r *Record) Copies(idx int) float64 {
	if idx == 0 {
		return r.RefCopies
	}
	return r.AltCopies[idx-1]
}

// PaddedAllele returns Prefix + Allele(idx) + Suffix.
func (r *Record) PaddedAllele(idx int) string {
	return r.Prefix + r.Allele(idx) + r.Suffix
}

// PaddedRef returns Prefix + Ref + Suffix.
func (r *Record) PaddedRef() string {
	return r.Prefix + r.Ref + r.Suffix
}

// CalledIndices returns, in ascending order, the allele indices that appear
// in at least one sample's genotype.  Alleles listed in the record but never
// called are left out.
func (r *Record) CalledIndices() []int {
	seen := map[int]bool{}
	for _, g := range r.Genotypes {
		if g.IsNoCall() {
			continue
		}
		for _, idx := range g.Alleles() {
			seen[idx] = true
		}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// SampleString renders sample i's call as "<caller>=<cn>,<cn>", or
// "<caller>=." for a no-call.  Copy numbers are printed in their shortest
// exact form.
func (r *Record) SampleString(i int) string {
	var sb strings.Builder
	sb.WriteString(r.Caller.String())
	sb.WriteByte('=')
	g := NoCall
	if i < len(r.Genotypes) {
		g = r.Genotypes[i]
	}
	if g.IsNoCall() {
		sb.WriteByte('.')
		return sb.String()
	}
	for j, idx := range g.Alleles() {
		if j > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(FormatCopies(r.Copies(idx)))
	}
	return sb.String()
}

// FormatCopies formats a copy number without trailing zeros.
func FormatCopies(cn float64) string {
	return strconv.FormatFloat(cn, 'f', -1, 64)
}
