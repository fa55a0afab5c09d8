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
package record

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Genotype is a diploid pair of allele indices into a record's
// [REF, ALT...] list, or a no-call.  The zero value is NoCall.
type Genotype struct {
	called  bool
	alleles [2]int
}

// NoCall is the genotype of a sample the caller did not genotype.
var NoCall = Genotype{}

// Diploid returns the called genotype a0/a1.
func Diploid(a0, a1 int) Genotype {
	return Genotype{called: true, alleles: [2]int{a0, a1}}
}

// IsNoCall reports whether g is a no-call.
func (g Genotype) IsNoCall() bool {
	return !g.called
}

// Alleles returns the two allele indices.  It must not be called on a no-call.
func (g Genotype) Alleles() [2]int {
	if !g.called {
		panic("record.Genotype.Alleles called on a no-call")
	}
	return g.alleles
}

// String renders g in unphased VCF GT syntax.
func (g Genotype) String() string {
	if !g.called {
		return "."
	}
	return strconv.Itoa(g.alleles[0]) + "/" + strconv.Itoa(g.alleles[1])
}

// ParseGenotype parses a VCF GT value.  "0/1" and "0|1" are diploid calls
// (phase is dropped), a haploid index "k" is read as "k/k", and ".", "./."
// or any call with a missing allele is a no-call.
func ParseGenotype(s string) (Genotype, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return NoCall, nil
	}
	parts := []string{s}
	if i := strings.IndexAny(s, "/|"); i >= 0 {
		parts = []string{s[:i], s[i+1:]}
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, "/|") {
			return NoCall, errors.Errorf("record.ParseGenotype: unsupported genotype %q", s)
		}
	}
	var idx [2]int
	for i, p := range parts {
		if p == "." {
			return NoCall, nil
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return NoCall, errors.Errorf("record.ParseGenotype: bad allele index %q in %q", p, s)
		}
		idx[i] = v
	}
	if len(parts) == 1 {
		idx[1] = idx[0]
	}
	return Diploid(idx[0], idx[1]), nil
}
