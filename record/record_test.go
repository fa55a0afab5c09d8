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
package record_test

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/trconsensus/caller"
	"github.com/grailbio/trconsensus/record"
)

func TestParseGenotype(t *testing.T) {
	for _, test := range []struct {
		in      string
		want    record.Genotype
		wantErr bool
	}{
		{"0/1", record.Diploid(0, 1), false},
		{"2|1", record.Diploid(2, 1), false},
		{"3", record.Diploid(3, 3), false},
		{".", record.NoCall, false},
		{"./.", record.NoCall, false},
		{"./1", record.NoCall, false},
		{"", record.NoCall, false},
		{"0/1/2", record.NoCall, true},
		{"a/1", record.NoCall, true},
		{"-1/0", record.NoCall, true},
		{"/1", record.NoCall, true},
		{"1/", record.NoCall, true},
		{"0//1", record.NoCall, true},
		{"0|1/2", record.NoCall, true},
	} {
		got, err := record.ParseGenotype(test.in)
		if test.wantErr {
			expect.NotNil(t, err, "input %q", test.in)
			continue
		}
		assert.NoError(t, err, "input %q", test.in)
		expect.EQ(t, got, test.want, "input %q", test.in)
	}
	expect.True(t, record.NoCall.IsNoCall())
	expect.EQ(t, record.NoCall.String(), ".")
	expect.EQ(t, record.Diploid(1, 0).String(), "1/0")
}

func TestCanonicalMotif(t *testing.T) {
	for _, m := range []string{"CAG", "AGC", "GCA", "CTG", "TGC", "gct"} {
		expect.EQ(t, record.CanonicalMotif(m), "AGC", "motif %s", m)
	}
	expect.EQ(t, record.CanonicalMotif("AT"), "AT")
	expect.EQ(t, record.CanonicalMotif("TTTA"), "AAAT")
	expect.EQ(t, record.CanonicalMotif(""), "")
}

func newRecord() *record.Record {
	return &record.Record{
		Caller:    caller.HipSTR,
		Chrom:     "chr1",
		Pos:       100,
		End:       111,
		Motif:     "CAG",
		Ref:       "CAGCAGCAGCAG",
		RefCopies: 4,
		Alts:      []string{"CAGCAGCAG", "CAGCAGCAGCAGCAG", "CAGCAGCAGCAGCAGCAG"},
		AltCopies: []float64{3, 5, 6},
		Genotypes: []record.Genotype{
			record.Diploid(0, 1),
			record.NoCall,
			record.Diploid(2, 2),
		},
	}
}

func TestRecordAlleles(t *testing.T) {
	r := newRecord()
	assert.NoError(t, r.Validate())
	expect.EQ(t, r.CalledIndices(), []int{0, 1, 2})
	expect.EQ(t, r.Allele(0), r.Ref)
	expect.EQ(t, r.Allele(2), "CAGCAGCAGCAGCAG")
	expect.EQ(t, r.Copies(3), 6.0)

	r.Prefix, r.Suffix = "AC", "GT"
	expect.EQ(t, r.PaddedAllele(1), "ACCAGCAGCAGGT")
	expect.EQ(t, r.PaddedRef(), "ACCAGCAGCAGCAGGT")
}

func TestRecordValidate(t *testing.T) {
	r := newRecord()
	r.AltCopies = r.AltCopies[:2]
	expect.NotNil(t, r.Validate())

	r = newRecord()
	r.Genotypes[1] = record.Diploid(0, 4)
	expect.NotNil(t, r.Validate())

	r = newRecord()
	r.Genotypes[1] = record.Diploid(-1, 1)
	expect.NotNil(t, r.Validate())

	r = newRecord()
	r.End = 10
	expect.NotNil(t, r.Validate())
}

func TestSampleString(t *testing.T) {
	r := newRecord()
	r.AltCopies[0] = 3.5
	expect.EQ(t, r.SampleString(0), "hipstr=4,3.5")
	expect.EQ(t, r.SampleString(1), "hipstr=.")
	expect.EQ(t, r.SampleString(2), "hipstr=5,5")
	// Samples missing from the record render as no-calls.
	expect.EQ(t, r.SampleString(7), "hipstr=.")
}
