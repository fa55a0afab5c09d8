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
package cluster_test

import (
	"strings"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/trconsensus/caller"
	"github.com/grailbio/trconsensus/cluster"
	"github.com/grailbio/trconsensus/encoding/fasta"
	"github.com/grailbio/trconsensus/record"
)

var samples = []string{"s0", "s1"}

func newRecord(c caller.Caller, chrom string, pos, end int, motif string, gts ...record.Genotype) *record.Record {
	return &record.Record{
		Caller:    c,
		Chrom:     chrom,
		Pos:       pos,
		End:       end,
		Motif:     motif,
		Ref:       strings.Repeat("N", end-pos+1),
		RefCopies: 2,
		Alts:      []string{"NN"},
		AltCopies: []float64{1},
		Genotypes: gts,
	}
}

func TestSpanAndPad(t *testing.T) {
	ref, err := fasta.New(strings.NewReader(">chr1\nacgtacgt\nacgtacgt\n"))
	assert.NoError(t, err)

	a := newRecord(caller.HipSTR, "chr1", 5, 10, "AC")
	b := newRecord(caller.GangSTR, "chr1", 3, 12, "CA")
	c := cluster.New(samples, a)
	expect.EQ(t, c.Start, 5)
	expect.EQ(t, c.End, 10)
	c.Append(b)
	expect.EQ(t, c.Start, 3)
	expect.EQ(t, c.End, 12)
	expect.EQ(t, c.Motif, "AC")
	expect.EQ(t, c.Callers(), caller.NewSet(caller.HipSTR, caller.GangSTR))

	assert.NoError(t, c.Pad(ref))
	expect.EQ(t, a.Prefix, "GT")
	expect.EQ(t, a.Suffix, "GT")
	expect.EQ(t, b.Prefix, "")
	expect.EQ(t, b.Suffix, "")
	expect.EQ(t, len(a.PaddedRef()), len(b.PaddedRef()))

	// Padding is recomputed, not accumulated.
	assert.NoError(t, c.Pad(ref))
	expect.EQ(t, a.Prefix, "GT")

	c.Append(newRecord(caller.AdVNTR, "chr1", 10, 20, "AC"))
	expect.NotNil(t, c.Pad(ref))
}

func TestSampleCall(t *testing.T) {
	c := cluster.New(samples,
		newRecord(caller.GangSTR, "chr1", 1, 4, "AC", record.Diploid(0, 1), record.NoCall),
		newRecord(caller.HipSTR, "chr1", 1, 4, "AC", record.Diploid(1, 1)),
	)
	assert.NoError(t, c.CheckCallers())

	call, err := c.SampleCall(0)
	assert.NoError(t, err)
	expect.EQ(t, len(call), 2)
	expect.EQ(t, call[0].Caller, caller.GangSTR)
	expect.EQ(t, call.NumCalled(), 2)
	g, ok := call.Get(caller.HipSTR)
	expect.True(t, ok)
	expect.EQ(t, g, record.Diploid(1, 1))
	_, ok = call.Get(caller.AdVNTR)
	expect.False(t, ok)

	// HipSTR has no genotype for s1 at all; that reads as a no-call.
	call, err = c.SampleCall(1)
	assert.NoError(t, err)
	expect.True(t, call.AllNoCall())
	g, ok = call.Get(caller.HipSTR)
	expect.True(t, ok)
	expect.True(t, g.IsNoCall())

	expect.EQ(t, c.RawCalls(), []string{"gangstr=2,1|hipstr=1,1", "gangstr=.|hipstr=."})
}

func TestDuplicateCaller(t *testing.T) {
	c := cluster.New(samples,
		newRecord(caller.GangSTR, "chr1", 1, 4, "AC"),
		newRecord(caller.HipSTR, "chr1", 1, 4, "AC"),
		newRecord(caller.GangSTR, "chr1", 2, 4, "AC"),
	)
	err := c.CheckCallers()
	dup, ok := err.(*cluster.DuplicateCallerError)
	assert.True(t, ok, "got %v", err)
	expect.EQ(t, dup.Caller, caller.GangSTR)
	expect.EQ(t, dup.Pos, 2)
	expect.EQ(t, dup.Error(), "cluster at chr1:2: multiple records from caller gangstr")

	_, err = c.SampleCall(0)
	expect.NotNil(t, err)
}

func TestGroup(t *testing.T) {
	records := []*record.Record{
		newRecord(caller.HipSTR, "chr2", 50, 60, "AAT"),
		newRecord(caller.HipSTR, "chr1", 200, 220, "CAG"),
		newRecord(caller.GangSTR, "chr1", 100, 120, "AC"),
		newRecord(caller.HipSTR, "chr1", 102, 118, "CA"),
		newRecord(caller.AdVNTR, "chr1", 115, 130, "GGC"),
		newRecord(caller.GangSTR, "chr1", 205, 215, "CTG"),
		newRecord(caller.GangSTR, "chr2", 61, 70, "ATT"),
	}
	regions := cluster.Group(records, samples)
	assert.EQ(t, len(regions), 4)

	// chr2 appears first in the input.
	expect.EQ(t, regions[0].Chrom, "chr2")
	expect.EQ(t, len(regions[0].Clusters), 1)
	expect.EQ(t, regions[1].Chrom, "chr2")
	expect.EQ(t, regions[1].Start, 61)

	r := regions[2]
	expect.EQ(t, r.Chrom, "chr1")
	expect.EQ(t, r.Start, 100)
	expect.EQ(t, r.End, 130)
	expect.EQ(t, r.CanonicalMotifs(), []string{"AC", "CCG"})
	expect.EQ(t, len(r.Clusters[0].Records), 2)
	expect.EQ(t, r.Clusters[0].Start, 100)
	expect.EQ(t, r.Clusters[0].End, 120)

	r = regions[3]
	expect.EQ(t, r.CanonicalMotifs(), []string{"AGC"})
	expect.EQ(t, r.Clusters[0].Callers(), caller.NewSet(caller.HipSTR, caller.GangSTR))
	expect.EQ(t, r.Clusters[0].Samples, samples)
}
