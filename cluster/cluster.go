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

// Package cluster groups per-caller tandem-repeat records that describe the
// same locus, pads their alleles to a common reference span, and hands out
// each sample's calls across callers.
package cluster

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/trconsensus/caller"
	"github.com/grailbio/trconsensus/encoding/fasta"
	"github.com/grailbio/trconsensus/record"
)

// DuplicateCallerError is returned when a cluster holds two records from the
// same caller.  Such a cluster cannot be resolved.
type DuplicateCallerError struct {
	Caller caller.Caller
	Chrom  string
	Pos    int
}

func (e *DuplicateCallerError) Error() string {
	return fmt.Sprintf("cluster at %s:%d: multiple records from caller %v", e.Chrom, e.Pos, e.Caller)
}

// Cluster is a set of records, at most one per caller, judged to describe the
// same tandem repeat.  Start and End are 1-based inclusive and span every
// record.
type Cluster struct {
	Chrom   string
	Motif   string
	Samples []string
	Records []*record.Record
	Start   int
	End     int
}

// New creates a cluster from one or more records on the same chromosome.
// Motif is set to the canonical motif of the first record.
func New(samples []string, records ...*record.Record) *Cluster {
	if len(records) == 0 {
		panic("cluster.New: no records")
	}
	c := &Cluster{
		Chrom:   records[0].Chrom,
		Motif:   record.CanonicalMotif(records[0].Motif),
		Samples: samples,
	}
	for _, r := range records {
		c.Append(r)
	}
	return c
}

// Append adds r to the cluster and widens the span to cover it.
func (c *Cluster) Append(r *record.Record) {
	if len(c.Records) == 0 || r.Pos < c.Start {
		c.Start = r.Pos
	}
	if len(c.Records) == 0 || r.End > c.End {
		c.End = r.End
	}
	c.Records = append(c.Records, r)
}

// Pad sets every record's Prefix and Suffix to the reference bases between
// the record and the cluster boundaries, so that all alleles cover
// [c.Start, c.End].  Any previous padding is replaced.
func (c *Cluster) Pad(ref fasta.Fasta) error {
	for _, r := range c.Records {
		r.Prefix, r.Suffix = "", ""
		if r.Pos > c.Start {
			// 1-based [c.Start, r.Pos-1] is 0-based [c.Start-1, r.Pos-1).
			s, err := ref.Get(c.Chrom, uint64(c.Start-1), uint64(r.Pos-1))
			if err != nil {
				return errors.E(err, fmt.Sprintf("cluster.Pad %s:%d-%d (%v)", c.Chrom, c.Start, c.End, r.Caller))
			}
			r.Prefix = strings.ToUpper(s)
		}
		if r.End < c.End {
			// 1-based [r.End+1, c.End] is 0-based [r.End, c.End).
			s, err := ref.Get(c.Chrom, uint64(r.End), uint64(c.End))
			if err != nil {
				return errors.E(err, fmt.Sprintf("cluster.Pad %s:%d-%d (%v)", c.Chrom, c.Start, c.End, r.Caller))
			}
			r.Suffix = strings.ToUpper(s)
		}
	}
	return nil
}

// Callers returns the set of callers with a record in c.
func (c *Cluster) Callers() caller.Set {
	var s caller.Set
	for _, r := range c.Records {
		s.Add(r.Caller)
	}
	return s
}

// CheckCallers returns a *DuplicateCallerError if two records share a caller.
func (c *Cluster) CheckCallers() error {
	var seen caller.Set
	for _, r := range c.Records {
		if seen.Has(r.Caller) {
			return &DuplicateCallerError{Caller: r.Caller, Chrom: r.Chrom, Pos: r.Pos}
		}
		seen.Add(r.Caller)
	}
	return nil
}

// SampleCall returns sample i's genotype from every record, in record order.
func (c *Cluster) SampleCall(i int) (SampleCall, error) {
	if err := c.CheckCallers(); err != nil {
		return nil, err
	}
	call := make(SampleCall, 0, len(c.Records))
	for _, r := range c.Records {
		g := record.NoCall
		if i < len(r.Genotypes) {
			g = r.Genotypes[i]
		}
		call = append(call, CallerCall{Caller: r.Caller, Genotype: g})
	}
	return call, nil
}

// RawCalls returns, for each sample, the "|"-joined SampleString of every
// record, e.g. "hipstr=12,13|gangstr=.".  It is meant for reporting only.
func (c *Cluster) RawCalls() []string {
	out := make([]string, len(c.Samples))
	parts := make([]string, len(c.Records))
	for i := range c.Samples {
		for j, r := range c.Records {
			parts[j] = r.SampleString(i)
		}
		out[i] = strings.Join(parts, "|")
	}
	return out
}

// CallerCall is one caller's genotype for a sample.
type CallerCall struct {
	Caller   caller.Caller
	Genotype record.Genotype
}

// SampleCall is a sample's genotypes across the callers of a cluster, in
// record order.  Callers without a record in the cluster are absent.
type SampleCall []CallerCall

// Get returns the genotype reported by c.  ok is false if c has no record in
// the cluster; a present caller may still report a no-call.
func (s SampleCall) Get(c caller.Caller) (g record.Genotype, ok bool) {
	for _, cc := range s {
		if cc.Caller == c {
			return cc.Genotype, true
		}
	}
	return record.NoCall, false
}

// NumCalled returns the number of callers that genotyped the sample.
func (s SampleCall) NumCalled() int {
	n := 0
	for _, cc := range s {
		if !cc.Genotype.IsNoCall() {
			n++
		}
	}
	return n
}

// AllNoCall reports whether no caller genotyped the sample.
func (s SampleCall) AllNoCall() bool {
	return s.NumCalled() == 0
}
