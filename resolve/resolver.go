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

// Package resolve turns the per-caller genotypes of each sample at a
// tandem-repeat cluster into one consensus diploid call.  Votes are counted
// against the cluster's allele equivalence graph (see package allelegraph),
// and the winning components are mapped to their PreAlleles.
package resolve

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/grailbio/base/traverse"
	"github.com/grailbio/trconsensus/allelegraph"
	"github.com/grailbio/trconsensus/cluster"
	"github.com/grailbio/trconsensus/record"
)

// Result is the consensus call of one sample.
type Result struct {
	Sample string
	// ComponentIDs are the components chosen by the vote.
	ComponentIDs []allelegraph.ComponentID
	// Certain is false when callers disagreed; the call is still reported.
	Certain bool
	// Alleles is empty or holds exactly two PreAlleles.  A homozygous call
	// holds the same PreAllele twice.
	Alleles []*allelegraph.PreAllele
	// RawCalls is the cluster's RawCalls entry for the sample.
	RawCalls string
}

// Genotype renders the resolved alleles as "<cn>/<cn>", or "." when nothing
// was resolved.
func (r *Result) Genotype() string {
	if len(r.Alleles) == 0 {
		return "."
	}
	parts := make([]string, len(r.Alleles))
	for i, pa := range r.Alleles {
		parts[i] = record.FormatCopies(pa.Copies)
	}
	return strings.Join(parts, "/")
}

// Support renders the supporting callers of each resolved allele, "/"
// separated, e.g. "hipstr,gangstr/hipstr".
func (r *Result) Support() string {
	if len(r.Alleles) == 0 {
		return "."
	}
	parts := make([]string, len(r.Alleles))
	for i, pa := range r.Alleles {
		parts[i] = pa.Support.String()
	}
	return strings.Join(parts, "/")
}

// Resolver computes consensus calls for every sample of one cluster.  It
// starts unresolved; Resolve fills in all results at once.
type Resolver struct {
	cluster  *cluster.Cluster
	graph    *allelegraph.Graph
	results  []Result
	resolved bool
}

// New builds the allele graph of c.  It fails with a
// *cluster.DuplicateCallerError or *allelegraph.ResolutionError if the
// cluster cannot be resolved.
func New(c *cluster.Cluster) (*Resolver, error) {
	g, err := allelegraph.Build(c)
	if err != nil {
		return nil, err
	}
	return &Resolver{cluster: c, graph: g}, nil
}

// Graph returns the cluster's allele graph.
func (r *Resolver) Graph() *allelegraph.Graph { return r.graph }

// Cluster returns the cluster being resolved.
func (r *Resolver) Cluster() *cluster.Cluster { return r.cluster }

func (r *Resolver) locus() string {
	return fmt.Sprintf("%s:%d-%d", r.cluster.Chrom, r.cluster.Start, r.cluster.End)
}

// Resolve computes every sample's Result from scratch.  Samples are
// independent and are spread over up to parallelism workers; parallelism <= 0
// means runtime.NumCPU().  On error the previous results are kept.
func (r *Resolver) Resolve(parallelism int) error {
	n := len(r.cluster.Samples)
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > n {
		parallelism = n
	}
	if n == 0 {
		r.results, r.resolved = nil, true
		return nil
	}
	raw := r.cluster.RawCalls()
	results := make([]Result, n)
	err := traverse.Each(parallelism, func(jobIdx int) error {
		for i := (jobIdx * n) / parallelism; i < ((jobIdx+1)*n)/parallelism; i++ {
			call, err := r.cluster.SampleCall(i)
			if err != nil {
				return err
			}
			ids, certain := r.Vote(call)
			alleles, err := r.ResolveSequence(ids, call)
			if err != nil {
				return err
			}
			results[i] = Result{
				Sample:       r.cluster.Samples[i],
				ComponentIDs: ids,
				Certain:      certain,
				Alleles:      alleles,
				RawCalls:     raw[i],
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.results = results
	r.resolved = true
	return nil
}

// Resolved reports whether Resolve has completed successfully.
func (r *Resolver) Resolved() bool { return r.resolved }

// Results returns one Result per sample, in cluster sample order.  It is nil
// before Resolve.
func (r *Resolver) Results() []Result { return r.results }

// Result returns sample i's Result.  It must only be called after Resolve.
func (r *Resolver) Result(i int) *Result { return &r.results[i] }

// RefAllele returns the padded reference sequence, taken from the first
// resolved allele of any sample, or "" if nothing was resolved.
func (r *Resolver) RefAllele() string {
	for i := range r.results {
		if alleles := r.results[i].Alleles; len(alleles) > 0 {
			return alleles[0].RefSequence
		}
	}
	return ""
}
