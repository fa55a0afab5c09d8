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

// Package merge runs the consensus pipeline over a file of harmonized
// tandem-repeat records: records are grouped into clusters, padded against
// the reference, resolved per sample and written out as a TSV.
package merge

import (
	"context"
	"fmt"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/trconsensus/allelegraph"
	"github.com/grailbio/trconsensus/cluster"
	"github.com/grailbio/trconsensus/encoding/fasta"
	"github.com/grailbio/trconsensus/encoding/trtsv"
	"github.com/grailbio/trconsensus/interval"
	"github.com/grailbio/trconsensus/record"
	"github.com/grailbio/trconsensus/resolve"
)

type Opts struct {
	// Commandline options.
	BedPath     string
	Region      string
	Diagnostics string
	Parallelism int
}

var DefaultOpts = Opts{
	Parallelism: 0,
}

// Stats summarizes a Run.
type Stats struct {
	Records   int
	Filtered  int
	Regions   int
	Clusters  int
	Resolved  int
	Skipped   int
	Calls     int
	Uncertain int
}

func (s Stats) String() string {
	return fmt.Sprintf("records=%d filtered=%d regions=%d clusters=%d resolved=%d skipped=%d calls=%d uncertain=%d",
		s.Records, s.Filtered, s.Regions, s.Clusters, s.Resolved, s.Skipped, s.Calls, s.Uncertain)
}

func loadFilter(ctx context.Context, opts *Opts) (interval.Union, error) {
	if opts.BedPath != "" && opts.Region != "" {
		return interval.Union{}, fmt.Errorf("merge: -bed and -region cannot both be specified")
	}
	var (
		entries []interval.Entry
		err     error
	)
	switch {
	case opts.BedPath != "":
		entries, err = interval.ReadBEDFile(ctx, opts.BedPath)
	case opts.Region != "":
		entries, err = interval.ParseRegions(opts.Region)
	default:
		return interval.Union{}, nil
	}
	if err != nil {
		return interval.Union{}, err
	}
	return interval.NewUnion(entries), nil
}

func filterRecords(records []*record.Record, u interval.Union) []*record.Record {
	kept := records[:0:0]
	for _, r := range records {
		if u.Intersects(r.Chrom, interval.PosType(r.Pos-1), interval.PosType(r.End)) {
			kept = append(kept, r)
		}
	}
	return kept
}

// isClusterError reports whether err makes a single cluster unresolvable
// without invalidating the rest of the run.
func isClusterError(err error) bool {
	switch err.(type) {
	case *cluster.DuplicateCallerError, *allelegraph.ResolutionError:
		return true
	}
	return false
}

// Run reads records from recordsPath, resolves every cluster and writes one
// line per (cluster, sample) to outPath.  fastaPath may be empty, in which
// case records are compared without reference padding.  A cluster that fails
// with a DuplicateCallerError or ResolutionError is logged and skipped.
func Run(ctx context.Context, recordsPath, fastaPath, outPath string, opts *Opts) (stats Stats, err error) {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	filter, err := loadFilter(ctx, opts)
	if err != nil {
		return stats, err
	}
	records, samples, err := trtsv.ReadFile(ctx, recordsPath)
	if err != nil {
		return stats, err
	}
	stats.Records = len(records)
	if !filter.Empty() {
		records = filterRecords(records, filter)
		stats.Filtered = stats.Records - len(records)
	}

	var ref fasta.Fasta
	if fastaPath != "" {
		var closeRef func() error
		if ref, closeRef, err = fasta.Open(ctx, fastaPath); err != nil {
			return stats, err
		}
		defer func() {
			if e := closeRef(); e != nil && err == nil {
				err = e
			}
		}()
	} else {
		log.Printf("warning: no reference given, records with differing spans are compared unpadded")
	}

	out, err := createOutput(ctx, outPath, callsHeader, parallelism)
	if err != nil {
		return stats, errors.E(err, "create", outPath)
	}
	defer func() {
		if e := out.close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", outPath)
		}
	}()
	var diag *output
	if opts.Diagnostics != "" {
		if diag, err = createOutput(ctx, opts.Diagnostics, diagnosticsHeader, parallelism); err != nil {
			return stats, errors.E(err, "create", opts.Diagnostics)
		}
		defer func() {
			if e := diag.close(ctx); e != nil && err == nil {
				err = errors.E(e, "close", opts.Diagnostics)
			}
		}()
	}

	regions := cluster.Group(records, samples)
	stats.Regions = len(regions)
	for _, region := range regions {
		for _, c := range region.Clusters {
			stats.Clusters++
			if ref != nil {
				if err = c.Pad(ref); err != nil {
					return stats, err
				}
			}
			r, err := resolveCluster(c, parallelism)
			if err != nil {
				if !isClusterError(err) {
					return stats, err
				}
				log.Printf("warning: skipping cluster %s:%d-%d (%s): %v", c.Chrom, c.Start, c.End, c.Motif, err)
				stats.Skipped++
				continue
			}
			stats.Resolved++
			for i := range r.Results() {
				stats.Calls++
				if !r.Result(i).Certain {
					stats.Uncertain++
				}
			}
			if err = writeCalls(out.w, r); err != nil {
				return stats, errors.E(err, "write", outPath)
			}
			if diag != nil {
				if err = writeDiagnostics(diag.w, r); err != nil {
					return stats, errors.E(err, "write", opts.Diagnostics)
				}
			}
		}
	}
	log.Printf("merge: %v", stats)
	return stats, nil
}

func resolveCluster(c *cluster.Cluster, parallelism int) (*resolve.Resolver, error) {
	r, err := resolve.New(c)
	if err != nil {
		return nil, err
	}
	if err := r.Resolve(parallelism); err != nil {
		return nil, err
	}
	return r, nil
}
