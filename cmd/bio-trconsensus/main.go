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
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/trconsensus/merge"
)

var (
	bedPath     = flag.String("bed", merge.DefaultOpts.BedPath, "Input BED path; only records overlapping it are merged. Cannot be combined with -region")
	region      = flag.String("region", merge.DefaultOpts.Region, "Restrict merging to the specified regions. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>; several regions may be separated by whitespace")
	diagnostics = flag.String("diagnostics", merge.DefaultOpts.Diagnostics, "If nonempty, write per-cluster allele graph statistics to this path")
	outPath     = flag.String("out", "bio-trconsensus.tsv", "Output path; BGZF-compressed if it ends in .gz")
	parallelism = flag.Int("parallelism", merge.DefaultOpts.Parallelism, "Maximum number of samples resolved simultaneously; 0 = runtime.NumCPU()")
)

func bioTRConsensusUsage() {
	fmt.Printf("Usage: %s [OPTIONS] recordspath [fapath]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioTRConsensusUsage
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		log.Fatalf("Expected recordspath and optional fapath; please check flag syntax: '%s'", strings.Join(args, " "))
	}
	var faPath string
	if len(args) == 2 {
		faPath = args[1]
	}
	ctx := vcontext.Background()
	opts := merge.Opts{
		BedPath:     *bedPath,
		Region:      *region,
		Diagnostics: *diagnostics,
		Parallelism: *parallelism,
	}
	stats, err := merge.Run(ctx, args[0], faPath, *outPath, &opts)
	if err != nil {
		log.Panicf("%v", err)
	}
	if stats.Skipped > 0 {
		log.Printf("%d of %d clusters could not be resolved", stats.Skipped, stats.Clusters)
	}
	log.Debug.Printf("exiting")
}
