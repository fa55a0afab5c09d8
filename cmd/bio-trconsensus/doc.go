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

/*
bio-trconsensus merges tandem-repeat genotype calls made by several callers
(adVNTR, ExpansionHunter, HipSTR, GangSTR) into one consensus diploid call per
sample and locus.

Records that overlap on the genome and share a canonical motif are clustered
and padded against the reference so that every allele covers the same span.
Alleles of different callers with the same size change are then treated as
equivalent, and each sample's calls are put to a vote.  Calls on which the
callers disagree are still reported, with CERTAIN=0.

Input is a harmonized long-format TSV with one row per record and sample; see
package encoding/trtsv.

Sample usage:
bio-trconsensus \
    --region chr4:3074000-3076000 \
    --diagnostics graph.tsv \
    --out consensus.tsv.gz \
    calls.tsv.gz \
    ref.fa
*/
package main
