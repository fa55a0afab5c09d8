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
package cluster

import (
	"sort"

	"github.com/grailbio/trconsensus/record"
	"github.com/samber/lo"
)

// Region is a maximal run of transitively overlapping records on one
// chromosome.  Records in a region that share a canonical motif form one
// Cluster; a region with several clusters holds repeats of different motifs
// that happen to overlap.
type Region struct {
	Chrom    string
	Start    int
	End      int
	Clusters []*Cluster
}

// CanonicalMotifs returns the canonical motif of each cluster, in cluster
// order.
func (r *Region) CanonicalMotifs() []string {
	return lo.Map(r.Clusters, func(c *Cluster, _ int) string { return c.Motif })
}

// Group partitions records into regions.  Chromosomes are visited in order of
// first appearance and records within a chromosome by start position; ties
// keep input order.  Clusters within a region are ordered by the position of
// their first record.
func Group(records []*record.Record, samples []string) []*Region {
	chromRank := map[string]int{}
	for _, r := range records {
		if _, ok := chromRank[r.Chrom]; !ok {
			chromRank[r.Chrom] = len(chromRank)
		}
	}
	sorted := append([]*record.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := chromRank[sorted[i].Chrom], chromRank[sorted[j].Chrom]
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Pos < sorted[j].Pos
	})

	var (
		regions []*Region
		cur     *Region
		byMotif map[string]*Cluster
	)
	for _, r := range sorted {
		if cur == nil || r.Chrom != cur.Chrom || r.Pos > cur.End {
			cur = &Region{Chrom: r.Chrom, Start: r.Pos, End: r.End}
			byMotif = map[string]*Cluster{}
			regions = append(regions, cur)
		}
		if r.End > cur.End {
			cur.End = r.End
		}
		motif := record.CanonicalMotif(r.Motif)
		if c, ok := byMotif[motif]; ok {
			c.Append(r)
			continue
		}
		c := New(samples, r)
		byMotif[motif] = c
		cur.Clusters = append(cur.Clusters, c)
	}
	return regions
}
