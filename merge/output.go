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
package merge

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/trconsensus/resolve"
)

const (
	callsHeader       = "#CHROM\tPOS\tEND\tMOTIF\tREF\tSAMPLE\tGT_CN\tALLELES\tSUPPORT\tCERTAIN\tCOMPONENTS\tRAW_CALLS"
	diagnosticsHeader = "#CHROM\tPOS\tEND\tMOTIF\tCALLERS\tNODES\tEDGES\tCOMPONENTS\tSINGULARITY\tCONFUSION\tDIVERGENCE"
)

// output is a TSV destination, BGZF-compressed when the path ends in ".gz".
type output struct {
	f    file.File
	bgzf *bgzf.Writer
	w    *tsv.Writer
}

func createOutput(ctx context.Context, path, header string, parallelism int) (*output, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	o := &output{f: f}
	var w io.Writer = f.Writer(ctx)
	if strings.HasSuffix(path, ".gz") {
		o.bgzf = bgzf.NewWriter(w, parallelism)
		w = o.bgzf
	}
	o.w = tsv.NewWriter(w)
	o.w.WriteString(header)
	if err := o.w.EndLine(); err != nil {
		f.Close(ctx) // nolint: errcheck
		return nil, err
	}
	return o, nil
}

func (o *output) close(ctx context.Context) error {
	err := o.w.Flush()
	if o.bgzf != nil {
		if e := o.bgzf.Close(); e != nil && err == nil {
			err = e
		}
	}
	if e := o.f.Close(ctx); e != nil && err == nil {
		err = e
	}
	return err
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}

// writeCalls appends one line per sample of a resolved cluster.
func writeCalls(w *tsv.Writer, r *resolve.Resolver) error {
	c := r.Cluster()
	ref := orDot(r.RefAllele())
	for i := range r.Results() {
		res := r.Result(i)
		w.WriteString(c.Chrom)
		w.WriteUint32(uint32(c.Start))
		w.WriteUint32(uint32(c.End))
		w.WriteString(c.Motif)
		w.WriteString(ref)
		w.WriteString(res.Sample)
		w.WriteString(res.Genotype())
		seqs := make([]string, len(res.Alleles))
		for j, pa := range res.Alleles {
			seqs[j] = pa.Sequence
		}
		w.WriteString(orDot(strings.Join(seqs, "/")))
		w.WriteString(res.Support())
		if res.Certain {
			w.WriteString("1")
		} else {
			w.WriteString("0")
		}
		ids := make([]string, len(res.ComponentIDs))
		for j, id := range res.ComponentIDs {
			ids[j] = id.String()
		}
		w.WriteString(orDot(strings.Join(ids, ",")))
		w.WriteString(res.RawCalls)
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// writeDiagnostics appends the graph statistics of a resolved cluster.
func writeDiagnostics(w *tsv.Writer, r *resolve.Resolver) error {
	c, g := r.Cluster(), r.Graph()
	callers := c.Callers()
	w.WriteString(c.Chrom)
	w.WriteUint32(uint32(c.Start))
	w.WriteUint32(uint32(c.End))
	w.WriteString(c.Motif)
	w.WriteString(callers.String())
	w.WriteUint32(uint32(g.NumNodes()))
	w.WriteUint32(uint32(g.NumEdges()))
	w.WriteUint32(uint32(len(g.Components())))
	w.WriteString(formatScore(g.SingularityScore()))
	w.WriteString(formatScore(g.ConfusionScore()))
	w.WriteUint32(uint32(g.MaxDivergence()))
	return w.EndLine()
}
