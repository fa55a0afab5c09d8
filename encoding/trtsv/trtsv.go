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

// Package trtsv reads and writes harmonized tandem-repeat records as a
// long-format TSV with one row per (record, sample):
//
//	CALLER  CHROM  POS  END  MOTIF  REF  REF_CN  ALT  ALT_CN  SAMPLE  GT
//	hipstr  chr1   100  111  CAG    ...  4       ...  3,5     NA12878 0/1
//
// POS and END are 1-based inclusive.  ALT and ALT_CN are comma-separated, or
// "." when the record has no alternate alleles.  GT uses VCF syntax.  All
// rows of one record are contiguous; a record is identified by (CALLER,
// CHROM, POS).
package trtsv

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/trconsensus/caller"
	"github.com/grailbio/trconsensus/record"
	"github.com/klauspost/compress/gzip"
)

// Row is one line of the TSV.
type Row struct {
	Caller string `tsv:"CALLER"`
	Chrom  string `tsv:"CHROM"`
	Pos    int64  `tsv:"POS"`
	End    int64  `tsv:"END"`
	Motif  string `tsv:"MOTIF"`
	Ref    string `tsv:"REF"`
	RefCN  string `tsv:"REF_CN"`
	Alt    string `tsv:"ALT"`
	AltCN  string `tsv:"ALT_CN"`
	Sample string `tsv:"SAMPLE"`
	GT     string `tsv:"GT"`
}

func splitList(s string) []string {
	if s == "" || s == "." {
		return nil
	}
	return strings.Split(s, ",")
}

func joinList(s []string) string {
	if len(s) == 0 {
		return "."
	}
	return strings.Join(s, ",")
}

// newRecord converts the record-level columns of row.  Genotypes are filled
// in by the caller.
func newRecord(row *Row) (*record.Record, error) {
	c, err := caller.Parse(row.Caller)
	if err != nil {
		return nil, err
	}
	refCN, err := strconv.ParseFloat(row.RefCN, 64)
	if err != nil {
		return nil, errors.E(err, "REF_CN", row.RefCN)
	}
	r := &record.Record{
		Caller:    c,
		Chrom:     row.Chrom,
		Pos:       int(row.Pos),
		End:       int(row.End),
		Motif:     row.Motif,
		Ref:       row.Ref,
		RefCopies: refCN,
		Alts:      splitList(row.Alt),
	}
	for _, s := range splitList(row.AltCN) {
		cn, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.E(err, "ALT_CN", row.AltCN)
		}
		r.AltCopies = append(r.AltCopies, cn)
	}
	return r, nil
}

func sameRecord(r *record.Record, row *Row) bool {
	c, err := caller.Parse(row.Caller)
	return err == nil && r.Caller == c && r.Chrom == row.Chrom && int64(r.Pos) == row.Pos
}

// Read parses records from r.  samples lists every sample in order of first
// appearance; each record's Genotypes is aligned with it, with NoCall for
// samples the record has no row for.
func Read(r io.Reader) (records []*record.Record, samples []string, err error) {
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	tr.UseHeaderNames = true

	sampleIdx := map[string]int{}
	var (
		byRecord []map[int]record.Genotype
		cur      *record.Record
		line     = 1
	)
	for {
		var row Row
		if err = tr.Read(&row); err != nil {
			if err == io.EOF {
				err = nil
				break
			}
			return nil, nil, errors.E(err, "trtsv.Read: line", strconv.Itoa(line+1))
		}
		line++
		if cur == nil || !sameRecord(cur, &row) {
			if cur, err = newRecord(&row); err != nil {
				return nil, nil, errors.E(err, "trtsv.Read: line", strconv.Itoa(line))
			}
			records = append(records, cur)
			byRecord = append(byRecord, map[int]record.Genotype{})
		}
		idx, ok := sampleIdx[row.Sample]
		if !ok {
			idx = len(samples)
			sampleIdx[row.Sample] = idx
			samples = append(samples, row.Sample)
		}
		g, err := record.ParseGenotype(row.GT)
		if err != nil {
			return nil, nil, errors.E(err, "trtsv.Read: line", strconv.Itoa(line))
		}
		gts := byRecord[len(byRecord)-1]
		if _, dup := gts[idx]; dup {
			return nil, nil, errors.E("trtsv.Read: line", strconv.Itoa(line), ": duplicate sample", row.Sample)
		}
		gts[idx] = g
	}
	for i, rec := range records {
		rec.Genotypes = make([]record.Genotype, len(samples))
		for idx, g := range byRecord[i] {
			rec.Genotypes[idx] = g
		}
	}
	return records, samples, nil
}

// ReadFile reads records from path, which may be gzip-compressed.
func ReadFile(ctx context.Context, path string) (records []*record.Record, samples []string, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.E(err, "trtsv.ReadFile", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, nil, errors.E(err, "trtsv.ReadFile", path)
		}
		defer gz.Close() // nolint: errcheck
		reader = gz
	}
	return Read(reader)
}

// Write writes records in the format read by Read.  No-call genotypes are
// written as "."; every record gets a row for every sample.
func Write(w io.Writer, records []*record.Record, samples []string) error {
	tw := tsv.NewRowWriter(w)
	for _, r := range records {
		altCN := make([]string, len(r.AltCopies))
		for i, cn := range r.AltCopies {
			altCN[i] = record.FormatCopies(cn)
		}
		row := Row{
			Caller: r.Caller.String(),
			Chrom:  r.Chrom,
			Pos:    int64(r.Pos),
			End:    int64(r.End),
			Motif:  r.Motif,
			Ref:    r.Ref,
			RefCN:  record.FormatCopies(r.RefCopies),
			Alt:    joinList(r.Alts),
			AltCN:  joinList(altCN),
		}
		for i, s := range samples {
			row.Sample = s
			row.GT = "."
			if i < len(r.Genotypes) {
				row.GT = r.Genotypes[i].String()
			}
			if err := tw.Write(&row); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}
