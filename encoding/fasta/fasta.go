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

// Package fasta provides reference-genome lookups over FASTA data, either held
// in memory or read on demand through a samtools faidx index
// (http://www.htslib.org/doc/faidx.html).  FASTA files consist of named
// sequences that may be broken over several lines:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// The sequence name is the text after '>' up to the first space, so
// '>chr1 A viral sequence' names 'chr1'.
package fasta

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

const maxLineLen = 1 << 28

// Fasta is a set of named sequences.
type Fasta interface {
	// Get returns the bases of seqName in the 0-based half-open interval
	// [start, end).  Get is thread-safe.
	Get(seqName string, start, end uint64) (string, error)

	// Len returns the length of the given sequence.
	Len(seqName string) (uint64, error)

	// SeqNames returns the sequence names in file order.
	SeqNames() []string
}

type memFasta struct {
	seqs     map[string]string
	seqNames []string
}

// New reads all of r into memory.
func New(r io.Reader) (Fasta, error) {
	f := &memFasta{seqs: map[string]string{}}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineLen)
	var (
		name string
		seq  strings.Builder
	)
	flush := func() {
		f.seqs[name] = seq.String()
		f.seqNames = append(f.seqNames, name)
		seq.Reset()
	}
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] != '>' {
			if name == "" {
				return nil, errors.Errorf("fasta.New: sequence data before the first header")
			}
			seq.WriteString(line)
			continue
		}
		if name != "" {
			flush()
		}
		fields := strings.Fields(line[1:])
		if len(fields) == 0 {
			return nil, errors.Errorf("fasta.New: empty sequence name")
		}
		name = fields[0]
		if _, ok := f.seqs[name]; ok {
			return nil, errors.Errorf("fasta.New: duplicate sequence %s", name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "fasta.New")
	}
	if name != "" {
		flush()
	}
	return f, nil
}

func checkRange(seqName string, start, end, length uint64) error {
	if end <= start {
		return errors.Errorf("start must be less than end")
	}
	if end > length {
		return errors.Errorf("end is past end of sequence %s: %d", seqName, length)
	}
	return nil
}

// Get implements Fasta.Get.
func (f *memFasta) Get(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if err := checkRange(seqName, start, end, uint64(len(s))); err != nil {
		return "", err
	}
	return s[start:end], nil
}

// Len implements Fasta.Len.
func (f *memFasta) Len(seqName string) (uint64, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Fasta.SeqNames.
func (f *memFasta) SeqNames() []string {
	return f.seqNames
}

// Open opens the FASTA file at path.  If path+".fai" exists the file is read
// on demand through the index, otherwise it is loaded into memory.  The
// returned function releases the underlying file and must be called once the
// Fasta is no longer used.
func Open(ctx context.Context, path string) (Fasta, func() error, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "fasta.Open %s", path)
	}
	idx, err := file.Open(ctx, path+".fai")
	if err != nil {
		defer in.Close(ctx) // nolint: errcheck
		fa, err := New(in.Reader(ctx))
		return fa, func() error { return nil }, err
	}
	defer idx.Close(ctx) // nolint: errcheck
	fa, err := NewIndexed(in.Reader(ctx), idx.Reader(ctx))
	if err != nil {
		in.Close(ctx) // nolint: errcheck
		return nil, nil, err
	}
	return fa, func() error { return in.Close(ctx) }, nil
}
