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
package fasta

import (
	"io"
	"sync"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// faiRow is one line of a .fai index: "<name>\t<length>\t<byte
// offset>\t<bases per line>\t<bytes per line>".
type faiRow struct {
	Name      string
	Length    int64
	Offset    int64
	LineBases int64
	LineWidth int64
}

type faiEntry struct {
	Length    uint64
	Offset    uint64
	LineBases uint64
	LineWidth uint64
}

type indexedFasta struct {
	entries  map[string]faiEntry
	seqNames []string

	mu  sync.Mutex
	r   io.ReadSeeker
	buf []byte
}

// NewIndexed returns a Fasta that seeks into r for every lookup, using the
// faidx index read from index.  Nothing but the index is held in memory.
func NewIndexed(r io.ReadSeeker, index io.Reader) (Fasta, error) {
	f := &indexedFasta{entries: map[string]faiEntry{}, r: r}
	tr := tsv.NewReader(index)
	for {
		var row faiRow
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(err, "fasta.NewIndexed: bad index line")
		}
		if row.Length < 0 || row.Offset < 0 || row.LineBases <= 0 || row.LineWidth < row.LineBases {
			return nil, errors.Errorf("fasta.NewIndexed: bad index entry for %s", row.Name)
		}
		f.entries[row.Name] = faiEntry{
			Length:    uint64(row.Length),
			Offset:    uint64(row.Offset),
			LineBases: uint64(row.LineBases),
			LineWidth: uint64(row.LineWidth),
		}
		f.seqNames = append(f.seqNames, row.Name)
	}
	return f, nil
}

// Len implements Fasta.Len.
func (f *indexedFasta) Len(seqName string) (uint64, error) {
	ent, ok := f.entries[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found in index: %s", seqName)
	}
	return ent.Length, nil
}

// SeqNames implements Fasta.SeqNames.
func (f *indexedFasta) SeqNames() []string {
	return f.seqNames
}

// fileOffset maps a 0-based base position to its byte offset in the file.
func (ent faiEntry) fileOffset(pos uint64) uint64 {
	return ent.Offset + (pos/ent.LineBases)*ent.LineWidth + pos%ent.LineBases
}

// Get implements Fasta.Get.
func (f *indexedFasta) Get(seqName string, start, end uint64) (string, error) {
	ent, ok := f.entries[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found in index: %s", seqName)
	}
	if err := checkRange(seqName, start, end, ent.Length); err != nil {
		return "", err
	}
	first := ent.fileOffset(start)
	n := ent.fileOffset(end-1) + 1 - first

	f.mu.Lock()
	defer f.mu.Unlock()
	if uint64(cap(f.buf)) < n {
		f.buf = make([]byte, n)
	}
	buf := f.buf[:n]
	if _, err := f.r.Seek(int64(first), io.SeekStart); err != nil {
		return "", errors.Wrapf(err, "fasta: seek to %d", first)
	}
	if _, err := io.ReadFull(f.r, buf); err != nil {
		return "", errors.Wrapf(err, "fasta: read %s:%d-%d (bad index?)", seqName, start, end)
	}
	// Drop line terminators, which sit at line positions >= LineBases.
	out := make([]byte, 0, end-start)
	linePos := (first - ent.Offset) % ent.LineWidth
	for _, b := range buf {
		if linePos < ent.LineBases {
			out = append(out, b)
		}
		if linePos++; linePos == ent.LineWidth {
			linePos = 0
		}
	}
	return string(out), nil
}
