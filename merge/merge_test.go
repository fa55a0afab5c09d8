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
package merge_test

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/trconsensus/merge"
	"github.com/klauspost/compress/gzip"
)

const (
	refFasta = ">chr1 test contig\nGGGGGTCACA\nCAGGGGG\n>chr2\nAAAAAAAAAAAAAAAAAAAA\n"

	records = "CALLER\tCHROM\tPOS\tEND\tMOTIF\tREF\tREF_CN\tALT\tALT_CN\tSAMPLE\tGT\n" +
		"hipstr\tchr1\t7\t12\tCA\tCACACA\t3\tCACACACA\t4\tS1\t0/1\n" +
		"hipstr\tchr1\t7\t12\tCA\tCACACA\t3\tCACACACA\t4\tS2\t1/1\n" +
		"hipstr\tchr1\t7\t12\tCA\tCACACA\t3\tCACACACA\t4\tS3\t.\n" +
		"eh\tchr1\t6\t12\tAC\tTCACACA\t3\tTCACACACA\t4\tS1\t0/1\n" +
		"eh\tchr1\t6\t12\tAC\tTCACACA\t3\tTCACACACA\t4\tS2\t1|1\n" +
		"eh\tchr1\t6\t12\tAC\tTCACACA\t3\tTCACACACA\t4\tS3\t.\n" +
		"hipstr\tchr2\t5\t10\tA\tAAAAAA\t6\t.\t.\tS1\t0/0\n" +
		"hipstr\tchr2\t6\t10\tA\tAAAAA\t5\t.\t.\tS1\t0/0\n"

	wantCalls = "#CHROM\tPOS\tEND\tMOTIF\tREF\tSAMPLE\tGT_CN\tALLELES\tSUPPORT\tCERTAIN\tCOMPONENTS\tRAW_CALLS\n" +
		"chr1\t6\t12\tAC\tTCACACA\tS1\t3/4\tTCACACA/TCACACACA\teh,hipstr/eh,hipstr\t1\tcc0,cc1\teh=3,4|hipstr=3,4\n" +
		"chr1\t6\t12\tAC\tTCACACA\tS2\t4/4\tTCACACACA/TCACACACA\teh,hipstr/eh,hipstr\t1\tcc1,cc1\teh=4,4|hipstr=4,4\n" +
		"chr1\t6\t12\tAC\tTCACACA\tS3\t.\t.\t.\t1\t.\teh=.|hipstr=.\n"
)

func setup(t *testing.T) (dir, recordsPath, fastaPath string, cleanup func()) {
	dir, cleanup = testutil.TempDir(t, "", "")
	recordsPath = filepath.Join(dir, "records.tsv")
	fastaPath = filepath.Join(dir, "ref.fa")
	assert.NoError(t, ioutil.WriteFile(recordsPath, []byte(records), 0644))
	assert.NoError(t, ioutil.WriteFile(fastaPath, []byte(refFasta), 0644))
	return
}

func TestRun(t *testing.T) {
	dir, recordsPath, fastaPath, cleanup := setup(t)
	defer cleanup()
	outPath := filepath.Join(dir, "out.tsv")
	diagPath := filepath.Join(dir, "diag.tsv")

	opts := merge.DefaultOpts
	opts.Diagnostics = diagPath
	opts.Parallelism = 2
	stats, err := merge.Run(vcontext.Background(), recordsPath, fastaPath, outPath, &opts)
	assert.NoError(t, err)
	expect.EQ(t, stats, merge.Stats{
		Records:  4,
		Regions:  2,
		Clusters: 2,
		Resolved: 1,
		Skipped:  1,
		Calls:    3,
	})

	got, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	expect.EQ(t, string(got), wantCalls)

	diag, err := ioutil.ReadFile(diagPath)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(diag), "\n"), "\n")
	assert.EQ(t, len(lines), 2)
	expect.EQ(t, lines[1], "chr1\t6\t12\tAC\teh,hipstr\t4\t2\t2\t1.0000\t1.0000\t0")
}

func TestRunRegion(t *testing.T) {
	dir, recordsPath, fastaPath, cleanup := setup(t)
	defer cleanup()
	outPath := filepath.Join(dir, "out.tsv")

	opts := merge.DefaultOpts
	opts.Region = "chr2"
	stats, err := merge.Run(vcontext.Background(), recordsPath, fastaPath, outPath, &opts)
	assert.NoError(t, err)
	expect.EQ(t, stats.Filtered, 2)
	expect.EQ(t, stats.Skipped, 1)
	expect.EQ(t, stats.Resolved, 0)

	got, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	expect.EQ(t, strings.Count(string(got), "\n"), 1)

	opts.BedPath = filepath.Join(dir, "regions.bed")
	_, err = merge.Run(vcontext.Background(), recordsPath, fastaPath, outPath, &opts)
	expect.NotNil(t, err)
}

func TestRunBGZF(t *testing.T) {
	dir, recordsPath, fastaPath, cleanup := setup(t)
	defer cleanup()
	bedPath := filepath.Join(dir, "regions.bed")
	assert.NoError(t, ioutil.WriteFile(bedPath, []byte("chr1\t0\t7\n"), 0644))
	outPath := filepath.Join(dir, "out.tsv.gz")

	opts := merge.DefaultOpts
	opts.BedPath = bedPath
	stats, err := merge.Run(vcontext.Background(), recordsPath, fastaPath, outPath, &opts)
	assert.NoError(t, err)
	expect.EQ(t, stats.Resolved, 1)

	compressed, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	assert.NoError(t, err)
	got, err := ioutil.ReadAll(gz)
	assert.NoError(t, err)
	expect.EQ(t, string(got), wantCalls)
}

func TestRunErrors(t *testing.T) {
	dir, recordsPath, fastaPath, cleanup := setup(t)
	defer cleanup()
	outPath := filepath.Join(dir, "out.tsv")
	opts := merge.DefaultOpts

	_, err := merge.Run(vcontext.Background(), filepath.Join(dir, "missing.tsv"), fastaPath, outPath, &opts)
	expect.NotNil(t, err)

	// chr1 is absent from this reference, so padding fails.
	otherFasta := filepath.Join(dir, "other.fa")
	assert.NoError(t, ioutil.WriteFile(otherFasta, []byte(">chrX\nACGT\n"), 0644))
	_, err = merge.Run(vcontext.Background(), recordsPath, otherFasta, outPath, &opts)
	expect.NotNil(t, err)

	// Size deltas do not depend on padding, so the alleles still meet in the
	// same components without a reference.
	stats, err := merge.Run(vcontext.Background(), recordsPath, "", outPath, &opts)
	assert.NoError(t, err)
	expect.EQ(t, stats.Resolved, 1)
}
