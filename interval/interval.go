package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
)

// PosType is the coordinate type.
type PosType int32

const posTypeMax = math.MaxInt32

// Entry represents a single interval, with 0-based half-open coordinates.
type Entry struct {
	ChrName string
	Start0  PosType
	End     PosType
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries.  The interval
// [0, posTypeMax - 1) is returned if there is no positional restriction.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result = Entry{ChrName: region, Start0: 0, End: posTypeMax - 1}
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.ChrName = region[:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	first, last := rangeStr, rangeStr
	if dashPos := strings.IndexByte(rangeStr, '-'); dashPos != -1 {
		first, last = rangeStr[:dashPos], rangeStr[dashPos+1:]
	}
	var start1, end int64
	if start1, err = strconv.ParseInt(first, 10, 32); err != nil {
		return
	}
	if end, err = strconv.ParseInt(last, 10, 32); err != nil {
		return
	}
	if start1 <= 0 || end < start1 || end >= posTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range %v", rangeStr)
		return
	}
	result.Start0 = PosType(start1 - 1)
	result.End = PosType(end)
	return
}

// ParseRegions parses a whitespace-separated list of region strings.
func ParseRegions(regions string) ([]Entry, error) {
	var entries []Entry
	for _, r := range strings.Fields(regions) {
		e, err := ParseRegionString(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReadBED reads the first three columns of a BED file.  Header lines
// ("#", "track", "browser") and blank lines are skipped.
func ReadBED(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") || fields[0] == "track" || fields[0] == "browser" {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("interval.ReadBED: line %d has %d columns", lineIdx, len(fields))
		}
		start0, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("interval.ReadBED: line %d: %v", lineIdx, err)
		}
		end, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("interval.ReadBED: line %d: %v", lineIdx, err)
		}
		if start0 < 0 || end < start0 {
			return nil, fmt.Errorf("interval.ReadBED: line %d: invalid interval [%d, %d)", lineIdx, start0, end)
		}
		entries = append(entries, Entry{ChrName: fields[0], Start0: PosType(start0), End: PosType(end)})
	}
	return entries, scanner.Err()
}

// ReadBEDFile is a wrapper for ReadBED that takes a path, which may be
// gzip-compressed.
func ReadBEDFile(ctx context.Context, path string) (entries []Entry, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, infile, &err)
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return ReadBED(reader)
}

// Union is a set of merged intervals.  For each contig it stores the sorted
// interval endpoints {start0, end, start0, end, ...}; an even index starts an
// interval and an odd index ends it.
type Union struct {
	endpoints map[string][]PosType
}

// NewUnion merges entries, which need not be sorted, into a Union.
// Overlapping and abutting intervals are combined.
func NewUnion(entries []Entry) Union {
	byChr := map[string][]Entry{}
	for _, e := range entries {
		if e.End > e.Start0 {
			byChr[e.ChrName] = append(byChr[e.ChrName], e)
		}
	}
	u := Union{endpoints: make(map[string][]PosType, len(byChr))}
	for chr, es := range byChr {
		sort.Slice(es, func(i, j int) bool { return es[i].Start0 < es[j].Start0 })
		var ep []PosType
		for _, e := range es {
			if n := len(ep); n > 0 && e.Start0 <= ep[n-1] {
				if e.End > ep[n-1] {
					ep[n-1] = e.End
				}
				continue
			}
			ep = append(ep, e.Start0, e.End)
		}
		u.endpoints[chr] = ep
	}
	return u
}

// Empty reports whether u contains no positions.
func (u Union) Empty() bool {
	return len(u.endpoints) == 0
}

// Intersects reports whether [start0, end) overlaps the union on contig chr.
func (u Union) Intersects(chr string, start0, end PosType) bool {
	ep := u.endpoints[chr]
	idx := sort.Search(len(ep), func(i int) bool { return ep[i] > start0 })
	if idx&1 == 1 {
		return true
	}
	return idx < len(ep) && ep[idx] < end
}
