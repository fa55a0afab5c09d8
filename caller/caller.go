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

// Package caller enumerates the tandem-repeat genotypers whose calls are
// combined into a consensus, and provides a small set type over them.
package caller

import (
	"fmt"
	"strings"
)

// Caller identifies the tool that produced a tandem-repeat record.
type Caller uint8

const (
	// AdVNTR is adVNTR.
	AdVNTR Caller = iota
	// ExpansionHunter is ExpansionHunter.
	ExpansionHunter
	// HipSTR is HipSTR.
	HipSTR
	// GangSTR is GangSTR.
	GangSTR

	// NumCallers is the number of known callers.
	NumCallers = 4
)

// Anchor is the caller trusted to tell apart alleles that have the same
// length but different sequences.  It is the only caller allowed to own more
// than one allele in an equivalence class.
const Anchor = HipSTR

var names = [NumCallers]string{"advntr", "eh", "hipstr", "gangstr"}

// String returns the lower-case short name of c, as used in raw-call strings.
func (c Caller) String() string {
	if int(c) < NumCallers {
		return names[c]
	}
	return fmt.Sprintf("caller(%d)", int(c))
}

// Parse is the inverse of Caller.String.  It also accepts the spelled-out
// "expansionhunter".
func Parse(s string) (Caller, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if s == name {
			return Caller(i), nil
		}
	}
	if s == "expansionhunter" {
		return ExpansionHunter, nil
	}
	return 0, fmt.Errorf("caller.Parse: unknown caller %q", s)
}

// Set is a set of callers.  The zero value is empty.
type Set uint8

// NewSet returns the set containing the given callers.
func NewSet(callers ...Caller) Set {
	var s Set
	s.Add(callers...)
	return s
}

// Add inserts callers into s.  Adding a member twice is a no-op.
func (s *Set) Add(callers ...Caller) {
	for _, c := range callers {
		*s |= 1 << c
	}
}

// Has reports whether c is in s.
func (s Set) Has(c Caller) bool {
	return s&(1<<c) != 0
}

// Union returns s ∪ o.
func (s Set) Union(o Set) Set {
	return s | o
}

// Len returns the number of callers in s.
func (s Set) Len() int {
	n := 0
	for c := Caller(0); c < NumCallers; c++ {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// Callers returns the members of s in enum order.
func (s Set) Callers() []Caller {
	var out []Caller
	for c := Caller(0); c < NumCallers; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String returns the comma-joined member names, or "." for the empty set.
func (s Set) String() string {
	if s == 0 {
		return "."
	}
	parts := make([]string, 0, NumCallers)
	for _, c := range s.Callers() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}
