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
package record

import "strings"

var complement = [256]byte{
	'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'N': 'N',
}

// reverseComplement returns the reverse complement of an upper-case DNA
// sequence.  Bases other than ACGTN map to N.
func reverseComplement(seq string) string {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		b := complement[seq[len(seq)-1-i]]
		if b == 0 {
			b = 'N'
		}
		out[i] = b
	}
	return string(out)
}

// CanonicalMotif returns the lexicographically smallest rotation of the
// repeat unit or of its reverse complement.  Records describing the same
// repeat with shifted or opposite-strand motifs share a canonical motif, e.g.
// CAG, AGC, GCA, CTG, TGC and GCT all map to AGC.
func CanonicalMotif(motif string) string {
	motif = strings.ToUpper(motif)
	if motif == "" {
		return ""
	}
	best := ""
	for _, m := range []string{motif, reverseComplement(motif)} {
		for i := range m {
			rot := m[i:] + m[:i]
			if best == "" || rot < best {
				best = rot
			}
		}
	}
	return best
}
