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
package caller_test

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/trconsensus/caller"
)

func TestParse(t *testing.T) {
	for c := caller.Caller(0); c < caller.NumCallers; c++ {
		got, err := caller.Parse(c.String())
		assert.NoError(t, err)
		expect.EQ(t, got, c)
	}
	got, err := caller.Parse("ExpansionHunter")
	assert.NoError(t, err)
	expect.EQ(t, got, caller.ExpansionHunter)
	got, err = caller.Parse(" HipSTR ")
	assert.NoError(t, err)
	expect.EQ(t, got, caller.HipSTR)

	_, err = caller.Parse("popstr")
	expect.NotNil(t, err)
}

func TestSet(t *testing.T) {
	var s caller.Set
	expect.EQ(t, s.Len(), 0)
	expect.EQ(t, s.String(), ".")

	s.Add(caller.GangSTR, caller.AdVNTR)
	s.Add(caller.GangSTR)
	expect.EQ(t, s.Len(), 2)
	expect.True(t, s.Has(caller.AdVNTR))
	expect.False(t, s.Has(caller.HipSTR))
	expect.EQ(t, s.Callers(), []caller.Caller{caller.AdVNTR, caller.GangSTR})
	expect.EQ(t, s.String(), "advntr,gangstr")

	u := s.Union(caller.NewSet(caller.HipSTR, caller.AdVNTR))
	expect.EQ(t, u.Len(), 3)
	expect.EQ(t, u.String(), "advntr,hipstr,gangstr")
	// Union does not modify the receiver.
	expect.EQ(t, s.Len(), 2)
}
