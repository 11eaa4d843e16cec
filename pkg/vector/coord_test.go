// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package vector_test

import (
	"testing"

	"github.com/evochora/evochora/pkg/vector"
)

func TestAddSub(t *testing.T) {
	a := vector.New(1, 2, 3)
	b := vector.New(4, -1, 0)
	//
	sum := a.Add(b)
	if !sum.Equals(vector.New(5, 1, 3)) {
		t.Fatalf("Add: got %v", sum)
	}
	//
	diff := sum.Sub(b)
	if !diff.Equals(a) {
		t.Fatalf("Sub: got %v, want %v", diff, a)
	}
}

func TestScale(t *testing.T) {
	c := vector.New(1, -2, 3).Scale(3)
	if !c.Equals(vector.New(3, -6, 9)) {
		t.Fatalf("Scale: got %v", c)
	}
}

func TestIsZero(t *testing.T) {
	if !vector.Zero(3).IsZero() {
		t.Fatal("Zero(3) should be zero")
	}
	//
	if vector.New(0, 1).IsZero() {
		t.Fatal("New(0, 1) should not be zero")
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	c := vector.New(1, -2, 3)
	//
	s := c.String()
	if s != "1|-2|3" {
		t.Fatalf("String: got %q", s)
	}
	//
	got, err := vector.Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	//
	if !got.Equals(c) {
		t.Fatalf("Parse round trip: got %v, want %v", got, c)
	}
}

func TestParseRejectsMalformedComponent(t *testing.T) {
	if _, err := vector.Parse("1|x|3"); err == nil {
		t.Fatal("expected an error for a non-numeric component")
	}
}

func TestModWrapsNegativeIntoRange(t *testing.T) {
	shape := vector.New(8, 8)
	//
	got := vector.Mod(vector.New(-1, 9), shape)
	if !got.Equals(vector.New(7, 1)) {
		t.Fatalf("Mod: got %v", got)
	}
}

func TestShortestDeltaPrefersWraparound(t *testing.T) {
	shape := vector.New(10, 10)
	//
	// from 1 to 9 on a 10-wide toroidal axis: wrapping -2 is shorter than +8.
	got := vector.ShortestDelta(vector.New(1, 0), vector.New(9, 0), shape)
	if got[0] != -2 {
		t.Fatalf("ShortestDelta: got %v, want first component -2", got)
	}
}

func TestInBounds(t *testing.T) {
	shape := vector.New(4, 4)
	//
	if !vector.InBounds(vector.New(0, 0), shape) {
		t.Fatal("(0,0) should be in bounds")
	}
	//
	if vector.InBounds(vector.New(4, 0), shape) {
		t.Fatal("(4,0) should be out of bounds")
	}
	//
	if vector.InBounds(vector.New(-1, 0), shape) {
		t.Fatal("(-1,0) should be out of bounds")
	}
}

func TestLinearizeDelinearizeRoundTrip(t *testing.T) {
	shape := vector.New(3, 4, 5)
	//
	for _, c := range []vector.Coord{
		vector.New(0, 0, 0),
		vector.New(1, 2, 3),
		vector.New(2, 3, 4),
	} {
		idx := vector.Linearize(c, shape)
		got := vector.Delinearize(idx, shape)
		//
		if !got.Equals(c) {
			t.Fatalf("Linearize/Delinearize round trip: got %v, want %v (index %d)", got, c, idx)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := vector.New(1, 2)
	b := a.Clone()
	b[0] = 99
	//
	if a[0] == 99 {
		t.Fatal("Clone should not alias the original backing array")
	}
}
