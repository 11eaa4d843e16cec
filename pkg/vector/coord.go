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

// Package vector provides the n-dimensional signed coordinate type shared by
// the compiler's layout/linker stages and the runtime environment.
package vector

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is a signed d-dimensional coordinate. Its length determines the
// dimensionality d of whichever grid it is used against.
type Coord []int32

// New constructs a coordinate from the given components.
func New(components ...int32) Coord {
	c := make(Coord, len(components))
	copy(c, components)
	return c
}

// Zero constructs the origin in d dimensions.
func Zero(d int) Coord {
	return make(Coord, d)
}

// Dims returns the dimensionality of this coordinate.
func (c Coord) Dims() int {
	return len(c)
}

// Clone returns an independent copy of this coordinate.
func (c Coord) Clone() Coord {
	n := make(Coord, len(c))
	copy(n, c)
	return n
}

// Add returns the componentwise sum of two coordinates of equal dimensionality.
func (c Coord) Add(o Coord) Coord {
	mustMatch(c, o)
	//
	r := make(Coord, len(c))
	for i := range c {
		r[i] = c[i] + o[i]
	}
	//
	return r
}

// Sub returns the componentwise difference c - o.
func (c Coord) Sub(o Coord) Coord {
	mustMatch(c, o)
	//
	r := make(Coord, len(c))
	for i := range c {
		r[i] = c[i] - o[i]
	}
	//
	return r
}

// Scale multiplies every component by a scalar factor.
func (c Coord) Scale(n int32) Coord {
	r := make(Coord, len(c))
	for i := range c {
		r[i] = c[i] * n
	}
	//
	return r
}

// Equals determines whether two coordinates are identical.
func (c Coord) Equals(o Coord) bool {
	if len(c) != len(o) {
		return false
	}
	//
	for i := range c {
		if c[i] != o[i] {
			return false
		}
	}
	//
	return true
}

// IsZero determines whether every component of this coordinate is zero.
func (c Coord) IsZero() bool {
	for _, v := range c {
		if v != 0 {
			return false
		}
	}
	//
	return true
}

// String renders a coordinate in the source vector-literal syntax "a|b|...".
func (c Coord) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	//
	return strings.Join(parts, "|")
}

// Parse is the inverse of String: it decodes a "a|b|..." vector literal back
// into a Coord. Used when a coordinate has been round-tripped through a
// string-keyed map (e.g. ProgramArtifact.MachineCodeLayout).
func Parse(s string) (Coord, error) {
	parts := strings.Split(s, "|")
	c := make(Coord, len(parts))
	//
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("vector: invalid component %q in %q", p, s)
		}
		//
		c[i] = int32(n)
	}
	//
	return c, nil
}

func mustMatch(a, b Coord) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("dimensionality mismatch: %d vs %d", len(a), len(b)))
	}
}

// Mod reduces each component of c into canonical [0,shape[i]) form, wrapping
// componentwise modulo shape. Used by toroidal environments.
func Mod(c Coord, shape Coord) Coord {
	mustMatch(c, shape)
	//
	r := make(Coord, len(c))
	for i := range c {
		m := shape[i]
		v := c[i] % m
		if v < 0 {
			v += m
		}
		r[i] = v
	}
	//
	return r
}

// ShortestDelta computes, for a toroidal grid of the given shape, the
// shortest signed per-component delta taking `from` to `to`: each component
// is reduced modulo the corresponding shape dimension to the representative
// in (-shape[i]/2, shape[i]/2].
func ShortestDelta(from, to, shape Coord) Coord {
	mustMatch(from, to)
	mustMatch(from, shape)
	//
	r := make(Coord, len(from))
	for i := range from {
		m := shape[i]
		d := (to[i] - from[i]) % m
		if d < 0 {
			d += m
		}
		// d is now in [0,m). Map to shortest signed representative.
		if m > 0 && d*2 > m {
			d -= m
		}
		r[i] = d
	}
	//
	return r
}

// InBounds determines whether c lies within [0,shape) componentwise.
func InBounds(c Coord, shape Coord) bool {
	mustMatch(c, shape)
	//
	for i := range c {
		if c[i] < 0 || c[i] >= shape[i] {
			return false
		}
	}
	//
	return true
}

// Linearize converts a coordinate into a single row-major linear index over
// the given shape: sum(c[i] * prod(shape[j] for j>i)).
func Linearize(c Coord, shape Coord) int64 {
	mustMatch(c, shape)
	//
	var (
		index  int64
		stride int64 = 1
	)
	//
	for i := len(c) - 1; i >= 0; i-- {
		index += int64(c[i]) * stride
		stride *= int64(shape[i])
	}
	//
	return index
}

// Delinearize is the inverse of Linearize: recovers the d-coordinate for a
// linear index over the given shape.
func Delinearize(index int64, shape Coord) Coord {
	r := make(Coord, len(shape))
	//
	for i := len(shape) - 1; i >= 0; i-- {
		m := int64(shape[i])
		r[i] = int32(index % m)
		index /= m
	}
	//
	return r
}
