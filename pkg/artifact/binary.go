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
package artifact

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
)

// EVOBINARY is the 8-byte magic identifier marking an evochora artifact
// file, read without a full gob decode so corrupted/foreign files are
// rejected early.
var EVOBINARY = [8]byte{'e', 'v', 'o', 'c', 'h', 'o', 'r', 'a'}

// ARTIFACT_MAJOR_VERSION must match exactly for a file to be considered
// compatible.
const ARTIFACT_MAJOR_VERSION uint16 = 1

// ARTIFACT_MINOR_VERSION is the current minor version; files with a lower
// minor version remain readable.
const ARTIFACT_MINOR_VERSION uint16 = 0

// MarshalBinary encodes the header (magic + version) followed by a
// gob-encoded ProgramArtifact. The header is hand-rolled so the magic and
// version can be read without paying for a full gob decode.
func (a *ProgramArtifact) MarshalBinary() ([]byte, error) {
	var (
		buf        bytes.Buffer
		majorBytes [2]byte
		minorBytes [2]byte
	)
	binary.BigEndian.PutUint16(majorBytes[:], ARTIFACT_MAJOR_VERSION)
	binary.BigEndian.PutUint16(minorBytes[:], ARTIFACT_MINOR_VERSION)
	//
	buf.Write(EVOBINARY[:])
	buf.Write(majorBytes[:])
	buf.Write(minorBytes[:])
	//
	// plain has the same fields but no methods, so gob does not call back
	// into MarshalBinary.
	type plain ProgramArtifact
	if err := gob.NewEncoder(&buf).Encode((*plain)(a)); err != nil {
		return nil, err
	}
	//
	return buf.Bytes(), nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (a *ProgramArtifact) UnmarshalBinary(data []byte) error {
	if len(data) < 12 {
		return errors.New("malformed artifact file")
	}
	//
	var magic [8]byte
	copy(magic[:], data[:8])
	if magic != EVOBINARY {
		return errors.New("not an evochora artifact file")
	}
	//
	major := binary.BigEndian.Uint16(data[8:10])
	minor := binary.BigEndian.Uint16(data[10:12])
	if major != ARTIFACT_MAJOR_VERSION || minor > ARTIFACT_MINOR_VERSION {
		return fmt.Errorf("incompatible artifact file v%d.%d (expected v%d.%d)", major, minor, ARTIFACT_MAJOR_VERSION, ARTIFACT_MINOR_VERSION)
	}
	//
	type plain ProgramArtifact
	return gob.NewDecoder(bytes.NewReader(data[12:])).Decode((*plain)(a))
}
