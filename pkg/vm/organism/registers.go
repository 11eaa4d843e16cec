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

// Package organism implements organism state (spec.md §3, §4.11): register
// files, data/call stacks, IP/DV/DP state and procedure-call linkage.
package organism

import (
	"strconv"
	"strings"
)

// RegisterFile describes the size of each register bank for a simulation.
// Ranges: [0,NumDR) = DR, [NumDR,NumDR+NumPR) = PR, rest = FPR. LR uses a
// parallel, independently-sized index space.
type RegisterFile struct {
	NumDR  uint32
	NumPR  uint32
	NumFPR uint32
	NumLR  uint32
}

// RegisterID addresses a single register in the combined DR/PR/FPR space.
type RegisterID uint32

func (rf RegisterFile) prBase() uint32  { return rf.NumDR }
func (rf RegisterFile) fprBase() uint32 { return rf.NumDR + rf.NumPR }

// Bank identifies which physical register file an id falls into.
type Bank uint8

const (
	BankDR Bank = iota
	BankPR
	BankFPR
)

// Classify determines which bank a register id addresses and its offset
// within that bank.
func (rf RegisterFile) Classify(id RegisterID) (Bank, uint32) {
	v := uint32(id)
	//
	switch {
	case v < rf.prBase():
		return BankDR, v
	case v < rf.fprBase():
		return BankPR, v - rf.prBase()
	default:
		return BankFPR, v - rf.fprBase()
	}
}

// FPRID constructs the combined-space id for the kth FPR register.
func (rf RegisterFile) FPRID(k uint32) RegisterID {
	return RegisterID(rf.fprBase() + k)
}

// ParseRegisterName parses a raw register token ("%DR0", "%PR3", "%FPR1",
// "%LR0") into its bank and within-bank index. LR addresses a parallel index
// space and is reported separately via isLR.
func ParseRegisterName(name string) (bank Bank, index uint32, isLR bool, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "%")
	//
	var prefix string
	switch {
	case strings.HasPrefix(s, "FPR"):
		prefix = "FPR"
	case strings.HasPrefix(s, "DR"):
		prefix = "DR"
	case strings.HasPrefix(s, "PR"):
		prefix = "PR"
	case strings.HasPrefix(s, "LR"):
		prefix = "LR"
	default:
		return 0, 0, false, false
	}
	//
	digits := strings.TrimPrefix(s, prefix)
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, 0, false, false
	}
	//
	switch prefix {
	case "DR":
		return BankDR, uint32(n), false, true
	case "PR":
		return BankPR, uint32(n), false, true
	case "FPR":
		return BankFPR, uint32(n), false, true
	default: // LR
		return 0, uint32(n), true, true
	}
}

// ResolveRegisterID parses a raw register token into its combined-space id,
// per this register file's bank layout.
func (rf RegisterFile) ResolveRegisterID(name string) (id RegisterID, isLR bool, ok bool) {
	bank, index, isLR, ok := ParseRegisterName(name)
	if !ok || isLR {
		return 0, isLR, ok
	}
	//
	switch bank {
	case BankDR:
		return RegisterID(index), false, true
	case BankPR:
		return RegisterID(rf.prBase() + index), false, true
	default:
		return rf.FPRID(index), false, true
	}
}
