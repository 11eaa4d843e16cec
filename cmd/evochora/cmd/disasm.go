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
package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/evochora/evochora/pkg/artifact"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/word"
)

// listingWidth returns the usable column width for the operand listing: the
// real terminal width when stdout is a terminal (the same term.GetSize/
// term.IsTerminal pair the teacher's termio.Terminal uses to size its
// widgets), or a fixed fallback when output is redirected to a file or pipe.
func listingWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 100
	}
	//
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 100
	}
	//
	return w
}

var disasmCmd = &cobra.Command{
	Use:   "disasm [flags] artifact_file",
	Short: "disassemble a program artifact's machine code layout.",
	Long: `Walk a program artifact's laid-out machine code in address order and print
one line per decoded instruction. The ISA registry has no catalog-wide
iterator (spec.md §4.9 opcodes are looked up by id/mnemonic only), so
decoding always proceeds forward from address 0, the same way the runtime
itself fetches instructions.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := disasmArtifact(args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func disasmArtifact(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	//
	var art artifact.ProgramArtifact
	if err := art.UnmarshalBinary(raw); err != nil {
		return err
	}
	//
	addrs := make([]int64, 0, len(art.LinearToCoord))
	for addr := range art.LinearToCoord {
		addrs = append(addrs, addr)
	}
	//
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	//
	dims := art.Shape.Dims()
	reg := isa.Default()
	width := listingWidth()
	const prefixWidth = 28 // "%6d %-20s " column budget
	//
	at := func(addr int64) (word.Molecule, bool) {
		coord, ok := art.LinearToCoord[addr]
		if !ok {
			return word.Molecule{}, false
		}
		//
		m, ok := art.MachineCodeLayout[coord.String()]
		return m, ok
	}
	//
	i := 0
	for i < len(addrs) {
		addr := addrs[i]
		coord := art.LinearToCoord[addr]
		m, ok := art.MachineCodeLayout[coord.String()]
		if !ok || m.Type != word.CODE {
			fmt.Printf("%6d %-20s %s\n", addr, coord.String(), dataWord(m))
			i++
			continue
		}
		//
		op, ok := reg.ByID(m.Value)
		if !ok {
			fmt.Printf("%6d %-20s <unknown opcode %d>\n", addr, coord.String(), m.Value)
			i++
			continue
		}
		//
		operandLen := op.Signature.Length(dims)
		if op.Mnemonic == isa.CallMnemonic {
			argc := 0
			if av, ok := at(addr + 1); ok {
				argc = int(av.Value)
			}
			//
			operandLen = 1 + dims + argc
		}
		//
		words := make([]string, 0, operandLen)
		for k := 1; k <= operandLen; k++ {
			wv, ok := at(addr + int64(k))
			if !ok {
				words = append(words, "?")
				continue
			}
			//
			words = append(words, dataWord(wv))
		}
		//
		fmt.Printf("%6d %-20s %s %s\n", addr, coord.String(), op.Mnemonic, wrapOperands(words, width-prefixWidth))
		//
		i += 1 + operandLen
	}
	//
	return nil
}

// wrapOperands joins operand words with a single space, folding onto
// continuation lines indented past the listing's address/coord columns once
// the joined line would exceed budget. A non-positive budget (width detection
// failed, or the terminal is narrower than the fixed columns) disables
// wrapping rather than producing a degenerate zero-width line.
func wrapOperands(words []string, budget int) string {
	if budget <= 0 {
		return strings.Join(words, " ")
	}
	//
	indent := strings.Repeat(" ", 28)
	var b strings.Builder
	lineLen := 0
	//
	for i, w := range words {
		sep := " "
		if i == 0 {
			sep = ""
		}
		//
		if lineLen > 0 && lineLen+len(sep)+len(w) > budget {
			b.WriteString("\n")
			b.WriteString(indent)
			sep = ""
			lineLen = 0
		}
		//
		b.WriteString(sep)
		b.WriteString(w)
		lineLen += len(sep) + len(w)
	}
	//
	return b.String()
}

func dataWord(m word.Molecule) string {
	switch m.Type {
	case word.CODE:
		return fmt.Sprintf("CODE:%d", m.Value)
	case word.DATA:
		return fmt.Sprintf("DATA:%d", m.Value)
	case word.ENERGY:
		return fmt.Sprintf("ENERGY:%d", m.Value)
	case word.STRUCTURE:
		return fmt.Sprintf("STRUCTURE:%d", m.Value)
	default:
		return fmt.Sprintf("?:%d", m.Value)
	}
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}
