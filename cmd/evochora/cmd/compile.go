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
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evochora/evochora/pkg/artifact"
	"github.com/evochora/evochora/pkg/compiler/emitter"
	"github.com/evochora/evochora/pkg/compiler/ir"
	"github.com/evochora/evochora/pkg/compiler/layout"
	"github.com/evochora/evochora/pkg/compiler/lexer"
	"github.com/evochora/evochora/pkg/compiler/linker"
	"github.com/evochora/evochora/pkg/compiler/parser"
	"github.com/evochora/evochora/pkg/compiler/preprocessor"
	"github.com/evochora/evochora/pkg/compiler/semantic"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/source"
	"github.com/evochora/evochora/pkg/vm/organism"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] source_file",
	Short: "compile an assembly source file into a program artifact.",
	Long: `Compile a single evochora assembly source file through the full pipeline
(lex -> preprocess -> parse -> semantic analysis -> lower -> layout -> link -> emit)
and write the resulting program artifact to disk.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := configureLogging(cmd)
		//
		art, err := compileFile(cmd, args[0], logger)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		bytes, err := art.MarshalBinary()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		output := GetString(cmd, "output")
		if err := os.WriteFile(output, bytes, 0644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		logger.WithFields(log.Fields{"output": output, "program_id": art.ProgramID}).Info("compiled")
	},
}

func compileFile(cmd *cobra.Command, path string, logger *log.Logger) (*artifact.ProgramArtifact, error) {
	shape, err := parseShape(GetString(cmd, "shape"))
	if err != nil {
		return nil, err
	}
	toroidal := GetFlag(cmd, "toroidal")
	//
	rf := organism.RegisterFile{
		NumDR:  uint32(GetUint(cmd, "dr")),
		NumPR:  uint32(GetUint(cmd, "pr")),
		NumFPR: uint32(GetUint(cmd, "fpr")),
		NumLR:  uint32(GetUint(cmd, "lr")),
	}
	//
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	//
	file := source.NewFile(path, raw)
	//
	tokens, diags := lexer.Lex(file)
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	//
	baseDir := filepath.Dir(path)
	tokens, diags = preprocessor.Process(tokens, baseDir, os.ReadFile)
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	//
	logger.WithField("tokens", len(tokens)).Debug("lexed and preprocessed")
	//
	prog, aliases, procs, diags := parser.Parse(tokens)
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	//
	sem, diags := semantic.Analyze(prog, aliases, procs, isa.Default())
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	//
	lowered, diags := ir.Lower(prog, aliases, rf)
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	//
	lay, diags := layout.Run(lowered, isa.Default(), shape, toroidal)
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	//
	linked, diags := linker.Link(lowered, lay, shape, toroidal)
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	//
	art, diags := emitter.Emit(linked, lay, sem, aliases, isa.Default())
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	//
	return art, nil
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "a.evo", "specify output artifact file")
	compileCmd.Flags().String("shape", "64,64", "comma-separated world shape the program is laid out against")
	compileCmd.Flags().Bool("toroidal", true, "whether the world wraps at its boundaries")
	compileCmd.Flags().Uint("dr", 8, "number of data registers per organism")
	compileCmd.Flags().Uint("pr", 8, "number of procedure-local registers per organism")
	compileCmd.Flags().Uint("fpr", 8, "number of formal-parameter registers per organism")
	compileCmd.Flags().Uint("lr", 4, "number of location registers per organism")
	compileCmd.MarkFlagRequired("output")
}
