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

// Package cmd implements the evochora command-line toolbox: compile,
// run and disasm subcommands over the assembly compiler pipeline and the
// runtime VM core.
package cmd

import (
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but not when installing via
// "go install".
var Version string

var rootCmd = &cobra.Command{
	Use:   "evochora",
	Short: "A compiler and runtime for the evochora artificial-life platform.",
	Long:  "A compiler (assembly -> program artifact) and runtime (tick scheduler) for the evochora artificial-life platform.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			if Version != "" {
				log.Printf("evochora %s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				log.Printf("evochora %s", info.Main.Version)
			} else {
				log.Print("evochora (unknown version)")
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to happen
// once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}

func configureLogging(cmd *cobra.Command) *log.Logger {
	logger := log.New()
	if GetFlag(cmd, "verbose") {
		logger.SetLevel(log.DebugLevel)
	}
	//
	return logger
}
