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
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evochora/evochora/pkg/artifact"
	"github.com/evochora/evochora/pkg/isa"
	"github.com/evochora/evochora/pkg/pipeline"
	"github.com/evochora/evochora/pkg/vector"
	"github.com/evochora/evochora/pkg/vm/energy"
	"github.com/evochora/evochora/pkg/vm/environment"
	"github.com/evochora/evochora/pkg/vm/organism"
	"github.com/evochora/evochora/pkg/vm/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] artifact_file",
	Short: "run a compiled program artifact for a fixed number of ticks.",
	Long: `Load a program artifact, seed one organism at its start coordinate, and
drive the plan/resolve/commit tick loop for a fixed number of ticks,
optionally streaming per-tick snapshots to a JSONL trace file.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := configureLogging(cmd)
		//
		if err := runArtifact(cmd, args[0], logger); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func runArtifact(cmd *cobra.Command, path string, logger *log.Logger) error {
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
	env := environment.New(art.Shape, art.Toroidal)
	//
	for addr, coord := range art.LinearToCoord {
		_ = addr
		m, ok := art.MachineCodeLayout[coord.String()]
		if ok {
			env.Set(coord, m)
		}
	}
	//
	for key, m := range art.InitialWorldObjects {
		coord, err := vector.Parse(key)
		if err != nil {
			return err
		}
		//
		env.Set(coord, m)
	}
	//
	rf := organism.RegisterFile{
		NumDR:  uint32(GetUint(cmd, "dr")),
		NumPR:  uint32(GetUint(cmd, "pr")),
		NumFPR: uint32(GetUint(cmd, "fpr")),
		NumLR:  uint32(GetUint(cmd, "lr")),
	}
	//
	start, dv := vector.Zero(art.Shape.Dims()), vector.Zero(art.Shape.Dims())
	dv[0] = 1
	if s := GetString(cmd, "start"); s != "" {
		if start, err = parseShape(s); err != nil {
			return err
		}
	}
	if s := GetString(cmd, "dv"); s != "" {
		if dv, err = parseShape(s); err != nil {
			return err
		}
	}
	//
	seed := organism.New(0, art.ProgramID, start, dv, rf, GetInt64(cmd, "energy"))
	//
	var sink pipeline.Sink[*scheduler.TickState]
	if traceFile := GetString(cmd, "trace"); traceFile != "" {
		f, err := os.Create(traceFile)
		if err != nil {
			return err
		}
		//
		sink = pipeline.NewJSONLSink[*scheduler.TickState](f)
	}
	//
	sim := scheduler.New(scheduler.Config{
		Env:          env,
		Registry:     isa.Default(),
		Artifact:     &art,
		Policy:       energy.DefaultPolicy,
		Sink:         sink,
		PublishCells: GetFlag(cmd, "publish-cells"),
		Log:          logger,
	})
	sim.AddOrganism(seed)
	//
	ticks := GetInt(cmd, "ticks")
	ctx := context.Background()
	//
	for i := 0; i < ticks; i++ {
		if err := sim.Tick(ctx); err != nil {
			if sink != nil {
				sink.Close()
			}
			return err
		}
	}
	//
	if sink != nil {
		if err := sink.Close(); err != nil {
			return err
		}
	}
	//
	logger.WithField("ticks", ticks).Info("run complete")
	//
	for id, o := range sim.Organisms() {
		logger.WithFields(log.Fields{
			"organism": id,
			"ip":       o.IP.String(),
			"energy":   o.Energy,
			"alive":    o.Alive,
		}).Info("final organism state")
	}
	//
	return nil
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("ticks", 1000, "number of ticks to run")
	runCmd.Flags().String("start", "", "comma-separated start coordinate for the seed organism (defaults to the world origin)")
	runCmd.Flags().String("dv", "", "comma-separated initial direction vector for the seed organism (defaults to unit axis 0)")
	runCmd.Flags().Int64("energy", 1000, "initial energy for the seed organism")
	runCmd.Flags().String("trace", "", "write a JSONL tick trace to this file")
	runCmd.Flags().Bool("publish-cells", false, "include the full grid in every published tick snapshot")
	runCmd.Flags().Uint("dr", 8, "number of data registers per organism (must match the compiled artifact)")
	runCmd.Flags().Uint("pr", 8, "number of procedure-local registers per organism (must match the compiled artifact)")
	runCmd.Flags().Uint("fpr", 8, "number of formal-parameter registers per organism (must match the compiled artifact)")
	runCmd.Flags().Uint("lr", 4, "number of location registers per organism (must match the compiled artifact)")
}
