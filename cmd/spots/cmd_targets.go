package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdturney/spots-and-stripes/internal/evolve"
	"github.com/pdturney/spots-and-stripes/internal/life"
)

var targetsOut string

// targetsCmd writes the five target patterns as RLE photos
var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Write all target patterns as RLE files",
	Long: `Generates the five target patterns for the configured rule and
universe size and writes each as an RLE photo. Useful for inspecting what
an experiment is aiming at before committing to a long run.

  1  quadrants
  2  two stripes
  3  three stripes
  4  bands
  5  triangles`,
	RunE: runTargets,
}

func runTargets(cmd *cobra.Command, args []string) error {
	rule, torus, err := life.ParseRule(cfg.Experiment.Rule)
	if err != nil {
		return err
	}
	size := cfg.Experiment.AdultSize
	if !torus.IsZero() {
		size = torus.Width
	}
	palette := evolve.PaletteFor(rule)

	dir := targetsOut
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for n := 1; n <= evolve.NumTargets; n++ {
		target, err := evolve.Target(n, palette, size)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, fmt.Sprintf("photo_target%d.rle", n))
		name := fmt.Sprintf("target_%d", n)
		if err := os.WriteFile(path, []byte(life.EncodeRLE(target, name, cfg.Experiment.Rule)), 0o644); err != nil {
			return err
		}
		fmt.Printf("target %d -> %s\n", n, path)
	}
	return nil
}

func init() {
	targetsCmd.Flags().StringVarP(&targetsOut, "out", "o", "", "output directory (default from config)")
	rootCmd.AddCommand(targetsCmd)
}
