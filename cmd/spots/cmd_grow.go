package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdturney/spots-and-stripes/internal/life"
)

var (
	growSteps int
	growOut   string
)

// growCmd grows one seed pattern and reports its adult form
var growCmd = &cobra.Command{
	Use:   "grow [seed.rle]",
	Short: "Grow a seed pattern into its adult form",
	Long: `Reads a seed pattern from an RLE file, centers it in the universe,
steps it forward under the file's rule (or the configured rule if the file
has none), and prints the adult.

Example:
  spots grow results/photo_seed1.rle --steps 100 -o adult.rle`,
	Args: cobra.ExactArgs(1),
	RunE: runGrow,
}

func runGrow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	pattern, err := life.DecodeRLE(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	ruleName := pattern.Rule
	if ruleName == "" {
		ruleName = cfg.Experiment.Rule
	}
	rule, torus, err := life.ParseRule(ruleName)
	if err != nil {
		return err
	}
	adultSize := cfg.Experiment.AdultSize
	if !torus.IsZero() {
		adultSize = torus.Width
	}

	steps := growSteps
	if !cmd.Flags().Changed("steps") {
		steps = cfg.Experiment.NumSteps
	}

	adult, err := life.Grow(pattern.Grid, rule, steps, adultSize)
	if err != nil {
		return err
	}

	fmt.Printf("%s after %d steps of %s: %d live cells\n",
		args[0], steps, rule.String(), adult.Live())
	if growOut != "" {
		rle := life.EncodeRLE(adult, "adult", ruleName)
		if err := os.WriteFile(growOut, []byte(rle), 0o644); err != nil {
			return err
		}
		fmt.Printf("adult written to %s\n", growOut)
	} else {
		fmt.Println(adult.String())
	}
	return nil
}

func init() {
	growCmd.Flags().IntVar(&growSteps, "steps", 0, "number of steps (default from config)")
	growCmd.Flags().StringVarP(&growOut, "out", "o", "", "write the adult as RLE to this file")
	rootCmd.AddCommand(growCmd)
}
