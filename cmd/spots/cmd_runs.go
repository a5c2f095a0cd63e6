// Package main: run database commands for listing, inspecting, and
// exporting past experiments.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdturney/spots-and-stripes/internal/store"
)

// runsCmd manages the run database
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect past experiment runs",
	Long: `List and inspect runs recorded in the SQLite run database.

Subcommands:
  list    - List all runs, newest first
  show    - Show one run's settings and fitness history
  export  - Write a run's champion patterns to RLE files`,
	RunE: runRunsList,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run's settings and fitness history",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write a run's champion seed and adult to RLE files",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsExport,
}

var runsExportDir string

func openStore() (*store.RunStore, error) {
	st, err := store.Open(cfg.Output.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}
	return st, nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-16s  %-6s  %-8s  %s\n",
		"ID", "CREATED", "RULE", "TARGET", "STATUS", "BEST")
	fmt.Println(strings.Repeat("-", 100))
	for _, r := range runs {
		fmt.Printf("%-36s  %-19s  %-16s  %-6d  %-8s  %d\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Rule, r.Target, r.Status, r.BestFitness)
	}
	fmt.Printf("Total: %d runs\n", len(runs))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	r, err := st.GetRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run      %s\n", r.ID)
	fmt.Printf("created  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("rule     %s\n", r.Rule)
	fmt.Printf("target   %d\n", r.Target)
	fmt.Printf("status   %s\n", r.Status)
	fmt.Printf("best     %d\n", r.BestFitness)
	fmt.Println("\nsettings:")
	for _, line := range strings.Split(strings.TrimRight(r.Settings, "\n"), "\n") {
		fmt.Println("  " + line)
	}

	rows, err := st.Progress(r.ID)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		fmt.Println("\nfitness history:")
		fmt.Printf("  %-10s  %-8s  %s\n", "BIRTH", "BEST", "MEAN")
		for _, row := range rows {
			fmt.Printf("  %-10d  %-8d  %.1f\n", row.Birth, row.Best, row.Mean)
		}
	}
	return nil
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.GetChampion(args[0])
	if err != nil {
		return err
	}

	dir := runsExportDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	short := args[0]
	if len(short) > 8 {
		short = short[:8]
	}
	seedPath := filepath.Join(dir, fmt.Sprintf("champion_%s_seed.rle", short))
	adultPath := filepath.Join(dir, fmt.Sprintf("champion_%s_adult.rle", short))
	if err := os.WriteFile(seedPath, []byte(c.SeedRLE), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(adultPath, []byte(c.AdultRLE), 0o644); err != nil {
		return err
	}
	fmt.Printf("champion (fitness %d) written:\n  %s\n  %s\n", c.Fitness, seedPath, adultPath)
	return nil
}

func init() {
	runsExportCmd.Flags().StringVarP(&runsExportDir, "out", "o", "", "output directory (default from config)")
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}
