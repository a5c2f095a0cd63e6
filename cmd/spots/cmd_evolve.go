package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdturney/spots-and-stripes/internal/evolve"
	"github.com/pdturney/spots-and-stripes/internal/store"
	"github.com/pdturney/spots-and-stripes/internal/tui"
)

var (
	evolveRule    string
	evolveTarget  int
	evolveBirths  int
	evolveSeed    int64
	evolveWorkers int
	evolveTUI     bool
)

// evolveCmd runs one full evolution experiment
var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Run an evolution experiment",
	Long: `Evolves a population of seed patterns toward a target.

The experiment is defined by the config file; flags override the rule,
target, birth budget, and random seed for one-off runs. Progress is
checkpointed to the run database, and the champion's seed and adult are
written to the output directory as RLE photos.

Examples:
  spots evolve
  spots evolve --rule B3/S23 --target 2 --births 20000
  spots evolve --rule Immigration --target 4 --tui`,
	RunE: runEvolve,
}

func runEvolve(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("rule") {
		cfg.Experiment.Rule = evolveRule
	}
	if cmd.Flags().Changed("target") {
		cfg.Experiment.TargetNumber = evolveTarget
	}
	if cmd.Flags().Changed("births") {
		cfg.Experiment.MaxBirths = evolveBirths
	}
	if cmd.Flags().Changed("seed") {
		cfg.Experiment.RandomSeed = evolveSeed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Experiment.Workers = evolveWorkers
	}

	st, err := store.Open(cfg.Output.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open run database: %w", err)
	}
	defer st.Close()

	engine, err := evolve.NewEngine(cfg, st)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if evolveTUI {
		return runEvolveTUI(ctx, engine)
	}
	return runEvolvePlain(ctx, engine)
}

func runEvolvePlain(ctx context.Context, engine *evolve.Engine) error {
	progress := make(chan evolve.Progress, 8)
	engine.SetProgress(progress)
	go func() {
		for p := range progress {
			fmt.Printf("birth %d/%d  best %d  mean %.1f\n", p.Birth, p.MaxBirths, p.Best, p.Mean)
		}
	}()

	res, err := engine.Run(ctx)
	close(progress)
	aborted := errors.Is(err, context.Canceled)
	if err != nil && !aborted {
		return err
	}
	if res == nil {
		fmt.Println("run interrupted before generation zero completed")
		return nil
	}

	logger.Info("run complete",
		zap.String("run_id", res.RunID),
		zap.Int("births", res.Births),
		zap.Int("best_fitness", res.Best.Fitness),
		zap.Bool("aborted", aborted))

	arts, err := evolve.WriteArtifacts(cfg.Output.Dir, cfg.Experiment, engine.TargetGrid(), res.Best)
	if err != nil {
		return fmt.Errorf("failed to write artifacts: %w", err)
	}
	fmt.Printf("\nrun %s: best fitness %d after %d births\n", res.RunID, res.Best.Fitness, res.Births)
	fmt.Printf("photos: %s, %s, %s\n", arts.TargetPhoto, arts.SeedPhoto, arts.AdultPhoto)
	fmt.Printf("log:    %s\n", arts.LogFile)
	if aborted {
		fmt.Println("(run was interrupted; partial result saved)")
	}
	return nil
}

func runEvolveTUI(ctx context.Context, engine *evolve.Engine) error {
	// Quitting the dashboard aborts the run; the partial result is still
	// persisted and reported.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := make(chan evolve.Progress, 8)
	engine.SetProgress(progress)

	model := tui.NewRunModel(progress, engine, cfg.Experiment.TargetNumber)
	prog := tea.NewProgram(model, tea.WithContext(ctx))

	resCh := make(chan *evolve.Result, 1)
	errCh := make(chan error, 1)
	go func() {
		res, err := engine.Run(ctx)
		if res == nil || (err != nil && !errors.Is(err, context.Canceled)) {
			prog.Send(tui.RunErrMsg{Err: err})
			errCh <- err
			return
		}
		resCh <- res
	}()

	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	cancel()

	select {
	case err := <-errCh:
		return err
	case res := <-resCh:
		arts, err := evolve.WriteArtifacts(cfg.Output.Dir, cfg.Experiment, engine.TargetGrid(), res.Best)
		if err != nil {
			return fmt.Errorf("failed to write artifacts: %w", err)
		}
		fmt.Printf("run %s: best fitness %d after %d births\n", res.RunID, res.Best.Fitness, res.Births)
		fmt.Printf("photos written to %s\n", arts.TargetPhoto)
		return nil
	}
}

func init() {
	evolveCmd.Flags().StringVar(&evolveRule, "rule", "", "CA rule, e.g. B3/S45678 or Immigration")
	evolveCmd.Flags().IntVar(&evolveTarget, "target", 0, "target pattern number (1-5)")
	evolveCmd.Flags().IntVar(&evolveBirths, "births", 0, "maximum number of births")
	evolveCmd.Flags().Int64Var(&evolveSeed, "seed", 0, "random seed (0 seeds from the clock)")
	evolveCmd.Flags().IntVar(&evolveWorkers, "workers", 0, "generation-zero worker goroutines")
	evolveCmd.Flags().BoolVar(&evolveTUI, "tui", false, "show the live dashboard")
	rootCmd.AddCommand(evolveCmd)
}
