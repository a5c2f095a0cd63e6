package evolve

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/pdturney/spots-and-stripes/internal/config"
	"github.com/pdturney/spots-and-stripes/internal/store"
)

// stubRecorder captures recorder calls in memory.
type stubRecorder struct {
	mu        sync.Mutex
	created   int
	progress  []int
	finished  string
	champion  *store.Champion
	bestFinal int
}

func (r *stubRecorder) CreateRun(rule string, target int, settings string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
	return "run-1", nil
}

func (r *stubRecorder) RecordProgress(runID string, birth, best int, mean float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, birth)
	return nil
}

func (r *stubRecorder) FinishRun(runID, status string, best int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = status
	r.bestFinal = best
	return nil
}

func (r *stubRecorder) SaveChampion(c store.Champion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.champion = &c
	return nil
}

// tinyConfig is a fast deterministic experiment for tests.
func tinyConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Experiment.Rule = "B3/S23"
	cfg.Experiment.TargetNumber = 2
	cfg.Experiment.PopulationSize = 6
	cfg.Experiment.SampleSize = 3
	cfg.Experiment.MaxBirths = 10
	cfg.Experiment.NumSteps = 4
	cfg.Experiment.SeedSize = 6
	cfg.Experiment.AdultSize = 12
	cfg.Experiment.Workers = 2
	cfg.Experiment.RandomSeed = 12345
	cfg.Experiment.CheckpointEvery = 5
	return cfg
}

func TestEngine_RunCompletes(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &stubRecorder{}
	e, err := NewEngine(tinyConfig(), rec)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Births != 10 {
		t.Errorf("expected 10 births, got %d", res.Births)
	}
	if res.Best == nil || res.Best.Adult == nil {
		t.Fatal("result missing champion")
	}
	if rec.created != 1 {
		t.Errorf("expected one run created, got %d", rec.created)
	}
	if rec.finished != store.StatusFinished {
		t.Errorf("expected finished status, got %q", rec.finished)
	}
	if len(rec.progress) == 0 {
		t.Error("expected progress checkpoints")
	}
	if rec.champion == nil {
		t.Fatal("expected champion saved")
	}
	if !strings.Contains(rec.champion.SeedRLE, "!") {
		t.Error("champion seed RLE looks malformed")
	}
}

func TestEngine_PopulationSizeIsStatic(t *testing.T) {
	e, err := NewEngine(tinyConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(e.pop) != 6 {
		t.Errorf("population size changed to %d", len(e.pop))
	}
	for i, o := range e.pop {
		if o == nil || o.Seed == nil || o.Adult == nil {
			t.Fatalf("slot %d not populated", i)
		}
	}
}

func TestEngine_Deterministic(t *testing.T) {
	run := func() int {
		e, err := NewEngine(tinyConfig(), nil)
		if err != nil {
			t.Fatalf("NewEngine failed: %v", err)
		}
		res, err := e.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return res.Best.Fitness
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same random seed gave different results: %d vs %d", a, b)
	}
}

func TestEngine_Cancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := tinyConfig()
	cfg.Experiment.MaxBirths = 10000000
	rec := &stubRecorder{}
	e, err := NewEngine(cfg, rec)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var runErr error
	go func() {
		_, runErr = e.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("engine did not stop after cancellation")
	}
	if runErr != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", runErr)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.finished != store.StatusAborted {
		t.Errorf("expected aborted status, got %q", rec.finished)
	}
}

func TestEngine_ProgressSnapshots(t *testing.T) {
	e, err := NewEngine(tinyConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	ch := make(chan Progress, 16)
	e.SetProgress(ch)

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	close(ch)

	var last Progress
	count := 0
	for p := range ch {
		last = p
		count++
	}
	if count == 0 {
		t.Fatal("no progress snapshots received")
	}
	if !last.Done {
		t.Error("final snapshot should carry Done")
	}
	if last.Birth != 10 {
		t.Errorf("final snapshot at birth %d, want 10", last.Birth)
	}
}

func TestEngine_ImmigrationRule(t *testing.T) {
	cfg := tinyConfig()
	cfg.Experiment.Rule = "Immigration:T12,12"
	cfg.Experiment.TargetNumber = 3
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	if e.Palette() != PaletteImmigration {
		t.Fatal("expected immigration palette")
	}
	if e.TargetGrid().Width() != 12 {
		t.Errorf("torus suffix should set universe size, got %d", e.TargetGrid().Width())
	}
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestEngine_RejectsNonSquareTorus(t *testing.T) {
	cfg := tinyConfig()
	cfg.Experiment.Rule = "B3/S23:T60,30"
	if _, err := NewEngine(cfg, nil); err == nil {
		t.Error("expected error for non-square torus")
	}
}

func TestWriteArtifacts(t *testing.T) {
	cfg := tinyConfig()
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	dir := t.TempDir()
	a, err := WriteArtifacts(dir, cfg.Experiment, e.TargetGrid(), res.Best)
	if err != nil {
		t.Fatalf("WriteArtifacts failed: %v", err)
	}

	for _, path := range []string{a.TargetPhoto, a.SeedPhoto, a.AdultPhoto} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("missing artifact %s: %v", path, err)
		}
		if !strings.Contains(string(data), "!") {
			t.Errorf("%s is not valid RLE", path)
		}
	}

	logData, err := os.ReadFile(filepath.Join(dir, "log_file2.txt"))
	if err != nil {
		t.Fatalf("missing run log: %v", err)
	}
	for _, want := range []string{"population_size", "target = target_2()", "best fitness"} {
		if !strings.Contains(string(logData), want) {
			t.Errorf("run log missing %q:\n%s", want, logData)
		}
	}

	// A second run appends rather than truncates.
	if _, err := WriteArtifacts(dir, cfg.Experiment, e.TargetGrid(), res.Best); err != nil {
		t.Fatalf("second WriteArtifacts failed: %v", err)
	}
	logData2, _ := os.ReadFile(filepath.Join(dir, "log_file2.txt"))
	if len(logData2) <= len(logData) {
		t.Error("run log should append across runs")
	}
}
