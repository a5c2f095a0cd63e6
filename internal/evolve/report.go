package evolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdturney/spots-and-stripes/internal/config"
	"github.com/pdturney/spots-and-stripes/internal/life"
	"github.com/pdturney/spots-and-stripes/internal/logging"
)

// Artifacts lists the files WriteArtifacts produced.
type Artifacts struct {
	TargetPhoto string
	SeedPhoto   string
	AdultPhoto  string
	LogFile     string
}

// WriteArtifacts exports a finished run as three RLE "photos" (target,
// champion seed, champion adult) plus an append-only plain-text log of the
// settings and final fitness. File names carry the target number so runs
// against different targets do not clobber each other.
func WriteArtifacts(dir string, exp config.ExperimentConfig, target *life.Grid, best *Organism) (*Artifacts, error) {
	timer := logging.StartTimer(logging.CategoryReport, "WriteArtifacts")
	defer timer.Stop()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	n := exp.TargetNumber
	a := &Artifacts{
		TargetPhoto: filepath.Join(dir, fmt.Sprintf("photo_target%d.rle", n)),
		SeedPhoto:   filepath.Join(dir, fmt.Sprintf("photo_seed%d.rle", n)),
		AdultPhoto:  filepath.Join(dir, fmt.Sprintf("photo_adult%d.rle", n)),
		LogFile:     filepath.Join(dir, fmt.Sprintf("log_file%d.txt", n)),
	}

	photos := []struct {
		path string
		name string
		grid *life.Grid
	}{
		{a.TargetPhoto, fmt.Sprintf("photo_target%d", n), target},
		{a.SeedPhoto, fmt.Sprintf("photo_seed%d", n), best.Seed},
		{a.AdultPhoto, fmt.Sprintf("photo_adult%d", n), best.Adult},
	}
	for _, p := range photos {
		data := life.EncodeRLE(p.grid, p.name, exp.Rule)
		if err := os.WriteFile(p.path, []byte(data), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p.path, err)
		}
		logging.Report("wrote %s", p.path)
	}

	if err := appendRunLog(a.LogFile, exp, best); err != nil {
		return nil, err
	}
	logging.Report("appended run log %s", a.LogFile)
	return a, nil
}

// appendRunLog appends the settings block and the champion fitness in a
// plain key = value format. Appending keeps one log per target across
// repeated runs.
func appendRunLog(path string, exp config.ExperimentConfig, best *Organism) error {
	var b strings.Builder
	b.WriteString("\n")
	lines := []struct {
		key string
		val interface{}
	}{
		{"rule_name", exp.Rule},
		{"target_number", exp.TargetNumber},
		{"population_size", exp.PopulationSize},
		{"sample_size", exp.SampleSize},
		{"max_births", exp.MaxBirths},
		{"num_steps", exp.NumSteps},
		{"prob_white", exp.ProbWhite},
		{"prob_black", exp.ProbBlack},
		{"prob_mutation", exp.ProbMutation},
		{"prob_selection", exp.ProbSelection},
		{"seed_size", exp.SeedSize},
		{"adult_size", exp.AdultSize},
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "%-16s = %v\n", l.key, l.val)
	}
	fmt.Fprintf(&b, "\ntarget = target_%d()\n", exp.TargetNumber)
	fmt.Fprintf(&b, "\nbest fitness = %d\n", best.Fitness)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append run log: %w", err)
	}
	return nil
}
