package evolve

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/pdturney/spots-and-stripes/internal/config"
	"github.com/pdturney/spots-and-stripes/internal/life"
	"github.com/pdturney/spots-and-stripes/internal/logging"
	"github.com/pdturney/spots-and-stripes/internal/store"
)

// Organism is one member of the population: the genome (seed), the grown
// phenotype (adult), and its cached fitness.
type Organism struct {
	Seed    *life.Grid
	Adult   *life.Grid
	Fitness int
}

// Progress is a periodic snapshot of a run, emitted at every checkpoint.
type Progress struct {
	Birth     int
	MaxBirths int
	Best      int
	Mean      float64
	Champion  *life.Grid // clone of the current best adult
	Done      bool
}

// Recorder persists run state. *store.RunStore satisfies it; tests use a
// stub.
type Recorder interface {
	CreateRun(rule string, target int, settings string) (string, error)
	RecordProgress(runID string, birth, best int, mean float64) error
	FinishRun(runID, status string, best int) error
	SaveChampion(c store.Champion) error
}

// Result summarizes a completed (or aborted) run.
type Result struct {
	RunID  string
	Births int
	Best   *Organism
}

// Engine drives one evolution experiment: a static population of organisms
// where every birth replaces the loser of a random pairing with a mutated
// copy of a fit parent.
type Engine struct {
	exp      config.ExperimentConfig
	rule     life.Rule
	ruleName string
	palette  Palette
	target   *life.Grid
	eval     Evaluator
	rng      *rand.Rand
	recorder Recorder
	progress chan<- Progress

	pop []*Organism
}

// NewEngine validates the experiment configuration, parses the rule, and
// builds the target pattern. The recorder may be nil for throwaway runs.
func NewEngine(cfg *config.Config, rec Recorder) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	exp := cfg.Experiment

	rule, torus, err := life.ParseRule(exp.Rule)
	if err != nil {
		return nil, err
	}
	if !torus.IsZero() {
		if torus.Width != torus.Height {
			return nil, fmt.Errorf("rule %q: universe must be square, got %dx%d",
				exp.Rule, torus.Width, torus.Height)
		}
		exp.AdultSize = torus.Width
	}
	if exp.AdultSize < exp.SeedSize {
		return nil, fmt.Errorf("adult size %d smaller than seed size %d",
			exp.AdultSize, exp.SeedSize)
	}

	palette := PaletteFor(rule)
	target, err := Target(exp.TargetNumber, palette, exp.AdultSize)
	if err != nil {
		return nil, err
	}

	seed := exp.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		exp:      exp,
		rule:     rule,
		ruleName: exp.Rule,
		palette:  palette,
		target:   target,
		eval:     NewEvaluator(palette),
		rng:      rand.New(rand.NewSource(seed)),
		recorder: rec,
	}, nil
}

// RuleName returns the rule notation the engine was configured with.
func (e *Engine) RuleName() string { return e.ruleName }

// TargetGrid returns the target pattern.
func (e *Engine) TargetGrid() *life.Grid { return e.target }

// Palette returns the run's ink palette.
func (e *Engine) Palette() Palette { return e.palette }

// SetProgress installs a channel for checkpoint snapshots. Sends never
// block the birth loop: if the receiver lags, intermediate snapshots are
// dropped (the final Done snapshot always waits).
func (e *Engine) SetProgress(ch chan<- Progress) { e.progress = ch }

// Run executes the full experiment: generation zero, then the birth loop.
// Cancellation via ctx aborts between births; the partial result is
// persisted with the aborted status and returned alongside ctx.Err().
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryEngine, "engine.Run")
	defer timer.Stop()

	runID := ""
	if e.recorder != nil {
		settings, err := yaml.Marshal(e.exp)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot settings: %w", err)
		}
		runID, err = e.recorder.CreateRun(e.ruleName, e.exp.TargetNumber, string(settings))
		if err != nil {
			return nil, err
		}
	}
	logging.Engine("run %s: rule %s, target %d, population %d, births %d",
		runID, e.ruleName, e.exp.TargetNumber, e.exp.PopulationSize, e.exp.MaxBirths)

	if err := e.initPopulation(ctx); err != nil {
		e.finish(runID, store.StatusAborted, 0)
		return nil, err
	}

	births := 0
	for births < e.exp.MaxBirths {
		select {
		case <-ctx.Done():
			res := e.result(runID, births)
			e.persistChampion(runID, res.Best)
			e.finish(runID, store.StatusAborted, res.Best.Fitness)
			e.emit(Progress{Birth: births, MaxBirths: e.exp.MaxBirths,
				Best: res.Best.Fitness, Mean: e.meanFitness(), Done: true})
			return res, ctx.Err()
		default:
		}

		if err := e.birth(); err != nil {
			e.finish(runID, store.StatusAborted, 0)
			return nil, err
		}
		births++

		if births%e.exp.CheckpointEvery == 0 || births == e.exp.MaxBirths {
			e.checkpoint(runID, births)
		}
	}

	res := e.result(runID, births)
	e.persistChampion(runID, res.Best)
	e.finish(runID, store.StatusFinished, res.Best.Fitness)
	e.emitBlocking(ctx, Progress{Birth: births, MaxBirths: e.exp.MaxBirths,
		Best: res.Best.Fitness, Mean: e.meanFitness(),
		Champion: res.Best.Adult.Clone(), Done: true})
	logging.Engine("run %s finished: best fitness %d after %d births",
		runID, res.Best.Fitness, births)
	return res, nil
}

// initPopulation builds generation zero: every slot takes the best of
// sampleSize independently generated random seeds. Slots are filled
// concurrently; each worker owns a private RNG seeded from the run RNG so
// results stay reproducible for a fixed random seed and worker count.
func (e *Engine) initPopulation(ctx context.Context) error {
	timer := logging.StartTimer(logging.CategoryEngine, "generation zero")
	defer timer.Stop()

	n := e.exp.PopulationSize
	e.pop = make([]*Organism, n)

	draws := e.exp.SampleSize
	if draws < 1 {
		draws = 1
	}
	slotSeeds := make([]int64, n)
	for i := range slotSeeds {
		slotSeeds[i] = e.rng.Int63()
	}

	g, ctx := errgroup.WithContext(ctx)
	workers := e.exp.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(slotSeeds[i]))
			var best *Organism
			for d := 0; d < draws; d++ {
				o, err := e.spawn(rng)
				if err != nil {
					return err
				}
				if best == nil || o.Fitness > best.Fitness {
					best = o
				}
			}
			e.pop[i] = best
			return nil
		})
	}
	return g.Wait()
}

// spawn generates, grows, and scores one random organism.
func (e *Engine) spawn(rng *rand.Rand) (*Organism, error) {
	seed, err := RandomSeed(rng, e.exp.SeedSize, e.exp.ProbBlack, e.exp.ProbWhite, e.palette)
	if err != nil {
		return nil, err
	}
	return e.develop(seed)
}

// develop grows a seed to an adult and scores it against the target.
func (e *Engine) develop(seed *life.Grid) (*Organism, error) {
	adult, err := life.Grow(seed, e.rule, e.exp.NumSteps, e.exp.AdultSize)
	if err != nil {
		return nil, err
	}
	score, err := e.eval.Score(adult, e.target)
	if err != nil {
		return nil, err
	}
	return &Organism{Seed: seed, Adult: adult, Fitness: score.Total}, nil
}

// birth performs one reproduction event: two random organisms meet, the
// loser dies, and its slot is filled with a mutated copy of a fit parent.
// With probability probSelection the parent is the champion of a random
// tournament; otherwise it is the winner of the pair (pure mutation mode).
// A tie in the pairing goes to the second organism.
func (e *Engine) birth() error {
	n := e.exp.PopulationSize
	i := e.rng.Intn(n)
	j := e.rng.Intn(n)

	loser := i
	winner := j
	if e.pop[i].Fitness > e.pop[j].Fitness {
		loser, winner = j, i
	}

	parent := e.pop[winner].Seed
	if e.exp.SampleSize > 0 && e.rng.Float64() < e.exp.ProbSelection {
		parent = e.tournament()
	}

	child := Mutate(e.rng, parent, e.exp.ProbMutation, e.palette)
	o, err := e.develop(child)
	if err != nil {
		return err
	}
	e.pop[loser] = o
	return nil
}

// tournament samples sampleSize organisms on top of two initial draws and
// returns the seed of the fittest.
func (e *Engine) tournament() *life.Grid {
	n := e.exp.PopulationSize
	best := e.pop[e.rng.Intn(n)]
	if o := e.pop[e.rng.Intn(n)]; o.Fitness > best.Fitness {
		best = o
	}
	for k := 0; k < e.exp.SampleSize; k++ {
		if o := e.pop[e.rng.Intn(n)]; o.Fitness > best.Fitness {
			best = o
		}
	}
	return best.Seed
}

func (e *Engine) bestOrganism() *Organism {
	best := e.pop[0]
	for _, o := range e.pop[1:] {
		if o.Fitness > best.Fitness {
			best = o
		}
	}
	return best
}

func (e *Engine) meanFitness() float64 {
	sum := 0
	for _, o := range e.pop {
		sum += o.Fitness
	}
	return float64(sum) / float64(len(e.pop))
}

func (e *Engine) checkpoint(runID string, birth int) {
	best := e.bestOrganism()
	mean := e.meanFitness()
	logging.EngineDebug("birth %d: best %d, mean %.1f", birth, best.Fitness, mean)
	if e.recorder != nil && runID != "" {
		if err := e.recorder.RecordProgress(runID, birth, best.Fitness, mean); err != nil {
			logging.Get(logging.CategoryEngine).Warn("checkpoint at birth %d failed: %v", birth, err)
		}
	}
	e.emit(Progress{
		Birth:     birth,
		MaxBirths: e.exp.MaxBirths,
		Best:      best.Fitness,
		Mean:      mean,
		Champion:  best.Adult.Clone(),
	})
}

func (e *Engine) result(runID string, births int) *Result {
	return &Result{RunID: runID, Births: births, Best: e.bestOrganism()}
}

func (e *Engine) persistChampion(runID string, best *Organism) {
	if e.recorder == nil || runID == "" || best == nil {
		return
	}
	c := store.Champion{
		RunID:    runID,
		Fitness:  best.Fitness,
		SeedRLE:  life.EncodeRLE(best.Seed, fmt.Sprintf("seed_target%d", e.exp.TargetNumber), e.ruleName),
		AdultRLE: life.EncodeRLE(best.Adult, fmt.Sprintf("adult_target%d", e.exp.TargetNumber), e.ruleName),
	}
	if err := e.recorder.SaveChampion(c); err != nil {
		logging.Get(logging.CategoryEngine).Error("failed to save champion: %v", err)
	}
}

func (e *Engine) finish(runID, status string, best int) {
	if e.recorder == nil || runID == "" {
		return
	}
	if err := e.recorder.FinishRun(runID, status, best); err != nil {
		logging.Get(logging.CategoryEngine).Error("failed to finish run: %v", err)
	}
}

// emit sends a snapshot without blocking the birth loop.
func (e *Engine) emit(p Progress) {
	if e.progress == nil {
		return
	}
	select {
	case e.progress <- p:
	default:
	}
}

// emitBlocking delivers the final snapshot unless the context dies first.
func (e *Engine) emitBlocking(ctx context.Context, p Progress) {
	if e.progress == nil {
		return
	}
	select {
	case e.progress <- p:
	case <-ctx.Done():
	}
}
