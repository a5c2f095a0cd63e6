package evolve

import (
	"fmt"

	"github.com/pdturney/spots-and-stripes/internal/life"
)

// Score is the result of comparing an adult grid against a target. Total
// is the fitness; the remaining fields break it down. OnInk counts adult
// ink landing on matching target ink, OnBlank counts adult ink landing on
// the wrong target cell. For the Immigration palette the per-color counts
// are also populated.
type Score struct {
	Total   int
	OnInk   int
	OnBlank int

	TrueRed   int
	TrueBlue  int
	FalseRed  int
	FalseBlue int
}

// Evaluator scores a grown adult against a target pattern.
type Evaluator interface {
	Score(adult, target *life.Grid) (Score, error)
}

// NewEvaluator returns the evaluator matching the palette.
func NewEvaluator(palette Palette) Evaluator {
	if palette == PaletteImmigration {
		return immigrationEvaluator{}
	}
	return twoStateEvaluator{}
}

func checkDims(adult, target *life.Grid) error {
	if adult.Width() != target.Width() || adult.Height() != target.Height() {
		return fmt.Errorf("adult %dx%d and target %dx%d differ in size",
			adult.Width(), adult.Height(), target.Width(), target.Height())
	}
	return nil
}

// twoStateEvaluator scores +1 for black-on-black and -1 for
// black-on-white. White adult cells score nothing, which slows
// convergence toward degenerate all-white adults.
type twoStateEvaluator struct{}

func (twoStateEvaluator) Score(adult, target *life.Grid) (Score, error) {
	if err := checkDims(adult, target); err != nil {
		return Score{}, err
	}
	var s Score
	for y := 0; y < adult.Height(); y++ {
		for x := 0; x < adult.Width(); x++ {
			if adult.Get(x, y) != life.Black {
				continue
			}
			if target.Get(x, y) == life.Black {
				s.OnInk++
			} else {
				s.OnBlank++
			}
		}
	}
	s.Total = s.OnInk - s.OnBlank
	return s, nil
}

// immigrationEvaluator scores +1 for red-on-red and blue-on-blue, -1 for
// red-on-blue and blue-on-red. Cells where either side is white score
// nothing.
type immigrationEvaluator struct{}

func (immigrationEvaluator) Score(adult, target *life.Grid) (Score, error) {
	if err := checkDims(adult, target); err != nil {
		return Score{}, err
	}
	var s Score
	for y := 0; y < adult.Height(); y++ {
		for x := 0; x < adult.Width(); x++ {
			a := adult.Get(x, y)
			t := target.Get(x, y)
			switch {
			case a == life.Red && t == life.Red:
				s.TrueRed++
			case a == life.Blue && t == life.Blue:
				s.TrueBlue++
			case a == life.Red && t == life.Blue:
				s.FalseRed++
			case a == life.Blue && t == life.Red:
				s.FalseBlue++
			}
		}
	}
	s.OnInk = s.TrueRed + s.TrueBlue
	s.OnBlank = s.FalseRed + s.FalseBlue
	s.Total = s.OnInk - s.OnBlank
	return s, nil
}
