package evolve

import (
	"testing"

	"github.com/pdturney/spots-and-stripes/internal/life"
)

func TestTwoStateScore(t *testing.T) {
	target := life.MustGrid(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			target.Set(x, y, life.Black) // left half black
		}
	}
	adult := life.MustGrid(4, 4)
	adult.Set(0, 0, life.Black) // on black: +1
	adult.Set(1, 1, life.Black) // on black: +1
	adult.Set(3, 0, life.Black) // on white: -1

	s, err := NewEvaluator(PaletteTwoState).Score(adult, target)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if s.OnInk != 2 || s.OnBlank != 1 {
		t.Errorf("expected 2 on ink / 1 on blank, got %d/%d", s.OnInk, s.OnBlank)
	}
	if s.Total != 1 {
		t.Errorf("expected total 1, got %d", s.Total)
	}
}

func TestTwoStateScore_WhiteAdultCellsScoreNothing(t *testing.T) {
	target := life.MustGrid(3, 3)
	target.Set(0, 0, life.Black)
	adult := life.MustGrid(3, 3) // all white

	s, err := NewEvaluator(PaletteTwoState).Score(adult, target)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if s.Total != 0 {
		t.Errorf("all-white adult must score 0, got %d", s.Total)
	}
}

func TestImmigrationScore(t *testing.T) {
	target := life.MustGrid(2, 2)
	target.Set(0, 0, life.Red)
	target.Set(1, 0, life.Blue)
	target.Set(0, 1, life.Red)
	// (1,1) stays white

	adult := life.MustGrid(2, 2)
	adult.Set(0, 0, life.Red)  // true red: +1
	adult.Set(1, 0, life.Red)  // red on blue: -1
	adult.Set(0, 1, life.Blue) // blue on red: -1
	adult.Set(1, 1, life.Blue) // blue on white: 0

	s, err := NewEvaluator(PaletteImmigration).Score(adult, target)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if s.TrueRed != 1 || s.TrueBlue != 0 || s.FalseRed != 1 || s.FalseBlue != 1 {
		t.Errorf("breakdown wrong: %+v", s)
	}
	if s.Total != -1 {
		t.Errorf("expected total -1, got %d", s.Total)
	}
	if s.Total != s.TrueRed+s.TrueBlue-s.FalseRed-s.FalseBlue {
		t.Errorf("breakdown does not sum to total: %+v", s)
	}
}

func TestScore_PerfectMatchOnTarget(t *testing.T) {
	target, err := Target(2, PaletteImmigration, 60)
	if err != nil {
		t.Fatalf("Target failed: %v", err)
	}
	s, err := NewEvaluator(PaletteImmigration).Score(target.Clone(), target)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if s.Total != 3600 {
		t.Errorf("a target scored against itself should hit every cell, got %d", s.Total)
	}
}

func TestScore_DimensionMismatch(t *testing.T) {
	a := life.MustGrid(4, 4)
	b := life.MustGrid(5, 5)
	if _, err := NewEvaluator(PaletteTwoState).Score(a, b); err == nil {
		t.Error("expected error for mismatched dimensions")
	}
}
