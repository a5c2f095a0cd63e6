package life

import (
	"testing"
)

func gridFromRows(t *testing.T, rows []string) *Grid {
	t.Helper()
	g, err := NewGrid(len(rows[0]), len(rows))
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	for y, row := range rows {
		for x, c := range row {
			switch c {
			case 'O':
				g.Set(x, y, Black)
			case 'X':
				g.Set(x, y, Blue)
			}
		}
	}
	return g
}

func TestStep_BlockIsStill(t *testing.T) {
	g := gridFromRows(t, []string{
		"....",
		".OO.",
		".OO.",
		"....",
	})
	want := g.Clone()
	g.Step(GameOfLife())
	if !g.Equal(want) {
		t.Errorf("block changed after one step:\n%s", g)
	}
}

func TestStep_BlinkerOscillates(t *testing.T) {
	g := gridFromRows(t, []string{
		".....",
		".....",
		".OOO.",
		".....",
		".....",
	})
	vertical := gridFromRows(t, []string{
		".....",
		"..O..",
		"..O..",
		"..O..",
		".....",
	})
	start := g.Clone()

	g.Step(GameOfLife())
	if !g.Equal(vertical) {
		t.Fatalf("blinker phase 1 wrong:\n%s", g)
	}
	g.Step(GameOfLife())
	if !g.Equal(start) {
		t.Errorf("blinker did not return to start after 2 steps:\n%s", g)
	}
}

func TestStep_TorusWrap(t *testing.T) {
	// A blinker straddling the right edge must behave exactly like one in
	// the interior: the neighborhood wraps around the torus.
	g := MustGrid(5, 5)
	g.Set(4, 2, Black)
	g.Set(0, 2, Black)
	g.Set(1, 2, Black)

	g.Step(GameOfLife())
	for _, y := range []int{1, 2, 3} {
		if g.Get(0, y) != Black {
			t.Errorf("expected live cell at (0,%d) after wrap step", y)
		}
	}
	if g.Live() != 3 {
		t.Errorf("expected 3 live cells, got %d", g.Live())
	}
}

func TestStep_EmptyStaysEmpty(t *testing.T) {
	g := MustGrid(8, 8)
	g.Step(GameOfLife())
	if g.Live() != 0 {
		t.Errorf("empty grid produced %d live cells", g.Live())
	}
}

func TestGetSet_NegativeCoordinatesWrap(t *testing.T) {
	g := MustGrid(4, 4)
	g.Set(-1, -1, Black)
	if g.Get(3, 3) != Black {
		t.Errorf("expected (-1,-1) to alias (3,3)")
	}
}

func TestPlaceAndWindow_RoundTrip(t *testing.T) {
	seed := gridFromRows(t, []string{
		"OO",
		"O.",
	})
	universe := MustGrid(6, 6)
	if err := universe.Place(seed); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	got, err := universe.Window(2, 2)
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if !got.Equal(seed) {
		t.Errorf("window does not match placed seed:\n%s", got)
	}
	if universe.Live() != 3 {
		t.Errorf("expected 3 live cells, got %d", universe.Live())
	}
}

func TestPlace_TooLarge(t *testing.T) {
	big := MustGrid(10, 10)
	small := MustGrid(4, 4)
	if err := small.Place(big); err == nil {
		t.Error("expected error placing 10x10 into 4x4")
	}
}

func TestGrow_BlinkerParity(t *testing.T) {
	seed := gridFromRows(t, []string{
		"...",
		"OOO",
		"...",
	})
	adult, err := Grow(seed, GameOfLife(), 2, 9)
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}
	window, err := adult.Window(3, 3)
	if err != nil {
		t.Fatalf("Window failed: %v", err)
	}
	if !window.Equal(seed) {
		t.Errorf("blinker should return to phase 0 after 2 steps:\n%s", window)
	}
}

func TestGrow_RejectsNegativeSteps(t *testing.T) {
	if _, err := Grow(MustGrid(2, 2), GameOfLife(), -1, 8); err == nil {
		t.Error("expected error for negative steps")
	}
}

func TestImmigration_FullGridStep(t *testing.T) {
	// A red/blue blinker: the center column survives, the births at the
	// row ends take the majority color of their three parents.
	g := gridFromRows(t, []string{
		".....",
		".....",
		".OXO.",
		".....",
		".....",
	})
	g.Step(Immigration{})
	if g.Get(2, 2) != Blue {
		t.Errorf("center survivor should stay Blue, got %d", g.Get(2, 2))
	}
	if g.Get(2, 1) != Red || g.Get(2, 3) != Red {
		t.Errorf("births should be Red (two red parents), got %d and %d",
			g.Get(2, 1), g.Get(2, 3))
	}
	if g.Get(1, 2) != White || g.Get(3, 2) != White {
		t.Errorf("row ends should die")
	}
}
