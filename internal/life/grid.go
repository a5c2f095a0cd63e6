package life

import (
	"fmt"
	"strings"
)

// Grid is a finite rectangular universe of cells with toroidal wrap-around.
// The zero cell state is White. Coordinates are (x, y) with (0, 0) in the
// top-left corner.
type Grid struct {
	width  int
	height int
	cells  []State
	next   []State // scratch buffer reused across Step calls
}

// NewGrid returns an all-white grid of the given dimensions.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]State, width*height),
	}, nil
}

// MustGrid is NewGrid for static sizes that cannot fail.
func MustGrid(width, height int) *Grid {
	g, err := NewGrid(width, height)
	if err != nil {
		panic(err)
	}
	return g
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// Get returns the state at (x, y). Coordinates wrap around the torus.
func (g *Grid) Get(x, y int) State {
	return g.cells[g.index(x, y)]
}

// Set writes the state at (x, y). Coordinates wrap around the torus.
func (g *Grid) Set(x, y int, s State) {
	g.cells[g.index(x, y)] = s
}

func (g *Grid) index(x, y int) int {
	x %= g.width
	if x < 0 {
		x += g.width
	}
	y %= g.height
	if y < 0 {
		y += g.height
	}
	return y*g.width + x
}

// Step advances the whole grid one generation under the given rule.
// The update is synchronous: every next state is computed from the same
// snapshot of the current generation.
func (g *Grid) Step(rule Rule) {
	if g.next == nil {
		g.next = make([]State, len(g.cells))
	}
	var neigh [8]State
	for y := 0; y < g.height; y++ {
		up := y - 1
		if up < 0 {
			up = g.height - 1
		}
		down := y + 1
		if down == g.height {
			down = 0
		}
		for x := 0; x < g.width; x++ {
			left := x - 1
			if left < 0 {
				left = g.width - 1
			}
			right := x + 1
			if right == g.width {
				right = 0
			}
			neigh[0] = g.cells[up*g.width+left]
			neigh[1] = g.cells[up*g.width+x]
			neigh[2] = g.cells[up*g.width+right]
			neigh[3] = g.cells[y*g.width+left]
			neigh[4] = g.cells[y*g.width+right]
			neigh[5] = g.cells[down*g.width+left]
			neigh[6] = g.cells[down*g.width+x]
			neigh[7] = g.cells[down*g.width+right]
			g.next[y*g.width+x] = rule.Next(g.cells[y*g.width+x], &neigh)
		}
	}
	g.cells, g.next = g.next, g.cells
}

// Place blits sub into g so that sub's center coincides with g's center.
// Seeds are planted in the middle of the universe before growing.
func (g *Grid) Place(sub *Grid) error {
	if sub.width > g.width || sub.height > g.height {
		return fmt.Errorf("pattern %dx%d does not fit in %dx%d universe",
			sub.width, sub.height, g.width, g.height)
	}
	ox := (g.width - sub.width) / 2
	oy := (g.height - sub.height) / 2
	for y := 0; y < sub.height; y++ {
		for x := 0; x < sub.width; x++ {
			g.cells[(oy+y)*g.width+ox+x] = sub.cells[y*sub.width+x]
		}
	}
	return nil
}

// Window copies a centered width x height sub-grid out of g.
func (g *Grid) Window(width, height int) (*Grid, error) {
	if width > g.width || height > g.height {
		return nil, fmt.Errorf("window %dx%d larger than %dx%d grid",
			width, height, g.width, g.height)
	}
	out, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	ox := (g.width - width) / 2
	oy := (g.height - height) / 2
	for y := 0; y < height; y++ {
		copy(out.cells[y*width:(y+1)*width],
			g.cells[(oy+y)*g.width+ox:(oy+y)*g.width+ox+width])
	}
	return out, nil
}

// Count returns how many cells hold the given state.
func (g *Grid) Count(s State) int {
	n := 0
	for _, c := range g.cells {
		if c == s {
			n++
		}
	}
	return n
}

// Live returns how many cells are not White.
func (g *Grid) Live() int {
	return len(g.cells) - g.Count(White)
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		width:  g.width,
		height: g.height,
		cells:  make([]State, len(g.cells)),
	}
	copy(out.cells, g.cells)
	return out
}

// Equal reports whether two grids have identical dimensions and cells.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height {
		return false
	}
	for i, c := range g.cells {
		if other.cells[i] != c {
			return false
		}
	}
	return true
}

// String renders the grid for debugging: '.' for white, 'O' for black/red,
// 'X' for blue.
func (g *Grid) String() string {
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			switch g.cells[y*g.width+x] {
			case White:
				b.WriteByte('.')
			case Blue:
				b.WriteByte('X')
			default:
				b.WriteByte('O')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Grow plants seed in the center of an adultSize x adultSize torus and
// steps it the given number of generations, returning the adult grid.
// This mirrors the seed-to-adult development phase of the experiments.
func Grow(seed *Grid, rule Rule, steps, adultSize int) (*Grid, error) {
	if steps < 0 {
		return nil, fmt.Errorf("steps must be non-negative, got %d", steps)
	}
	adult, err := NewGrid(adultSize, adultSize)
	if err != nil {
		return nil, err
	}
	if err := adult.Place(seed); err != nil {
		return nil, err
	}
	for i := 0; i < steps; i++ {
		adult.Step(rule)
	}
	return adult, nil
}
