// Package life implements the cellular-automaton engine: the outer-totalistic
// two-state rule family (B.../S... notation, 2^18 rules including Conway's
// Game of Life), the three-state Immigration game, toroidal grids, and the
// Golly-compatible RLE pattern codec.
package life

import (
	"fmt"
	"strconv"
	"strings"
)

// State is a single cell state. 0 is always the quiescent (white) state.
type State uint8

// Named states. Black and Red share the value 1: two-state rules use
// White/Black, the Immigration game uses White/Red/Blue.
const (
	White State = 0
	Black State = 1
	Red   State = 1
	Blue  State = 2
)

// Rule computes the next state of a cell from its current state and its
// eight Moore neighbors.
type Rule interface {
	// Next returns the successor state for a cell with the given neighbors.
	Next(cell State, neighbors *[8]State) State

	// States reports how many cell states the rule uses (2 or 3).
	States() int

	// String returns the canonical rule notation, e.g. "B3/S23".
	String() string
}

// Lifelike is an outer-totalistic two-state rule, encoded as two 9-bit
// masks over neighbor counts 0-8. The family has 2^18 members; B3/S23 is
// the Game of Life.
type Lifelike struct {
	birth   uint16
	survive uint16
}

// NewLifelike builds a rule from explicit birth and survival counts.
// Counts outside 0-8 are rejected. Birth on zero neighbors is rejected:
// a B0 rule never settles on a finite torus, and none of the experiments
// use one.
func NewLifelike(birth, survive []int) (Lifelike, error) {
	var r Lifelike
	for _, n := range birth {
		if n < 0 || n > 8 {
			return Lifelike{}, fmt.Errorf("birth count %d out of range 0-8", n)
		}
		if n == 0 {
			return Lifelike{}, fmt.Errorf("B0 rules are not supported")
		}
		r.birth |= 1 << uint(n)
	}
	for _, n := range survive {
		if n < 0 || n > 8 {
			return Lifelike{}, fmt.Errorf("survival count %d out of range 0-8", n)
		}
		r.survive |= 1 << uint(n)
	}
	return r, nil
}

// GameOfLife returns B3/S23.
func GameOfLife() Lifelike {
	r, _ := NewLifelike([]int{3}, []int{2, 3})
	return r
}

// Births reports whether a dead cell with n live neighbors is born.
func (r Lifelike) Births(n int) bool { return n >= 0 && n <= 8 && r.birth&(1<<uint(n)) != 0 }

// Survives reports whether a live cell with n live neighbors survives.
func (r Lifelike) Survives(n int) bool { return n >= 0 && n <= 8 && r.survive&(1<<uint(n)) != 0 }

// Next implements Rule.
func (r Lifelike) Next(cell State, neighbors *[8]State) State {
	live := 0
	for _, s := range neighbors {
		if s != White {
			live++
		}
	}
	if cell == White {
		if r.birth&(1<<uint(live)) != 0 {
			return Black
		}
		return White
	}
	if r.survive&(1<<uint(live)) != 0 {
		return Black
	}
	return White
}

// States implements Rule.
func (r Lifelike) States() int { return 2 }

// String implements Rule. Digits are emitted in ascending order, so the
// output is canonical: ParseRule(r.String()) round-trips.
func (r Lifelike) String() string {
	var b strings.Builder
	b.WriteString("B")
	for n := 0; n <= 8; n++ {
		if r.birth&(1<<uint(n)) != 0 {
			b.WriteByte(byte('0' + n))
		}
	}
	b.WriteString("/S")
	for n := 0; n <= 8; n++ {
		if r.survive&(1<<uint(n)) != 0 {
			b.WriteByte(byte('0' + n))
		}
	}
	return b.String()
}

// Immigration is the three-state Immigration game: Game of Life dynamics
// where live cells carry a color (Red or Blue). A newborn cell takes the
// majority color of its three live parents; survivors keep their color.
type Immigration struct{}

// Next implements Rule.
func (Immigration) Next(cell State, neighbors *[8]State) State {
	live, red := 0, 0
	for _, s := range neighbors {
		if s != White {
			live++
			if s == Red {
				red++
			}
		}
	}
	if cell == White {
		if live != 3 {
			return White
		}
		// Exactly three parents, so one color always holds the majority.
		if red >= 2 {
			return Red
		}
		return Blue
	}
	if live == 2 || live == 3 {
		return cell
	}
	return White
}

// States implements Rule.
func (Immigration) States() int { return 3 }

// String implements Rule.
func (Immigration) String() string { return "Immigration" }

// Size is a universe size parsed from a ":Tw,h" rule suffix.
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether no topology suffix was present.
func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// ParseRule parses Golly rule notation: "B3/S23", "b36/s23",
// "Immigration", each optionally followed by a torus suffix such as
// ":T60,60". The returned Size is zero when no suffix was given.
func ParseRule(s string) (Rule, Size, error) {
	notation := strings.TrimSpace(s)
	if notation == "" {
		return nil, Size{}, fmt.Errorf("empty rule")
	}

	var size Size
	if i := strings.Index(notation, ":"); i >= 0 {
		var err error
		size, err = parseTorus(notation[i+1:])
		if err != nil {
			return nil, Size{}, fmt.Errorf("rule %q: %w", s, err)
		}
		notation = notation[:i]
	}

	if strings.EqualFold(notation, "Immigration") {
		return Immigration{}, size, nil
	}

	parts := strings.Split(notation, "/")
	if len(parts) != 2 {
		return nil, Size{}, fmt.Errorf("rule %q: want B.../S... notation", s)
	}
	birth, err := parseCounts(parts[0], 'B')
	if err != nil {
		return nil, Size{}, fmt.Errorf("rule %q: %w", s, err)
	}
	survive, err := parseCounts(parts[1], 'S')
	if err != nil {
		return nil, Size{}, fmt.Errorf("rule %q: %w", s, err)
	}
	r, err := NewLifelike(birth, survive)
	if err != nil {
		return nil, Size{}, fmt.Errorf("rule %q: %w", s, err)
	}
	return r, size, nil
}

func parseCounts(part string, prefix byte) ([]int, error) {
	if part == "" || (part[0] != prefix && part[0] != prefix+('a'-'A')) {
		return nil, fmt.Errorf("missing %c prefix in %q", prefix, part)
	}
	seen := [9]bool{}
	var counts []int
	for _, c := range part[1:] {
		if c < '0' || c > '8' {
			return nil, fmt.Errorf("invalid neighbor count %q", string(c))
		}
		n := int(c - '0')
		if seen[n] {
			return nil, fmt.Errorf("duplicate neighbor count %d", n)
		}
		seen[n] = true
		counts = append(counts, n)
	}
	return counts, nil
}

func parseTorus(s string) (Size, error) {
	if len(s) < 2 || (s[0] != 'T' && s[0] != 't') {
		return Size{}, fmt.Errorf("unsupported topology %q (only T tori)", s)
	}
	dims := strings.Split(s[1:], ",")
	if len(dims) != 2 {
		return Size{}, fmt.Errorf("torus %q: want Twidth,height", s)
	}
	w, err := strconv.Atoi(dims[0])
	if err != nil {
		return Size{}, fmt.Errorf("torus width %q: %w", dims[0], err)
	}
	h, err := strconv.Atoi(dims[1])
	if err != nil {
		return Size{}, fmt.Errorf("torus height %q: %w", dims[1], err)
	}
	if w <= 0 || h <= 0 {
		return Size{}, fmt.Errorf("torus %q: dimensions must be positive", s)
	}
	return Size{Width: w, Height: h}, nil
}
