// Package evolve implements the evolutionary loop of the spots-and-stripes
// experiments: random seed generation, point mutation, tournament
// selection, target patterns, and the fitness evaluation that scores how
// closely a grown organism matches a target.
package evolve

import (
	"fmt"
	"math/rand"

	"github.com/pdturney/spots-and-stripes/internal/life"
)

// Palette identifies which pair of ink states a run uses. Two-state rules
// ink with Black on a White background; the Immigration game inks with Red
// and Blue.
type Palette int

const (
	PaletteTwoState Palette = iota
	PaletteImmigration
)

// PaletteFor returns the palette matching a rule's state count.
func PaletteFor(rule life.Rule) Palette {
	if rule.States() >= 3 {
		return PaletteImmigration
	}
	return PaletteTwoState
}

// inks returns the two ink states of the palette. For the two-state
// palette the second ink is White, so winning the coin flip for white
// leaves the cell blank.
func (p Palette) inks() (a, b life.State) {
	if p == PaletteImmigration {
		return life.Red, life.Blue
	}
	return life.Black, life.White
}

// RandomSeed generates a size x size seed grid. Each cell flips one biased
// coin per ink color; when both coins win the tie is broken with a fair
// coin, and when neither wins the cell stays white.
func RandomSeed(rng *rand.Rand, size int, probA, probB float64, palette Palette) (*life.Grid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("seed size must be positive, got %d", size)
	}
	if probA < 0 || probA > 1 || probB < 0 || probB > 1 {
		return nil, fmt.Errorf("seed probabilities must be in [0,1], got %v and %v", probA, probB)
	}
	inkA, inkB := palette.inks()
	g, err := life.NewGrid(size, size)
	if err != nil {
		return nil, err
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			winA := rng.Float64() < probA
			winB := rng.Float64() < probB
			if winA && winB {
				if rng.Float64() < 0.5 {
					winA = false
				} else {
					winB = false
				}
			}
			switch {
			case winA:
				g.Set(x, y, inkA)
			case winB:
				g.Set(x, y, inkB)
			}
		}
	}
	return g, nil
}

// Mutate returns a copy of seed with each cell independently hit with the
// given probability. In the two-state palette a hit cell switches to the
// opposite state half of the time (and is otherwise left alone); in the
// Immigration palette a hit cell moves to one of the two other states with
// equal probability.
func Mutate(rng *rand.Rand, seed *life.Grid, prob float64, palette Palette) *life.Grid {
	out := seed.Clone()
	if prob <= 0 {
		return out
	}
	for y := 0; y < seed.Height(); y++ {
		for x := 0; x < seed.Width(); x++ {
			if rng.Float64() >= prob {
				continue
			}
			cur := seed.Get(x, y)
			if palette == PaletteImmigration {
				// Move to one of the two other states.
				others := [2]life.State{}
				n := 0
				for _, s := range [3]life.State{life.White, life.Red, life.Blue} {
					if s != cur {
						others[n] = s
						n++
					}
				}
				if rng.Float64() < 0.5 {
					out.Set(x, y, others[0])
				} else {
					out.Set(x, y, others[1])
				}
				continue
			}
			// Two-state: flip with probability 0.5, otherwise leave as is.
			if rng.Float64() < 0.5 {
				if cur == life.White {
					out.Set(x, y, life.Black)
				} else {
					out.Set(x, y, life.White)
				}
			}
		}
	}
	return out
}
