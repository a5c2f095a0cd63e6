package evolve

import (
	"fmt"

	"github.com/pdturney/spots-and-stripes/internal/life"
)

// NumTargets is the number of built-in target patterns.
const NumTargets = 5

// Target builds one of the five target patterns at the given size:
//
//	1: four quadrant spots (a checkerboard of two blocks)
//	2: two vertical stripes
//	3: three vertical stripes
//	4: five bands (two-state) or four bands (Immigration)
//	5: two nested triangles
//
// The two inks of the palette fill the pattern; in the two-state palette
// the second ink is White, giving the black-and-white targets of the
// published experiments. Size must be even and at least 12 so every band
// width stays positive.
func Target(n int, palette Palette, size int) (*life.Grid, error) {
	if n < 1 || n > NumTargets {
		return nil, fmt.Errorf("target number must be 1-%d, got %d", NumTargets, n)
	}
	if size < 12 || size%2 != 0 {
		return nil, fmt.Errorf("target size must be even and >= 12, got %d", size)
	}
	a, b := palette.inks()
	g, err := life.NewGrid(size, size)
	if err != nil {
		return nil, err
	}
	half := size / 2

	switch n {
	case 1:
		// Quadrants: ink A top-left and bottom-right, ink B elsewhere.
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if (x < half) == (y < half) {
					g.Set(x, y, a)
				} else {
					g.Set(x, y, b)
				}
			}
		}
	case 2:
		// Two vertical stripes: A on the left, B on the right.
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if x < half {
					g.Set(x, y, a)
				} else {
					g.Set(x, y, b)
				}
			}
		}
	case 3:
		// Three vertical stripes. The middle stripe is black in the
		// two-state palette but blue in the Immigration palette.
		mid, outer := a, b
		if palette == PaletteImmigration {
			mid, outer = b, a
		}
		third := size / 3
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				if x >= third && x < size-third {
					g.Set(x, y, mid)
				} else {
					g.Set(x, y, outer)
				}
			}
		}
	case 4:
		fillBands(g, bandWidths(palette, size), a, b)
	case 5:
		// Two stacked triangles, each filling half the grid. The triangle
		// ink is black in the two-state palette and blue under Immigration.
		tri, bg := a, b
		if palette == PaletteImmigration {
			tri, bg = b, a
		}
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				ty := y % half
				dist := x - half
				if dist < 0 {
					dist = half - 1 - x
				}
				// Top triangle is drawn point-up; the bottom one is
				// inverted, swapping the inks. The bottom boundary diagonal
				// belongs to the surround.
				if y < half {
					if ty >= dist {
						g.Set(x, y, tri)
					} else {
						g.Set(x, y, bg)
					}
				} else {
					if ty > dist {
						g.Set(x, y, bg)
					} else {
						g.Set(x, y, tri)
					}
				}
			}
		}
	}
	return g, nil
}

// bandWidths returns the vertical band layout of target 4. The two-state
// experiments use five bands (blank, ink, blank, ink, blank in a
// 2:3:2:3:2 ratio); the Immigration experiments use four equal red/blue
// bands.
func bandWidths(palette Palette, size int) []int {
	if palette == PaletteImmigration {
		q := size / 4
		return []int{q, q, q, size - 3*q}
	}
	narrow := size / 6
	wide := size / 4
	return []int{narrow, wide, narrow, wide, size - 2*wide - 2*narrow}
}

// fillBands paints vertical bands of alternating ink. The Immigration
// layout starts with ink A (red); the two-state layout starts with ink B
// (white) so the black bands sit in the interior.
func fillBands(g *life.Grid, widths []int, a, b life.State) {
	first, second := b, a
	if len(widths)%2 == 0 {
		first, second = a, b
	}
	x := 0
	for i, w := range widths {
		ink := first
		if i%2 == 1 {
			ink = second
		}
		for dx := 0; dx < w; dx++ {
			for y := 0; y < g.Height(); y++ {
				g.Set(x+dx, y, ink)
			}
		}
		x += w
	}
}
