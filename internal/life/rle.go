package life

import (
	"fmt"
	"strings"
)

// Pattern is a decoded RLE pattern file: the grid plus the metadata Golly
// stores in the header and comment lines.
type Pattern struct {
	Name string
	Rule string
	Grid *Grid
}

const rleLineWidth = 70

// EncodeRLE renders a grid as a Golly-compatible run-length-encoded
// pattern. Two-state grids use the b/o alphabet; grids under a rule with
// more states use the multistate alphabet (. for white, A for red, B for
// blue). An empty name omits the #N comment line.
func EncodeRLE(g *Grid, name, rule string) string {
	multistate := false
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.Get(x, y) > 1 {
				multistate = true
			}
		}
	}
	if strings.EqualFold(strings.SplitN(rule, ":", 2)[0], "Immigration") {
		multistate = true
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "#N %s\n", name)
	}
	fmt.Fprintf(&b, "x = %d, y = %d", g.Width(), g.Height())
	if rule != "" {
		fmt.Fprintf(&b, ", rule = %s", rule)
	}
	b.WriteByte('\n')

	tag := func(s State) byte {
		if multistate {
			switch s {
			case White:
				return '.'
			case Blue:
				return 'B'
			default:
				return 'A'
			}
		}
		if s == White {
			return 'b'
		}
		return 'o'
	}

	line := 0
	emit := func(count int, t byte) {
		var run string
		if count == 1 {
			run = string(t)
		} else {
			run = fmt.Sprintf("%d%c", count, t)
		}
		if line+len(run) > rleLineWidth {
			b.WriteByte('\n')
			line = 0
		}
		b.WriteString(run)
		line += len(run)
	}

	pendingRows := 0
	for y := 0; y < g.Height(); y++ {
		// Find the last non-white cell so trailing blanks can be dropped.
		end := g.Width() - 1
		for end >= 0 && g.Get(end, y) == White {
			end--
		}
		if end < 0 {
			pendingRows++
			continue
		}
		if pendingRows > 0 {
			emit(pendingRows, '$')
			pendingRows = 0
		}
		x := 0
		for x <= end {
			run := 1
			s := g.Get(x, y)
			for x+run <= end && g.Get(x+run, y) == s {
				run++
			}
			emit(run, tag(s))
			x += run
		}
		pendingRows = 1
	}
	emit(1, '!')
	b.WriteByte('\n')
	return b.String()
}

// DecodeRLE parses a Golly RLE pattern. It accepts #-prefixed comment
// lines, both the b/o and the ./A/B alphabets, run counts on $ row
// terminators, and ignores anything after the terminating '!'.
func DecodeRLE(data string) (*Pattern, error) {
	p := &Pattern{}
	var body strings.Builder
	headerSeen := false

	for _, raw := range strings.Split(data, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			if strings.HasPrefix(line, "#N ") {
				p.Name = strings.TrimSpace(line[3:])
			}
		case !headerSeen:
			if err := parseRLEHeader(line, p); err != nil {
				return nil, err
			}
			headerSeen = true
		default:
			body.WriteString(line)
		}
	}
	if !headerSeen {
		return nil, fmt.Errorf("rle: missing header line")
	}

	x, y := 0, 0
	count := 0
	for _, c := range body.String() {
		switch {
		case c >= '0' && c <= '9':
			count = count*10 + int(c-'0')
			continue
		case c == '$':
			if count == 0 {
				count = 1
			}
			y += count
			x = 0
		case c == '!':
			return p, nil
		default:
			var s State
			switch c {
			case 'b', '.':
				s = White
			case 'o', 'A':
				s = State(1)
			case 'B':
				s = State(2)
			default:
				return nil, fmt.Errorf("rle: unexpected character %q", string(c))
			}
			if count == 0 {
				count = 1
			}
			if y >= p.Grid.Height() || x+count > p.Grid.Width() {
				return nil, fmt.Errorf("rle: pattern overflows declared %dx%d extent",
					p.Grid.Width(), p.Grid.Height())
			}
			for i := 0; i < count; i++ {
				p.Grid.Set(x+i, y, s)
			}
			x += count
		}
		count = 0
	}
	return nil, fmt.Errorf("rle: missing '!' terminator")
}

func parseRLEHeader(line string, p *Pattern) error {
	// The rule value may itself contain a comma (torus suffixes such as
	// "B3/S23:T60,60"), so it must be peeled off before splitting on commas.
	rest := line
	if i := strings.Index(rest, "rule"); i >= 0 {
		ruleField := rest[i:]
		kv := strings.SplitN(ruleField, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("rle: malformed header field %q", ruleField)
		}
		p.Rule = strings.TrimSpace(kv[1])
		rest = strings.TrimSuffix(strings.TrimSpace(rest[:i]), ",")
	}

	var w, h int
	for _, field := range strings.Split(rest, ",") {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return fmt.Errorf("rle: malformed header field %q", field)
		}
		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		switch key {
		case "x":
			if _, err := fmt.Sscanf(val, "%d", &w); err != nil {
				return fmt.Errorf("rle: bad width %q", val)
			}
		case "y":
			if _, err := fmt.Sscanf(val, "%d", &h); err != nil {
				return fmt.Errorf("rle: bad height %q", val)
			}
		default:
			return fmt.Errorf("rle: unknown header field %q", key)
		}
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("rle: header missing positive x and y")
	}
	g, err := NewGrid(w, h)
	if err != nil {
		return err
	}
	p.Grid = g
	return nil
}
