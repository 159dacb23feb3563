package text

import (
	"strings"

	"golang.org/x/image/font"
)

// DefaultSpacing tightens line stacking, in pixels between lines.
const DefaultSpacing = -12

// Layout is one text block at one size. Measure and Rasterize both read it,
// so the spacing used to fit is always the spacing used to draw.
type Layout struct {
	Lines   []string
	Font    *Font
	Size    int
	Stroke  int
	Spacing int
}

// Metrics is the measured box of a Layout including outline inflation.
type Metrics struct {
	W, H    int
	LineW   []int
	Ascent  int
	LineH   int // ascent + descent of one line
	Advance int // baseline-to-baseline distance
}

// SplitLines splits text on newlines; it always returns at least one line.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

func (l Layout) WithSize(size int) Layout {
	l.Size = size
	return l
}

func (l Layout) Line(i int) Layout {
	l.Lines = []string{l.Lines[i]}
	return l
}

func (l Layout) font() *Font {
	if l.Font == nil {
		return Builtin()
	}
	return l.Font
}

// Measure returns the box the block occupies when drawn.
func (l Layout) Measure() Metrics {
	face := l.font().Face(l.Size)
	defer face.Close()
	return l.measure(face)
}

func (l Layout) measure(face font.Face) Metrics {
	fm := face.Metrics()
	m := Metrics{
		Ascent: fm.Ascent.Ceil(),
		LineW:  make([]int, len(l.Lines)),
	}
	m.LineH = m.Ascent + fm.Descent.Ceil()
	m.Advance = m.LineH + l.Spacing
	if m.Advance < 1 {
		m.Advance = 1
	}

	widest := 0
	for i, line := range l.Lines {
		m.LineW[i] = font.MeasureString(face, line).Ceil()
		if m.LineW[i] > widest {
			widest = m.LineW[i]
		}
	}

	n := len(l.Lines)
	if n == 0 {
		n = 1
	}
	m.W = widest + 2*l.Stroke
	m.H = m.LineH + (n-1)*m.Advance + 2*l.Stroke
	return m
}
