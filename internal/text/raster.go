package text

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Mode selects whether a block becomes one sprite or one sprite per line.
type Mode int

const (
	Block Mode = iota
	PerLine
)

// MinMargin is the transparent border kept around every sprite.
const MinMargin = 40

// Style is the paint applied to a block.
type Style struct {
	Fill         color.RGBA
	Outline      color.RGBA
	OutlineWidth int
	ShadowOffset int
}

// Margin is wide enough that neither the outline nor the shadow is clipped.
func (s Style) Margin() int {
	m := s.OutlineWidth
	if s.ShadowOffset > m {
		m = s.ShadowOffset
	}
	if 2*m > MinMargin {
		return 2 * m
	}
	return MinMargin
}

// Rasterize draws the layout with st. Block mode returns a single sprite;
// PerLine returns one sprite per line, all at the layout's size.
func Rasterize(l Layout, st Style, mode Mode) []*image.RGBA {
	l.Stroke = st.OutlineWidth
	if mode == Block || len(l.Lines) <= 1 {
		return []*image.RGBA{rasterize(l, st)}
	}
	sprites := make([]*image.RGBA, len(l.Lines))
	for i := range l.Lines {
		sprites[i] = rasterize(l.Line(i), st)
	}
	return sprites
}

func rasterize(l Layout, st Style) *image.RGBA {
	face := l.font().Face(l.Size)
	defer face.Close()

	m := l.measure(face)
	margin := st.Margin()
	bounds := image.Rect(0, 0, m.W+2*margin, m.H+2*margin)

	coverage := image.NewAlpha(bounds)
	d := &font.Drawer{Dst: coverage, Src: image.Opaque, Face: face}
	inner := m.W - 2*l.Stroke
	for i, line := range l.Lines {
		x := margin + l.Stroke + (inner-m.LineW[i])/2
		y := margin + l.Stroke + i*m.Advance + m.Ascent
		d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
		d.DrawString(line)
	}

	dst := image.NewRGBA(bounds)
	outline := image.NewUniform(st.Outline)

	if s := st.ShadowOffset; s > 0 {
		xdraw.DrawMask(dst, bounds, outline, image.Point{}, coverage, image.Pt(-s, -s), xdraw.Over)
	}
	if st.OutlineWidth > 0 {
		stroke := dilate(coverage, st.OutlineWidth)
		xdraw.DrawMask(dst, bounds, outline, image.Point{}, stroke, image.Point{}, xdraw.Over)
	}
	xdraw.DrawMask(dst, bounds, image.NewUniform(st.Fill), image.Point{}, coverage, image.Point{}, xdraw.Over)
	return dst
}
