// Package compositor draws animated text layers over host video frames.
package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/promoreel/internal/motion"
	"github.com/ivlev/promoreel/internal/timing"
)

// Element is one sprite moved by its layer's profile. A block layer has one
// element; a split layer has one per line.
type Element struct {
	Sprite    *image.RGBA
	Placement motion.Placement
}

// Layer is a time-windowed group of elements sharing one motion profile.
type Layer struct {
	Name     string
	Window   timing.Window
	Profile  motion.Profile
	Elements []Element
}

// Active reports whether t falls in the layer window widened by bleed on
// both sides.
func (l Layer) Active(t, bleed float64) bool {
	return t >= l.Window.Start-bleed && t < l.Window.End()+bleed
}

// Compositor stacks layers over frames in slice order: the first layer is
// drawn directly above the video, the last on top.
type Compositor struct {
	Layers []Layer
	Bleed  float64
}

// BleedFor is the window widening used at a frame rate: half a frame, so a
// boundary that falls between two frames still lands on one of them.
func BleedFor(fps int) float64 {
	if fps <= 0 {
		return 0
	}
	return 0.5 / float64(fps)
}

func New(layers []Layer, fps int) *Compositor {
	return &Compositor{Layers: layers, Bleed: BleedFor(fps)}
}

// Compose draws every layer active at t onto dst, which already holds the
// host frame.
func (c *Compositor) Compose(dst *image.RGBA, t float64) {
	for _, l := range c.Layers {
		if !l.Active(t, c.Bleed) {
			continue
		}
		elapsed := t - l.Window.Start
		for _, e := range l.Elements {
			st := l.Profile.State(e.Placement, elapsed)
			drawElement(dst, e.Sprite, st)
		}
	}
}

func drawElement(dst *image.RGBA, sprite *image.RGBA, st motion.State) {
	if sprite == nil || st.Opacity <= 0 || st.Scale <= 0 {
		return
	}
	var mask image.Image
	if st.Opacity < 1 {
		mask = image.NewUniform(color.Alpha{A: uint8(st.Opacity*255 + 0.5)})
	}

	sb := sprite.Bounds()
	if st.Scale == 1 {
		at := image.Pt(int(math.Round(st.X)), int(math.Round(st.Y)))
		r := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
		draw.DrawMask(dst, r, sprite, sb.Min, mask, image.Point{}, draw.Over)
		return
	}

	// Масштаб относительно центра спрайта
	w := float64(sb.Dx()) * st.Scale
	h := float64(sb.Dy()) * st.Scale
	cx := st.X + float64(sb.Dx())/2
	cy := st.Y + float64(sb.Dy())/2
	r := image.Rect(
		int(math.Round(cx-w/2)), int(math.Round(cy-h/2)),
		int(math.Round(cx+w/2)), int(math.Round(cy+h/2)),
	)
	if r.Empty() {
		return
	}
	opts := &xdraw.Options{SrcMask: mask}
	xdraw.ApproxBiLinear.Scale(dst, r, sprite, sb, xdraw.Over, opts)
}
