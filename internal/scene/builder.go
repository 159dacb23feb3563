package scene

import (
	"fmt"
	"image"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ivlev/promoreel/internal/compositor"
	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/motion"
	"github.com/ivlev/promoreel/internal/text"
	"github.com/ivlev/promoreel/internal/timing"
)

const (
	// LineGutter is added under every line of a split block.
	LineGutter = 20
	// QRGap separates the call-to-action text from its ticket code.
	QRGap = 24
)

// Builder lays out and rasterizes the layers of one render. It is cheap to
// build and must not be shared between renders: the profile may carry a
// random source.
type Builder struct {
	Fitter  *text.Fitter
	Font    *text.Font
	Style   config.Style
	Profile motion.Profile

	CanvasW, CanvasH int
}

func (b *Builder) paint() text.Style {
	return text.Style{
		Fill:         b.Style.TextColor.RGBA(),
		Outline:      b.Style.OutlineColor.RGBA(),
		OutlineWidth: b.Style.OutlineWidth,
		ShadowOffset: b.Style.ShadowOffset,
	}
}

// Build returns the three layers for row in stacking order.
func (b *Builder) Build(row Row, windows [3]timing.Window) ([]compositor.Layer, error) {
	if b.Fitter == nil {
		b.Fitter = text.NewFitter()
	}
	blocks := Blocks(row, b.Style.Headline)
	layers := make([]compositor.Layer, 0, len(blocks))

	for i, blk := range blocks {
		var qr *image.RGBA
		if blk.Role == CallToAction && b.Style.TicketQR && row.TicketLink != "" {
			var err error
			if qr, err = b.ticketCode(row.TicketLink); err != nil {
				return nil, err
			}
		}
		layers = append(layers, b.layer(blk, windows[i], qr))
	}
	return layers, nil
}

func (b *Builder) layer(blk Block, w timing.Window, qr *image.RGBA) compositor.Layer {
	maxSize := b.Style.BodySize
	if blk.Role == Intro {
		maxSize = b.Style.TitleSize
	}

	profile := b.Profile
	split := profile.Variant().PerLine()
	if split && blk.Role == Intro {
		// Заставка остаётся блоком: построчный въезд только у инфо и CTA
		profile, _ = motion.New(motion.Static, nil)
		split = false
	}

	layout := text.Layout{
		Lines:   blk.Lines,
		Font:    b.Font,
		Stroke:  b.Style.OutlineWidth,
		Spacing: text.DefaultSpacing,
	}
	tw, th := text.Target(b.CanvasW, b.CanvasH)
	if qr != nil {
		th -= qr.Bounds().Dy() + QRGap
	}
	layout.Size = b.Fitter.Fit(layout, maxSize, tw, th)

	base := motion.Placement{
		CanvasW:  b.CanvasW,
		CanvasH:  b.CanvasH,
		Duration: w.Duration,
		FadeIn:   blk.FadeIn,
		FadeOut:  blk.FadeOut,
	}

	l := compositor.Layer{Name: blk.Role.String(), Window: w, Profile: profile}
	if split {
		l.Elements = b.splitElements(layout, base, qr)
	} else {
		l.Elements = b.blockElements(layout, base, qr)
	}
	return l
}

// blockElements centres the block, and the ticket code under it, as a group.
func (b *Builder) blockElements(layout text.Layout, base motion.Placement, qr *image.RGBA) []compositor.Element {
	paint := b.paint()
	sprite := text.Rasterize(layout, paint, text.Block)[0]
	margin := paint.Margin()
	m := layout.Measure()

	groupH := m.H
	if qr != nil {
		groupH += QRGap + qr.Bounds().Dy()
	}
	top := float64(b.CanvasH-groupH)/2 + float64(b.Style.OffsetY)

	p := base
	p.W, p.H = sprite.Bounds().Dx(), sprite.Bounds().Dy()
	p.HomeX = float64(b.CanvasW-p.W)/2 + float64(b.Style.OffsetX)
	p.HomeY = top - float64(margin)
	elems := []compositor.Element{{Sprite: sprite, Placement: p}}

	if qr != nil {
		elems = append(elems, b.qrElement(qr, base, top+float64(m.H+QRGap), 1))
	}
	return elems
}

// splitElements stacks one sprite per line. Each line takes its measured
// height plus LineGutter and the stack is centred as a whole.
func (b *Builder) splitElements(layout text.Layout, base motion.Placement, qr *image.RGBA) []compositor.Element {
	paint := b.paint()
	sprites := text.Rasterize(layout, paint, text.PerLine)
	margin := float64(paint.Margin())

	heights := make([]int, len(layout.Lines))
	total := 0
	for i := range layout.Lines {
		heights[i] = layout.Line(i).Measure().H + LineGutter
		total += heights[i]
	}
	if qr != nil {
		total += QRGap + qr.Bounds().Dy()
	}

	cursor := float64(b.CanvasH)/2 - float64(total)/2 + float64(b.Style.OffsetY)
	elems := make([]compositor.Element, 0, len(sprites)+1)
	for i, s := range sprites {
		p := base
		p.Line = i
		p.W, p.H = s.Bounds().Dx(), s.Bounds().Dy()
		p.HomeX = float64(b.CanvasW-p.W)/2 + float64(b.Style.OffsetX)
		p.HomeY = cursor - margin
		p.FadeIn, p.FadeOut = 0, 0
		elems = append(elems, compositor.Element{Sprite: s, Placement: p})
		cursor += float64(heights[i])
	}

	if qr != nil {
		split := base
		split.FadeIn, split.FadeOut = 0, 0
		elems = append(elems, b.qrElement(qr, split, cursor+QRGap, len(sprites)))
	}
	return elems
}

func (b *Builder) qrElement(qr *image.RGBA, base motion.Placement, top float64, line int) compositor.Element {
	p := base
	p.Line = line
	p.W, p.H = qr.Bounds().Dx(), qr.Bounds().Dy()
	p.HomeX = float64(b.CanvasW-p.W)/2 + float64(b.Style.OffsetX)
	p.HomeY = top
	return compositor.Element{Sprite: qr, Placement: p}
}

// QRSize is the ticket code edge for a canvas: a fifth of the short side.
func QRSize(canvasW, canvasH int) int {
	short := canvasW
	if canvasH < short {
		short = canvasH
	}
	return short / 5
}

func (b *Builder) ticketCode(link string) (*image.RGBA, error) {
	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("ticket qr: %w", err)
	}
	img := q.Image(QRSize(b.CanvasW, b.CanvasH))
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
