package scene

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/ivlev/promoreel/internal/compositor"
	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/motion"
	"github.com/ivlev/promoreel/internal/text"
	"github.com/ivlev/promoreel/internal/timing"
)

var austin = Row{
	Filename:   "base.mp4",
	City:       "Austin",
	Date:       "2024-05-01",
	Venue:      "Moody Center",
	TicketLink: "tix.example/austin",
}

func TestBlocks(t *testing.T) {
	b := Blocks(austin, config.DefaultHeadline)

	want := [3][]string{
		{"LAWRENCE", "WITH JACOB JEFFRIES"},
		{"2024-05-01", "AUSTIN", "MOODY CENTER"},
		{"TICKETS ON SALE NOW", "TIX.EXAMPLE/AUSTIN"},
	}
	for i := range want {
		if b[i].Role != Roles[i] {
			t.Errorf("block %d role %s", i, b[i].Role)
		}
		if !reflect.DeepEqual(b[i].Lines, want[i]) {
			t.Errorf("block %d lines %q, want %q", i, b[i].Lines, want[i])
		}
	}
	if b[0].FadeOut != IntroFadeOut || b[1].FadeIn != InfoFadeIn || b[2].FadeIn != CTAFadeIn {
		t.Errorf("unexpected fades %+v", b)
	}
}

func TestBlocksMissingFields(t *testing.T) {
	b := Blocks(Row{Filename: "x.mp4"}, "Héllo")
	if got := b[1].Lines; !reflect.DeepEqual(got, []string{"", "UNKNOWN", ""}) {
		t.Errorf("info lines %q", got)
	}
	if got := b[2].Lines; !reflect.DeepEqual(got, []string{"TICKETS ON SALE NOW", ""}) {
		t.Errorf("cta lines %q", got)
	}
	if got := b[0].Lines[0]; got != "HÉLLO" {
		t.Errorf("headline %q", got)
	}
}

func newBuilder(t *testing.T, v motion.Variant, w, h int) *Builder {
	t.Helper()
	p, err := motion.New(v, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	st := config.Default()
	st.Motion = v
	return &Builder{
		Fitter:  text.NewFitter(),
		Font:    text.Builtin(),
		Style:   st,
		Profile: p,
		CanvasW: w,
		CanvasH: h,
	}
}

func background(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{20, 40, 200, 255}), image.Point{}, draw.Src)
	return img
}

func countFill(img *image.RGBA, fill color.RGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == fill.R && img.Pix[i+1] == fill.G && img.Pix[i+2] == fill.B && img.Pix[i+3] == 255 {
			n++
		}
	}
	return n
}

// A 20 s 1080x1920 clip with the static profile: each layer is fully opaque
// in the middle of its window and is the only thing drawn there.
func TestStaticScenario(t *testing.T) {
	const w, h, d = 1080, 1920, 20.0
	b := newBuilder(t, motion.Static, w, h)
	windows, err := timing.Canonical.Allocate(d)
	if err != nil {
		t.Fatal(err)
	}
	layers, err := b.Build(austin, windows)
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(layers))
	}

	fill := b.Style.TextColor.RGBA()
	checks := []struct {
		at    float64
		layer int
	}{
		{1, 0},
		{10, 1},
		{19, 2},
	}
	for _, c := range checks {
		l := layers[c.layer]
		t.Run(l.Name, func(t *testing.T) {
			for _, e := range l.Elements {
				st := l.Profile.State(e.Placement, c.at-l.Window.Start)
				if st.Opacity != 1 {
					t.Errorf("opacity %.3f at t=%.0f", st.Opacity, c.at)
				}
				if e.Placement.W > w || e.Placement.H > h {
					t.Errorf("sprite %dx%d larger than canvas", e.Placement.W, e.Placement.H)
				}
			}

			full := background(w, h)
			compositor.New(layers, 24).Compose(full, c.at)
			only := background(w, h)
			compositor.New([]compositor.Layer{l}, 24).Compose(only, c.at)

			if !reflect.DeepEqual(full.Pix, only.Pix) {
				t.Errorf("layers other than %s are visible at t=%.0f", l.Name, c.at)
			}
			n := countFill(full, fill)
			t.Logf("%s: %d fill pixels", l.Name, n)
			if n == 0 {
				t.Error("no fully opaque text pixels")
			}
		})
	}
}

func TestStaticScenarioFits(t *testing.T) {
	const w, h = 1080, 1920
	b := newBuilder(t, motion.Static, w, h)
	windows, _ := timing.Canonical.Allocate(20)
	layers, err := b.Build(austin, windows)
	if err != nil {
		t.Fatal(err)
	}
	tw, th := text.Target(w, h)
	margin := b.paint().Margin()
	for _, l := range layers {
		e := l.Elements[0]
		inkW, inkH := e.Placement.W-2*margin, e.Placement.H-2*margin
		if inkW > tw || inkH > th {
			t.Errorf("%s: text box %dx%d exceeds %dx%d", l.Name, inkW, inkH, tw, th)
		}
		centre := e.Placement.HomeX + float64(e.Placement.W)/2
		if math.Abs(centre-w/2) > 0.5 {
			t.Errorf("%s: not centred, centre x %.1f", l.Name, centre)
		}
	}
}

// SplitConvergence on a 1080-wide canvas: lines start fully off canvas and
// settle centred on a common axis.
func TestSplitConvergenceScenario(t *testing.T) {
	const w, h = 1080, 1920
	b := newBuilder(t, motion.SplitConvergence, w, h)
	windows, _ := timing.Canonical.Allocate(20)
	layers, err := b.Build(austin, windows)
	if err != nil {
		t.Fatal(err)
	}

	if got := layers[0].Profile.Variant(); got != motion.Static {
		t.Errorf("intro should stay a block, got %s", got)
	}
	info := layers[1]
	if len(info.Elements) != 3 {
		t.Fatalf("expected 3 line elements, got %d", len(info.Elements))
	}

	prevY := math.Inf(-1)
	for i, e := range info.Elements {
		p := e.Placement
		start := info.Profile.State(p, 0)
		if start.X+float64(p.W) > 0 && start.X < w {
			t.Errorf("line %d overlaps the canvas at window start: x=%.1f w=%d", i, start.X, p.W)
		}

		final := info.Profile.State(p, 0.5)
		centre := final.X + float64(p.W)/2
		if math.Abs(centre-w/2) > 0.5 {
			t.Errorf("line %d final centre %.1f", i, centre)
		}
		if final.Y <= prevY {
			t.Errorf("line %d not stacked below previous", i)
		}
		prevY = final.Y
	}

	// Nothing from the info block is on screen at its first frame.
	frame := background(w, h)
	before := background(w, h)
	compositor.New([]compositor.Layer{info}, 24).Compose(frame, info.Window.Start)
	if !reflect.DeepEqual(frame.Pix, before.Pix) {
		t.Error("split lines visible at window start")
	}
}

func TestTicketQR(t *testing.T) {
	const w, h = 1080, 1920
	b := newBuilder(t, motion.Static, w, h)
	b.Style.TicketQR = true
	windows, _ := timing.Canonical.Allocate(20)

	layers, err := b.Build(austin, windows)
	if err != nil {
		t.Fatal(err)
	}
	cta := layers[2]
	if len(cta.Elements) != 2 {
		t.Fatalf("expected text and qr elements, got %d", len(cta.Elements))
	}
	txt, qr := cta.Elements[0].Placement, cta.Elements[1].Placement
	if qr.W < QRSize(w, h) {
		t.Errorf("qr size %d", qr.W)
	}
	margin := float64(b.paint().Margin())
	if qr.HomeY < txt.HomeY+float64(txt.H)-margin {
		t.Errorf("qr overlaps text: qr y %.0f, text bottom %.0f", qr.HomeY, txt.HomeY+float64(txt.H)-margin)
	}
	if qr.HomeY+float64(qr.H) > h {
		t.Error("qr below the canvas")
	}

	// No link, no code.
	layers, err = b.Build(Row{Filename: "x.mp4", City: "Austin"}, windows)
	if err != nil {
		t.Fatal(err)
	}
	if len(layers[2].Elements) != 1 {
		t.Errorf("expected text only without a ticket link")
	}
}
