package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/ivlev/promoreel/internal/motion"
	"github.com/ivlev/promoreel/internal/timing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func static(t *testing.T) motion.Profile {
	p, err := motion.New(motion.Static, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func layerAt(t *testing.T, name string, w timing.Window, sprite *image.RGBA, x, y float64) Layer {
	return Layer{
		Name:    name,
		Window:  w,
		Profile: static(t),
		Elements: []Element{{
			Sprite: sprite,
			Placement: motion.Placement{
				CanvasW: 100, CanvasH: 100,
				W: sprite.Bounds().Dx(), H: sprite.Bounds().Dy(),
				HomeX: x, HomeY: y,
				Duration: w.Duration,
			},
		}},
	}
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

func TestComposeWindows(t *testing.T) {
	layers := []Layer{
		layerAt(t, "a", timing.Window{Start: 0, Duration: 2}, solid(10, 10, red), 10, 10),
		layerAt(t, "b", timing.Window{Start: 2, Duration: 3}, solid(10, 10, green), 10, 10),
	}
	c := New(layers, 10)

	tests := []struct {
		t    float64
		want color.RGBA
	}{
		{0, red},
		{1.9, red},
		{2.0, green},
		{4.9, green},
		{5.2, black},
	}
	for _, tt := range tests {
		dst := solid(100, 100, black)
		c.Compose(dst, tt.t)
		if got := dst.RGBAAt(15, 15); got != tt.want {
			t.Errorf("t=%.2f: got %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestComposeOrder(t *testing.T) {
	// Overlapping windows: the later layer is drawn on top.
	layers := []Layer{
		layerAt(t, "bottom", timing.Window{Start: 0, Duration: 10}, solid(20, 20, red), 0, 0),
		layerAt(t, "top", timing.Window{Start: 0, Duration: 10}, solid(10, 10, blue), 0, 0),
	}
	dst := solid(100, 100, black)
	New(layers, 24).Compose(dst, 1)

	if got := dst.RGBAAt(5, 5); got != blue {
		t.Errorf("overlap pixel = %v, want blue", got)
	}
	if got := dst.RGBAAt(15, 15); got != red {
		t.Errorf("bottom-only pixel = %v, want red", got)
	}
}

func TestComposeBleed(t *testing.T) {
	l := layerAt(t, "a", timing.Window{Start: 1, Duration: 1}, solid(10, 10, red), 0, 0)
	c := New([]Layer{l}, 10)
	if c.Bleed != 0.05 {
		t.Fatalf("bleed = %f", c.Bleed)
	}
	if !l.Active(0.96, c.Bleed) || l.Active(0.9, c.Bleed) {
		t.Error("start bleed wrong")
	}
	if !l.Active(2.04, c.Bleed) || l.Active(2.06, c.Bleed) {
		t.Error("end bleed wrong")
	}
}

func TestComposeSkipsFrameAtWindowEnd(t *testing.T) {
	// No fade-out: the frame exactly at End is inside the bleed but outside
	// the window, so the next layer shows alone.
	layers := []Layer{
		layerAt(t, "info", timing.Window{Start: 4, Duration: 13}, solid(10, 10, red), 0, 0),
		layerAt(t, "cta", timing.Window{Start: 17, Duration: 3}, solid(5, 5, green), 0, 0),
	}
	c := New(layers, 24)

	dst := solid(100, 100, black)
	c.Compose(dst, 17.0)
	if got := dst.RGBAAt(8, 8); got != black {
		t.Errorf("info drawn at its window end: %v", got)
	}
	if got := dst.RGBAAt(2, 2); got != green {
		t.Errorf("cta missing at its start: %v", got)
	}
}

func TestComposeFade(t *testing.T) {
	l := layerAt(t, "a", timing.Window{Start: 0, Duration: 4}, solid(10, 10, color.RGBA{255, 255, 255, 255}), 0, 0)
	l.Elements[0].Placement.FadeIn = 1
	c := New([]Layer{l}, 24)

	dst := solid(100, 100, black)
	c.Compose(dst, 0.5)
	got := dst.RGBAAt(5, 5)
	t.Logf("half-faded pixel %v", got)
	if got.R < 120 || got.R > 135 || got.A != 255 {
		t.Errorf("expected about 50%% white over black, got %v", got)
	}
}

func TestComposeClips(t *testing.T) {
	layers := []Layer{
		layerAt(t, "off-left", timing.Window{Start: 0, Duration: 1}, solid(30, 30, red), -20, 90),
	}
	dst := solid(100, 100, black)
	New(layers, 24).Compose(dst, 0.5)

	if got := dst.RGBAAt(5, 95); got != red {
		t.Errorf("visible part not drawn: %v", got)
	}
	if got := dst.RGBAAt(15, 95); got != black {
		t.Errorf("drew past sprite edge: %v", got)
	}
}

func TestComposeScaled(t *testing.T) {
	sprite := solid(20, 20, red)
	dst := solid(100, 100, black)
	drawElement(dst, sprite, motion.State{X: 40, Y: 40, Scale: 2, Opacity: 1})

	// 20px sprite at 2x about its centre (50,50) covers 30..70.
	if got := dst.RGBAAt(32, 32); got != red {
		t.Errorf("scaled interior = %v", got)
	}
	if got := dst.RGBAAt(25, 25); got != black {
		t.Errorf("outside scaled box = %v", got)
	}
}

func TestComposeInvisible(t *testing.T) {
	dst := solid(10, 10, black)
	drawElement(dst, solid(10, 10, red), motion.State{Scale: 1, Opacity: 0})
	drawElement(dst, nil, motion.State{Scale: 1, Opacity: 1})
	if got := dst.RGBAAt(1, 1); got != black {
		t.Errorf("invisible element drew %v", got)
	}
}
