package motion

import (
	"math/rand"
	"sync"
)

// State is where an element sits at a moment: X/Y is the top-left corner of
// the unscaled sprite, Scale is applied about the sprite centre.
type State struct {
	X, Y    float64
	Scale   float64
	Opacity float64
}

// Placement is the static geometry a profile animates around.
type Placement struct {
	CanvasW, CanvasH int
	W, H             int // sprite size

	// HomeX/HomeY is the resting top-left position.
	HomeX, HomeY float64

	// Line is the element's index inside its layer; SplitConvergence alternates on it.
	Line int

	Duration float64
	FadeIn   float64
	FadeOut  float64
}

// Profile maps elapsed time inside a layer window to a State.
// Negative elapsed time yields the pre-entry resting state.
type Profile interface {
	Variant() Variant
	State(p Placement, elapsed float64) State
}

const (
	LiftTravel   = 50.0
	LiftSpan     = 0.5
	ZoomStart    = 1.25
	ZoomSpan     = 0.35
	DriftRate    = 18.0
	ShakeAmp     = 4.0
	ConvergeSpan = 0.5
)

// envelope is the crossfade opacity at elapsed time e. The window end is
// exclusive: a layer is never drawn at e >= Duration, fade-out or not.
func envelope(p Placement, e float64) float64 {
	if e < 0 {
		if p.FadeIn > 0 {
			return 0
		}
		return 1
	}
	if p.Duration > 0 && e >= p.Duration {
		return 0
	}
	op := 1.0
	if p.FadeIn > 0 && e < p.FadeIn {
		op = e / p.FadeIn
	}
	if p.FadeOut > 0 {
		if out := (p.Duration - e) / p.FadeOut; out < op {
			op = clamp01(out)
		}
	}
	return op
}

func rest(p Placement, e float64) State {
	return State{X: p.HomeX, Y: p.HomeY, Scale: 1, Opacity: envelope(p, e)}
}

type staticProfile struct{}

func (staticProfile) Variant() Variant { return Static }

func (staticProfile) State(p Placement, e float64) State {
	return rest(p, e)
}

type liftProfile struct{}

func (liftProfile) Variant() Variant { return CinematicLift }

func (liftProfile) State(p Placement, e float64) State {
	s := rest(p, e)
	s.Y = p.HomeY + LiftTravel - progress(e, LiftSpan)*LiftTravel
	return s
}

type zoomProfile struct{}

func (zoomProfile) Variant() Variant { return ZoomPop }

func (zoomProfile) State(p Placement, e float64) State {
	s := rest(p, e)
	s.Scale = lerp(ZoomStart, 1.0, progress(e, ZoomSpan))
	return s
}

type driftProfile struct{}

func (driftProfile) Variant() Variant { return GhostDrift }

func (driftProfile) State(p Placement, e float64) State {
	s := rest(p, e)
	if e > 0 {
		s.X = p.HomeX + DriftRate*e
	}
	return s
}

// shakeProfile is the only profile with sampling noise. The source is
// guarded so a profile can be shared by every element of a render.
type shakeProfile struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (*shakeProfile) Variant() Variant { return Shake }

func (sp *shakeProfile) State(p Placement, e float64) State {
	s := rest(p, e)
	if e < 0 {
		return s
	}
	sp.mu.Lock()
	jitter := (sp.rng.Float64()*2 - 1) * ShakeAmp
	sp.mu.Unlock()
	s.Y += jitter
	return s
}

type convergeProfile struct{}

func (convergeProfile) Variant() Variant { return SplitConvergence }

func (convergeProfile) State(p Placement, e float64) State {
	s := rest(p, e)
	startX := -float64(p.W)
	if p.Line%2 == 1 {
		startX = float64(p.CanvasW)
	}
	s.X = lerp(startX, p.HomeX, easeOutQuart(progress(e, ConvergeSpan)))
	return s
}
