package timing

import (
	"errors"
	"fmt"
	"strings"
)

// MinDuration is the shortest video that still yields three usable windows.
const MinDuration = 1.0

var (
	ErrDurationTooShort = errors.New("video duration is below the minimum for three layers")
	ErrUnknownPolicy    = errors.New("unknown timing policy")
)

// Window is a half-open interval [Start, Start+Duration) on the video timeline, in seconds.
type Window struct {
	Start    float64
	Duration float64
}

func (w Window) End() float64 {
	return w.Start + w.Duration
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t float64) bool {
	return t >= w.Start && t < w.End()
}

// Policy fixes the two boundaries between Intro|Info and Info|CallToAction
// as fractions of the total duration.
type Policy struct {
	Name     string
	IntroEnd float64
	InfoEnd  float64
}

var (
	// Canonical gives Intro 20%, Info 65%, CallToAction 15%.
	Canonical = Policy{Name: "canonical", IntroEnd: 0.20, InfoEnd: 0.85}
	// Legacy gives Intro 25%, Info 55%, CallToAction 20%.
	Legacy = Policy{Name: "legacy", IntroEnd: 0.25, InfoEnd: 0.80}
)

func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Canonical.Name:
		return Canonical, nil
	case Legacy.Name:
		return Legacy, nil
	default:
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

func (p Policy) validate() error {
	if p.IntroEnd <= 0 || p.InfoEnd <= p.IntroEnd || p.InfoEnd >= 1 {
		return fmt.Errorf("timing policy %q has invalid boundaries %.2f/%.2f", p.Name, p.IntroEnd, p.InfoEnd)
	}
	return nil
}

// Allocate splits [0, d) into the Intro, Info and CallToAction windows.
// The last window ends exactly at d.
func (p Policy) Allocate(d float64) ([3]Window, error) {
	var windows [3]Window
	if err := p.validate(); err != nil {
		return windows, err
	}
	if d < MinDuration {
		return windows, fmt.Errorf("%w: %.3fs < %.1fs", ErrDurationTooShort, d, MinDuration)
	}

	introEnd := d * p.IntroEnd
	infoEnd := d * p.InfoEnd

	windows[0] = Window{Start: 0, Duration: introEnd}
	windows[1] = Window{Start: introEnd, Duration: infoEnd - introEnd}
	windows[2] = Window{Start: infoEnd, Duration: d - infoEnd}
	return windows, nil
}
