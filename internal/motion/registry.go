package motion

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type Variant string

const (
	Static           Variant = "static"
	CinematicLift    Variant = "cinematic-lift"
	ZoomPop          Variant = "zoom-pop"
	GhostDrift       Variant = "ghost-drift"
	Shake            Variant = "shake"
	SplitConvergence Variant = "split-convergence"
)

// Variants lists every supported profile in display order.
var Variants = []Variant{Static, CinematicLift, ZoomPop, GhostDrift, Shake, SplitConvergence}

// PerLine reports whether the variant animates each text line on its own.
func (v Variant) PerLine() bool {
	return v == SplitConvergence
}

// ParseVariant accepts the canonical names as well as the UI spellings
// ("Split Convergence", "zoom_pop", ...).
func ParseVariant(s string) (Variant, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	if norm == "" {
		return Static, nil
	}
	for _, v := range Variants {
		if string(v) == norm {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown motion profile: %s", s)
}

// New creates the profile for a variant. rng feeds Shake only; nil selects a
// time-seeded source.
func New(v Variant, rng *rand.Rand) (Profile, error) {
	switch v {
	case Static, "":
		return staticProfile{}, nil
	case CinematicLift:
		return liftProfile{}, nil
	case ZoomPop:
		return zoomProfile{}, nil
	case GhostDrift:
		return driftProfile{}, nil
	case Shake:
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return &shakeProfile{rng: rng}, nil
	case SplitConvergence:
		return convergeProfile{}, nil
	default:
		return nil, fmt.Errorf("unknown motion profile: %s", v)
	}
}
