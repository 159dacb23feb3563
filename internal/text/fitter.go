package text

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

const (
	// FloorSize is the smallest size the fitter will return.
	FloorSize = 20
	// SizeStep is the decrement between candidate sizes.
	SizeStep = 2
	// FitRatio is the share of the frame a text block may occupy.
	FitRatio = 0.85
)

// Fitter finds the largest size at which a block fits a target box.
// Results are pure functions of their inputs, so they are memoized; the
// cache is safe to share between render workers.
type Fitter struct {
	cache sync.Map
	group singleflight.Group
}

func NewFitter() *Fitter {
	return &Fitter{}
}

// Target is the fit box for a canvas.
func Target(canvasW, canvasH int) (int, int) {
	return int(float64(canvasW) * FitRatio), int(float64(canvasH) * FitRatio)
}

func cacheKey(l Layout, maxSize, targetW, targetH int) string {
	return fmt.Sprintf("%s|%d|%d|%d|%d|%d|%s",
		l.font().Name(), maxSize, targetW, targetH, l.Stroke, l.Spacing, strings.Join(l.Lines, "\n"))
}

// Fit walks from maxSize down to FloorSize in SizeStep steps and returns the
// first size whose measured box fits; FloorSize when none does.
func (f *Fitter) Fit(l Layout, maxSize, targetW, targetH int) int {
	if maxSize < FloorSize {
		maxSize = FloorSize
	}
	key := cacheKey(l, maxSize, targetW, targetH)
	if v, ok := f.cache.Load(key); ok {
		return v.(int)
	}

	v, _, _ := f.group.Do(key, func() (interface{}, error) {
		size := search(l, maxSize, targetW, targetH)
		f.cache.Store(key, size)
		return size, nil
	})
	return v.(int)
}

func search(l Layout, maxSize, targetW, targetH int) int {
	fnt := l.font()
	for s := maxSize; s >= FloorSize; s -= SizeStep {
		face := fnt.Face(s)
		m := l.WithSize(s).measure(face)
		face.Close()
		if m.W <= targetW && m.H <= targetH {
			return s
		}
		if !fnt.Scalable() {
			break
		}
	}
	return FloorSize
}
