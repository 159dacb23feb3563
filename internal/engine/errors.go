package engine

import "errors"

var (
	// ErrMissingFilename rejects a row before rendering starts.
	ErrMissingFilename = errors.New("row has no filename")
	// ErrAssetMissing means the referenced video could not be found.
	ErrAssetMissing = errors.New("video not found")
	// ErrConfiguration covers invalid styles and unusable durations.
	ErrConfiguration = errors.New("invalid render configuration")
	// ErrRender wraps every fault raised while compositing or encoding.
	ErrRender = errors.New("render failed")
)
