// Package engine renders one row of show data into one encoded promo clip.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/compositor"
	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/fallback"
	"github.com/ivlev/promoreel/internal/motion"
	"github.com/ivlev/promoreel/internal/scene"
	"github.com/ivlev/promoreel/internal/system"
	"github.com/ivlev/promoreel/internal/text"
	"github.com/ivlev/promoreel/internal/timing"
	"github.com/ivlev/promoreel/internal/video"
)

type Options struct {
	FPS             int
	Encoder         string
	Quality         int
	Preset          string
	DefaultDuration float64
}

// OptionsFrom takes the encode settings of a batch config.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		FPS:             cfg.FPS,
		Encoder:         cfg.VideoEncoder,
		Quality:         cfg.Quality,
		Preset:          cfg.X264Preset,
		DefaultDuration: cfg.DefaultDuration,
	}
}

// Renderer is safe for concurrent use: every Render call owns its canvas,
// layers and ffmpeg processes, and the fitter cache is synchronized.
type Renderer struct {
	Prober    video.Prober
	Durations video.DurationProber
	Decoder   video.Decoder
	Encoder   video.Encoder
	Fitter    *text.Fitter
	Log       zerolog.Logger
	Opts      Options
}

// NewRenderer wires the ffmpeg-backed collaborators.
func NewRenderer(opts Options, log zerolog.Logger) *Renderer {
	return &Renderer{
		Prober:    video.FFProbe{},
		Durations: video.FormatDuration{},
		Decoder:   video.FFmpegDecoder{},
		Encoder:   &video.FFmpegEncoder{},
		Fitter:    text.NewFitter(),
		Log:       log,
		Opts:      opts,
	}
}

// Result is the outcome of one row. Err is nil exactly when OK is true.
type Result struct {
	OK       bool
	Message  string
	Err      error
	Output   string
	Frames   int
	Duration float64
	// DurationSource and Font name the fallback tier that produced them.
	DurationSource string
	Font           string
	Elapsed        time.Duration
}

func failed(err error) Result {
	return Result{Message: err.Error(), Err: err}
}

// Render produces one encoded clip for row. It never panics and never
// returns an error: every fault becomes a failed Result.
func (r *Renderer) Render(ctx context.Context, row scene.Row, style config.Style, videoAsset, fontAsset, outputPath string) (res Result) {
	start := time.Now()
	log := r.Log.With().Str("city", row.City).Str("file", row.Filename).Logger()

	defer func() {
		if p := recover(); p != nil {
			res = failed(fmt.Errorf("%w: panic: %v", ErrRender, p))
		}
		res.Elapsed = time.Since(start)
		if res.OK {
			log.Info().Str("output", res.Output).Int("frames", res.Frames).Dur("took", res.Elapsed).
				Int64("pool_allocs", system.FrameAllocs()).Msg("row rendered")
		} else {
			log.Warn().Err(res.Err).Msg("row failed")
		}
	}()

	job, err := r.prepare(ctx, log, row, style, videoAsset, fontAsset)
	if err != nil {
		return failed(err)
	}

	if err := ctx.Err(); err != nil {
		return failed(fmt.Errorf("%w: canceled before encode: %w", ErrRender, err))
	}

	frames, err := r.encode(ctx, job, videoAsset, outputPath)
	if err != nil {
		return failed(err)
	}

	return Result{
		OK:             true,
		Message:        fmt.Sprintf("rendered %s (%d frames, %.2fs)", filepath.Base(outputPath), frames, job.duration.Value),
		Output:         outputPath,
		Frames:         frames,
		Duration:       job.duration.Value,
		DurationSource: job.duration.Source,
		Font:           job.font.Value.Name(),
	}
}

// job is everything resolved before the first frame is decoded.
type job struct {
	info     video.Info
	duration fallback.Result[float64]
	font     fallback.Result[*text.Font]
	comp     *compositor.Compositor
	fps      int
}

func (r *Renderer) prepare(ctx context.Context, log zerolog.Logger, row scene.Row, style config.Style, videoAsset, fontAsset string) (*job, error) {
	if strings.TrimSpace(row.Filename) == "" {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, ErrMissingFilename)
	}
	if videoAsset == "" {
		return nil, fmt.Errorf("%w: %s", ErrAssetMissing, row.Filename)
	}
	if _, err := os.Stat(videoAsset); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetMissing, videoAsset)
	}
	if err := style.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	fps := r.Opts.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}

	info, err := r.Prober.Probe(ctx, videoAsset)
	if err != nil {
		return nil, fmt.Errorf("%w: probe: %w", ErrRender, err)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: video has no frame size", ErrRender)
	}

	def := r.Opts.DefaultDuration
	if def <= 0 {
		def = config.DefaultFallbackSeconds
	}
	dur := video.ResolveDuration(ctx, info.Duration, r.Durations, videoAsset, def)
	if dur.Outcome != fallback.Resolved {
		log.Warn().Str("source", dur.Source).Str("reason", dur.Reason).Float64("seconds", dur.Value).Msg("duration fallback")
	}

	policy, err := timing.PolicyByName(style.Timing)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	windows, err := policy.Allocate(dur.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	font := text.ResolveFont(fontAsset)
	if font.Outcome != fallback.Resolved {
		log.Warn().Str("tier", font.Source).Str("reason", font.Reason).Msg("font fallback")
	}

	variant, err := motion.ParseVariant(string(style.Motion))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	var rng *rand.Rand
	if style.Seed != 0 {
		rng = rand.New(rand.NewSource(style.Seed))
	}
	profile, err := motion.New(variant, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	fitter := r.Fitter
	if fitter == nil {
		fitter = text.NewFitter()
	}
	b := &scene.Builder{
		Fitter:  fitter,
		Font:    font.Value,
		Style:   style,
		Profile: profile,
		CanvasW: info.Width,
		CanvasH: info.Height,
	}
	layers, err := b.Build(row, windows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	log.Debug().
		Int("width", info.Width).Int("height", info.Height).
		Float64("duration", dur.Value).Str("motion", string(variant)).Str("timing", policy.Name).
		Msg("layers built")

	return &job{
		info:     info,
		duration: dur,
		font:     font,
		comp:     compositor.New(layers, fps),
		fps:      fps,
	}, nil
}

// FrameCount is the number of frames covering d seconds at fps.
func FrameCount(d float64, fps int) int {
	return int(math.Ceil(d*float64(fps) - 1e-9))
}

func partialPath(outputPath string) string {
	dir, base := filepath.Split(outputPath)
	return filepath.Join(dir, "."+base+"."+uuid.NewString()+".partial.mp4")
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
