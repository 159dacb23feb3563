package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/promoreel/internal/system"
	"github.com/ivlev/promoreel/internal/video"
)

// frameBuffer is how many decoded frames may wait for the compositor.
const frameBuffer = 2

// encode streams decoded host frames through the compositor into the
// encoder. Output goes to a hidden partial file that is renamed into place
// only after ffmpeg has finalized it.
func (r *Renderer) encode(ctx context.Context, j *job, videoAsset, outputPath string) (int, error) {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrRender, err)
		}
	}

	n := FrameCount(j.duration.Value, j.fps)
	rect := image.Rect(0, 0, j.info.Width, j.info.Height)
	tmp := partialPath(outputPath)

	params := video.EncodeParams{
		Width:      j.info.Width,
		Height:     j.info.Height,
		FPS:        j.fps,
		Duration:   j.duration.Value,
		OutputPath: tmp,
		Encoder:    r.Opts.Encoder,
		Quality:    r.Opts.Quality,
		Preset:     r.Opts.Preset,
	}
	if params.Encoder == "" {
		params.Encoder = "libx264"
	}
	if j.info.HasAudio {
		params.AudioSource = videoAsset
	}

	g, gctx := errgroup.WithContext(ctx)

	reader, err := r.Decoder.Open(gctx, videoAsset, j.info.Width, j.info.Height, j.fps, j.duration.Value)
	if err != nil {
		return 0, fmt.Errorf("%w: decode: %w", ErrRender, err)
	}
	defer reader.Close()

	// Энкодер живёт дольше группы: gctx отменяется сразу после g.Wait,
	// а ffmpeg должен дописать файл уже после закрытия stdin.
	ectx, abort := context.WithCancel(ctx)
	defer abort()
	writer, err := r.Encoder.Open(ectx, params)
	if err != nil {
		return 0, fmt.Errorf("%w: encode: %w", ErrRender, err)
	}

	frames := make(chan *image.RGBA, frameBuffer)
	stop := make(chan struct{})

	// Декодер: кадры исходного видео в канал
	g.Go(guard(func() error {
		defer close(frames)
		for {
			img := system.GetImage(rect)
			if err := reader.ReadFrame(img); err != nil {
				system.PutImage(img)
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("decode: %w", err)
			}
			select {
			case frames <- img:
			case <-stop:
				system.PutImage(img)
				return nil
			case <-gctx.Done():
				system.PutImage(img)
				return gctx.Err()
			}
		}
	}))

	// Композиция и кодирование. Если исходник короче расчётной длительности,
	// последний кадр повторяется.
	written := 0
	g.Go(guard(func() error {
		defer close(stop)
		src := frames
		host := image.NewRGBA(rect)
		canvas := image.NewRGBA(rect)
		for i := 0; i < n; i++ {
			if err := gctx.Err(); err != nil {
				return err
			}
			if src != nil {
				select {
				case img, ok := <-src:
					if !ok {
						src = nil
						break
					}
					copy(host.Pix, img.Pix)
					system.PutImage(img)
				case <-gctx.Done():
					return gctx.Err()
				}
			}

			copy(canvas.Pix, host.Pix)
			j.comp.Compose(canvas, float64(i)/float64(j.fps))
			if err := writer.WriteFrame(canvas); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			written++
		}
		return nil
	}))

	runErr := g.Wait()
	if runErr != nil {
		// Недописанный файл не нужен: останавливаем ffmpeg, не дожидаясь финализации
		abort()
	}
	if closeErr := writer.Close(); runErr == nil && closeErr != nil {
		runErr = fmt.Errorf("encode: %w", closeErr)
	}
	if runErr != nil {
		os.Remove(tmp)
		if isCanceled(runErr) {
			return written, fmt.Errorf("%w: canceled after %d/%d frames: %w", ErrRender, written, n, runErr)
		}
		return written, fmt.Errorf("%w: %w", ErrRender, runErr)
	}

	if err := os.Rename(tmp, outputPath); err != nil {
		os.Remove(tmp)
		return written, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return written, nil
}

// guard turns a panic inside a pipeline goroutine into its error, so Render
// can report it as a failed row.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return fn()
	}
}
