package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
)

// EncodeParams describes one output file.
type EncodeParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	OutputPath    string
	// AudioSource, when set, is muxed as the output's audio track if it has one.
	AudioSource string
	Encoder     string
	Quality     int
	Preset      string
}

// FrameWriter accepts composited frames in presentation order.
type FrameWriter interface {
	WriteFrame(img *image.RGBA) error
	// Close flushes the encoder and waits for the file to be finalized.
	Close() error
}

type Encoder interface {
	Open(ctx context.Context, p EncodeParams) (FrameWriter, error)
}

type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Open(ctx context.Context, p EncodeParams) (FrameWriter, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg", buildFFmpegArgs(p)...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return &pipeWriter{cmd: cmd, w: stdin, stderr: &stderr}, nil
}

func buildFFmpegArgs(p EncodeParams) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
	}
	if p.AudioSource != "" {
		args = append(args, "-i", p.AudioSource, "-map", "0:v:0", "-map", "1:a:0?")
	}

	// yuv420p требует чётных размеров
	args = append(args,
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-t", fmt.Sprintf("%f", p.Duration),
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
	)

	// Качество в зависимости от энкодера
	switch p.Encoder {
	case "h264_videotoolbox":
		bitrate := p.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", p.Quality))
	default: // libx264
		preset := p.Preset
		if preset == "" {
			preset = "ultrafast"
		}
		args = append(args, "-crf", fmt.Sprintf("%d", p.Quality), "-preset", preset)
	}

	if p.AudioSource != "" {
		args = append(args, "-c:a", "aac")
	}
	args = append(args, "-movflags", "+faststart", "-f", "mp4", p.OutputPath)
	return args
}

type pipeWriter struct {
	cmd    *exec.Cmd
	w      io.WriteCloser
	stderr *bytes.Buffer
	closed bool
}

func (p *pipeWriter) WriteFrame(img *image.RGBA) error {
	if err := writeRawRGBA(p.w, img); err != nil {
		return fmt.Errorf("write raw error: %w", p.withStderr(err))
	}
	return nil
}

func (p *pipeWriter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.w.Close()
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w", p.withStderr(err))
	}
	return nil
}

func (p *pipeWriter) withStderr(err error) error {
	msg := strings.TrimSpace(p.stderr.String())
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, msg)
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}
