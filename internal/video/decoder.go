package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FrameReader yields decoded frames in order. ReadFrame returns io.EOF after
// the last frame.
type FrameReader interface {
	ReadFrame(dst *image.RGBA) error
	Close() error
}

// Decoder opens a host video as a stream of RGBA frames at the given rate,
// resampled to w x h.
type Decoder interface {
	Open(ctx context.Context, path string, w, h, fps int, duration float64) (FrameReader, error)
}

// FFmpegDecoder runs ffmpeg with a rawvideo RGBA pipe on stdout.
type FFmpegDecoder struct{}

func decodeArgs(path string, w, h, fps int, duration float64) []string {
	return ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"f":        "rawvideo",
			"pix_fmt":  "rgba",
			"r":        strconv.Itoa(fps),
			"s":        fmt.Sprintf("%dx%d", w, h),
			"t":        fmt.Sprintf("%.3f", duration),
			"an":       "",
			"loglevel": "error",
		}).
		GetArgs()
}

func (FFmpegDecoder) Open(ctx context.Context, path string, w, h, fps int, duration float64) (FrameReader, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg", decodeArgs(path, w, h, fps, duration)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return &pipeReader{cmd: cmd, r: stdout, stderr: &stderr, size: w * h * 4}, nil
}

type pipeReader struct {
	cmd    *exec.Cmd
	r      io.Reader
	stderr *bytes.Buffer
	size   int
	done   bool
}

func (p *pipeReader) ReadFrame(dst *image.RGBA) error {
	if len(dst.Pix) != p.size {
		return fmt.Errorf("frame buffer is %d bytes, stream frames are %d", len(dst.Pix), p.size)
	}
	_, err := io.ReadFull(p.r, dst.Pix)
	if err == io.ErrUnexpectedEOF {
		// Обрезанный последний кадр считаем концом потока
		return io.EOF
	}
	return err
}

// Close stops ffmpeg if it is still producing frames and reaps it.
func (p *pipeReader) Close() error {
	if p.done {
		return nil
	}
	p.done = true
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
	return nil
}
