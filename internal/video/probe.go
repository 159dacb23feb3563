package video

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/promoreel/internal/fallback"
)

// Info is what the pipeline needs to know about a host video.
type Info struct {
	Width, Height int
	// Duration is the container duration in seconds; 0 when unknown.
	Duration float64
	FPS      float64
	HasAudio bool
}

// Prober reads stream metadata of a video file.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// DurationProber is the secondary duration source, used when the metadata
// carries no usable duration.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFProbe reads metadata through ffmpeg-go's ffprobe JSON wrapper.
type FFProbe struct{}

func (FFProbe) Probe(ctx context.Context, path string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbe([]byte(out))
}

type probeJSON struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		Duration     string `json:"duration"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []struct {
			Rotation float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbe(data []byte) (Info, error) {
	var p probeJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return Info{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var info Info
	var streamDuration float64
	foundVideo := false
	for _, s := range p.Streams {
		switch s.CodecType {
		case "video":
			if foundVideo {
				continue
			}
			foundVideo = true
			info.Width, info.Height = s.Width, s.Height
			// ffmpeg поворачивает кадры при декодировании, холст должен совпадать
			rot, _ := strconv.ParseFloat(s.Tags.Rotate, 64)
			for _, sd := range s.SideDataList {
				if sd.Rotation != 0 {
					rot = sd.Rotation
				}
			}
			if quarterTurn(rot) {
				info.Width, info.Height = info.Height, info.Width
			}
			info.FPS = parseRate(s.AvgFrameRate)
			if info.FPS == 0 {
				info.FPS = parseRate(s.RFrameRate)
			}
			streamDuration, _ = strconv.ParseFloat(s.Duration, 64)
		case "audio":
			info.HasAudio = true
		}
	}
	if !foundVideo {
		return Info{}, fmt.Errorf("no video stream")
	}

	info.Duration, _ = strconv.ParseFloat(p.Format.Duration, 64)
	if info.Duration <= 0 {
		info.Duration = streamDuration
	}
	return info, nil
}

// quarterTurn reports whether a rotation in degrees is 90 or 270 modulo 360.
func quarterTurn(deg float64) bool {
	r := int(math.Round(deg)) % 360
	if r < 0 {
		r += 360
	}
	return r == 90 || r == 270
}

// parseRate parses ffprobe rationals such as "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// FormatDuration asks ffprobe for format=duration only; it succeeds on some
// files whose stream metadata is broken.
type FormatDuration struct{}

func (FormatDuration) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}
	return duration, nil
}

// ResolveDuration walks metadata -> duration probe -> def. It always yields
// a positive value.
func ResolveDuration(ctx context.Context, meta float64, probe DurationProber, path string, def float64) fallback.Result[float64] {
	if meta > 0 {
		return fallback.Ok(meta, "metadata")
	}
	reason := "metadata has no duration"
	if probe != nil {
		d, err := probe.Duration(ctx, path)
		if err == nil && d > 0 {
			return fallback.Degraded(d, "ffprobe", reason)
		}
		if err != nil {
			reason = fmt.Sprintf("%s; ffprobe: %v", reason, err)
		} else {
			reason += "; ffprobe returned no duration"
		}
	}
	return fallback.Degraded(def, "default", reason)
}
