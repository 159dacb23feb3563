package config

import (
	"errors"
	"fmt"
)

// Config описывает один пакетный запуск: откуда брать строки и ассеты,
// куда писать результат и как кодировать.
type Config struct {
	ZipPath   string
	CSVPath   string
	FontPath  string
	OutputDir string
	WorkDir   string

	FPS          int
	Workers      int
	VideoEncoder string
	Quality      int
	X264Preset   string

	// DefaultDuration используется, когда длительность видео не удалось определить.
	DefaultDuration float64

	Style Style
}

const (
	DefaultFPS             = 24
	DefaultX264Preset      = "ultrafast"
	DefaultFallbackSeconds = 10.0
)

var ErrNoInput = errors.New("no video archive or csv given")

// ApplyDefaults fills zero values; it never overrides explicit settings.
func (c *Config) ApplyDefaults() {
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.X264Preset == "" {
		c.X264Preset = DefaultX264Preset
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = DefaultFallbackSeconds
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.VideoEncoder == "" {
		c.VideoEncoder = "libx264"
	}
	if c.Quality == 0 {
		c.Quality = DefaultQuality(c.VideoEncoder)
	}
}

// DefaultQuality returns the quality knob for an encoder: CRF for x264,
// CQ for NVENC and bitrate/100k for VideoToolbox.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

func (c *Config) Validate() error {
	if c.ZipPath == "" || c.CSVPath == "" {
		return ErrNoInput
	}
	if c.FPS <= 0 || c.FPS > 120 {
		return fmt.Errorf("fps out of range: %d", c.FPS)
	}
	return c.Style.Validate()
}
