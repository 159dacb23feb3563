package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/promoreel/internal/motion"
	"github.com/ivlev/promoreel/internal/timing"
)

// DefaultHeadline is the intro text used when a preset does not set one.
const DefaultHeadline = "LAWRENCE\nWITH JACOB JEFFRIES"

// RGB is a color that reads and writes as "#rrggbb" in YAML.
type RGB struct {
	R, G, B uint8
}

func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex accepts "#rrggbb", "rrggbb" and "#rgb".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c RGB) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (c *RGB) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseHex(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Style is shared read-only by every row of a batch.
type Style struct {
	TextColor    RGB            `yaml:"text_color"`
	OutlineColor RGB            `yaml:"outline_color"`
	OutlineWidth int            `yaml:"outline_width"`
	ShadowOffset int            `yaml:"shadow_offset"`
	TitleSize    int            `yaml:"title_size"`
	BodySize     int            `yaml:"body_size"`
	OffsetX      int            `yaml:"offset_x"`
	OffsetY      int            `yaml:"offset_y"`
	Motion       motion.Variant `yaml:"motion"`
	Timing       string         `yaml:"timing,omitempty"`
	Headline     string         `yaml:"headline,omitempty"`
	TicketQR     bool           `yaml:"ticket_qr,omitempty"`

	// Seed feeds the shake profile; 0 means time-seeded.
	Seed int64 `yaml:"seed,omitempty"`
}

func Default() Style {
	return Style{
		TextColor:    RGB{255, 255, 255},
		OutlineColor: RGB{0, 0, 0},
		OutlineWidth: 4,
		ShadowOffset: 6,
		TitleSize:    150,
		BodySize:     120,
		Motion:       motion.Static,
		Timing:       timing.Canonical.Name,
		Headline:     DefaultHeadline,
	}
}

var (
	ErrNegativeStroke = errors.New("outline width must not be negative")
	ErrNegativeShadow = errors.New("shadow offset must not be negative")
	ErrFontSize       = errors.New("font size must be positive")
)

func (s Style) Validate() error {
	if s.OutlineWidth < 0 {
		return ErrNegativeStroke
	}
	if s.ShadowOffset < 0 {
		return ErrNegativeShadow
	}
	if s.TitleSize <= 0 || s.BodySize <= 0 {
		return ErrFontSize
	}
	if _, err := motion.ParseVariant(string(s.Motion)); err != nil {
		return err
	}
	if _, err := timing.PolicyByName(s.Timing); err != nil {
		return err
	}
	return nil
}

// ApplyDefaults fills fields a hand-written preset may leave out.
func (s *Style) ApplyDefaults() {
	d := Default()
	if s.TitleSize == 0 {
		s.TitleSize = d.TitleSize
	}
	if s.BodySize == 0 {
		s.BodySize = d.BodySize
	}
	if s.Motion == "" {
		s.Motion = d.Motion
	}
	if s.Timing == "" {
		s.Timing = d.Timing
	}
	if s.Headline == "" {
		s.Headline = d.Headline
	}
}

// SavePreset writes a style to a YAML file
func SavePreset(s Style, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadPreset reads a style from a YAML file. Fields missing from the file
// keep their defaults.
func LoadPreset(path string) (Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, err
	}

	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Style{}, fmt.Errorf("preset %s: %w", path, err)
	}
	s.ApplyDefaults()

	v, err := motion.ParseVariant(string(s.Motion))
	if err != nil {
		return Style{}, fmt.Errorf("preset %s: %w", path, err)
	}
	s.Motion = v
	return s, s.Validate()
}
