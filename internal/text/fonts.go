package text

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"github.com/ivlev/promoreel/internal/fallback"
)

// Tier names the step of the font fallback chain a Font came from.
type Tier int

const (
	TierCustom Tier = iota
	TierPlatform
	TierBuiltin
	TierMinimal
)

func (t Tier) String() string {
	switch t {
	case TierCustom:
		return "custom"
	case TierPlatform:
		return "platform"
	case TierBuiltin:
		return "builtin"
	default:
		return "minimal"
	}
}

// PlatformFonts are tried, in order, when a custom font cannot be loaded.
var PlatformFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
	"/Library/Fonts/Arial Bold.ttf",
	"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
	`C:\Windows\Fonts\arialbd.ttf`,
}

// Font is a parsed typeface. A nil otf means the fixed-size basicfont face.
// Faces are created per call because opentype faces are not safe for
// concurrent use, while the parsed font is.
type Font struct {
	name string
	tier Tier
	otf  *opentype.Font
}

func (f *Font) Name() string { return f.name }
func (f *Font) Tier() Tier   { return f.tier }

// Scalable reports whether Face honours the requested size.
func (f *Font) Scalable() bool { return f.otf != nil }

// Face returns a face at size pixels. It never fails: a face that cannot be
// built falls back to the builtin font, then to basicfont.
func (f *Font) Face(size int) font.Face {
	if f.otf != nil {
		face, err := opentype.NewFace(f.otf, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err == nil {
			return face
		}
		if b := Builtin(); b != f {
			return b.Face(size)
		}
	}
	return basicfont.Face7x13
}

var (
	builtinOnce sync.Once
	builtin     *Font
	minimal     = &Font{name: "basicfont-7x13", tier: TierMinimal}
)

// Builtin returns the embedded Go Bold face, or the minimal face if it
// cannot be parsed.
func Builtin() *Font {
	builtinOnce.Do(func() {
		otf, err := opentype.Parse(gobold.TTF)
		if err != nil {
			builtin = minimal
			return
		}
		builtin = &Font{name: "gobold", tier: TierBuiltin, otf: otf}
	})
	return builtin
}

func loadFile(path string, tier Tier) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &Font{name: filepath.Base(path), tier: tier, otf: otf}, nil
}

// ResolveFont walks custom -> platform -> builtin -> minimal. An empty path
// selects the builtin face directly. The result is always usable.
func ResolveFont(path string) fallback.Result[*Font] {
	if strings.TrimSpace(path) == "" {
		b := Builtin()
		if b.tier == TierMinimal {
			return fallback.Degraded(b, b.tier.String(), "embedded font could not be parsed")
		}
		return fallback.Ok(b, b.tier.String())
	}

	f, err := loadFile(path, TierCustom)
	if err == nil {
		return fallback.Ok(f, TierCustom.String())
	}
	reason := fmt.Sprintf("custom font: %v", err)

	for _, p := range PlatformFonts {
		if pf, perr := loadFile(p, TierPlatform); perr == nil {
			return fallback.Degraded(pf, TierPlatform.String(), reason)
		}
	}

	b := Builtin()
	return fallback.Degraded(b, b.tier.String(), reason)
}
