// Package scene turns one row of show data into the three composited layers
// of a promo clip.
package scene

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ivlev/promoreel/internal/text"
)

// Row is one show. Only Filename is required.
type Row struct {
	Filename   string
	City       string
	Date       string
	Venue      string
	TicketLink string
}

// UnknownCity is shown when a row has no city.
const UnknownCity = "Unknown"

type Role int

const (
	Intro Role = iota
	Info
	CallToAction
)

func (r Role) String() string {
	switch r {
	case Intro:
		return "intro"
	case Info:
		return "info"
	case CallToAction:
		return "cta"
	default:
		return "role?"
	}
}

// Roles in stacking order, bottom first.
var Roles = [3]Role{Intro, Info, CallToAction}

const (
	IntroFadeOut = 0.2
	InfoFadeIn   = 0.2
	CTAFadeIn    = 0.2
)

// Block is the text content of one layer before layout.
type Block struct {
	Role    Role
	Lines   []string
	FadeIn  float64
	FadeOut float64
}

// Blocks substitutes row fields into the three layer texts.
func Blocks(row Row, headline string) [3]Block {
	city := strings.TrimSpace(row.City)
	if city == "" {
		city = UnknownCity
	}
	info := strings.Join([]string{strings.TrimSpace(row.Date), city, strings.TrimSpace(row.Venue)}, "\n")
	cta := "TICKETS ON SALE NOW\n" + strings.TrimSpace(row.TicketLink)

	return [3]Block{
		{Role: Intro, Lines: lines(headline), FadeOut: IntroFadeOut},
		{Role: Info, Lines: lines(info), FadeIn: InfoFadeIn},
		{Role: CallToAction, Lines: lines(cta), FadeIn: CTAFadeIn},
	}
}

// Casers carry state, so each call builds its own.
func lines(s string) []string {
	return text.SplitLines(cases.Upper(language.Und).String(s))
}
