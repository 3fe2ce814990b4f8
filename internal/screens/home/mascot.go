package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default purple
	MascotCelebrating                      // Gold, star eyes: role nearly ready
	MascotAlert                            // Orange, exclamation: no target role
)

// celebrateReadiness is the readiness at which the mascot celebrates.
const celebrateReadiness = 80

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ </> │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ </> │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ ?
│  ○  │
│ </> │
└─────┘`

// variantFor picks the mascot for the home stats.
func variantFor(hasRole bool, readiness float64) MascotVariant {
	switch {
	case !hasRole:
		return MascotAlert
	case readiness >= celebrateReadiness:
		return MascotCelebrating
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	var fg = theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.ArcadeYellow
	case MascotAlert:
		art = mascotAlert
		fg = theme.Accent
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
