package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillforge/internal/ui/theme"
)

// BannerArt is the block-letter logo, shared with the home screen.
const BannerArt = `▄███▄ █  ▄▀ ███ █     █     █████ ▄███▄ ████▄ ▄███▄ █████
█▄▄▄  █▄▀   ▐█▌ █     █     █▄▄▄  █   █ █▄▄▄▀ █     █▄▄▄
  ▀▀█ █ ▀▄  ▐█▌ █     █     █     █   █ █  ▀▄ █  ▀█ █
▀███▀ █   █ ███ █████ █████ █     ▀███▀ █   █ ▀███▀ █████`

// BannerCompact is the logo for narrow terminals.
const BannerCompact = "S K I L L F O R G E"

// bannerWidth is the widest line of BannerArt.
const bannerWidth = 57

// RenderBanner returns the logo styled in the primary color, falling back
// to the compact form when width cannot fit the block letters.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth+2 {
		return style.Render(BannerCompact)
	}
	return style.Render(BannerArt)
}
