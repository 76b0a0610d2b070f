package view

import (
	"github.com/charmbracelet/lipgloss"

	"gradeaudit/internal/audit"
)

// Palette is a background/foreground pair.
type Palette struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
}

var (
	black      = lipgloss.Color("#000000")
	white      = lipgloss.Color("#FFFFFF")
	lightGreen = lipgloss.Color("#90EE90")
	lightBlue  = lipgloss.Color("#ADD8E6")
	yellow     = lipgloss.Color("#FFFF00")
	red        = lipgloss.Color("#FF0000")
	orange     = lipgloss.Color("#FFA500")
	purple     = lipgloss.Color("#9370DB")
	gray       = lipgloss.Color("#808080")
)

// StatusPalette maps every cell status to its colors.
func StatusPalette(s audit.Status) Palette {
	switch s {
	case audit.StatusNotStarted:
		return Palette{Background: black, Foreground: white}
	case audit.StatusGraded:
		return Palette{Background: lightGreen, Foreground: black}
	case audit.StatusDeliveredOnTime, audit.StatusPendingOnTime:
		return Palette{Background: lightBlue, Foreground: black}
	case audit.StatusUngradedLate:
		return Palette{Background: yellow, Foreground: black}
	case audit.StatusNotSubmitted:
		return Palette{Background: red, Foreground: white}
	case audit.StatusGradedNoScore:
		return Palette{Background: orange, Foreground: black}
	case audit.StatusGradeMismatch:
		return Palette{Background: purple, Foreground: white}
	default:
		return Palette{Background: gray, Foreground: white}
	}
}

func TimelinePalette(s audit.TimelineStatus) Palette {
	switch s {
	case audit.TimelineNotStarted:
		return Palette{Background: black, Foreground: white}
	case audit.TimelineInProgress:
		return Palette{Background: lightBlue, Foreground: black}
	case audit.TimelineOverdue:
		return Palette{Background: red, Foreground: white}
	default:
		return Palette{Background: gray, Foreground: white}
	}
}

func RollupPalette(r audit.RollupStatus) Palette {
	switch r {
	case audit.RollupCompliant:
		return Palette{Background: lightGreen, Foreground: black}
	case audit.RollupNonCompliant:
		return Palette{Background: red, Foreground: white}
	case audit.RollupNotConfigured:
		return Palette{Background: yellow, Foreground: black}
	case audit.RollupNotFound:
		return Palette{Background: gray, Foreground: white}
	default:
		return Palette{Background: orange, Foreground: black}
	}
}

func (p Palette) style(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Background(p.Background).Foreground(p.Foreground).Padding(0, 1)
}
