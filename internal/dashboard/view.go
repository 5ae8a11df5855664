package dashboard

import (
	"fmt"

	"github.com/desertthunder/lmx/internal/models"
)

// Tone is the color family used for the state label.
type Tone string

const (
	ToneGreen  Tone = "green"
	ToneRed    Tone = "red"
	ToneYellow Tone = "yellow"
	ToneBlue   Tone = "blue"
	ToneGray   Tone = "gray"
)

// Icon is the glyph shown beside the state label.
type Icon string

const (
	IconNone    Icon = ""
	IconCheck   Icon = "check"
	IconAlert   Icon = "alert"
	IconPause   Icon = "pause"
	IconSpinner Icon = "spinner"
)

// View is the render-ready projection of a [State].
type View struct {
	State     string         `json:"state"`
	Tone      Tone           `json:"tone"`
	Icon      Icon           `json:"icon"`
	BarWidth  float64        `json:"barWidth"` // Applied as a CSS percentage
	Processed string         `json:"processed"`
	Progress  string         `json:"progress"`
	Speed     string         `json:"speed"`
	Remaining string         `json:"remaining"`
	Control   models.Control `json:"-"`
	Action    string         `json:"control,omitempty"`
	Button    string         `json:"button,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Project maps s to its [View]. It has no side effects.
func Project(s State) View {
	tone, icon := styleFor(s.Status.State)
	control := s.Control()

	return View{
		State:     string(s.Status.State),
		Tone:      tone,
		Icon:      icon,
		BarWidth:  s.Status.Progress,
		Processed: fmt.Sprintf("%d/%d", s.Metrics.ProcessedRecords, s.Metrics.TotalRecords),
		Progress:  FormatPercent(s.Status.Progress),
		Speed:     fmt.Sprintf("%d/s", s.Metrics.MigrationSpeed),
		Remaining: FormatTime(s.Metrics.EstimatedTimeRemaining),
		Control:   control,
		Action:    control.String(),
		Button:    control.Label(),
		Error:     s.Err,
	}
}

// HasControl reports whether a control button is shown.
func (v View) HasControl() bool { return v.Control != models.ControlNone }

// HasError reports whether the error banner is shown.
func (v View) HasError() bool { return v.Error != "" }

// BarFraction is BarWidth as a fill fraction clamped to [0,1], for renderers that cannot overflow.
func (v View) BarFraction() float64 {
	f := v.BarWidth / 100
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func styleFor(state models.MigrationState) (Tone, Icon) {
	switch state {
	case models.StateCompleted:
		return ToneGreen, IconCheck
	case models.StateError:
		return ToneRed, IconAlert
	case models.StatePaused:
		return ToneYellow, IconPause
	case models.StateMigrating:
		return ToneBlue, IconSpinner
	default:
		return ToneGray, IconNone
	}
}
