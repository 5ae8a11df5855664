package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/lmx/internal/dashboard"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF5F5F", "#F5C518", "#3B82F6", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	info   lipgloss.Style
	muted  lipgloss.Style
	help   lipgloss.Style
	tile   lipgloss.Style
	button lipgloss.Style
	banner lipgloss.Style
}

func NewPalette(t, s, e, w, i, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewBold(w),
		info:   NewBold(i),
		muted:  NewBold(h),
		help:   NewEm(h),
		tile:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(h)).Padding(0, 1).Width(18),
		button: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color(t)).Bold(true).Padding(0, 2),
		banner: NewBold(e).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color(e)).PaddingLeft(1),
	}
}

// Tone returns the label style for a [dashboard.Tone].
func (p *Palette) Tone(t dashboard.Tone) lipgloss.Style {
	switch t {
	case dashboard.ToneGreen:
		return p.ok
	case dashboard.ToneRed:
		return p.err
	case dashboard.ToneYellow:
		return p.warn
	case dashboard.ToneBlue:
		return p.info
	default:
		return p.muted
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
