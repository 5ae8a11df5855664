package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/lmx/internal/models"
)

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	start    key.Binding
	pause    key.Binding
	resume   key.Binding
	activate key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		resume:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
		activate: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "press button")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// binding returns the shortcut for c.
func (k keyMap) binding(c models.Control) (key.Binding, bool) {
	switch c {
	case models.ControlStart:
		return k.start, true
	case models.ControlPause:
		return k.pause, true
	case models.ControlResume:
		return k.resume, true
	default:
		return key.Binding{}, false
	}
}

// contextual returns the bindings usable while c is the available control.
func (k keyMap) contextual(c models.Control) []key.Binding {
	if b, ok := k.binding(c); ok {
		return []key.Binding{b, k.activate, k.quit}
	}
	return []key.Binding{k.quit}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.start, k.pause, k.resume},
		{k.activate, k.quit},
	}
}
