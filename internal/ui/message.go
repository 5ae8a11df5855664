package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lmx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTick MsgKind = iota
	MsgStatusFetched
	MsgActionDone
)

type statusResult struct {
	status models.MigrationStatus
	err    error
}

type actionResult struct {
	control models.Control
	err     error
}

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}

// statusFetchedMsg is the constructor for [MsgStatusFetched]
func statusFetchedMsg(status models.MigrationStatus, err error) Msg {
	return Msg{kind: MsgStatusFetched, data: statusResult{status, err}}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(c models.Control, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionResult{c, err}}
}
