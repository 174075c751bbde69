package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tslabel/internal/workspace"
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
	MsgGroupLoaded MsgKind = iota
	MsgDwellFired
	MsgNoticeExpired
)

// groupLoadedMsg is the constructor for [MsgGroupLoaded]
func groupLoadedMsg(res workspace.LoadResult) Msg {
	return Msg{kind: MsgGroupLoaded, data: res}
}

// dwellFiredMsg is the constructor for [MsgDwellFired]
func dwellFiredMsg(id int) Msg {
	return Msg{kind: MsgDwellFired, data: id}
}

// noticeExpiredMsg is the constructor for [MsgNoticeExpired]
func noticeExpiredMsg(id int) Msg {
	return Msg{kind: MsgNoticeExpired, data: id}
}
