package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	left      key.Binding
	right     key.Binding
	panLeft   key.Binding
	panRight  key.Binding
	zoomIn    key.Binding
	zoomOut   key.Binding
	nextView  key.Binding
	prevView  key.Binding
	up        key.Binding
	down      key.Binding
	draw      key.Binding
	enter     key.Binding
	back      key.Binding
	moveLeft  key.Binding
	moveRight key.Binding
	resize    key.Binding
	locate    key.Binding
	find      key.Binding
	add       key.Binding
	remove    key.Binding
	clear     key.Binding
	nextGroup key.Binding
	prevGroup key.Binding
	yMode     key.Binding
	sync      key.Binding
	resync    key.Binding
	slider    key.Binding
	save      key.Binding
	yes       key.Binding
	no        key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "cursor left")),
		right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "cursor right")),
		panLeft:   key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "pan left")),
		panRight:  key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "pan right")),
		zoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		nextView:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		prevView:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev row")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next row")),
		draw:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "anchor interval")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm/select")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		moveLeft:  key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "move selected left")),
		moveRight: key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "move selected right")),
		resize:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edge to cursor")),
		locate:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "locate row")),
		find:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "locate id")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add interval")),
		remove:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		clear:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "clear all")),
		nextGroup: key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next group")),
		prevGroup: key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev group")),
		yMode:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "toggle y range")),
		sync:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "sync range")),
		resync:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rebuild masks")),
		slider:    key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "jump")),
		save:      key.NewBinding(key.WithKeys("w", "ctrl+s"), key.WithHelp("w", "save")),
		yes:       key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.draw, k.enter, k.nextGroup, k.save, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.left, k.right, k.panLeft, k.panRight, k.zoomIn, k.zoomOut, k.slider},
		{k.nextView, k.prevView, k.up, k.down, k.locate, k.find},
		{k.draw, k.enter, k.back, k.add, k.remove, k.clear},
		{k.moveLeft, k.moveRight, k.resize, k.resync},
		{k.nextGroup, k.prevGroup, k.yMode, k.sync, k.save, k.quit},
	}
}
