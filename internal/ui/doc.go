// Package ui implements the interactive labeling terminal interface using bubbletea's Elm architecture.
//
// One [Model] drives a [workspace.Session]:
//  1. [LoadingView] : A group is being read in the background
//  2. [LabelView] : Sparkline rows per file with a mask strip, cursor readout and annotation table
//  3. [PromptView] : A text prompt for an annotation id or an explicit interval
//  4. [ConfirmView] : Yes/no questions (overwrite existing output, save before switching group, clear all)
//
// The keyboard cursor stands in for the pointer: moving it hovers, enter clicks, and space anchors a draft.
// Timers never touch the session from another goroutine; [Scheduler] turns the selection dwell into
// tea.Tick messages that are applied inside Update, and notices use the same sequence-token pattern.
//
// Keyboard navigation uses vim-style bindings (h/l, j/k, H/L) with contextual help displayed via charmbracelet/bubbles/help.
package ui
