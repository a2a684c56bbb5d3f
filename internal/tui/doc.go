// Package tui implements the paytrail "Payment Status" screen.
//
// It is built with Charmbracelet's BubbleTea, Lipgloss, and Bubbles
// libraries: the screen is a BubbleTea model whose state is a
// timeline.State value, and rendering is a pure function of that state.
//
// Component architecture:
//
//	model.go    screen controller: mount, load, fade, teardown, Update
//	theme.go    centralized color + style definitions
//	header.go   title bar with back action, footer with key hints
//	timeline.go connected list renderer with fade-in opacity
//	keys.go     key bindings
//	helpers.go  color blending, truncation, etc.
package tui
