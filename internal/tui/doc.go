// Package tui provides terminal user interface components for snapbox.
//
// This package uses the Bubble Tea framework for the interactive build
// instance picker shown by "snapbox instances" on a terminal.
//
// # Instance Picker
//
// The picker lists build instances grouped by backend:
//
//	result, err := tui.RunPicker(entries)
//	switch result.Action {
//	case tui.ActionShell:
//	    // Open a shell in result.Entry
//	case tui.ActionClean:
//	    // Destroy result.Entry and its provider project directory
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// Keys: Enter (shell), d (clean), / (filter), q or Esc (quit). Backend
// headers are skipped during navigation.
//
// SimplePicker renders the same entries as plain text for non-terminal
// output.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
