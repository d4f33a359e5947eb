// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through two views:
//  1. [ConvertView] : Converts the submitted batch, with a spinner and per-file progress
//  2. [ResultListView] : Browse the result set with per-item and total savings
//
// From the result list a user can export the selected image, remove it, or export every result as one archive.
// The converting and archiving indicators follow [tasks.BatchConverter.Converting] and [export.Gateway.Archiving].
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the BatchConverter, providing non-blocking status reporting during conversion.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, x, a, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
