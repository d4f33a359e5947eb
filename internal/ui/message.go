package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/tasks"
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
	MsgProgressUpdate MsgKind = iota
	MsgBatchSettled
	MsgResultsLoaded
	MsgExported
	MsgArchived
	MsgRemoved
)

type batchSettled struct {
	result *tasks.BatchResult
	err    error
}

type resultsLoaded struct {
	results []*models.ConversionResult
	saved   int64
	err     error
}

type exported struct {
	name string
	err  error
}

type removed struct {
	name string
	ok   bool
	err  error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// batchSettledMsg is the constructor for [MsgBatchSettled]
func batchSettledMsg(result *tasks.BatchResult, err error) Msg {
	return Msg{kind: MsgBatchSettled, data: batchSettled{result, err}}
}

// resultsLoadedMsg is the constructor for [MsgResultsLoaded]
func resultsLoadedMsg(results []*models.ConversionResult, saved int64, err error) Msg {
	return Msg{kind: MsgResultsLoaded, data: resultsLoaded{results, saved, err}}
}

// exportedMsg is the constructor for [MsgExported]
func exportedMsg(name string, err error) Msg {
	return Msg{kind: MsgExported, data: exported{name, err}}
}

// archivedMsg is the constructor for [MsgArchived]
func archivedMsg(name string, err error) Msg {
	return Msg{kind: MsgArchived, data: exported{name, err}}
}

// removedMsg is the constructor for [MsgRemoved]
func removedMsg(name string, ok bool, err error) Msg {
	return Msg{kind: MsgRemoved, data: removed{name, ok, err}}
}
