package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/squash/internal/export"
	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/repositories"
	"github.com/desertthunder/squash/internal/shared"
	"github.com/desertthunder/squash/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConvertView ViewState = iota
	ResultListView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	converter    *tasks.BatchConverter
	store        *repositories.ResultStore
	gateway      *export.Gateway
	inputs       []models.InputFile
	width        int
	height       int
	resultList   list.Model
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	batchDone    chan Msg
	progress     tasks.ProgressUpdate
	batch        *tasks.BatchResult
	saved        int64
	archiving    bool
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that converts inputs on start.
func NewModel(ctx context.Context, converter *tasks.BatchConverter, store *repositories.ResultStore, gateway *export.Gateway, inputs []models.InputFile) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = NewStyle("#7D56F4")

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Converted Images"
	l.SetShowHelp(false)

	return &Model{
		ctx:        ctx,
		view:       ConvertView,
		converter:  converter,
		store:      store,
		gateway:    gateway,
		inputs:     inputs,
		resultList: l,
		spinner:    s,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts converting the submitted batch.
func (m *Model) Init() tea.Cmd {
	if len(m.inputs) == 0 {
		m.view = ResultListView
		return m.loadResults()
	}
	return tea.Batch(m.spinner.Tick, m.startBatch(m.inputs))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resultList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case ConvertView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultListView:
			return m.handleResultListKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForBatch()

	case MsgBatchSettled:
		data := msg.data.(batchSettled)
		m.batch = data.result
		m.progressChan = nil
		m.batchDone = nil
		m.view = ResultListView
		if data.err != nil {
			m.err = data.err
		} else if data.result != nil {
			m.status = batchSummary(data.result)
		}
		return m, m.loadResults()

	case MsgResultsLoaded:
		data := msg.data.(resultsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.saved = data.saved
		return m, m.resultList.SetItems(resultItems(data.results))

	case MsgExported:
		data := msg.data.(exported)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("✓ Exported %s", data.name))
		return m, nil

	case MsgArchived:
		data := msg.data.(exported)
		m.archiving = false
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.status = styles.ok.Render(fmt.Sprintf("✓ Exported %s", data.name))
		return m, nil

	case MsgRemoved:
		data := msg.data.(removed)
		if data.err != nil {
			m.err = data.err
		}
		if data.ok {
			m.status = fmt.Sprintf("Removed %s", data.name)
		}
		return m, m.loadResults()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConvertView:
		return m.renderConvert()
	case ResultListView:
		return m.renderResultList()
	default:
		return ""
	}
}

func (m *Model) busy() bool {
	return m.view == ConvertView || m.archiving || m.converter.Converting()
}

func (m *Model) handleResultListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.resultList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.resultList, cmd = m.resultList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.export):
		m.err = nil
		return m, m.exportSelected()
	case key.Matches(msg, m.keys.remove):
		m.err = nil
		return m, m.removeSelected()
	case key.Matches(msg, m.keys.archive):
		m.err = nil
		if m.archiving || m.gateway.Archiving() {
			m.status = styles.warn.Render("Archive export already in progress")
			return m, nil
		}
		m.archiving = true
		m.status = fmt.Sprintf("Building %s...", m.gateway.ArchiveFilename())
		return m, tea.Batch(m.spinner.Tick, m.exportArchive())
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) startBatch(files []models.InputFile) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.batchDone = make(chan Msg, 1)

	progress, done := m.progressChan, m.batchDone
	go func() {
		result, err := m.converter.ProcessFiles(m.ctx, files, progress)
		close(progress)
		done <- batchSettledMsg(result, err)
	}()

	return m.waitForBatch()
}

func (m *Model) waitForBatch() tea.Cmd {
	progress, done := m.progressChan, m.batchDone
	return func() tea.Msg {
		if progress != nil {
			if update, ok := <-progress; ok {
				return progressUpdateMsg(update)
			}
		}
		return <-done
	}
}

func (m *Model) loadResults() tea.Cmd {
	return func() tea.Msg {
		results, err := m.store.Snapshot(m.ctx)
		if err != nil {
			return resultsLoadedMsg(nil, 0, err)
		}
		saved, err := m.store.TotalSavedBytes(m.ctx)
		return resultsLoadedMsg(results, saved, err)
	}
}

func (m *Model) selected() *models.ConversionResult {
	item, ok := m.resultList.SelectedItem().(resultItem)
	if !ok {
		return nil
	}
	return item.result
}

func (m *Model) exportSelected() tea.Cmd {
	r := m.selected()
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		return exportedMsg(r.OutputName(), m.gateway.ExportResult(m.ctx, r))
	}
}

func (m *Model) removeSelected() tea.Cmd {
	r := m.selected()
	if r == nil {
		return nil
	}
	// The list may be filtered or stale, so remove by identity rather than position.
	return func() tea.Msg {
		ok, err := m.store.RemoveID(m.ctx, r.ID())
		return removedMsg(r.OutputName(), ok, err)
	}
}

func (m *Model) exportArchive() tea.Cmd {
	return func() tea.Msg {
		return archivedMsg(m.gateway.ArchiveFilename(), m.gateway.ExportArchive(m.ctx))
	}
}

func batchSummary(b *tasks.BatchResult) string {
	summary := fmt.Sprintf("Converted %d of %d files, saved %s",
		len(b.Converted), b.Submitted, shared.FormatSavedBytes(b.SavedBytes()))
	if n := len(b.Skipped) + len(b.Rejected); n > 0 {
		summary += styles.warn.Render(fmt.Sprintf(" (%d skipped)", n))
	}
	return summary
}

func (m *Model) renderConvert() string {
	title := styles.title.Render(fmt.Sprintf("%s Converting %d files", m.spinner.View(), len(m.inputs)))

	var phase string
	switch m.progress.Phase {
	case tasks.FilterInputs:
		phase = "Filtering inputs..."
	case tasks.ConvertFiles:
		phase = fmt.Sprintf("Converting (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.AppendResults:
		phase = "Saving results..."
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, phase, m.progress.Message, helpView)
}

func (m *Model) renderResultList() string {
	var b strings.Builder

	b.WriteString(m.resultList.View())
	b.WriteString("\n")

	total := savedStyle(m.saved).Render(fmt.Sprintf("Total saved: %s", shared.FormatSavedBytes(m.saved)))
	b.WriteString(total)

	if m.busy() {
		b.WriteString(fmt.Sprintf("  %s working", m.spinner.View()))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	if m.batch != nil && len(m.batch.Skipped) > 0 {
		for _, s := range m.batch.Skipped {
			b.WriteString(styles.help.Render(fmt.Sprintf("  • skipped %s: %v", s.Name, s.Err)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}
