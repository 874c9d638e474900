// Package tui provides a Bubble Tea terminal user interface for running a
// media export.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/media-exporter/internal/config"
	"github.com/handiism/media-exporter/internal/export"
	"github.com/handiism/media-exporter/internal/source"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// maxLogs is the number of progress lines kept on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateOpening
	StateExporting
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   export.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	result    export.Result
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	exporter *export.Exporter
	closeFn  func() error
	events   chan export.ProgressEvent
	runState *export.RunState

	processed int32
	total     int32
	bytes     int64

	// Options
	emptyOnly bool
	inspect   bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model for settings.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "/srv/media-export"
	ti.SetValue(settings.ExportRootPath)
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		runState:  &export.RunState{},
		emptyOnly: settings.ExportToEmptyFolderOnly,
		inspect:   settings.InspectMedia,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one progress event from the exporter.
	ProgressMsg struct {
		Event export.ProgressEvent
	}

	// OpenDoneMsg is sent when the content provider is ready.
	OpenDoneMsg struct {
		Exporter *export.Exporter
		Close    func() error
		Events   chan export.ProgressEvent
		Err      error
	}

	// ExportDoneMsg is sent when the export returns.
	ExportDoneMsg struct {
		Result export.Result
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateExporting || m.state == StateOpening {
				// the export notices between nodes and reports "not exported"
				m.cancel()
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateOpening
				return m, tea.Batch(m.openSource(), m.spinner.Tick)
			}

		case "alt+e":
			if m.state == StateInput {
				m.emptyOnly = !m.emptyOnly
				return m, nil
			}

		case "alt+o":
			if m.state == StateInput {
				m.inspect = !m.inspect
				return m, nil
			}

		case "alt+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m = m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		if msg.Event.Level == export.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case OpenDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.exporter = msg.Exporter
		m.closeFn = msg.Close
		m.events = msg.Events
		m.state = StateExporting
		cmds = append(cmds, m.startExport(), waitForEvent(m.events), m.tickProgress())

	case ExportDoneMsg:
		if m.closeFn != nil {
			m.closeFn()
			m.closeFn = nil
		}
		m.result = msg.Result
		m.processed, m.total, m.bytes = m.exporter.GetProgress()
		switch msg.Result.Status {
		case export.StatusNotExported:
			m.state = StateError
			if msg.Result.Err != nil {
				m.err = msg.Result.Err
			} else {
				m.err = fmt.Errorf("%s", msg.Result.Message)
			}
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.exporter != nil && m.state == StateExporting {
			m.processed, m.total, m.bytes = m.exporter.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// reset prepares the model for another export. The RunState is kept.
func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.result = export.Result{}
	m.processed, m.total, m.bytes = 0, 0, 0
	m.exporter = nil
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.Focus()
	return m
}

func (m Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.processed) / float64(m.total)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next progress event. A closed channel ends
// the chain.
func waitForEvent(events chan export.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Media Exporter"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Mirror the media library onto the filesystem"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateOpening:
		b.WriteString(m.viewOpening())
	case StateExporting:
		b.WriteString(m.viewExporting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Export root:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Only export into an empty folder (alt+e)\n", checkbox(m.emptyOnly)))
	b.WriteString(fmt.Sprintf("  %s Inspect images and audio (alt+o)\n", checkbox(m.inspect)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (alt+v)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Source: %s %s", m.settings.Source.Type, m.settings.Source.Location)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Media root: %s", m.settings.MediaRootPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewOpening() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Opening media source..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewExporting() string {
	var b strings.Builder

	if m.total == 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Loading media tree..."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.progress.ViewAs(m.percent()))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Items: %d/%d | Copied: %.2f MB",
			m.processed,
			m.total,
			float64(m.bytes)/1024/1024,
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	if m.result.Status != export.StatusExported || m.result.Report == nil {
		b.WriteString(boxStyle.Render(fmt.Sprintf("%s\n\n%s", m.result.Status, m.result.Message)))
		return b.String()
	}

	stats := m.result.Report.Stats
	box := boxStyle.Render(fmt.Sprintf(
		"Export Complete!\n\n"+
			"Folders: %d\n"+
			"Copied: %d (%.2f MB)\n"+
			"Already present: %d\n"+
			"Missing sources: %d\n"+
			"Collisions: %d\n"+
			"Name fixes: %d",
		stats.Folders,
		stats.FilesCopied,
		float64(stats.BytesCopied)/1024/1024,
		stats.FilesExisting,
		stats.MissingSources,
		stats.Collisions,
		len(m.result.Report.FixedNames),
	))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(filepath.Join(m.settings.ExportRootPath, export.ReportFileName)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Media section not exported:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case export.LevelError:
			style = errorStyle
			prefix = "✗"
		case export.LevelWarning:
			style = warningStyle
			prefix = "!"
		case export.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case export.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: export • alt+e: empty only • alt+o: inspect • alt+v: verbose • esc: quit"
	case StateOpening, StateExporting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: export again • q: quit"
	}
	return ""
}

// eventBuffer is the capacity of the progress event channel.
var eventBuffer = 64

// openSource applies the options to a copy of the settings, opens the
// configured provider and builds the exporter.
func (m *Model) openSource() tea.Cmd {
	ctx := m.ctx
	settings := *m.settings
	settings.ExportRootPath = strings.TrimSpace(m.textInput.Value())
	settings.ExportToEmptyFolderOnly = m.emptyOnly
	settings.InspectMedia = m.inspect
	m.settings.ExportRootPath = settings.ExportRootPath

	return func() tea.Msg {
		if err := settings.Validate(); err != nil {
			return OpenDoneMsg{Err: err}
		}

		provider, closeFn, err := source.Open(settings.Source)
		if err != nil {
			return OpenDoneMsg{Err: fmt.Errorf("open media source: %w", err)}
		}

		events := make(chan export.ProgressEvent, eventBuffer)
		exporter := export.NewExporter(&settings, provider, func(event export.ProgressEvent) {
			select {
			case events <- event:
				return
			default:
			}
			// full buffer: wait for the view to catch up unless the run is abandoned
			select {
			case events <- event:
			case <-ctx.Done():
			}
		})

		return OpenDoneMsg{Exporter: exporter, Close: closeFn, Events: events}
	}
}

// startExport runs the export in the background.
func (m *Model) startExport() tea.Cmd {
	exporter, events, ctx, state := m.exporter, m.events, m.ctx, m.runState
	return func() tea.Msg {
		result := exporter.Export(ctx, state)
		close(events)
		return ExportDoneMsg{Result: result}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
