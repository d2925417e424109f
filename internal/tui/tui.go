// Package tui provides a Bubble Tea terminal user interface for tubetag.
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
	"github.com/handiism/tubetag/internal/cleanup"
	"github.com/handiism/tubetag/internal/config"
	"github.com/handiism/tubetag/internal/download"
	"github.com/handiism/tubetag/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
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

	albumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogs = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateScanning
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   pipeline.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	fs        afero.Fs
	logs      []LogEntry
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	// Set once a run starts
	target  string
	batch   bool
	folders int
	done    int
	events  chan pipeline.ProgressEvent
	tagger  *pipeline.Tagger
	manager *download.Manager
	stats   pipeline.RunStats

	// Options
	playlist bool
	verbose  bool
	dryRun   bool

	width  int
	height int
}

// NewModel creates a new TUI model working on the real filesystem.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = settings.LibraryPath
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		fs:        afero.NewOsFs(),
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.CreatePlaylist,
		dryRun:    settings.DryRun,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one pipeline event.
	ProgressMsg struct {
		Event pipeline.ProgressEvent
	}

	// ScanDoneMsg is sent once the target folder has been inspected.
	ScanDoneMsg struct {
		Target    string
		Publisher bool
		Folders   int
		Grammars  *pipeline.ChannelGrammars
		Err       error
	}

	// DoneMsg is sent when the run finishes.
	DoneMsg struct {
		Stats pipeline.RunStats
		Err   error
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
			if m.state == StateRunning || m.state == StateScanning {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput {
				m.target = strings.TrimSpace(m.textInput.Value())
				if m.target == "" {
					m.batch = true
					m.state = StateRunning
					run := m.startBatch()
					return m, tea.Batch(run, m.spinner.Tick, tickProgress())
				}
				m.state = StateScanning
				return m, tea.Batch(scan(m.fs, m.settings, m.target), m.spinner.Tick)
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
				return m, nil
			}

		case "ctrl+t":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
				return m, nil
			}

		case "ctrl+o":
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
		if m.events != nil {
			cmds = append(cmds, waitForEvent(m.events))
		}
		if msg.Event.Level == pipeline.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case ScanDoneMsg:
		if m.state != StateScanning {
			break
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.folders = msg.Folders
		m.state = StateRunning
		run := m.startTagging(msg)
		cmds = append(cmds, run, tickProgress())

	case DoneMsg:
		m.stats = msg.Stats
		m.done = m.processed()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateRunning {
			m.done = m.processed()
			cmds = append(cmds, tickProgress())
			if m.folders > 0 {
				cmds = append(cmds, m.progress.SetPercent(float64(m.done)/float64(m.folders)))
			}
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

func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.target = ""
	m.batch = false
	m.folders = 0
	m.done = 0
	m.events = nil
	m.tagger = nil
	m.manager = nil
	m.stats = pipeline.RunStats{}
	m.cancel()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
	return m
}

func (m Model) processed() int {
	switch {
	case m.tagger != nil:
		return m.tagger.Processed()
	case m.manager != nil:
		return m.manager.Processed()
	}
	return m.done
}

// runSettings applies the toggled options to a copy of the settings.
func (m Model) runSettings() *config.Settings {
	s := *m.settings
	s.CreatePlaylist = m.playlist
	s.DryRun = m.dryRun
	return &s
}

func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next pipeline event, or nothing once the run
// has closed the channel.
func waitForEvent(events <-chan pipeline.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// forward returns a progress callback logging every event and feeding it
// to the UI until ctx ends.
func forward(ctx context.Context, events chan<- pipeline.ProgressEvent) func(pipeline.ProgressEvent) {
	return func(event pipeline.ProgressEvent) {
		pipeline.LogEvent(event)
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}
}

// scan decides whether target is a single publisher folder or a whole
// library and counts the album folders to tag.
func scan(fs afero.Fs, settings *config.Settings, target string) tea.Cmd {
	return func() tea.Msg {
		channels, err := config.LoadChannels(settings.ChannelsPath)
		if err != nil {
			return ScanDoneMsg{Err: err}
		}
		grammars, err := pipeline.NewChannelGrammars(channels)
		if err != nil {
			return ScanDoneMsg{Err: err}
		}

		subdirs, err := pipeline.Discover(fs, target)
		if err != nil {
			return ScanDoneMsg{Err: err}
		}

		publisher := false
		for _, dir := range subdirs {
			audio, err := cleanup.Glob(fs, dir, cleanup.AudioPattern)
			if err != nil {
				return ScanDoneMsg{Err: err}
			}
			if len(audio) > 0 {
				publisher = true
				break
			}
		}
		if publisher {
			return ScanDoneMsg{Target: target, Publisher: true, Folders: len(subdirs), Grammars: grammars}
		}

		albums, err := pipeline.DiscoverLibrary(fs, target)
		if err != nil {
			return ScanDoneMsg{Err: err}
		}
		return ScanDoneMsg{Target: target, Folders: len(albums), Grammars: grammars}
	}
}

// startTagging tags the scanned folder in the background.
func (m *Model) startTagging(scanned ScanDoneMsg) tea.Cmd {
	m.events = make(chan pipeline.ProgressEvent, 64)
	m.tagger = pipeline.NewTagger(m.runSettings(), m.fs, forward(m.ctx, m.events))

	ctx, tagger, events := m.ctx, m.tagger, m.events
	run := func() tea.Msg {
		defer close(events)

		var (
			stats pipeline.RunStats
			err   error
		)
		if scanned.Publisher {
			stats, err = tagger.TagPublisher(ctx, scanned.Target, scanned.Grammars.For(filepath.Base(scanned.Target)))
		} else {
			stats, err = tagger.TagLibrary(ctx, scanned.Target, scanned.Grammars)
		}
		return DoneMsg{Stats: stats, Err: err}
	}
	return tea.Batch(run, waitForEvent(events))
}

// startBatch runs the channel batch in the background.
func (m *Model) startBatch() tea.Cmd {
	m.events = make(chan pipeline.ProgressEvent, 64)
	m.manager = download.NewManager(m.runSettings(), m.fs, clockwork.NewRealClock(), forward(m.ctx, m.events))

	ctx, manager, events := m.ctx, m.manager, m.events
	run := func() tea.Msg {
		defer close(events)
		stats, err := manager.Run(ctx)
		return DoneMsg{Stats: stats, Err: err}
	}
	return tea.Batch(run, waitForEvent(events))
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ tubetag"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Tag downloaded YouTube music from file names"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateScanning:
		b.WriteString(m.viewScanning())
	case StateRunning:
		b.WriteString(m.viewRunning())
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

	b.WriteString(subtitleStyle.Render("Folder to tag (leave empty to run the channel list):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Create playlist (ctrl+p)\n", checkbox(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Dry run (ctrl+t)\n", checkbox(m.dryRun)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+o)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Library: %s", m.settings.LibraryPath)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Channels: %s", m.settings.ChannelsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewScanning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Scanning %s...", m.target)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	if m.batch {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Running channel list..."))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf("Albums tagged: %d", m.done)))
		b.WriteString("\n\n")
	} else {
		b.WriteString(albumStyle.Render(fmt.Sprintf("  ♪ %s", m.target)))
		b.WriteString("\n\n")

		var percent float64
		if m.folders > 0 {
			percent = float64(m.done) / float64(m.folders)
		}
		b.WriteString(m.progress.ViewAs(percent))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf("Albums: %d/%d", m.done, m.folders)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	heading := "Tagging Complete!"
	if m.dryRun {
		heading = "Dry Run Complete!"
	}

	box := boxStyle.Render(fmt.Sprintf(
		"✨ %s\n\n"+
			"Albums: %d (%d failed)\n"+
			"Files tagged: %d (%d failed)\n"+
			"Full recordings removed: %d\n"+
			"Empty downloads removed: %d\n"+
			"Warnings: %d",
		heading,
		m.stats.Folders, m.stats.FailedFolders,
		m.stats.Tagged, m.stats.FailedFiles,
		m.stats.Deleted,
		m.stats.OrphansRemoved,
		m.stats.Warnings,
	))
	b.WriteString(box)
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case pipeline.LevelError:
			style = errorStyle
			prefix = "✗"
		case pipeline.LevelWarning:
			style = warningStyle
			prefix = "!"
		case pipeline.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case pipeline.LevelInfo:
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
		return "enter: start • ctrl+p: playlist • ctrl+t: dry run • ctrl+o: verbose • esc: quit"
	case StateScanning, StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
