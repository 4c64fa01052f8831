package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/migenius/wait-for-realityserver/internal/handshake"
	"github.com/migenius/wait-for-realityserver/internal/logtail"
	"github.com/migenius/wait-for-realityserver/internal/monitor"
	"github.com/migenius/wait-for-realityserver/internal/prefs"
	"github.com/migenius/wait-for-realityserver/internal/state"
)

const (
	maxTransitions = 50
	maxLogLines    = 200
	headerRows     = 9
)

// errQuitEarly is returned when the user leaves before the handshake settled.
var errQuitEarly = errors.New("quit before RealityServer became available")

type phase int

const (
	phaseConnecting phase = iota
	phaseReady
	phaseFailed
)

// ConnectFunc runs the handshake, reporting each failed attempt.
type ConnectFunc func(ctx context.Context, progress handshake.ProgressFunc) (*handshake.Result, error)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Target     string
	NumRetries int
	Connect    ConnectFunc
	LogPath    string
	ThemeName  string
	ShowHelp   bool
	PrefsPath  string
	PollTick   time.Duration
}

type transition struct {
	event monitor.Event
	at    time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	target     string
	numRetries int
	prefsPath  string
	pollTick   time.Duration
	now        func() time.Time

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	showHelp bool
	spinner  spinner.Model
	width    int
	height   int
	ready    bool

	// Handshake state
	phase    phase
	progress handshake.Progress
	failures int
	started  time.Time
	result   *handshake.Result
	err      error

	// Monitor state
	store       *state.Store
	snapshot    state.Snapshot
	transitions []transition

	// Log state
	tail    *logtail.Tail
	logView viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = 500 * time.Millisecond
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.DefaultTheme
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		target:     opts.Target,
		numRetries: opts.NumRetries,
		prefsPath:  opts.PrefsPath,
		pollTick:   pollTick,
		now:        time.Now,
		theme:      GetTheme(themeName),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		showHelp:   opts.ShowHelp,
		spinner:    sp,
		started:    time.Now(),
		logView:    viewport.New(0, 0),
	}
	if opts.LogPath != "" {
		m.tail = logtail.New(opts.LogPath, maxLogLines)
	}
	m.applyTheme()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd(m.pollTick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeLogView()
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseConnecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.refreshSnapshot()
		m.refreshLogs()
		return m, tickCmd(m.pollTick)

	case progressMsg:
		m.progress = handshake.Progress(msg)
		m.failures++
		return m, nil

	case resultMsg:
		if msg.err != nil {
			m.phase = phaseFailed
			m.err = msg.err
			return m, nil
		}
		m.phase = phaseReady
		m.result = msg.result
		if msg.result.Monitoring() {
			m.store = msg.result.Monitor.Store()
		}
		m.refreshSnapshot()
		return m, nil

	case connectivityMsg:
		m.transitions = append(m.transitions, transition(msg))
		if over := len(m.transitions) - maxTransitions; over > 0 {
			m.transitions = m.transitions[over:]
		}
		m.refreshSnapshot()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.phase == phaseFailed {
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resizeLogView()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.LineUp, m.keys.LineDown):
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) applyTheme() {
	styles := m.theme.Styles()
	m.spinner.Style = styles.AccentText
	m.help.ShowAll = m.showHelp
	m.help.Styles.ShortKey = styles.WarningText
	m.help.Styles.FullKey = styles.WarningText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.FullDesc = styles.MutedText
	m.updateLogView()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, ShowHelp: m.showHelp})
}

func (m *Model) refreshSnapshot() {
	if m.store == nil {
		return
	}
	m.snapshot = m.store.Snapshot()
}

func (m *Model) refreshLogs() {
	if m.tail == nil {
		return
	}
	if _, err := m.tail.Refresh(); err != nil {
		return
	}
	m.updateLogView()
}

func (m *Model) updateLogView() {
	if m.tail == nil {
		return
	}
	atBottom := m.logView.AtBottom()
	m.logView.SetContent(colorizeLines(m.theme.Styles(), m.tail.Lines(), m.width))
	if atBottom {
		m.logView.GotoBottom()
	}
}

func (m *Model) resizeLogView() {
	helpRows := 1
	if m.showHelp {
		helpRows = 3
	}
	m.logView.Width = max(m.width-4, 0)
	m.logView.Height = max(m.height-headerRows-helpRows-maxShownTransitions-2, 3)
	m.updateLogView()
}

// Messages

type tickMsg time.Time

type progressMsg handshake.Progress

type resultMsg struct {
	result *handshake.Result
	err    error
}

type connectivityMsg transition

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// connect runs the handshake and forwards its progress, outcome and monitor
// events to send. The monitor is started once both events are subscribed.
// The returned result must be stopped by the caller.
func connect(ctx context.Context, fn ConnectFunc, send func(tea.Msg)) *handshake.Result {
	result, err := fn(ctx, func(p handshake.Progress) {
		send(progressMsg(p))
	})
	if err != nil {
		send(resultMsg{err: err})
		return nil
	}
	if result.Monitoring() {
		for _, event := range []monitor.Event{monitor.EventConnected, monitor.EventDisconnected} {
			event := event
			_ = result.Monitor.Subscribe(event, func() {
				send(connectivityMsg{event: event, at: time.Now()})
			})
		}
		result.Start()
	}
	send(resultMsg{result: result})
	return result
}

// Run starts the Bubble Tea program and the handshake behind it. It returns
// the handshake error, if the handshake failed.
func Run(opts Options) error {
	if opts.Connect == nil {
		return fmt.Errorf("ui: no connect function")
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))

	connected := make(chan *handshake.Result, 1)
	go func() {
		connected <- connect(ctx, opts.Connect, p.Send)
	}()

	final, err := p.Run()
	cancel()
	if result := <-connected; result != nil {
		result.Stop()
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	fm, ok := final.(Model)
	if !ok {
		return nil
	}
	switch fm.phase {
	case phaseFailed:
		return fm.err
	case phaseConnecting:
		if parent.Err() != nil {
			return parent.Err()
		}
		return errQuitEarly
	}
	return nil
}
