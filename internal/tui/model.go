package tui

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Mr-Dark-debug/paytrail/internal/api"
	"github.com/Mr-Dark-debug/paytrail/internal/timeline"
	"github.com/Mr-Dark-debug/paytrail/pkg/timeutil"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultFrameInterval paces the fade-in at roughly 16 frames per second.
const DefaultFrameInterval = 62 * time.Millisecond

// ────────────────────────────────────────────────────────────
// Collaborators
// ────────────────────────────────────────────────────────────

// TimelineSource fetches the payment timeline. *api.Client satisfies it.
type TimelineSource interface {
	FetchTimeline(ctx context.Context) (*timeline.Response, error)
}

// Navigator is the host's navigation handle. Back is invoked when the
// user leaves the screen from the header.
type Navigator interface {
	Back() tea.Cmd
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func() tea.Cmd

// Back implements Navigator.
func (f NavigatorFunc) Back() tea.Cmd { return f() }

// QuitNavigator is the navigator of a standalone program: going back
// leaves the program.
func QuitNavigator() Navigator {
	return NavigatorFunc(func() tea.Cmd { return tea.Quit })
}

// Options configures a Model. Zero values select the defaults.
type Options struct {
	Formatter     *timeutil.Formatter
	Navigator     Navigator
	FadeDuration  time.Duration
	FrameInterval time.Duration
	Now           func() time.Time
}

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the payment status screen. It owns the timeline state, runs
// the single fetch of a mount and animates the fade-in afterwards.
type Model struct {
	source TimelineSource
	nav    Navigator
	format *timeutil.Formatter
	now    func() time.Time

	fadeDuration  time.Duration
	frameInterval time.Duration

	// ctx is cancelled by Teardown; it bounds the in-flight fetch.
	ctx    context.Context
	cancel context.CancelFunc

	state  timeline.State
	fade   timeline.Fade
	fading bool

	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	width  int
	height int
}

// NewModel creates the screen. Nothing is fetched until Init.
func NewModel(source TimelineSource, opts Options) Model {
	if opts.Formatter == nil {
		opts.Formatter = timeutil.HostFormatter()
	}
	if opts.Navigator == nil {
		opts.Navigator = QuitNavigator()
	}
	if opts.FadeDuration <= 0 {
		opts.FadeDuration = timeline.DefaultFadeDuration
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	h := help.New()
	h.Styles.ShortKey = hintKeyStyle
	h.Styles.ShortDesc = hintDescStyle
	h.Styles.ShortSeparator = hintSepStyle
	h.Styles.FullKey = hintKeyStyle
	h.Styles.FullDesc = hintDescStyle
	h.Styles.FullSeparator = hintSepStyle

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		source:        source,
		nav:           opts.Navigator,
		format:        opts.Formatter,
		now:           opts.Now,
		fadeDuration:  opts.FadeDuration,
		frameInterval: opts.FrameInterval,
		ctx:           ctx,
		cancel:        cancel,
		state:         timeline.Mount(),
		spinner:       s,
		viewport:      viewport.New(0, 0),
		help:          h,
		keys:          defaultKeyMap(),
	}
}

// State returns the current timeline state.
func (m Model) State() timeline.State { return m.state }

// Closed reports whether the screen has been torn down.
func (m Model) Closed() bool { return m.ctx.Err() != nil }

// Teardown releases the screen: the in-flight fetch is cancelled and
// any result or animation frame arriving afterwards is ignored.
func (m *Model) Teardown() {
	m.fading = false
	m.cancel()
}

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type mountMsg struct{}

type timelineLoadedMsg struct {
	cycle   int
	resp    *timeline.Response
	elapsed time.Duration
}

type timelineFailedMsg struct {
	cycle   int
	err     error
	elapsed time.Duration
}

type fadeFrameMsg struct{ cycle int }

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

// Init mounts the screen: the spinner starts and the timeline loads.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return mountMsg{} })
}

// loadTimeline starts a load cycle and returns the fetch command.
func (m Model) loadTimeline() (Model, tea.Cmd) {
	m.state = m.state.BeginLoad()
	m.fading = false
	m.syncViewport()

	cycle := m.state.Cycle
	ctx, source, now := m.ctx, m.source, m.now
	return m, func() tea.Msg {
		start := now()
		resp, err := source.FetchTimeline(ctx)
		elapsed := now().Sub(start)
		if err != nil {
			return timelineFailedMsg{cycle: cycle, err: err, elapsed: elapsed}
		}
		return timelineLoadedMsg{cycle: cycle, resp: resp, elapsed: elapsed}
	}
}

// startFadeAnimation begins the fade-in from the current instant.
func (m Model) startFadeAnimation() (Model, tea.Cmd) {
	m.fade = timeline.NewFade(m.now(), m.fadeDuration)
	m.fading = true
	return m, m.nextFrame()
}

func (m Model) nextFrame() tea.Cmd {
	cycle := m.state.Cycle
	return tea.Tick(m.frameInterval, func(time.Time) tea.Msg {
		return fadeFrameMsg{cycle: cycle}
	})
}

// stale reports whether a message from the given cycle must be dropped.
func (m Model) stale(cycle int) bool {
	return m.Closed() || cycle != m.state.Cycle
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case mountMsg:
		if m.Closed() {
			return m, nil
		}
		return m.loadTimeline()

	case timelineLoadedMsg:
		if m.stale(msg.cycle) {
			log.Printf("[DEBUG] Dropping timeline result of cycle %d", msg.cycle)
			return m, nil
		}
		var animate bool
		m.state, animate = m.state.ApplyResponse(msg.resp)
		m.syncViewport()
		if !animate {
			log.Printf("[WARN] No timeline data found (cycle %d, %s)", msg.cycle, msg.elapsed)
			return m, nil
		}
		log.Printf("[INFO] Timeline loaded: %d entries in %s (cycle %d)",
			len(m.state.Entries), msg.elapsed, msg.cycle)
		return m.startFadeAnimation()

	case timelineFailedMsg:
		if m.stale(msg.cycle) {
			log.Printf("[DEBUG] Dropping timeline failure of cycle %d: %v", msg.cycle, msg.err)
			return m, nil
		}
		m.state = m.state.ApplyFailure(msg.err)
		m.syncViewport()
		var statusErr *api.StatusError
		if errors.As(msg.err, &statusErr) {
			log.Printf("[ERROR] Fetching timeline failed with status %d (cycle %d): %v",
				statusErr.Code, msg.cycle, msg.err)
		} else {
			log.Printf("[ERROR] Fetching timeline failed (cycle %d): %v", msg.cycle, msg.err)
		}
		return m, nil

	case fadeFrameMsg:
		if !m.fading || m.stale(msg.cycle) {
			return m, nil
		}
		now := m.now()
		m.state = m.state.AdvanceFade(m.fade.ProgressAt(now))
		m.syncViewport()
		if m.state.FadeComplete() || m.fade.Done(now) {
			m.state = m.state.AdvanceFade(1)
			m.fading = false
			m.syncViewport()
			return m, nil
		}
		return m, m.nextFrame()

	case spinner.TickMsg:
		if !m.state.Loading || m.Closed() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey routes keyboard input. Anything that is not navigation is
// handed to the viewport for scrolling.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.Teardown()
		return m, m.nav.Back()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.syncViewport()
		return m, nil
	}

	if m.state.Mode() != timeline.ModePopulated {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// syncViewport resizes the viewport to the body area and re-renders
// the list at the current opacity.
func (m *Model) syncViewport() {
	m.viewport.Width = m.width
	m.viewport.Height = m.bodyHeight()

	entries := m.state.Visible()
	if len(entries) == 0 {
		m.viewport.SetContent("")
		return
	}
	inner := m.width - listStyle.GetHorizontalFrameSize()
	m.viewport.SetContent(listStyle.Render(
		renderTimeline(entries, inner, m.state.Progress, m.format.Format)))
}

// bodyHeight is what remains after the one-line header and the footer,
// which grows when the full key help is shown.
func (m Model) bodyHeight() int {
	return maxInt(m.height-1-lipgloss.Height(renderFooter(&m)), 0)
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	body := renderBody(&m, m.width, m.bodyHeight())
	footer := renderFooter(&m)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
