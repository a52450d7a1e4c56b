package shell

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/framehost/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// chromeRows is the number of terminal rows used by the status and help lines.
const chromeRows = 2

// Options configures the terminal shell.
type Options struct {
	// Title is shown in the status line, usually the guest path.
	Title string
	// Interval is the time between ticks.
	Interval time.Duration
	// KeyHold is the release window for keys without a repeat.
	KeyHold time.Duration
	// Output decides the colour profile. Nil means stdout.
	Output *termenv.Output
	// SnapshotDir is where f3 writes PNG snapshots. Empty means the
	// working directory.
	SnapshotDir string
}

type tickMsg time.Time

// Model is the bubbletea model driving one session.
type Model struct {
	ctx     context.Context
	sess    *runtime.Session
	opts    Options
	keys    keyMap
	help    help.Model
	hold    *holdTracker
	now     func() time.Time
	profile termenv.Profile

	cols, rows int
	paused     bool
	status     string
	err        error

	// rendered frame cache
	frame    string
	frameGen uint64
	frameW   int
	frameH   int
}

// New creates the terminal model. The session must already be started.
func New(ctx context.Context, sess *runtime.Session, opts Options) *Model {
	if opts.Interval <= 0 {
		opts.Interval = time.Second / 60
	}
	if opts.KeyHold <= 0 {
		opts.KeyHold = 150 * time.Millisecond
	}
	out := opts.Output
	if out == nil {
		out = termenv.NewOutput(os.Stdout)
	}
	return &Model{
		ctx:     ctx,
		sess:    sess,
		opts:    opts,
		keys:    defaultKeyMap(),
		help:    help.New(),
		hold:    newHoldTracker(opts.KeyHold),
		now:     time.Now,
		profile: out.Profile,
		frameW:  -1,
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil
		case key.Matches(msg, m.keys.Snapshot):
			m.snapshot()
			return m, nil
		}
		now := m.now()
		for _, code := range keyCodes(msg) {
			if m.hold.press(code, now) {
				m.sess.PressKey(code)
			}
		}

	case tea.MouseMsg:
		m.pointer(msg.X, msg.Y)

	case tea.WindowSizeMsg:
		m.cols = msg.Width
		m.rows = max(msg.Height-chromeRows, 0)
		m.help.Width = msg.Width

	case tickMsg:
		if m.sess.State() == runtime.StateStopped {
			return m, nil
		}
		for _, code := range m.hold.expire(m.now()) {
			m.sess.ReleaseKey(code)
		}
		if m.paused {
			return m, m.tick()
		}
		if err := m.sess.Tick(m.ctx); err != nil {
			m.err = err
			Logger().Debug("tick error", zap.Error(err))
		}
		if m.sess.State() == runtime.StateStopped {
			code, _ := m.sess.ExitCode()
			m.status = fmt.Sprintf("guest stopped with code %d", code)
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

// pointer maps a terminal cell to surface coordinates.
func (m *Model) pointer(col, row int) {
	if m.cols <= 0 || m.rows <= 0 || row >= m.rows || col >= m.cols || col < 0 || row < 0 {
		return
	}
	surf := m.sess.Surface()
	x := col * surf.Width() / m.cols
	y := (2*row + 1) * surf.Height() / (2 * m.rows)
	m.sess.SetPointer(x, y)
}

func (m *Model) snapshot() {
	surf := m.sess.Surface()
	name := fmt.Sprintf("framehost-%d.png", m.sess.Ticks())
	if m.opts.SnapshotDir != "" {
		name = m.opts.SnapshotDir + string(os.PathSeparator) + name
	}
	if err := WriteSnapshot(name, surf); err != nil {
		m.err = err
		return
	}
	m.status = "saved " + name
}

// View implements tea.Model.
func (m *Model) View() string {
	surf := m.sess.Surface()
	if surf.Generation() != m.frameGen || m.cols != m.frameW || m.rows != m.frameH {
		m.frame = Render(surf.Snapshot(), m.cols, m.rows, m.profile)
		m.frameGen, m.frameW, m.frameH = surf.Generation(), m.cols, m.rows
	}

	var b strings.Builder
	if m.frame != "" {
		b.WriteString(m.frame)
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) statusLine() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("framehost"))
	b.WriteByte(' ')

	state := m.sess.State().String()
	if m.paused {
		state = "paused"
	}
	in := m.sess.Input()
	b.WriteString(statusStyle.Render(fmt.Sprintf("%s %s • tick %d • %d pages • %d held • %d transitions",
		m.opts.Title, state, m.sess.Ticks(), m.sess.Pages(), len(in.Held()), in.Transitions())))

	if m.status != "" {
		b.WriteString(" • " + m.status)
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(m.err.Error()))
	}
	return b.String()
}

// Err returns the last tick error shown in the status line.
func (m *Model) Err() error {
	return m.err
}

// RunTerminal runs the terminal shell until the user quits or ctx is done.
func RunTerminal(ctx context.Context, sess *runtime.Session, opts Options) error {
	p := tea.NewProgram(New(ctx, sess, opts),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
