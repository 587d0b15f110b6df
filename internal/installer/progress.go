package installer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Reporter displays install progress. Calls come from a single goroutine.
type Reporter interface {
	Start(workspaces []string)
	Done(o Outcome)
	Stop()
}

// NewReporter returns a live spinner view when out is a terminal and plain
// counter lines otherwise.
func NewReporter(out *os.File) Reporter {
	if term.IsTerminal(int(out.Fd())) {
		return NewTeaReporter(out)
	}
	return NewPlainReporter(out)
}

type nopReporter struct{}

func (nopReporter) Start([]string) {}
func (nopReporter) Done(Outcome)   {}
func (nopReporter) Stop()          {}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// PlainReporter writes one line per finished install.
type PlainReporter struct {
	w     io.Writer
	total int
	done  int
}

// NewPlainReporter writes to w.
func NewPlainReporter(w io.Writer) *PlainReporter {
	return &PlainReporter{w: w}
}

func (r *PlainReporter) Start(workspaces []string) {
	r.total = len(workspaces)
	r.done = 0
	fmt.Fprintf(r.w, "Installing dependencies in %d workspace(s)...\n", r.total)
}

func (r *PlainReporter) Done(o Outcome) {
	r.done++
	fmt.Fprintf(r.w, "[%d/%d] %s\n", r.done, r.total, outcomeLine(o))
}

func (r *PlainReporter) Stop() {}

func outcomeLine(o Outcome) string {
	elapsed := dimStyle.Render(fmt.Sprintf("(%s)", o.Duration.Round(100*time.Millisecond)))
	if o.Success {
		return okStyle.Render("✓ "+o.Workspace) + " " + elapsed
	}
	return failStyle.Render("✗ "+o.Workspace) + " " + elapsed
}

// TeaReporter shows a spinner per running install. If the view cannot run,
// Stop writes the outcomes as plain lines instead.
type TeaReporter struct {
	out      io.Writer
	opts     []tea.ProgramOption
	program  *tea.Program
	exited   chan struct{}
	runErr   error
	total    int
	outcomes []Outcome
	once     sync.Once
}

// NewTeaReporter renders to out.
func NewTeaReporter(out io.Writer) *TeaReporter {
	return &TeaReporter{out: out}
}

func (r *TeaReporter) Start(workspaces []string) {
	opts := append([]tea.ProgramOption{tea.WithOutput(r.out), tea.WithInput(nil)}, r.opts...)
	r.program = tea.NewProgram(newProgressModel(workspaces), opts...)
	r.total = len(workspaces)
	r.outcomes = nil
	r.exited = make(chan struct{})
	go func() {
		defer close(r.exited)
		_, r.runErr = r.program.Run()
	}()
}

func (r *TeaReporter) Done(o Outcome) {
	r.outcomes = append(r.outcomes, o)
	if r.program != nil {
		r.program.Send(outcomeMsg(o))
	}
}

func (r *TeaReporter) Stop() {
	r.once.Do(func() {
		if r.program == nil {
			return
		}
		r.program.Send(stopMsg{})
		<-r.exited
		if r.runErr == nil {
			return
		}
		fmt.Fprintf(r.out, "Progress view unavailable: %v\n", r.runErr)
		for i, o := range r.outcomes {
			fmt.Fprintf(r.out, "[%d/%d] %s\n", i+1, r.total, outcomeLine(o))
		}
	})
}

type outcomeMsg Outcome

type stopMsg struct{}

// progressModel is the bubbletea model behind TeaReporter.
type progressModel struct {
	spinner  spinner.Model
	names    []string
	outcomes map[string]Outcome
	started  time.Time
	quitting bool
}

func newProgressModel(names []string) *progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &progressModel{
		spinner:  s,
		names:    names,
		outcomes: make(map[string]Outcome, len(names)),
		started:  time.Now(),
	}
}

func (m *progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case outcomeMsg:
		m.outcomes[msg.Workspace] = Outcome(msg)
		return m, nil
	case stopMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.quitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Installing dependencies (%d/%d)\n", len(m.outcomes), len(m.names))
	for _, name := range m.names {
		if o, ok := m.outcomes[name]; ok {
			b.WriteString("  " + outcomeLine(o) + "\n")
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", m.spinner.View(), name))
	}
	return b.String()
}
