package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/stabctl/internal/telemetry"
)

// FrameMsg carries a plotter frame into the TUI.
type FrameMsg telemetry.Frame

// Model is the live TUI state. It only ever sees immutable frames.
type Model struct {
	title    string
	frame    telemetry.Frame
	hasFrame bool
	paused   bool
	compact  bool
	theme    Theme
	st       styles
	width    int
	onQuit   func()
}

func NewModel(title string, onQuit func()) Model {
	if onQuit == nil {
		onQuit = func() {}
	}
	return Model{
		title:  title,
		theme:  ThemeLab,
		st:     newStyles(ThemeLab),
		width:  80,
		onQuit: onQuit,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if !m.paused {
			m.frame = telemetry.Frame(msg)
			m.hasFrame = true
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.onQuit()
			return m, tea.Quit
		case "p", " ":
			m.paused = !m.paused
		case "s":
			m.compact = !m.compact
		case "t":
			m.theme = NextTheme(m.theme)
			m.st = newStyles(m.theme)
		}
	}
	return m, nil
}

func (m Model) Paused() bool { return m.paused }

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := m.st.running.Render("STREAMING")
	if m.paused {
		status = m.st.paused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	if !m.hasFrame {
		s.WriteString(m.st.label.Render("waiting for first frame") + "\n")
	} else {
		s.WriteString(m.st.label.Render("Seq") + m.st.value.Render(fmt.Sprintf("%d", m.frame.Seq)) + "\n")
		skipped := m.st.value.Render(fmt.Sprintf("skipped: %d", m.frame.Skipped))
		if m.frame.Skipped > 0 {
			skipped = m.st.warning.Render(fmt.Sprintf("skipped: %d", m.frame.Skipped))
		}
		s.WriteString(m.st.label.Render("Samples") + skipped + "\n\n")

		plotWidth := max(m.width-16, 20)
		for i, ser := range m.frame.Series {
			color := lipgloss.NewStyle().Foreground(m.theme.TraceColor(i))
			if m.compact {
				line := fmt.Sprintf("%-9s %s", ser.Channel, SparklineChart(ser.Y, ser.YLim, plotWidth))
				s.WriteString(color.Render(line) + "\n")
				continue
			}
			if len(ser.Y) == 0 {
				continue
			}
			chart := asciigraph.Plot(clampSeries(ser.Y, ser.YLim),
				asciigraph.Height(6),
				asciigraph.Width(max(plotWidth, 2)),
				asciigraph.LowerBound(ser.YLim.Min),
				asciigraph.UpperBound(ser.YLim.Max),
				asciigraph.Caption(seriesCaption(ser, m.frame.Axis)),
			)
			s.WriteString(m.st.panel.Render(color.Render(chart)) + "\n")
		}
	}

	s.WriteString(m.st.help.Render("P:Pause S:Sparklines T:Theme Q:Quit"))
	return s.String()
}

// Program runs the TUI as a telemetry surface.
type Program struct {
	prog *tea.Program
	done chan struct{}
	err  error
}

// NewProgram builds the TUI; onQuit runs when the user presses q.
func NewProgram(title string, onQuit func(), opts ...tea.ProgramOption) *Program {
	return &Program{
		prog: tea.NewProgram(NewModel(title, onQuit), opts...),
		done: make(chan struct{}),
	}
}

// Start runs the event loop in the background. It must be called before
// the first Draw.
func (p *Program) Start() {
	go func() {
		defer close(p.done)
		_, p.err = p.prog.Run()
	}()
}

func (p *Program) Draw(f telemetry.Frame) error {
	p.prog.Send(FrameMsg(f))
	return nil
}

// Close asks the TUI to exit without waiting for it.
func (p *Program) Close() error {
	p.prog.Quit()
	return nil
}

// Wait blocks until the TUI has exited.
func (p *Program) Wait() error {
	<-p.done
	return p.err
}

// Finish tears the TUI down after the session ends. A failed session quits
// the TUI itself so the error is not hidden behind the alt screen.
func (p *Program) Finish(runErr error) error {
	if runErr != nil {
		p.Close()
	}
	if err := p.Wait(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
