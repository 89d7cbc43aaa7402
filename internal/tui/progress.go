// Package tui shows the progress of long analyses in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/hurstlab/internal/report"
)

const barWidth = 40

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProgressMsg reports that done of total work units have finished.
type ProgressMsg struct {
	Done  int
	Total int
}

type finishedMsg struct{ err error }

type tickMsg time.Time

type model struct {
	title       string
	done, total int
	start       time.Time
	elapsed     time.Duration
	frame       int
	finished    bool
	interrupted bool
	err         error
	cancel      context.CancelFunc
}

func newModel(title string, cancel context.CancelFunc) model {
	return model{title: title, start: time.Now(), cancel: cancel}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case ProgressMsg:
		m.done, m.total = msg.Done, msg.Total
	case tickMsg:
		m.frame++
		m.elapsed = time.Since(m.start)
		if m.finished {
			return m, nil
		}
		return m, tick()
	case finishedMsg:
		m.finished = true
		m.err = msg.err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit
	}
	return m, nil
}

func (m model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m model) View() string {
	var b strings.Builder

	status := spinnerFrames[m.frame%len(spinnerFrames)]
	if m.finished {
		status = report.Good.Render("✓")
		if m.err != nil {
			status = report.Bad.Render("✗")
		}
	}

	b.WriteString(status + " " + report.Title.Render(m.title) + "\n")
	b.WriteString(report.ProgressBar(m.percent(), barWidth))
	b.WriteString(fmt.Sprintf(" %d/%d  %s\n", m.done, m.total, m.elapsed.Truncate(100*time.Millisecond)))
	if !m.finished {
		b.WriteString(report.Subtle.Render("q to cancel") + "\n")
	}
	return b.String()
}

// Work is a long computation that reports progress through the callback.
type Work func(ctx context.Context, progress func(done, total int)) error

// Run executes work in the background while rendering a progress bar. It
// returns the error of work, or context.Canceled if the user quit early.
func Run(ctx context.Context, title string, work Work, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(title, cancel), opts...)

	workDone := make(chan error, 1)
	go func() {
		err := work(ctx, func(done, total int) {
			p.Send(ProgressMsg{Done: done, Total: total})
		})
		workDone <- err
		p.Send(finishedMsg{err: err})
	}()

	final, runErr := p.Run()
	cancel()
	workErr := <-workDone

	if runErr != nil {
		return runErr
	}
	if m, ok := final.(model); ok && m.interrupted {
		return context.Canceled
	}
	return workErr
}
