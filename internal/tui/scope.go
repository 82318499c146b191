// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bandscope/internal/transport"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	dominantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FAFD7"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

const barWidth = 40

// frameMsg delivers the next frame to the model.
type frameMsg *transport.Frame

// closedMsg signals that the frame channel was closed.
type closedMsg struct{}

// Model renders per-band power bars with the dominant band highlighted.
type Model struct {
	frames <-chan *transport.Frame
	frame  *transport.Frame
	width  int
}

// NewModel returns a scope view fed by the given frame channel.
func NewModel(frames <-chan *transport.Frame) Model {
	return Model{frames: frames}
}

// Init starts waiting for the first frame.
func (m Model) Init() tea.Cmd {
	return waitForFrame(m.frames)
}

func waitForFrame(frames <-chan *transport.Frame) tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-frames
		if !ok {
			return closedMsg{}
		}
		return frameMsg(frame)
	}
}

// Update handles key presses and incoming frames.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case frameMsg:
		m.frame = msg
		return m, waitForFrame(m.frames)
	case closedMsg:
		return m, tea.Quit
	}
	return m, nil
}

// View renders the band bars, powers, and dominant label.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("bandscope"))
	b.WriteString("\n\n")

	if m.frame == nil {
		b.WriteString(dimStyle.Render("waiting for samples..."))
		b.WriteString("\n")
		return b.String()
	}

	f := m.frame
	maxPower := f.BandRangeVolts
	if maxPower <= 0 {
		maxPower = 0.5
	}

	for i, band := range f.Bands {
		name := fmt.Sprintf("%-6s %5.1f-%4.1f Hz", band.Name, band.LowHz, band.HighHz)
		fill := barFill(band.Power, maxPower)
		bar := strings.Repeat("█", fill)
		pad := dimStyle.Render(strings.Repeat("·", barWidth-fill))
		value := fmt.Sprintf("%8.4f V", band.Power)

		line := labelStyle.Render(name) + "  " + barStyle.Render(bar) + pad + " " + value
		if i == f.DominantIndex {
			line = dominantStyle.Render(name) + "  " + dominantStyle.Render(bar) + pad + " " + value + dominantStyle.Render("  ◀ dominant")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dominantStyle.Render(fmt.Sprintf("dominant band: %s", f.Dominant)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("frame %d  raw %+.3f V  (q to quit)",
		f.Seq, tail(f.Raw))))
	b.WriteString("\n")
	return b.String()
}

func barFill(power, maxPower float64) int {
	n := int(power / maxPower * barWidth)
	if n > barWidth {
		n = barWidth
	}
	if n < 0 {
		n = 0
	}
	return n
}

func tail(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return samples[len(samples)-1]
}

// Sink adapts the frame channel to the transport interface so the engine
// can treat the terminal view like any other sink. Full channel: the
// frame is dropped, never blocking the tick.
type Sink struct {
	frames chan *transport.Frame
}

// NewSink returns a Sink with a small frame queue.
func NewSink() *Sink {
	return &Sink{frames: make(chan *transport.Frame, 4)}
}

// Frames exposes the receive side for the Model.
func (s *Sink) Frames() <-chan *transport.Frame {
	return s.frames
}

// Send queues a frame for rendering, dropping it when the view lags.
func (s *Sink) Send(frame *transport.Frame) error {
	select {
	case s.frames <- frame:
	default:
	}
	return nil
}

// Close closes the frame channel, which quits the view.
func (s *Sink) Close() error {
	close(s.frames)
	return nil
}

var _ transport.Transport = (*Sink)(nil)
