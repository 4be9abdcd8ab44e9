// Package debugtui implements the interactive step/undo/breakpoint
// debugger for `rv32 debug`, built on Bubble Tea and Lipgloss (pack
// dependencies per hejops-gone and zboralski-galago's manifests) as the
// generalized replacement for the teacher's cmd/interp `-d` flag, which
// only blocked on fmt.Scanln() between steps with no undo and no
// persistent view of machine state.
package debugtui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rv32edu/toolchain/pkg/isa"
	"github.com/rv32edu/toolchain/pkg/link"
	"github.com/rv32edu/toolchain/pkg/sim"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	pcStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	haltStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	breakStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	regStyle    = lipgloss.NewStyle().Width(14)
)

// model is the Bubble Tea model: a thin view over a *sim.Simulator,
// which already owns every piece of mutable machine state.
type model struct {
	sim    *sim.Simulator
	linked *link.LinkedProgram
	status string
}

// Run launches the debugger over m and blocks until the user quits.
func Run(m *sim.Simulator, linked *link.LinkedProgram) error {
	p := tea.NewProgram(model{sim: m, linked: linked, status: "ready"})
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "s":
		if m.sim.IsDone() {
			m.status = "halted"
			break
		}
		m.sim.Step()
		m.status = "stepped"
	case "u":
		if !m.sim.CanUndo() {
			m.status = "nothing to undo"
			break
		}
		m.sim.Undo()
		m.status = "undid last step"
	case "b":
		on := m.sim.ToggleBreakpointAt(m.sim.GetPC() / 4)
		if on {
			m.status = "breakpoint set"
		} else {
			m.status = "breakpoint cleared"
		}
	case "r":
		m.status = m.runToBreakOrHalt()
	}
	return m, nil
}

// runToBreakOrHalt steps until the simulator halts or lands on a
// breakpoint other than the one it started at.
func (m model) runToBreakOrHalt() string {
	start := m.sim.GetPC()
	for !m.sim.IsDone() {
		m.sim.Step()
		if m.sim.GetPC() != start && m.sim.AtBreakpoint() {
			return "stopped at breakpoint"
		}
	}
	if err := m.sim.LastError(); err != nil {
		return fmt.Sprintf("halted: %s", err)
	}
	return "halted"
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("rv32 debug"))
	b.WriteString("\n\n")

	pc := m.sim.GetPC()
	line := pcStyle.Render(fmt.Sprintf("pc %08x", pc))
	if m.sim.AtBreakpoint() {
		line += " " + breakStyle.Render("[breakpoint]")
	}
	if m.sim.IsDone() {
		line += " " + haltStyle.Render("[halted]")
	}
	b.WriteString(line + "\n")

	if w, err := m.sim.LoadWord(pc); err == nil {
		b.WriteString(isa.Disassemble(isa.Word(w)) + "\n")
	}
	b.WriteString("\n")

	for i := 0; i < isa.NumRegisters; i += 4 {
		for j := i; j < i+4 && j < isa.NumRegisters; j++ {
			b.WriteString(regStyle.Render(fmt.Sprintf("x%-2d=%08x", j, m.sim.GetReg(j))))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.status + "\n")
	b.WriteString(helpStyle.Render("s step  u undo  b breakpoint  r run  q quit"))
	return b.String()
}
