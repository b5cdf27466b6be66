// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/poolautomation/poolcore/internal/board"
	"github.com/poolautomation/poolcore/internal/config"
	"github.com/poolautomation/poolcore/internal/core"
	"github.com/poolautomation/poolcore/internal/corelog"
	"github.com/poolautomation/poolcore/internal/events"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live TUI dashboard of circuit and body state and recent events",
	RunE:  runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := corelog.New(cfg.LogLevel, os.Stderr)

	c, err := core.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize core: %w", err)
	}
	for _, pc := range cfg.Ports {
		opener, err := buildOpener(pc)
		if err != nil {
			return fmt.Errorf("port %d: %w", pc.ID, err)
		}
		c.AttachPort(pc.ID, opener, board.ParseVariant(pc.Variant), 0x21, 0x10)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	defer c.Shutdown()

	m := newMonitorModel(c)
	p := tea.NewProgram(m, tea.WithAltScreen())

	for _, kind := range events.EntityKinds {
		ch, _ := c.Bus.Subscribe(kind)
		go func(ch <-chan events.Event) {
			for ev := range ch {
				p.Send(eventMsg(ev))
			}
		}(ch)
	}

	_, err = p.Run()
	return err
}

type eventMsg events.Event
type tickMsg time.Time

type logLine struct {
	at  time.Time
	txt string
}

type monitorModel struct {
	core     *core.Core
	log      []logLine
	maxLines int
	width    int
	height   int
}

func newMonitorModel(c *core.Core) monitorModel {
	return monitorModel{core: c, maxLines: 200}
}

func monitorTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(monitorTick(), tea.EnterAltScreen)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		return m, monitorTick()
	case eventMsg:
		line := logLine{
			at:  time.Now(),
			txt: fmt.Sprintf("%-10s #%-4d %v", msg.Kind, msg.ID, msg.ChangedFields),
		}
		m.log = append(m.log, line)
		if len(m.log) > m.maxLines {
			m.log = m.log[len(m.log)-m.maxLines:]
		}
	}
	return m, nil
}

var (
	monitorHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	monitorDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	monitorOnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	monitorOffStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (m monitorModel) View() string {
	var b strings.Builder
	b.WriteString(monitorHeaderStyle.Render("poolcore monitor") + "  " + monitorDimStyle.Render("q to quit") + "\n\n")

	b.WriteString(monitorHeaderStyle.Render("Circuits") + "\n")
	for _, c := range m.core.ConfigGraph.Circuits.All() {
		st, ok := m.core.StateGraph.Circuits.Get(c.ID)
		status := monitorOffStyle.Render("off")
		if ok && st.IsOn {
			status = monitorOnStyle.Render("on")
		}
		fmt.Fprintf(&b, "  %-4d %-24s %s\n", c.ID, c.Name, status)
	}

	b.WriteString("\n" + monitorHeaderStyle.Render("Bodies") + "\n")
	for _, body := range m.core.ConfigGraph.Bodies.All() {
		st, ok := m.core.StateGraph.Bodies.Get(body.ID)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %-4d %-16s temp=%.1f setpoint=%.1f heat=%v\n", body.ID, body.Name, st.Temp, st.SetPoint, st.HeatStatus)
	}

	b.WriteString("\n" + monitorHeaderStyle.Render("Recent events") + "\n")
	start := 0
	if len(m.log) > 15 {
		start = len(m.log) - 15
	}
	for _, l := range m.log[start:] {
		fmt.Fprintf(&b, "  %s  %s\n", l.at.Format("15:04:05"), l.txt)
	}

	return b.String()
}
