package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-tradenet/pkg/algorithms"
	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
)

var exploreTabs = []string{
	"Summary",
	"In-strength",
	"Out-strength",
	"In-degree",
	"Out-degree",
	"Betweenness",
	"Eigenvector",
	"Communities",
}

const (
	summaryTab     = 0
	communitiesTab = 7
)

type exploreKeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Policy   key.Binding
	Shift    key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

var exploreKeys = exploreKeyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab", "right", "l"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab", "left", "h"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Policy: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "toggle weight policy"),
	),
	Shift: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "toggle eigenvector shift"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k exploreKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Policy, k.Shift, k.Quit}
}

func (k exploreKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Up, k.Down},
		{k.Policy, k.Shift, k.Quit},
	}
}

// reportMsg delivers the result of a background analysis.
type reportMsg struct {
	report *analysis.Report
	err    error
}

type exploreModel struct {
	engine *analysis.Engine
	flows  []network.FlowRecord
	opts   analysis.Options

	report  *analysis.Report
	running bool
	current int

	table      table.Model
	help       help.Model
	keys       exploreKeyMap
	width      int
	height     int
	message    string
	messageErr bool
}

func newExploreModel(engine *analysis.Engine, flows []network.FlowRecord, opts analysis.Options) exploreModel {
	t := table.New(
		table.WithColumns(rankingColumns()),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	return exploreModel{
		engine:  engine,
		flows:   flows,
		opts:    opts,
		running: true,
		table:   t,
		help:    help.New(),
		keys:    exploreKeys,
	}
}

func rankingColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Country", Width: 32},
		{Title: "Score", Width: 16},
	}
}

func communityColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Size", Width: 6},
		{Title: "Members", Width: 60},
	}
}

func (m exploreModel) analyzeCmd() tea.Cmd {
	engine, flows, opts := m.engine, m.flows, m.opts
	return func() tea.Msg {
		report, err := engine.Analyze(context.Background(), flows, opts)
		return reportMsg{report: report, err: err}
	}
}

func (m exploreModel) Init() tea.Cmd {
	return m.analyzeCmd()
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if msg.Height > 12 {
			m.table.SetHeight(msg.Height - 12)
		}

	case reportMsg:
		m.running = false
		m.report = msg.report
		if msg.err != nil {
			m.message, m.messageErr = msg.err.Error(), true
		} else {
			m.message = fmt.Sprintf("Analysis %s finished in %.1fms", msg.report.Status, msg.report.DurationMS)
			m.messageErr = msg.report.Status != analysis.StatusOK
		}
		m.refreshTable()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.current = (m.current + 1) % len(exploreTabs)
			m.refreshTable()
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.current = (m.current + len(exploreTabs) - 1) % len(exploreTabs)
			m.refreshTable()
			return m, nil

		case key.Matches(msg, m.keys.Policy):
			if m.running {
				return m, nil
			}
			if m.opts.WeightPolicy == algorithms.WeightInverse {
				m.opts.WeightPolicy = algorithms.WeightAsDistance
			} else {
				m.opts.WeightPolicy = algorithms.WeightInverse
			}
			m.running = true
			m.message, m.messageErr = "Re-running with weight policy "+string(m.opts.WeightPolicy), false
			return m, m.analyzeCmd()

		case key.Matches(msg, m.keys.Shift):
			if m.running {
				return m, nil
			}
			m.opts.Shift = !m.opts.Shift
			m.running = true
			m.message, m.messageErr = fmt.Sprintf("Re-running with shift=%t", m.opts.Shift), false
			return m, m.analyzeCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// ranking returns the ranking shown on the current tab.
func (m exploreModel) ranking() (analysis.Ranking, bool) {
	if m.report == nil || m.report.Centrality == nil {
		return analysis.Ranking{}, false
	}
	c := m.report.Centrality
	switch m.current {
	case 1:
		return c.InStrength, true
	case 2:
		return c.OutStrength, true
	case 3:
		return c.InDegree, true
	case 4:
		return c.OutDegree, true
	case 5:
		return c.Betweenness, true
	case 6:
		return c.Eigenvector, true
	}
	return analysis.Ranking{}, false
}

func (m *exploreModel) refreshTable() {
	m.table.SetRows(nil)
	m.table.SetCursor(0)

	if m.current == communitiesTab {
		m.table.SetColumns(communityColumns())
		if m.report == nil {
			return
		}
		rows := make([]table.Row, 0, len(m.report.Communities))
		for i, members := range m.report.Communities {
			rows = append(rows, table.Row{strconv.Itoa(i + 1), strconv.Itoa(len(members)), strings.Join(members, ", ")})
		}
		m.table.SetRows(rows)
		return
	}

	m.table.SetColumns(rankingColumns())
	r, ok := m.ranking()
	if !ok {
		return
	}
	rows := make([]table.Row, 0, len(r.Scores))
	for i, s := range r.Scores {
		rows = append(rows, table.Row{strconv.Itoa(i + 1), s.Node, strconv.FormatFloat(s.Score, 'g', 6, 64)})
	}
	m.table.SetRows(rows)
}

func (m exploreModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("Trade Network Explorer"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch {
	case m.report == nil:
		s.WriteString(mutedStyle.Render("Analysing..."))
	case m.current == summaryTab:
		s.WriteString(m.renderSummary())
	default:
		s.WriteString(m.renderCurrent())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

func (m exploreModel) renderTabs() string {
	rendered := make([]string, len(exploreTabs))
	for i, tab := range exploreTabs {
		if i == m.current {
			rendered[i] = activeTabStyle.Render(tab)
		} else {
			rendered[i] = inactiveTabStyle.Render(tab)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m exploreModel) renderSummary() string {
	r := m.report
	lines := []string{
		fmt.Sprintf("Status:        %s", statusText(r.Status)),
		fmt.Sprintf("Weight policy: %s", m.opts.WeightPolicy),
		fmt.Sprintf("Shift:         %t", m.opts.Shift),
	}
	if gi := r.GraphInfo; gi != nil {
		lines = append(lines,
			fmt.Sprintf("Countries:     %d", gi.NodeCount),
			fmt.Sprintf("Trade links:   %d", gi.EdgeCount),
			fmt.Sprintf("Components:    %d", gi.Components),
			fmt.Sprintf("Total value:   %s", formatValue(gi.TotalWeight)),
		)
	}
	lines = append(lines,
		fmt.Sprintf("Communities:   %d", len(r.Communities)),
		fmt.Sprintf("Modularity:    %.4f", r.Modularity),
	)
	if r.Error != nil {
		lines = append(lines, errorStyle.Render(r.Error.Message))
	}
	return summaryStyle.Render(strings.Join(lines, "\n"))
}

func (m exploreModel) renderCurrent() string {
	var notice string
	if m.current == communitiesTab {
		if m.report.CommunitiesError != nil {
			notice = warnStyle.Render(m.report.CommunitiesError.Message)
		}
	} else if r, ok := m.ranking(); ok && !r.OK() {
		notice = statusText(r.Status)
		if r.Error != nil {
			notice += " " + warnStyle.Render(r.Error.Message)
		}
	}

	if notice == "" {
		return m.table.View()
	}
	return notice + "\n" + m.table.View()
}

func runExplore(args []string, _ io.Writer) error {
	fs := newFlagSet("explore")
	in := fs.String("in", "", "Snapshot file to explore")
	top := fs.Int("top", 50, "Number of countries per ranking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := openSnapshot(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	flows, err := src.NetworkFlows(context.Background())
	if err != nil {
		return err
	}

	opts := analysis.DefaultOptions()
	opts.TopN = *top
	model := newExploreModel(analysis.NewEngine(nil, nil), flows, opts)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
