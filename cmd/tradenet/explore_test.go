package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-tradenet/pkg/algorithms"
	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

func exploreFlows() []network.FlowRecord {
	return []network.FlowRecord{
		{Reporter: "France", Partner: "Germany", Value: 100},
		{Reporter: "Germany", Partner: "France", Value: 75},
		{Reporter: "Spain", Partner: "France", Value: 30},
		{Reporter: "Portugal", Partner: "Spain", Value: 20},
	}
}

// step feeds msg to m.
func step(t *testing.T, m tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	t.Helper()
	return m.Update(msg)
}

func loadedModel(t *testing.T) tea.Model {
	t.Helper()
	var m tea.Model = newExploreModel(analysis.NewEngine(nil, nil), exploreFlows(), analysis.DefaultOptions())
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = step(t, m, m.Init()())
	return m
}

func TestExplore_InitialAnalysis(t *testing.T) {
	var m tea.Model = newExploreModel(analysis.NewEngine(nil, nil), exploreFlows(), analysis.DefaultOptions())
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() before sizing = %q", got)
	}

	m = loadedModel(t)
	em := m.(exploreModel)
	if em.running || em.report == nil {
		t.Fatal("Expected the initial analysis to be loaded")
	}
	if em.report.Status != analysis.StatusOK {
		t.Errorf("status = %s, want ok", em.report.Status)
	}
	if view := m.View(); !strings.Contains(view, "Countries:     4") {
		t.Errorf("summary missing node count:\n%s", view)
	}
}

func TestExplore_Tabs(t *testing.T) {
	m := loadedModel(t)

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	em := m.(exploreModel)
	if exploreTabs[em.current] != "In-strength" {
		t.Fatalf("current tab = %s, want In-strength", exploreTabs[em.current])
	}
	rows := em.table.Rows()
	if len(rows) != 4 || rows[0][1] != "France" {
		t.Errorf("in-strength rows = %v, want France first of 4", rows)
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	em = m.(exploreModel)
	if em.current != communitiesTab {
		t.Fatalf("current tab = %d, want communities", em.current)
	}
	total := 0
	for _, row := range em.table.Rows() {
		total += len(strings.Split(row[2], ", "))
	}
	if total != 4 {
		t.Errorf("communities cover %d countries, want 4", total)
	}
}

func TestExplore_TogglePolicyReruns(t *testing.T) {
	m := loadedModel(t)

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	em := m.(exploreModel)
	if !em.running || cmd == nil {
		t.Fatal("Expected toggling the policy to start an analysis")
	}
	if em.opts.WeightPolicy != algorithms.WeightInverse {
		t.Errorf("policy = %s, want inverse", em.opts.WeightPolicy)
	}

	// Keys that start an analysis are ignored while one is running.
	m, cmd2 := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if cmd2 != nil || m.(exploreModel).opts.Shift {
		t.Error("Expected shift toggle to be ignored while running")
	}

	m, _ = step(t, m, cmd())
	if em = m.(exploreModel); em.running {
		t.Error("Expected analysis to finish")
	}
}

func TestExplore_EmptyInput(t *testing.T) {
	var m tea.Model = newExploreModel(analysis.NewEngine(nil, nil), nil, analysis.DefaultOptions())
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m, _ = step(t, m, m.Init()())

	em := m.(exploreModel)
	if !em.messageErr {
		t.Error("Expected an error message for empty input")
	}
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if rows := m.(exploreModel).table.Rows(); len(rows) != 0 {
		t.Errorf("Expected no rows, got %v", rows)
	}
}

func TestExplore_Quit(t *testing.T) {
	m := loadedModel(t)
	_, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}
