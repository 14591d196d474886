package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/trade"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	summaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func statusText(status analysis.Status) string {
	switch status {
	case analysis.StatusOK:
		return successStyle.Render(string(status))
	case analysis.StatusPartial, analysis.StatusDegraded, analysis.StatusDidNotConverge, analysis.StatusSkipped:
		return warnStyle.Render(string(status))
	}
	return errorStyle.Render(string(status))
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// renderReport writes a human-readable rendering of report.
func renderReport(w io.Writer, report *analysis.Report) {
	summary := []string{
		fmt.Sprintf("Analysis %s", mutedStyle.Render(report.ID)),
		fmt.Sprintf("Status:      %s", statusText(report.Status)),
	}
	if gi := report.GraphInfo; gi != nil {
		summary = append(summary,
			fmt.Sprintf("Countries:   %d", gi.NodeCount),
			fmt.Sprintf("Trade links: %d", gi.EdgeCount),
			fmt.Sprintf("Components:  %d", gi.Components),
			fmt.Sprintf("Records:     %d (%d dropped)", gi.Records, gi.Dropped),
		)
	}
	summary = append(summary, fmt.Sprintf("Duration:    %.1fms", report.DurationMS))
	fmt.Fprintln(w, summaryStyle.Render(strings.Join(summary, "\n")))

	if report.Error != nil {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%s: %s", report.Error.Kind, report.Error.Message)))
		return
	}

	if c := report.Centrality; c != nil {
		rankings := []struct {
			name    string
			ranking analysis.Ranking
		}{
			{"In-degree", c.InDegree},
			{"Out-degree", c.OutDegree},
			{"In-strength", c.InStrength},
			{"Out-strength", c.OutStrength},
			{"Betweenness", c.Betweenness},
			{"Eigenvector", c.Eigenvector},
		}
		for _, r := range rankings {
			renderRanking(w, r.name, r.ranking)
		}
	}

	renderCommunities(w, report)
}

func renderRanking(w io.Writer, name string, r analysis.Ranking) {
	title := name
	if !r.OK() {
		title += " " + statusText(r.Status)
	}
	fmt.Fprintln(w, titleStyle.Render(title))

	if r.Error != nil {
		fmt.Fprintln(w, warnStyle.Render(r.Error.Message))
	}
	if len(r.Scores) == 0 {
		return
	}

	t := newTable("#", "Country", "Score")
	for i, s := range r.Scores {
		t.Row(strconv.Itoa(i+1), s.Node, strconv.FormatFloat(s.Score, 'g', 6, 64))
	}
	fmt.Fprintln(w, t.String())
}

func renderCommunities(w io.Writer, report *analysis.Report) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Communities (modularity %.4f)", report.Modularity)))
	if report.CommunitiesError != nil {
		fmt.Fprintln(w, warnStyle.Render(report.CommunitiesError.Message))
		return
	}

	t := newTable("#", "Size", "Members")
	for i, members := range report.Communities {
		t.Row(strconv.Itoa(i+1), strconv.Itoa(len(members)), strings.Join(members, ", "))
	}
	fmt.Fprintln(w, t.String())
}

func renderProfile(w io.Writer, p *trade.Profile) {
	header := p.Country
	if p.Year != 0 {
		header = fmt.Sprintf("%s (%d)", p.Country, p.Year)
	}
	world := []string{
		header,
		fmt.Sprintf("Exports: %s%s", formatValue(p.World.Export), calculatedMark(p.World.ExportCalculated)),
		fmt.Sprintf("Imports: %s%s", formatValue(p.World.Import), calculatedMark(p.World.ImportCalculated)),
		fmt.Sprintf("Balance: %s", formatValue(p.World.Balance)),
	}
	fmt.Fprintln(w, summaryStyle.Render(strings.Join(world, "\n")))

	if len(p.Partners) == 0 {
		return
	}
	t := newTable("Partner", "Export", "Import", "Balance")
	for _, pt := range p.Partners {
		t.Row(pt.Partner,
			formatValue(pt.Export)+mirrorMark(pt.Export, pt.ExportReported),
			formatValue(pt.Import)+mirrorMark(pt.Import, pt.ImportReported),
			formatValue(pt.Balance),
		)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, mutedStyle.Render("* taken from the partner's report"))
}

func renderComparison(w io.Writer, c *trade.Comparison) {
	t := newTable("Flow", "Value")
	t.Row(fmt.Sprintf("%s → %s", c.CountryA, c.CountryB), formatValue(c.AToB)+mirrorMark(c.AToB, c.AToBReported))
	t.Row(fmt.Sprintf("%s → %s", c.CountryB, c.CountryA), formatValue(c.BToA)+mirrorMark(c.BToA, c.BToAReported))
	t.Row("Balance", formatValue(c.Balance))
	fmt.Fprintln(w, t.String())
}

func calculatedMark(calculated bool) string {
	if calculated {
		return mutedStyle.Render(" (sum of partners)")
	}
	return ""
}

// mirrorMark flags values that come from the partner's mirror report.
func mirrorMark(value float64, reported bool) string {
	if reported || value == 0 {
		return ""
	}
	return "*"
}
