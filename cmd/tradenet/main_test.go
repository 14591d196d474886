package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/auth"
)

const snapshotCSV = `reporter,partner,flow,value,year
France,Germany,Export,100,2021
Germany,France,Export,75,2021
Spain,France,Export,30,2021
Portugal,Spain,Export,20,2021
France,World,Export,500,2021
Germany,Portugal,Import,10,2021
`

func writeSnapshot(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}
	return path
}

func TestAnalyze_JSON(t *testing.T) {
	path := writeSnapshot(t, "flows.csv", snapshotCSV)

	var out bytes.Buffer
	if err := dispatch("analyze", []string{"-in", path, "-json", "-top", "2"}, &out); err != nil {
		t.Fatalf("analyze error = %v", err)
	}

	var report analysis.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Failed to decode report: %v\n%s", err, out.String())
	}
	if report.Status != analysis.StatusOK {
		t.Errorf("status = %s, want ok", report.Status)
	}
	if report.GraphInfo == nil || report.GraphInfo.NodeCount != 4 {
		t.Fatalf("graph_info = %+v, want 4 nodes", report.GraphInfo)
	}
	if got := len(report.Centrality.InStrength.Scores); got != 2 {
		t.Errorf("in_strength has %d scores, want 2", got)
	}
	if top := report.Centrality.InStrength.Scores[0].Node; top != "France" {
		t.Errorf("top in_strength = %s, want France", top)
	}
}

func TestAnalyze_Rendered(t *testing.T) {
	path := writeSnapshot(t, "flows.csv", snapshotCSV)

	var out bytes.Buffer
	if err := dispatch("analyze", []string{"-in", path}, &out); err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	text := out.String()
	for _, want := range []string{"Betweenness", "Eigenvector", "Communities", "France", "Portugal"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestAnalyze_Communities(t *testing.T) {
	path := writeSnapshot(t, "flows.csv", snapshotCSV)

	var out bytes.Buffer
	if err := dispatch("analyze", []string{"-in", path, "-communities", "-json"}, &out); err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	var report analysis.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if report.Centrality != nil {
		t.Error("communities-only report should carry no centrality")
	}
	if len(report.Communities) == 0 {
		t.Error("Expected communities")
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	path := writeSnapshot(t, "flows.csv", "reporter,partner,flow,value\nFrance,Germany,Import,10\n")

	var out bytes.Buffer
	err := dispatch("analyze", []string{"-in", path}, &out)
	if err == nil {
		t.Fatal("Expected an error for a snapshot without export flows")
	}
	if !strings.Contains(out.String(), "empty_input") {
		t.Errorf("output should report empty_input:\n%s", out.String())
	}
}

func TestAnalyze_InvalidFlags(t *testing.T) {
	path := writeSnapshot(t, "flows.csv", snapshotCSV)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{}},
		{"bad policy", []string{"-in", path, "-policy", "cheapest"}},
		{"negative top", []string{"-in", path, "-top", "-1"}},
		{"missing file", []string{"-in", filepath.Join(t.TempDir(), "nope.csv")}},
		{"unknown format", []string{"-in", writeSnapshot(t, "flows.xml", "<flows/>")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := dispatch("analyze", tt.args, &bytes.Buffer{}); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestCountriesProfileCompare(t *testing.T) {
	path := writeSnapshot(t, "flows.csv", snapshotCSV)

	var out bytes.Buffer
	if err := dispatch("countries", []string{"-in", path}, &out); err != nil {
		t.Fatalf("countries error = %v", err)
	}
	if got := strings.Fields(out.String()); strings.Join(got, ",") != "France,Germany,Portugal,Spain" {
		t.Errorf("countries = %v", got)
	}

	out.Reset()
	if err := dispatch("profile", []string{"-in", path, "-country", "France"}, &out); err != nil {
		t.Fatalf("profile error = %v", err)
	}
	for _, want := range []string{"France (2021)", "Germany", "Spain", "500"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("profile output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := dispatch("compare", []string{"-in", path, "-a", "France", "-b", "Germany", "-json"}, &out); err != nil {
		t.Fatalf("compare error = %v", err)
	}
	var cmp struct {
		Balance float64 `json:"balance"`
	}
	if err := json.Unmarshal(out.Bytes(), &cmp); err != nil {
		t.Fatalf("Failed to decode comparison: %v", err)
	}
	if cmp.Balance != 25 {
		t.Errorf("balance = %v, want 25", cmp.Balance)
	}

	if err := dispatch("compare", []string{"-in", path, "-a", "France", "-b", "France"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected an error comparing a country with itself")
	}
	if err := dispatch("profile", []string{"-in", path, "-country", "Atlantis"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected an error for an unknown country")
	}
}

func TestToken(t *testing.T) {
	secret := strings.Repeat("s", 32)
	t.Setenv("JWT_SECRET", secret)

	var out bytes.Buffer
	if err := dispatch("token", []string{"-subject", "ci", "-role", auth.RoleAdmin}, &out); err != nil {
		t.Fatalf("token error = %v", err)
	}

	manager, err := auth.NewTokenManager(secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := manager.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Subject != "ci" || claims.Role != auth.RoleAdmin {
		t.Errorf("claims = %s/%s, want ci/admin", claims.Subject, claims.Role)
	}

	t.Setenv("JWT_SECRET", "short")
	if err := dispatch("token", []string{"-subject", "ci"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected an error for a short secret")
	}
}

func TestImport_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if err := dispatch("import", []string{"-in", "flows.csv"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected an error without a database URL")
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	if err := dispatch("frobnicate", nil, &bytes.Buffer{}); err == nil {
		t.Error("Expected an error for an unknown command")
	}

	var out bytes.Buffer
	if err := dispatch("version", nil, &out); err != nil || !strings.Contains(out.String(), Version) {
		t.Errorf("version output = %q, err = %v", out.String(), err)
	}
}
