package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graphql-go/graphql/language/parser"

	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/source"
)

func rec(reporter, partner, flow string, value float64) source.TradeRecord {
	return source.TradeRecord{Reporter: reporter, Partner: partner, Flow: flow, Value: value, Year: 2021}
}

func newTestHandler(t *testing.T, records ...source.TradeRecord) *GraphQLHandler {
	t.Helper()
	if records == nil {
		records = []source.TradeRecord{
			rec("France", "Germany", source.FlowExport, 100),
			rec("Germany", "France", source.FlowExport, 75),
			rec("Spain", "France", source.FlowExport, 30),
			rec("France", source.WorldPartner, source.FlowExport, 500),
		}
	}
	schema, err := NewSchema(&Resolver{
		Engine: analysis.NewEngine(nil, nil),
		Source: source.NewMemorySource(records),
	})
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}
	return NewGraphQLHandler(schema, nil)
}

func post(t *testing.T, h http.Handler, query string) (*httptest.ResponseRecorder, GraphQLResponse) {
	t.Helper()
	body, _ := json.Marshal(GraphQLRequest{Query: query})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body)))

	var resp GraphQLResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return rr, resp
}

// dig walks a decoded JSON document along path.
func dig(t *testing.T, v any, path ...string) any {
	t.Helper()
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			t.Fatalf("%q: not an object: %v", key, v)
		}
		v = m[key]
	}
	return v
}

func TestNewSchema_RequiresResolver(t *testing.T) {
	if _, err := NewSchema(nil); err == nil {
		t.Error("Expected error for nil resolver")
	}
	if _, err := NewSchema(&Resolver{Engine: analysis.NewEngine(nil, nil)}); err == nil {
		t.Error("Expected error for missing source")
	}
}

func TestQuery_Countries(t *testing.T) {
	_, resp := post(t, newTestHandler(t), `{ countries }`)
	if len(resp.Errors) > 0 {
		t.Fatalf("Unexpected errors: %v", resp.Errors)
	}

	got := dig(t, resp.Data, "countries").([]any)
	want := []string{"France", "Germany", "Spain"}
	if len(got) != len(want) {
		t.Fatalf("countries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("countries[%d] = %v, want %s", i, got[i], want[i])
		}
	}
}

func TestQuery_Network(t *testing.T) {
	query := `{
		network(topN: 1, weightPolicy: "inverse") {
			status
			graph_info { node_count edge_count }
			centrality {
				in_strength { status scores { node score } }
				betweenness { status }
			}
			communities
		}
	}`
	_, resp := post(t, newTestHandler(t), query)
	if len(resp.Errors) > 0 {
		t.Fatalf("Unexpected errors: %v", resp.Errors)
	}

	network := dig(t, resp.Data, "network")
	if status := dig(t, network, "status"); status != "ok" {
		t.Errorf("status = %v, want ok", status)
	}
	if nodes := dig(t, network, "graph_info", "node_count"); nodes != float64(3) {
		t.Errorf("node_count = %v, want 3", nodes)
	}

	scores := dig(t, network, "centrality", "in_strength", "scores").([]any)
	if len(scores) != 1 {
		t.Fatalf("Expected topN to truncate to 1 score, got %d", len(scores))
	}
	if node := dig(t, scores[0], "node"); node != "France" {
		t.Errorf("top in_strength = %v, want France", node)
	}
}

func TestQuery_NetworkEmptyInputIsAReport(t *testing.T) {
	h := newTestHandler(t, rec("France", "Germany", source.FlowImport, 10))

	_, resp := post(t, h, `{ network { status error { kind } } }`)
	if len(resp.Errors) > 0 {
		t.Fatalf("Unexpected errors: %v", resp.Errors)
	}
	if status := dig(t, resp.Data, "network", "status"); status != "empty_input" {
		t.Errorf("status = %v, want empty_input", status)
	}
	if kind := dig(t, resp.Data, "network", "error", "kind"); kind != "empty_input" {
		t.Errorf("error.kind = %v, want empty_input", kind)
	}
}

func TestQuery_Communities(t *testing.T) {
	_, resp := post(t, newTestHandler(t), `{ communities { status centrality { betweenness { status } } communities modularity } }`)
	if len(resp.Errors) > 0 {
		t.Fatalf("Unexpected errors: %v", resp.Errors)
	}
	if c := dig(t, resp.Data, "communities", "centrality"); c != nil {
		t.Errorf("communities query should carry no centrality, got %v", c)
	}
	if parts := dig(t, resp.Data, "communities", "communities").([]any); len(parts) == 0 {
		t.Error("Expected at least one community")
	}
}

func TestQuery_CountryAndCompare(t *testing.T) {
	h := newTestHandler(t)

	_, resp := post(t, h, `{ country(name: "France") { country world { export export_reported } partners { partner export } } }`)
	if len(resp.Errors) > 0 {
		t.Fatalf("Unexpected errors: %v", resp.Errors)
	}
	if export := dig(t, resp.Data, "country", "world", "export"); export != float64(500) {
		t.Errorf("world export = %v, want 500", export)
	}

	_, resp = post(t, h, `{ compare(a: "France", b: "Germany") { a_to_b_value b_to_a_value balance } }`)
	if len(resp.Errors) > 0 {
		t.Fatalf("Unexpected errors: %v", resp.Errors)
	}
	if balance := dig(t, resp.Data, "compare", "balance"); balance != float64(25) {
		t.Errorf("balance = %v, want 25", balance)
	}
}

func TestQuery_ResolverErrors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"unknown country", `{ country(name: "Atlantis") { country } }`, "no trade data"},
		{"invalid country", `{ country(name: "<x>") { country } }`, "invalid country name"},
		{"same country", `{ compare(a: "France", b: "France") { balance } }`, "B"},
		{"bad limit", `{ records(limit: 0) { value } }`, "Limit"},
		{"bad tolerance", `{ network(tolerance: 0) { status } }`, "Tolerance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := post(t, h, tt.query)
			if rr.Code != http.StatusOK {
				t.Errorf("GraphQL errors should be reported with 200, got %d", rr.Code)
			}
			if len(resp.Errors) == 0 {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(resp.Errors[0].Message, tt.message) {
				t.Errorf("error = %q, want it to mention %q", resp.Errors[0].Message, tt.message)
			}
		})
	}
}

func TestQuery_Records(t *testing.T) {
	_, resp := post(t, newTestHandler(t), `{ records(limit: 2) { reporter partner value } }`)
	if len(resp.Errors) > 0 {
		t.Fatalf("Unexpected errors: %v", resp.Errors)
	}
	records := dig(t, resp.Data, "records").([]any)
	if len(records) != 2 || dig(t, records[0], "value") != float64(500) {
		t.Errorf("records = %v", records)
	}
}

func TestExecute_PassesContext(t *testing.T) {
	h := newTestHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Execute(ctx, h.schema, GraphQLRequest{Query: `{ countries }`})
	if !result.HasErrors() {
		t.Error("Expected resolver to observe the cancelled context")
	}
}

func TestHandler_RequestErrors(t *testing.T) {
	h := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/graphql", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{")))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad JSON: status = %d", rr.Code)
	}

	rr, _ = post(t, h, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty query: status = %d", rr.Code)
	}

	h.SetMaxDepth(2)
	rr, resp := post(t, h, `{ network { centrality { betweenness { status } } } }`)
	if rr.Code != http.StatusBadRequest || len(resp.Errors) == 0 {
		t.Errorf("deep query: status = %d, errors = %v", rr.Code, resp.Errors)
	}
}

func TestQueryDepth(t *testing.T) {
	tests := []struct {
		name  string
		query string
		depth int
	}{
		{"scalar", `{ countries }`, 0},
		{"one level", `{ country(name: "France") { country } }`, 1},
		{"nested", `{ network { centrality { betweenness { scores { node } } } } }`, 4},
		{"introspection ignored", `{ __schema { types { name } } countries }`, 0},
		{"fragment", `query { network { ...C } } fragment C on Report { centrality { eigenvector { status } } }`, 3},
		{"inline fragment", `{ network { ... on Report { graph_info { node_count } } } }`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.Parse(parser.ParseParams{Source: tt.query})
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := calculateQueryDepth(doc); got != tt.depth {
				t.Errorf("depth = %d, want %d", got, tt.depth)
			}
		})
	}

	if err := ValidateQueryDepth("{", 5); err == nil {
		t.Error("Expected parse error")
	}
}
