package validation

import (
	"strings"
	"testing"
)

// TestValidateCountryRequest tests country lookup validation
func TestValidateCountryRequest(t *testing.T) {
	tests := []struct {
		name        string
		country     string
		expectError bool
	}{
		{"Simple name", "France", false},
		{"Accented name", "Côte d'Ivoire", false},
		{"Hyphenated name", "Guinea-Bissau", false},
		{"Abbreviated name", "St. Lucia", false},
		{"Parenthesised name", "Korea (Republic of)", false},
		{"Surrounding spaces are trimmed", "  Japan ", false},
		{"Empty - invalid", "", true},
		{"Blank - invalid", "   ", true},
		{"Leading digit - invalid", "1France", true},
		{"Markup - invalid", "<script>", true},
		{"Too long - invalid", strings.Repeat("a", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CountryRequest{Country: tt.country}
			err := ValidateCountryRequest(req)
			if tt.expectError && err == nil {
				t.Errorf("Expected error for %q", tt.country)
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error for %q: %v", tt.country, err)
			}
			if err != nil && !strings.HasPrefix(err.Error(), "Country:") {
				t.Errorf("Expected error for field Country, got %v", err)
			}
		})
	}
}

// TestValidateCompareRequest tests bilateral comparison validation
func TestValidateCompareRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        CompareRequest
		errorField string
	}{
		{"Valid pair", CompareRequest{A: "France", B: "Germany"}, ""},
		{"Missing A", CompareRequest{B: "Germany"}, "A"},
		{"Missing B", CompareRequest{A: "France"}, "B"},
		{"Same country", CompareRequest{A: "France", B: " France"}, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCompareRequest(&tt.req)
			if tt.errorField == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.HasPrefix(err.Error(), tt.errorField+":") {
				t.Errorf("Expected error on %s, got %v", tt.errorField, err)
			}
		})
	}
}

// TestValidateNetworkRequest tests analysis parameter validation
func TestValidateNetworkRequest(t *testing.T) {
	valid := NetworkRequest{TopN: 20, MaxIterations: 1000, Tolerance: 1e-3, WeightPolicy: "distance", MaxPasses: 100}

	tests := []struct {
		name    string
		mutate  func(*NetworkRequest)
		message string
	}{
		{"Defaults", func(*NetworkRequest) {}, ""},
		{"Inverse policy", func(r *NetworkRequest) { r.WeightPolicy = "inverse" }, ""},
		{"Zero top_n", func(r *NetworkRequest) { r.TopN = 0 }, "TopN: must be at least 1"},
		{"Huge top_n", func(r *NetworkRequest) { r.TopN = 501 }, "TopN: must not exceed 500"},
		{"Zero tolerance", func(r *NetworkRequest) { r.Tolerance = 0 }, "Tolerance: must be greater than 0"},
		{"Unknown policy", func(r *NetworkRequest) { r.WeightPolicy = "log" }, "WeightPolicy: must be one of [distance inverse]"},
		{"Zero iterations", func(r *NetworkRequest) { r.MaxIterations = 0 }, "MaxIterations: must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := ValidateNetworkRequest(&req)
			if tt.message == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.message {
				t.Errorf("Expected %q, got %v", tt.message, err)
			}
		})
	}
}

func TestStruct_RecordsRequest(t *testing.T) {
	if err := Struct(&RecordsRequest{Limit: 20}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := Struct(&RecordsRequest{Limit: 5000}); err == nil {
		t.Error("Expected error for limit above maximum")
	}
	if err := Struct(nil); err == nil {
		t.Error("Expected error for nil request")
	}
}

func TestNilRequests(t *testing.T) {
	if ValidateCountryRequest(nil) == nil {
		t.Error("Expected error for nil country request")
	}
	if ValidateCompareRequest(nil) == nil {
		t.Error("Expected error for nil compare request")
	}
	if ValidateNetworkRequest(nil) == nil {
		t.Error("Expected error for nil network request")
	}
}
