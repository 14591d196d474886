package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/dd0wney/cluso-tradenet/pkg/source"
)

func rec(reporter, partner, flow string, value float64) source.TradeRecord {
	return source.TradeRecord{Reporter: reporter, Partner: partner, Flow: flow, Value: value, Year: 2021}
}

func testSource() *source.MemorySource {
	return source.NewMemorySource([]source.TradeRecord{
		// France reports its trade with Germany and its World exports.
		rec("France", "Germany", source.FlowExport, 100),
		rec("France", "Germany", source.FlowImport, 70),
		rec("France", source.WorldPartner, source.FlowExport, 500),
		// Germany's mirror reports must not override France's own.
		rec("Germany", "France", source.FlowExport, 75),
		rec("Germany", "France", source.FlowImport, 95),
		// France reports nothing about Spain; Spain's mirror fills the gap.
		rec("Spain", "France", source.FlowExport, 30),
		rec("Spain", "France", source.FlowImport, 20),
		// Portugal reports nothing at all; it only appears as a partner.
		rec("Spain", "Portugal", source.FlowImport, 12),
	})
}

func findPartner(t *testing.T, p *Profile, name string) PartnerTrade {
	t.Helper()
	for _, pt := range p.Partners {
		if pt.Partner == name {
			return pt
		}
	}
	t.Fatalf("Partner %s not in profile", name)
	return PartnerTrade{}
}

func TestCountryProfile(t *testing.T) {
	p, err := CountryProfile(context.Background(), testSource(), "France")
	if err != nil {
		t.Fatalf("CountryProfile failed: %v", err)
	}

	germany := findPartner(t, p, "Germany")
	if germany.Export != 100 || germany.Import != 70 || germany.Balance != 30 {
		t.Errorf("Germany = %+v, want direct reports", germany)
	}
	if !germany.ExportReported || !germany.ImportReported {
		t.Errorf("Germany flows should be flagged as reported: %+v", germany)
	}

	spain := findPartner(t, p, "Spain")
	if spain.Import != 30 || spain.Export != 20 || spain.Balance != -10 {
		t.Errorf("Spain = %+v, want mirror values", spain)
	}
	if spain.ExportReported || spain.ImportReported {
		t.Errorf("Mirror flows must not be flagged as reported: %+v", spain)
	}

	if p.World.Export != 500 || !p.World.ExportReported || p.World.ExportCalculated {
		t.Errorf("World export should come from the direct report: %+v", p.World)
	}
	if p.World.Import != 100 || !p.World.ImportCalculated {
		t.Errorf("World import should be summed over partners: %+v", p.World)
	}
	if p.World.Balance != 400 {
		t.Errorf("World balance = %v, want 400", p.World.Balance)
	}
	if p.Year != 2021 {
		t.Errorf("Year = %d, want 2021", p.Year)
	}
	if len(p.Partners) != 2 || p.Partners[0].Partner != "Germany" {
		t.Errorf("Partners should be sorted by name: %+v", p.Partners)
	}
}

func TestCountryProfile_MirrorOnly(t *testing.T) {
	p, err := CountryProfile(context.Background(), testSource(), "Portugal")
	if err != nil {
		t.Fatalf("CountryProfile failed: %v", err)
	}
	spain := findPartner(t, p, "Spain")
	if spain.Export != 12 || spain.Import != 0 {
		t.Errorf("Spain = %+v, want Spain's imports as Portugal's exports", spain)
	}
	if !p.World.ExportCalculated || p.World.Export != 12 {
		t.Errorf("World = %+v, want calculated totals", p.World)
	}
}

func TestCountryProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		country string
		want    error
	}{
		{"empty", "  ", ErrMissingCountry},
		{"unknown", "Atlantis", ErrNoTradeData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CountryProfile(context.Background(), testSource(), tt.country)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name        string
		a, b        string
		aToB, bToA  float64
		aReported   bool
		bReported   bool
		wantBalance float64
	}{
		{"both reported", "France", "Germany", 100, 75, true, true, 25},
		{"mirror for B", "Spain", "Portugal", 0, 12, false, false, -12},
		{"mirror fallback", "Portugal", "Spain", 12, 0, false, false, 12},
		{"direct and mirror", "Spain", "France", 30, 20, true, false, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Compare(context.Background(), testSource(), tt.a, tt.b)
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			if c.AToB != tt.aToB || c.BToA != tt.bToA {
				t.Errorf("Compare() = %v/%v, want %v/%v", c.AToB, c.BToA, tt.aToB, tt.bToA)
			}
			if c.AToBReported != tt.aReported || c.BToAReported != tt.bReported {
				t.Errorf("reported = %v/%v, want %v/%v", c.AToBReported, c.BToAReported, tt.aReported, tt.bReported)
			}
			if c.Balance != tt.wantBalance {
				t.Errorf("Balance = %v, want %v", c.Balance, tt.wantBalance)
			}
		})
	}
}

func TestCompare_Errors(t *testing.T) {
	src := testSource()

	if _, err := Compare(context.Background(), src, "France", ""); !errors.Is(err, ErrMissingCountry) {
		t.Errorf("Expected ErrMissingCountry, got %v", err)
	}
	if _, err := Compare(context.Background(), src, "France", "France"); !errors.Is(err, ErrSameCountry) {
		t.Errorf("Expected ErrSameCountry, got %v", err)
	}

	src.Close()
	if _, err := Compare(context.Background(), src, "France", "Spain"); !errors.Is(err, source.ErrClosed) {
		t.Errorf("Expected source error to propagate, got %v", err)
	}
}

func TestTopRecords(t *testing.T) {
	records, err := TopRecords(context.Background(), testSource(), 3)
	if err != nil {
		t.Fatalf("TopRecords failed: %v", err)
	}
	want := []float64{500, 100, 95}
	if len(records) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(records))
	}
	for i, r := range records {
		if r.Value != want[i] {
			t.Errorf("records[%d] = %v, want %v", i, r.Value, want[i])
		}
	}

	all, _ := TopRecords(context.Background(), testSource(), 0)
	if len(all) != 8 {
		t.Errorf("Default limit should return all 8 records, got %d", len(all))
	}
}
