// Package trade answers bilateral questions about individual countries:
// a country's trade profile by partner and the trade between two countries.
//
// Countries do not always report their own trade. Where a direct report is
// missing the partner's mirror report is used instead: a partner's Export to
// the country stands in for the country's Import, and vice versa.
package trade

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-tradenet/pkg/source"
)

var (
	// ErrNoTradeData is returned when a country appears in no record.
	ErrNoTradeData = errors.New("no trade data")

	// ErrMissingCountry is returned when a required country is empty.
	ErrMissingCountry = errors.New("country is required")

	// ErrSameCountry is returned when a comparison names one country twice.
	ErrSameCountry = errors.New("countries must differ")
)

// DefaultTopRecords is the number of records returned by TopRecords when no
// limit is given.
const DefaultTopRecords = 20

// PartnerTrade is a country's trade with one partner.
type PartnerTrade struct {
	Partner        string  `json:"partner"`
	Export         float64 `json:"export"`
	Import         float64 `json:"import"`
	Balance        float64 `json:"balance"`
	ExportReported bool    `json:"export_reported"`
	ImportReported bool    `json:"import_reported"`
}

// WorldTrade is a country's total trade. Totals not reported directly are
// summed over partners and flagged as calculated.
type WorldTrade struct {
	Export           float64 `json:"export"`
	Import           float64 `json:"import"`
	Balance          float64 `json:"balance"`
	ExportReported   bool    `json:"export_reported"`
	ImportReported   bool    `json:"import_reported"`
	ExportCalculated bool    `json:"export_calculated"`
	ImportCalculated bool    `json:"import_calculated"`
}

// Profile is the trade of one country with the world and each partner.
type Profile struct {
	Country  string         `json:"country"`
	Year     int            `json:"year,omitempty"`
	World    WorldTrade     `json:"world"`
	Partners []PartnerTrade `json:"partners"`
}

// CountryProfile builds the trade profile of country from its own reports,
// falling back to partners' mirror reports.
func CountryProfile(ctx context.Context, src source.FlowSource, country string) (*Profile, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return nil, ErrMissingCountry
	}

	var direct, mirror []source.TradeRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		direct, err = src.Records(gctx, source.Filter{Reporter: country})
		return err
	})
	g.Go(func() error {
		var err error
		mirror, err = src.Records(gctx, source.Filter{Partner: country})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load records for %s: %w", country, err)
	}

	if len(direct) == 0 && len(mirror) == 0 {
		return nil, fmt.Errorf("%w involving %s", ErrNoTradeData, country)
	}

	p := &Profile{Country: country}
	partners := make(map[string]*PartnerTrade)
	partner := func(name string) *PartnerTrade {
		pt, ok := partners[name]
		if !ok {
			pt = &PartnerTrade{Partner: name}
			partners[name] = pt
		}
		return pt
	}

	for _, r := range direct {
		p.Year = r.Year
		if r.Partner == source.WorldPartner {
			switch r.Flow {
			case source.FlowExport:
				p.World.Export, p.World.ExportReported = r.Value, true
			case source.FlowImport:
				p.World.Import, p.World.ImportReported = r.Value, true
			}
			continue
		}
		switch r.Flow {
		case source.FlowExport:
			pt := partner(r.Partner)
			pt.Export, pt.ExportReported = r.Value, true
		case source.FlowImport:
			pt := partner(r.Partner)
			pt.Import, pt.ImportReported = r.Value, true
		}
	}

	for _, r := range mirror {
		p.Year = r.Year
		if r.Reporter == source.WorldPartner {
			continue
		}
		switch r.Flow {
		case source.FlowExport:
			if pt := partner(r.Reporter); !pt.ImportReported {
				pt.Import = r.Value
			}
		case source.FlowImport:
			if pt := partner(r.Reporter); !pt.ExportReported {
				pt.Export = r.Value
			}
		}
	}

	var exports, imports float64
	p.Partners = make([]PartnerTrade, 0, len(partners))
	for _, pt := range partners {
		pt.Balance = pt.Export - pt.Import
		exports += pt.Export
		imports += pt.Import
		p.Partners = append(p.Partners, *pt)
	}
	slices.SortFunc(p.Partners, func(a, b PartnerTrade) int {
		return strings.Compare(a.Partner, b.Partner)
	})

	if !p.World.ExportReported {
		p.World.Export, p.World.ExportCalculated = exports, true
	}
	if !p.World.ImportReported {
		p.World.Import, p.World.ImportCalculated = imports, true
	}
	p.World.Balance = p.World.Export - p.World.Import

	return p, nil
}

// TopRecords returns the largest trade records by value. A non-positive
// limit selects DefaultTopRecords.
func TopRecords(ctx context.Context, src source.FlowSource, limit int) ([]source.TradeRecord, error) {
	if limit <= 0 {
		limit = DefaultTopRecords
	}
	records, err := src.Records(ctx, source.Filter{ByValueDesc: true, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to load top records: %w", err)
	}
	if records == nil {
		records = []source.TradeRecord{}
	}
	return records, nil
}
