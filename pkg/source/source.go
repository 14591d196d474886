// Package source provides read-only access to bilateral trade records.
//
// A FlowSource resolves raw country reports into the flow records consumed by
// the network analysis, and answers the record lookups used by country
// profiles and bilateral comparisons. Implementations are backed by memory,
// PostgreSQL, or snapshot files stored locally or in S3.
package source

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// Flow directions as reported by a country.
const (
	FlowExport = "Export"
	FlowImport = "Import"
)

// WorldPartner is the aggregate partner used for a reporter's totals.
const WorldPartner = "World"

var (
	// ErrClosed is returned by sources used after Close.
	ErrClosed = errors.New("source closed")

	// ErrUnsupportedFormat is returned for snapshot files of unknown format.
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")

	// ErrInvalidRecord is returned when a snapshot row cannot be decoded.
	ErrInvalidRecord = errors.New("invalid trade record")
)

// TradeRecord is one country's report of its trade with a partner.
type TradeRecord struct {
	Reporter string  `json:"reporter"`
	Partner  string  `json:"partner"`
	Flow     string  `json:"flow"`
	Value    float64 `json:"value"`
	Year     int     `json:"year,omitempty"`
}

// Filter selects trade records. Empty fields match everything.
type Filter struct {
	Reporter string
	Partner  string
	Flow     string

	// Limit caps the number of records returned; zero means no limit.
	Limit int

	// ByValueDesc orders records by descending value.
	ByValueDesc bool
}

// Match reports whether r satisfies the filter's field constraints.
func (f Filter) Match(r TradeRecord) bool {
	return (f.Reporter == "" || r.Reporter == f.Reporter) &&
		(f.Partner == "" || r.Partner == f.Partner) &&
		(f.Flow == "" || r.Flow == f.Flow)
}

// FlowSource is the read-only data access collaborator of the analytics
// engine. Implementations must be safe for concurrent use.
type FlowSource interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// NetworkFlows returns every positive Export report between two
	// countries, excluding the World aggregate.
	NetworkFlows(ctx context.Context) ([]network.FlowRecord, error)

	// Countries returns the sorted union of reporters and partners,
	// excluding the World aggregate.
	Countries(ctx context.Context) ([]string, error)

	// Records returns raw records matching the filter.
	Records(ctx context.Context, filter Filter) ([]TradeRecord, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// IsNetworkFlow reports whether r belongs in the trade network.
func IsNetworkFlow(r TradeRecord) bool {
	return r.Flow == FlowExport &&
		r.Value > 0 &&
		r.Reporter != WorldPartner &&
		r.Partner != WorldPartner
}

// NetworkFlows converts the network-eligible records to flow records,
// preserving input order.
func NetworkFlows(records []TradeRecord) []network.FlowRecord {
	flows := make([]network.FlowRecord, 0, len(records))
	for _, r := range records {
		if IsNetworkFlow(r) {
			flows = append(flows, network.FlowRecord{
				Reporter: r.Reporter,
				Partner:  r.Partner,
				Value:    r.Value,
			})
		}
	}
	return flows
}

// Countries returns the sorted, de-duplicated reporters and partners of
// records, excluding the World aggregate.
func Countries(records []TradeRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, c := range [2]string{r.Reporter, r.Partner} {
			if c != "" && c != WorldPartner {
				seen[c] = struct{}{}
			}
		}
	}
	countries := make([]string, 0, len(seen))
	for c := range seen {
		countries = append(countries, c)
	}
	slices.Sort(countries)
	return countries
}

// Select applies filter to records and returns a new slice.
func Select(records []TradeRecord, filter Filter) []TradeRecord {
	var out []TradeRecord
	for _, r := range records {
		if filter.Match(r) {
			out = append(out, r)
		}
	}
	if filter.ByValueDesc {
		slices.SortStableFunc(out, func(a, b TradeRecord) int {
			return cmp.Compare(b.Value, a.Value)
		})
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}
