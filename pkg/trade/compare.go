package trade

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-tradenet/pkg/source"
)

// Comparison is the trade between two countries seen from A.
type Comparison struct {
	CountryA string `json:"country_a"`
	CountryB string `json:"country_b"`
	Year     int    `json:"year,omitempty"`

	// AToB is A's exports to B; AToBReported is set when A reported them
	// itself rather than B's imports being used.
	AToB         float64 `json:"a_to_b_value"`
	AToBReported bool    `json:"a_to_b_reported"`

	BToA         float64 `json:"b_to_a_value"`
	BToAReported bool    `json:"b_to_a_reported"`

	// Balance is AToB - BToA.
	Balance float64 `json:"balance"`
}

type flowValue struct {
	value    float64
	reported bool
	year     int
}

// Compare reports the trade between countries a and b.
func Compare(ctx context.Context, src source.FlowSource, a, b string) (*Comparison, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return nil, ErrMissingCountry
	}
	if a == b {
		return nil, fmt.Errorf("%w: %s", ErrSameCountry, a)
	}

	var ab, ba flowValue
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ab, err = exportValue(gctx, src, a, b)
		return err
	})
	g.Go(func() error {
		var err error
		ba, err = exportValue(gctx, src, b, a)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compare %s and %s: %w", a, b, err)
	}

	c := &Comparison{
		CountryA:     a,
		CountryB:     b,
		AToB:         ab.value,
		AToBReported: ab.reported,
		BToA:         ba.value,
		BToAReported: ba.reported,
		Balance:      ab.value - ba.value,
		Year:         ab.year,
	}
	if c.Year == 0 {
		c.Year = ba.year
	}
	return c, nil
}

// exportValue finds the exports of reporter to partner: the reporter's own
// Export report, else the partner's Import mirror report, else zero.
func exportValue(ctx context.Context, src source.FlowSource, reporter, partner string) (flowValue, error) {
	direct, err := src.Records(ctx, source.Filter{
		Reporter: reporter,
		Partner:  partner,
		Flow:     source.FlowExport,
		Limit:    1,
	})
	if err != nil {
		return flowValue{}, err
	}
	if len(direct) > 0 {
		return flowValue{value: direct[0].Value, reported: true, year: direct[0].Year}, nil
	}

	mirror, err := src.Records(ctx, source.Filter{
		Reporter: partner,
		Partner:  reporter,
		Flow:     source.FlowImport,
		Limit:    1,
	})
	if err != nil {
		return flowValue{}, err
	}
	if len(mirror) > 0 {
		return flowValue{value: mirror[0].Value, year: mirror[0].Year}, nil
	}
	return flowValue{}, nil
}
