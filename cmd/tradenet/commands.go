package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dd0wney/cluso-tradenet/pkg/algorithms"
	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/auth"
	"github.com/dd0wney/cluso-tradenet/pkg/logging"
	"github.com/dd0wney/cluso-tradenet/pkg/source"
	"github.com/dd0wney/cluso-tradenet/pkg/trade"
	"github.com/dd0wney/cluso-tradenet/pkg/validation"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("tradenet "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// openSnapshot reads the snapshot named by the -in flag into memory.
func openSnapshot(path string) (*source.MemorySource, error) {
	if path == "" {
		return nil, errors.New("-in is required")
	}
	return source.NewFileSource(path)
}

func runAnalyze(args []string, stdout io.Writer) error {
	fs := newFlagSet("analyze")
	in := fs.String("in", "", "Snapshot file to analyse")
	top := fs.Int("top", 10, "Number of countries per ranking")
	policy := fs.String("policy", string(algorithms.WeightAsDistance), "Betweenness weight policy: distance or inverse")
	maxIter := fs.Int("max-iterations", 0, "Eigenvector iteration budget (0 = default)")
	shift := fs.Bool("shift", false, "Iterate I+A^T for the eigenvector ranking")
	communitiesOnly := fs.Bool("communities", false, "Only detect communities")
	timeout := fs.Duration("timeout", 0, "Abort the analysis after this long (0 = no limit)")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	verbose := fs.Bool("v", false, "Log analysis stages to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := analysis.DefaultOptions()
	opts.TopN = *top
	opts.WeightPolicy = algorithms.WeightPolicy(*policy)
	opts.Shift = *shift
	if *maxIter > 0 {
		opts.MaxIterations = *maxIter
	}
	if err := validation.Struct(&opts); err != nil {
		return err
	}

	src, err := openSnapshot(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	flows, err := src.NetworkFlows(ctx)
	if err != nil {
		return err
	}

	logger := logging.Nop()
	if *verbose {
		logger = logging.NewJSONLogger(os.Stderr, logging.DebugLevel)
	}
	engine := analysis.NewEngine(logger, nil)

	var report *analysis.Report
	if *communitiesOnly {
		report, err = engine.Communities(ctx, flows, opts)
	} else {
		report, err = engine.Analyze(ctx, flows, opts)
	}

	if *asJSON {
		if encErr := writeJSON(stdout, report); encErr != nil {
			return encErr
		}
	} else {
		renderReport(stdout, report)
	}
	return err
}

func runCountries(args []string, stdout io.Writer) error {
	fs := newFlagSet("countries")
	in := fs.String("in", "", "Snapshot file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := openSnapshot(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	countries, err := src.Countries(context.Background())
	if err != nil {
		return err
	}
	for _, c := range countries {
		fmt.Fprintln(stdout, c)
	}
	return nil
}

func runProfile(args []string, stdout io.Writer) error {
	fs := newFlagSet("profile")
	in := fs.String("in", "", "Snapshot file")
	country := fs.String("country", "", "Country to profile")
	asJSON := fs.Bool("json", false, "Print the profile as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := validation.CountryRequest{Country: *country}
	if err := validation.ValidateCountryRequest(&req); err != nil {
		return err
	}
	src, err := openSnapshot(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	profile, err := trade.CountryProfile(context.Background(), src, req.Country)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(stdout, profile)
	}
	renderProfile(stdout, profile)
	return nil
}

func runCompare(args []string, stdout io.Writer) error {
	fs := newFlagSet("compare")
	in := fs.String("in", "", "Snapshot file")
	a := fs.String("a", "", "First country")
	b := fs.String("b", "", "Second country")
	asJSON := fs.Bool("json", false, "Print the comparison as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := validation.CompareRequest{A: *a, B: *b}
	if err := validation.ValidateCompareRequest(&req); err != nil {
		return err
	}
	src, err := openSnapshot(*in)
	if err != nil {
		return err
	}
	defer src.Close()

	cmp, err := trade.Compare(context.Background(), src, req.A, req.B)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(stdout, cmp)
	}
	renderComparison(stdout, cmp)
	return nil
}

func runImport(args []string, stdout io.Writer) error {
	fs := newFlagSet("import")
	in := fs.String("in", "", "Snapshot file to import")
	databaseURL := fs.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *databaseURL == "" {
		return errors.New("-database-url or DATABASE_URL is required")
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	records, err := source.LoadFile(*in)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pg, err := source.NewPGSource(ctx, *databaseURL, source.DefaultPGOptions())
	if err != nil {
		return err
	}
	defer pg.Close()

	start := time.Now()
	n, err := pg.Insert(ctx, records)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s imported %d records in %s\n", successStyle.Render("✓"), n, time.Since(start).Round(time.Millisecond))
	return nil
}

func runToken(args []string, stdout io.Writer) error {
	fs := newFlagSet("token")
	subject := fs.String("subject", "", "Token subject")
	role := fs.String("role", auth.RoleAnalyst, "Role claim: analyst or admin")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return errors.New("-subject is required")
	}

	manager, err := auth.NewTokenManager(os.Getenv("JWT_SECRET"), *ttl)
	if err != nil {
		return fmt.Errorf("JWT_SECRET: %w", err)
	}
	token, err := manager.GenerateToken(*subject, *role)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
