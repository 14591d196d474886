package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// PGSource reads trade records from PostgreSQL
type PGSource struct {
	pool *pgxpool.Pool
}

// PGOptions tunes the connection pool of a PGSource.
type PGOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// Migrate creates the trade_records table when it is missing.
	Migrate bool
}

// DefaultPGOptions returns the default pool settings
func DefaultPGOptions() PGOptions {
	return PGOptions{
		MaxConns:        25,
		MinConns:        2,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 1 * time.Minute,
		Migrate:         true,
	}
}

// NewPGSource connects to databaseURL and verifies the connection
func NewPGSource(ctx context.Context, databaseURL string, opts PGOptions) (*PGSource, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGSource{pool: pool}

	if opts.Migrate {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	return s, nil
}

func (s *PGSource) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS trade_records (
		id BIGSERIAL PRIMARY KEY,
		reporter TEXT NOT NULL,
		partner TEXT NOT NULL,
		flow TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		year INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_trade_records_reporter ON trade_records(reporter);
	CREATE INDEX IF NOT EXISTS idx_trade_records_partner ON trade_records(partner);
	CREATE INDEX IF NOT EXISTS idx_trade_records_value ON trade_records(value DESC);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Name returns the backend name
func (s *PGSource) Name() string {
	return "postgres"
}

// NetworkFlows returns every positive Export report between countries
func (s *PGSource) NetworkFlows(ctx context.Context) ([]network.FlowRecord, error) {
	query := `
		SELECT reporter, partner, value
		FROM trade_records
		WHERE flow = $1 AND value > 0 AND reporter <> $2 AND partner <> $2
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, FlowExport, WorldPartner)
	if err != nil {
		return nil, fmt.Errorf("failed to query network flows: %w", err)
	}
	defer rows.Close()

	var flows []network.FlowRecord
	for rows.Next() {
		var f network.FlowRecord
		if err := rows.Scan(&f.Reporter, &f.Partner, &f.Value); err != nil {
			return nil, fmt.Errorf("failed to scan flow: %w", err)
		}
		flows = append(flows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read network flows: %w", err)
	}

	return flows, nil
}

// Countries returns the sorted union of reporters and partners
func (s *PGSource) Countries(ctx context.Context) ([]string, error) {
	query := `
		SELECT country FROM (
			SELECT reporter AS country FROM trade_records
			UNION
			SELECT partner AS country FROM trade_records
		) c
		WHERE country <> $1 AND country <> ''
		ORDER BY country
	`

	rows, err := s.pool.Query(ctx, query, WorldPartner)
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}

	countries, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read countries: %w", err)
	}
	return countries, nil
}

// Records returns the records matching filter
func (s *PGSource) Records(ctx context.Context, filter Filter) ([]TradeRecord, error) {
	query, args := recordsQuery(filter)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade records: %w", err)
	}
	defer rows.Close()

	var records []TradeRecord
	for rows.Next() {
		var r TradeRecord
		if err := rows.Scan(&r.Reporter, &r.Partner, &r.Flow, &r.Value, &r.Year); err != nil {
			return nil, fmt.Errorf("failed to scan trade record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trade records: %w", err)
	}

	return records, nil
}

// recordsQuery builds the SELECT for filter with positional arguments.
func recordsQuery(filter Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("reporter", filter.Reporter)
	add("partner", filter.Partner)
	add("flow", filter.Flow)

	var b strings.Builder
	b.WriteString("SELECT reporter, partner, flow, value, year FROM trade_records")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if filter.ByValueDesc {
		b.WriteString(" ORDER BY value DESC, id")
	} else {
		b.WriteString(" ORDER BY id")
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

// Insert bulk-loads records with COPY and returns the number of rows written.
func (s *PGSource) Insert(ctx context.Context, records []TradeRecord) (int64, error) {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{r.Reporter, r.Partner, r.Flow, r.Value, r.Year}
	}

	n, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"trade_records"},
		[]string{"reporter", "partner", "flow", "value", "year"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return n, fmt.Errorf("failed to copy trade records: %w", err)
	}
	return n, nil
}

// Ping checks database connectivity
func (s *PGSource) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PGSource) Close() error {
	s.pool.Close()
	return nil
}
