// Package graphql exposes trade profiles and network analyses as a GraphQL
// schema.
package graphql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-tradenet/pkg/algorithms"
	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/source"
	"github.com/dd0wney/cluso-tradenet/pkg/trade"
	"github.com/dd0wney/cluso-tradenet/pkg/validation"
)

// Resolver answers schema queries from a trade record source.
type Resolver struct {
	Engine  *analysis.Engine
	Source  source.FlowSource
	Options analysis.Options

	// Timeout bounds network and communities queries. Zero means no limit.
	Timeout time.Duration
}

// NewSchema builds the query schema backed by r.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	if r == nil || r.Engine == nil || r.Source == nil {
		return graphql.Schema{}, errors.New("graphql: resolver needs an engine and a source")
	}
	if r.Options == (analysis.Options{}) {
		r.Options = analysis.DefaultOptions()
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"countries": &graphql.Field{
				Type:    graphql.NewList(graphql.String),
				Resolve: r.countries,
			},
			"country": &graphql.Field{
				Type: profileType,
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.country,
			},
			"compare": &graphql.Field{
				Type: comparisonType,
				Args: graphql.FieldConfigArgument{
					"a": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"b": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.compare,
			},
			"records": &graphql.Field{
				Type: graphql.NewList(tradeRecordType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: trade.DefaultTopRecords},
				},
				Resolve: r.records,
			},
			"network": &graphql.Field{
				Type:    reportType,
				Args:    analysisArgs(),
				Resolve: r.analyze(false),
			},
			"communities": &graphql.Field{
				Type:    reportType,
				Args:    analysisArgs(),
				Resolve: r.analyze(true),
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func analysisArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"topN":          &graphql.ArgumentConfig{Type: graphql.Int},
		"maxIterations": &graphql.ArgumentConfig{Type: graphql.Int},
		"tolerance":     &graphql.ArgumentConfig{Type: graphql.Float},
		"weightPolicy":  &graphql.ArgumentConfig{Type: graphql.String},
		"maxPasses":     &graphql.ArgumentConfig{Type: graphql.Int},
		"shift":         &graphql.ArgumentConfig{Type: graphql.Boolean},
	}
}

func (r *Resolver) countries(p graphql.ResolveParams) (any, error) {
	return r.Source.Countries(p.Context)
}

func (r *Resolver) country(p graphql.ResolveParams) (any, error) {
	req := validation.CountryRequest{Country: stringArg(p, "name")}
	if err := validation.ValidateCountryRequest(&req); err != nil {
		return nil, err
	}
	return trade.CountryProfile(p.Context, r.Source, req.Country)
}

func (r *Resolver) compare(p graphql.ResolveParams) (any, error) {
	req := validation.CompareRequest{A: stringArg(p, "a"), B: stringArg(p, "b")}
	if err := validation.ValidateCompareRequest(&req); err != nil {
		return nil, err
	}
	return trade.Compare(p.Context, r.Source, req.A, req.B)
}

func (r *Resolver) records(p graphql.ResolveParams) (any, error) {
	req := validation.RecordsRequest{Limit: trade.DefaultTopRecords}
	if v, ok := p.Args["limit"].(int); ok {
		req.Limit = v
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	return trade.TopRecords(p.Context, r.Source, req.Limit)
}

// analyze resolves network and communities queries. Request-wide failures
// such as empty input are reported through the report's status and error
// rather than as GraphQL errors, so partial reports stay queryable.
func (r *Resolver) analyze(communitiesOnly bool) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		opts, err := r.options(p.Args)
		if err != nil {
			return nil, err
		}

		ctx := p.Context
		if ctx == nil {
			ctx = context.Background()
		}
		if r.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.Timeout)
			defer cancel()
		}

		flows, err := r.Source.NetworkFlows(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load trade network: %w", err)
		}

		var report *analysis.Report
		if communitiesOnly {
			report, _ = r.Engine.Communities(ctx, flows, opts)
		} else {
			report, _ = r.Engine.Analyze(ctx, flows, opts)
		}
		return report, nil
	}
}

func (r *Resolver) options(args map[string]any) (analysis.Options, error) {
	opts := r.Options
	req := validation.NetworkRequest{
		TopN:          opts.TopN,
		MaxIterations: opts.MaxIterations,
		Tolerance:     opts.Tolerance,
		WeightPolicy:  string(opts.WeightPolicy),
		MaxPasses:     opts.MaxPasses,
	}
	if v, ok := args["topN"].(int); ok {
		req.TopN = v
	}
	if v, ok := args["maxIterations"].(int); ok {
		req.MaxIterations = v
	}
	if v, ok := args["tolerance"].(float64); ok {
		req.Tolerance = v
	}
	if v, ok := args["weightPolicy"].(string); ok {
		req.WeightPolicy = v
	}
	if v, ok := args["maxPasses"].(int); ok {
		req.MaxPasses = v
	}
	if v, ok := args["shift"].(bool); ok {
		opts.Shift = v
	}
	if err := validation.ValidateNetworkRequest(&req); err != nil {
		return opts, err
	}

	opts.TopN = req.TopN
	opts.MaxIterations = req.MaxIterations
	opts.Tolerance = req.Tolerance
	opts.WeightPolicy = algorithms.WeightPolicy(req.WeightPolicy)
	opts.MaxPasses = req.MaxPasses
	return opts, nil
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}
