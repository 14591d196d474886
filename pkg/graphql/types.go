package graphql

import (
	"github.com/graphql-go/graphql"
)

// Field names follow the JSON names of the REST API so the default
// resolver can read them straight off the result structs.

var errorInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ErrorInfo",
	Fields: graphql.Fields{
		"kind":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var rankedNodeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RankedNode",
	Fields: graphql.Fields{
		"node":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"score": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var rankingType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Ranking",
	Description: "One centrality ranking. A status other than ok carries partial or no scores and an error.",
	Fields: graphql.Fields{
		"status":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"scores":     &graphql.Field{Type: graphql.NewList(rankedNodeType)},
		"iterations": &graphql.Field{Type: graphql.Int},
		"skipped":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		"error":      &graphql.Field{Type: errorInfoType},
	},
})

var centralityType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Centrality",
	Fields: graphql.Fields{
		"in_degree":    &graphql.Field{Type: rankingType},
		"out_degree":   &graphql.Field{Type: rankingType},
		"in_strength":  &graphql.Field{Type: rankingType},
		"out_strength": &graphql.Field{Type: rankingType},
		"betweenness":  &graphql.Field{Type: rankingType},
		"eigenvector":  &graphql.Field{Type: rankingType},
	},
})

var graphInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "GraphInfo",
	Fields: graphql.Fields{
		"node_count":   &graphql.Field{Type: graphql.Int},
		"edge_count":   &graphql.Field{Type: graphql.Int},
		"components":   &graphql.Field{Type: graphql.Int},
		"total_weight": &graphql.Field{Type: graphql.Float},
		"records":      &graphql.Field{Type: graphql.Int},
		"dropped":      &graphql.Field{Type: graphql.Int},
	},
})

var reportType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Report",
	Fields: graphql.Fields{
		"id":                &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"status":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"graph_info":        &graphql.Field{Type: graphInfoType},
		"centrality":        &graphql.Field{Type: centralityType},
		"communities":       &graphql.Field{Type: graphql.NewList(graphql.NewList(graphql.String))},
		"modularity":        &graphql.Field{Type: graphql.Float},
		"communities_error": &graphql.Field{Type: errorInfoType},
		"error":             &graphql.Field{Type: errorInfoType},
		"duration_ms":       &graphql.Field{Type: graphql.Float},
	},
})

var partnerTradeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PartnerTrade",
	Fields: graphql.Fields{
		"partner":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"export":          &graphql.Field{Type: graphql.Float},
		"import":          &graphql.Field{Type: graphql.Float},
		"balance":         &graphql.Field{Type: graphql.Float},
		"export_reported": &graphql.Field{Type: graphql.Boolean},
		"import_reported": &graphql.Field{Type: graphql.Boolean},
	},
})

var worldTradeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "WorldTrade",
	Fields: graphql.Fields{
		"export":            &graphql.Field{Type: graphql.Float},
		"import":            &graphql.Field{Type: graphql.Float},
		"balance":           &graphql.Field{Type: graphql.Float},
		"export_reported":   &graphql.Field{Type: graphql.Boolean},
		"import_reported":   &graphql.Field{Type: graphql.Boolean},
		"export_calculated": &graphql.Field{Type: graphql.Boolean},
		"import_calculated": &graphql.Field{Type: graphql.Boolean},
	},
})

var profileType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Profile",
	Fields: graphql.Fields{
		"country":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"year":     &graphql.Field{Type: graphql.Int},
		"world":    &graphql.Field{Type: worldTradeType},
		"partners": &graphql.Field{Type: graphql.NewList(partnerTradeType)},
	},
})

var comparisonType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Comparison",
	Fields: graphql.Fields{
		"country_a":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"country_b":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"year":            &graphql.Field{Type: graphql.Int},
		"a_to_b_value":    &graphql.Field{Type: graphql.Float},
		"a_to_b_reported": &graphql.Field{Type: graphql.Boolean},
		"b_to_a_value":    &graphql.Field{Type: graphql.Float},
		"b_to_a_reported": &graphql.Field{Type: graphql.Boolean},
		"balance":         &graphql.Field{Type: graphql.Float},
	},
})

var tradeRecordType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TradeRecord",
	Fields: graphql.Fields{
		"reporter": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"partner":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"flow":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"value":    &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"year":     &graphql.Field{Type: graphql.Int},
	},
})
