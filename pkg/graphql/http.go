package graphql

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-tradenet/pkg/logging"
)

// DefaultMaxDepth bounds the nesting of accepted queries. The deepest
// useful query, network.centrality.betweenness.scores.node, has depth 4.
const DefaultMaxDepth = 8

// GraphQLRequest represents a GraphQL HTTP request
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema   graphql.Schema
	maxDepth int
	logger   logging.Logger
}

// NewGraphQLHandler creates a new GraphQL HTTP handler
func NewGraphQLHandler(schema graphql.Schema, logger logging.Logger) *GraphQLHandler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &GraphQLHandler{
		schema:   schema,
		maxDepth: DefaultMaxDepth,
		logger:   logger.With(logging.Component("graphql")),
	}
}

// SetMaxDepth overrides DefaultMaxDepth.
func (h *GraphQLHandler) SetMaxDepth(depth int) {
	if depth > 0 {
		h.maxDepth = depth
	}
}

// ServeHTTP handles HTTP requests for GraphQL queries
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeResponse(w, http.StatusMethodNotAllowed, GraphQLResponse{
			Errors: []GraphQLError{{Message: "method not allowed"}},
		})
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, GraphQLResponse{
			Errors: []GraphQLError{{Message: "invalid request body"}},
		})
		return
	}
	if req.Query == "" {
		writeResponse(w, http.StatusBadRequest, GraphQLResponse{
			Errors: []GraphQLError{{Message: "query is required"}},
		})
		return
	}

	if err := ValidateQueryDepth(req.Query, h.maxDepth); err != nil {
		writeResponse(w, http.StatusBadRequest, GraphQLResponse{
			Errors: []GraphQLError{{Message: err.Error()}},
		})
		return
	}

	result := Execute(r.Context(), h.schema, req)

	response := GraphQLResponse{Data: result.Data}
	if result.HasErrors() {
		response.Errors = make([]GraphQLError, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = GraphQLError{Message: err.Message}
		}
		h.logger.Debug("query returned errors",
			logging.Count(len(result.Errors)),
			logging.String("first_error", result.Errors[0].Message),
		)
	}

	writeResponse(w, http.StatusOK, response)
}

// Execute runs a request against schema with ctx passed to every resolver.
func Execute(ctx context.Context, schema graphql.Schema, req GraphQLRequest) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

func writeResponse(w http.ResponseWriter, status int, response GraphQLResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
