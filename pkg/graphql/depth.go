package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// calculateQueryDepth calculates the maximum depth of a GraphQL query.
// Fragment spreads are resolved against the document's fragment
// definitions.
func calculateQueryDepth(document *ast.Document) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if frag, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[frag.Name.Value] = frag
		}
	}

	maxDepth := 0
	for _, definition := range document.Definitions {
		if op, ok := definition.(*ast.OperationDefinition); ok {
			depth := selectionSetDepth(op.SelectionSet, 0, fragments, map[string]bool{})
			if depth > maxDepth {
				maxDepth = depth
			}
		}
	}
	return maxDepth
}

// selectionSetDepth returns the depth of the deepest object field below
// selectionSet. Leaf fields do not add depth.
func selectionSetDepth(selectionSet *ast.SelectionSet, currentDepth int, fragments map[string]*ast.FragmentDefinition, visiting map[string]bool) int {
	if selectionSet == nil {
		return currentDepth
	}

	maxDepth := currentDepth
	for _, selection := range selectionSet.Selections {
		depth := currentDepth
		switch sel := selection.(type) {
		case *ast.Field:
			if strings.HasPrefix(sel.Name.Value, "__") {
				continue
			}
			if sel.SelectionSet != nil {
				depth = selectionSetDepth(sel.SelectionSet, currentDepth+1, fragments, visiting)
			}

		case *ast.InlineFragment:
			depth = selectionSetDepth(sel.SelectionSet, currentDepth, fragments, visiting)

		case *ast.FragmentSpread:
			name := sel.Name.Value
			frag, ok := fragments[name]
			if !ok || visiting[name] {
				continue
			}
			visiting[name] = true
			depth = selectionSetDepth(frag.SelectionSet, currentDepth, fragments, visiting)
			delete(visiting, name)
		}
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	return maxDepth
}

// ValidateQueryDepth validates a query against the depth limit
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	if depth := calculateQueryDepth(document); depth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth of %d", depth, maxDepth)
	}
	return nil
}
