package engine

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/nsxbet/bq-inspector/pkg/types"
)

// Tool names exposed at the tool-call boundary.
const (
	ToolValidateSQL             = "bq_validate_sql"
	ToolDryRunSQL               = "bq_dry_run_sql"
	ToolAnalyzeQueryStructure   = "bq_analyze_query_structure"
	ToolExtractDependencies     = "bq_extract_dependencies"
	ToolValidateQuerySyntax     = "bq_validate_query_syntax"
	ToolAnalyzeQueryPerformance = "bq_analyze_query_performance"
)

// Tool describes one callable tool: its name, a human description and
// the JSON schema of its arguments.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ErrorEnvelope is the uniform error payload: every failed tool call
// returns this shape instead of a raw error.
type ErrorEnvelope struct {
	Error *types.NormalizedError `json:"error"`
}

// toolArgs is the superset of arguments the tools accept. Unknown
// fields are ignored; params values stay opaque until coercion at the
// warehouse boundary.
type toolArgs struct {
	SQL         string         `json:"sql"`
	Params      map[string]any `json:"params"`
	PricePerTiB *float64       `json:"pricePerTiB"`
	ProjectID   string         `json:"project_id"`
}

var sqlProperty = map[string]any{
	"type":        "string",
	"description": "The SQL query to analyze",
}

var paramsProperty = map[string]any{
	"type":                 "object",
	"description":          "Optional query parameters (key-value pairs)",
	"additionalProperties": true,
}

func sqlToolSchema(extra map[string]any) map[string]any {
	properties := map[string]any{
		"sql":    sqlProperty,
		"params": paramsProperty,
	}
	for k, v := range extra {
		properties[k] = v
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   []string{"sql"},
	}
}

// Tools lists the tool definitions in registration order.
func (e *Engine) Tools() []Tool {
	return []Tool{
		{
			Name:        ToolValidateSQL,
			Description: "Validate BigQuery SQL syntax without executing the query",
			InputSchema: sqlToolSchema(nil),
		},
		{
			Name:        ToolDryRunSQL,
			Description: "Perform a dry-run of a BigQuery SQL query to get cost estimates and metadata",
			InputSchema: sqlToolSchema(map[string]any{
				"pricePerTiB": map[string]any{
					"type":        "number",
					"description": "Price per TiB for cost estimation (defaults to env var or 5.0)",
				},
			}),
		},
		{
			Name:        ToolAnalyzeQueryStructure,
			Description: "Classify a SQL statement and detect joins, subqueries, CTEs and window functions",
			InputSchema: sqlToolSchema(nil),
		},
		{
			Name:        ToolExtractDependencies,
			Description: "Extract table and column dependencies from BigQuery SQL",
			InputSchema: sqlToolSchema(nil),
		},
		{
			Name:        ToolValidateQuerySyntax,
			Description: "Enhanced syntax validation with detailed issues and suggestions",
			InputSchema: sqlToolSchema(nil),
		},
		{
			Name:        ToolAnalyzeQueryPerformance,
			Description: "Score query performance from structure and dry-run scan volume",
			InputSchema: sqlToolSchema(map[string]any{
				"project_id": map[string]any{
					"type":        "string",
					"description": "GCP project ID (uses default if not provided)",
				},
			}),
		},
	}
}

// CallTool dispatches a tool invocation by name. The returned payload
// is always a well-formed JSON-marshalable object: failures of the
// underlying operation come back as an ErrorEnvelope, never as a raw
// error. CallTool itself only fails for an unknown tool name or
// arguments that are not valid JSON.
func (e *Engine) CallTool(ctx context.Context, name string, rawArgs json.RawMessage) (any, error) {
	var args toolArgs
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return nil, errors.Wrap(err, "invalid tool arguments")
		}
	}

	e.log.Info("executing tool", "tool", name)

	switch name {
	case ToolValidateSQL:
		return e.ValidateSQL(ctx, args.SQL, args.Params), nil
	case ToolDryRunSQL:
		resp, nerr := e.DryRunSQL(ctx, args.SQL, args.Params, args.PricePerTiB)
		if nerr != nil {
			return ErrorEnvelope{Error: nerr}, nil
		}
		return resp, nil
	case ToolAnalyzeQueryStructure:
		return e.AnalyzeQueryStructure(args.SQL), nil
	case ToolExtractDependencies:
		return e.ExtractDependencies(args.SQL), nil
	case ToolValidateQuerySyntax:
		return e.ValidateQuerySyntax(args.SQL), nil
	case ToolAnalyzeQueryPerformance:
		resp, nerr := e.AnalyzeQueryPerformance(ctx, args.SQL, args.Params, args.PricePerTiB)
		if nerr != nil {
			return ErrorEnvelope{Error: nerr}, nil
		}
		return resp, nil
	default:
		return nil, errors.Errorf("unknown tool: %s", name)
	}
}
