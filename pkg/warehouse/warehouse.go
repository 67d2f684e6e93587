// Package warehouse defines the boundary to the external dry-run
// executor. The engine never talks to a warehouse directly: it consumes
// this interface, and the embedding application injects a concrete
// client. Everything the executor reports — byte volume, referenced
// tables, schema, errors — flows back through the types here.
package warehouse

import (
	"context"
	"fmt"
	"sort"

	"github.com/nsxbet/bq-inspector/pkg/types"
)

// DryRunResult is what a successful dry-run reports.
type DryRunResult struct {
	// BytesScanned is the total bytes the query would process.
	BytesScanned int64

	// ReferencedTables are the tables the planner resolved.
	ReferencedTables []types.TableRef

	// SchemaFields preview the result schema.
	SchemaFields []types.SchemaField
}

// DryRunner validates and plans a query without executing it.
//
// Parameter values are opaque strings; queries needing other types cast
// explicitly in SQL. Implementations must honor context cancellation —
// an abandoned call must not retry on its own.
type DryRunner interface {
	DryRun(ctx context.Context, sql string, params map[string]string, location string) (*DryRunResult, error)
}

// DryRunnerFunc adapts a function to the DryRunner interface.
type DryRunnerFunc func(ctx context.Context, sql string, params map[string]string, location string) (*DryRunResult, error)

func (f DryRunnerFunc) DryRun(ctx context.Context, sql string, params map[string]string, location string) (*DryRunResult, error) {
	return f(ctx, sql, params, location)
}

// UpstreamError is a structured failure reported by the executor.
type UpstreamError struct {
	// Reason is the upstream machine-readable reason string, e.g.
	// "invalidQuery" or "accessDenied".
	Reason string

	// Message is the human-readable upstream message.
	Message string

	// Details are opaque upstream detail records, passed through.
	Details []any
}

func (e *UpstreamError) Error() string {
	if e.Reason == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// CoerceParams flattens a JSON-shaped parameter map into the uniform
// string map the executor accepts. Coercion happens once, here at the
// boundary; the engine never re-interprets parameter values.
func CoerceParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for name, value := range params {
		out[name] = fmt.Sprintf("%v", value)
	}
	return out
}

// ParamsKey renders the coerced parameters deterministically for cache
// key derivation.
func ParamsKey(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	key := ""
	for _, name := range names {
		key += name + "=" + params[name] + ";"
	}
	return key
}
