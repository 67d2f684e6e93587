// Package pkg provides BigQuery SQL analysis and advisory functionality
// for Go applications.
//
// bq-inspector analyzes SQL text without executing it: statement
// classification, dependency extraction, heuristic validation, and
// performance scoring fed by warehouse dry-run metadata.
//
// # Package Structure
//
// The pkg directory contains several specialized packages:
//
//   - engine: High-level API and the tool-call boundary (recommended starting point)
//   - analyzer: Lexical structure analysis and table/column dependency extraction
//   - advisor: Heuristic check execution engine and registration system
//   - scorer: Performance scoring, rating buckets and cost estimation
//   - warehouse: Dry-run executor boundary and upstream error normalization
//   - cache: TTL + LRU memoization for dry-run round-trips
//   - types: Core type definitions and data structures
//   - config: Configuration resolution and validation
//   - logger: Logging abstraction layer
//
// # Getting Started
//
// For most use cases, start with the engine package:
//
//	import (
//	    "github.com/nsxbet/bq-inspector/pkg/config"
//	    "github.com/nsxbet/bq-inspector/pkg/engine"
//	)
//
//	func main() {
//	    e := engine.New(config.Default(), runner, nil)
//	    structure := e.AnalyzeQueryStructure(sql)
//	    // Process results...
//	}
//
// The runner is the warehouse.DryRunner the embedding application
// injects; pass nil when only the offline operations are needed.
//
// # Custom Checks
//
// Implement custom advisory checks by satisfying the Check interface:
//
//	type myCheck struct{}
//
//	func (myCheck) Name() string { return "statement.my-check" }
//
//	func (myCheck) Check(cc advisor.CheckContext) (*types.Issue, *types.Suggestion) {
//	    // Inspection logic
//	    return nil, nil
//	}
//
//	func init() {
//	    advisor.Register(myCheck{})
//	}
//
// # Thread Safety
//
// All public APIs are safe for concurrent use by multiple goroutines.
// Engine instances can be reused across operations; the dry-run cache
// deduplicates concurrent identical requests.
//
// # Error Handling
//
// Operations distinguish between:
//   - Advisory findings (returned as Issues in ValidationResult)
//   - Upstream failures (returned as NormalizedError with a stable taxonomy)
//
// Individual check failures are logged but don't abort validation,
// allowing partial results even when one heuristic breaks.
package pkg
