// Package engine wires the analysis components behind the tool-call
// boundary: structure analysis, dependency extraction, advisory
// validation, dry-run execution with caching, and performance scoring.
//
// An Engine is stateless apart from its dry-run cache and safe for
// concurrent use. Analysis operations are pure CPU work over their
// inputs; only the executor round-trip can block or fail.
package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nsxbet/bq-inspector/pkg/advisor"
	"github.com/nsxbet/bq-inspector/pkg/analyzer"
	"github.com/nsxbet/bq-inspector/pkg/cache"
	"github.com/nsxbet/bq-inspector/pkg/config"
	"github.com/nsxbet/bq-inspector/pkg/logger"
	"github.com/nsxbet/bq-inspector/pkg/scorer"
	"github.com/nsxbet/bq-inspector/pkg/types"
	"github.com/nsxbet/bq-inspector/pkg/warehouse"
)

// Engine binds configuration, the dry-run executor and the result
// cache. Construct one at process start and share it; there is no
// hidden package-level state.
type Engine struct {
	cfg     *config.Config
	log     logger.Interface
	runner  warehouse.DryRunner
	dryRuns *cache.Cache[*warehouse.DryRunResult]
}

// New creates an Engine. runner may be nil when only the offline
// operations (structure, dependencies, syntax) are used; the dry-run
// backed operations then report an UNKNOWN_ERROR.
func New(cfg *config.Config, runner warehouse.DryRunner, log logger.Interface) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.New()
	}
	return &Engine{
		cfg:     cfg,
		log:     log,
		runner:  runner,
		dryRuns: cache.New[*warehouse.DryRunResult](cfg.CacheCapacity, cfg.CacheTTL),
	}
}

// ValidateSQLResponse reports executor-authoritative validity.
type ValidateSQLResponse struct {
	IsValid bool                   `json:"isValid"`
	Error   *types.NormalizedError `json:"error,omitempty"`
}

// DryRunResponse carries the dry-run cost and schema preview.
type DryRunResponse struct {
	TotalBytesProcessed int64               `json:"totalBytesProcessed"`
	USDEstimate         float64             `json:"usdEstimate"`
	ReferencedTables    []types.TableRef    `json:"referencedTables"`
	SchemaPreview       []types.SchemaField `json:"schemaPreview"`
}

// DependenciesResponse mirrors the extract-dependencies tool payload.
type DependenciesResponse struct {
	Tables          []types.TableRef    `json:"tables"`
	Columns         []string            `json:"columns"`
	DependencyGraph map[string][]string `json:"dependency_graph"`
	TableCount      int                 `json:"table_count"`
	ColumnCount     int                 `json:"column_count"`
}

// PerformanceResponse fuses the structural profile with the dry-run
// volume into the scored report.
type PerformanceResponse struct {
	QueryAnalysis           types.ParsedQuery      `json:"query_analysis"`
	PerformanceScore        int                    `json:"performance_score"`
	PerformanceRating       types.Rating           `json:"performance_rating"`
	OptimizationSuggestions []types.PerfSuggestion `json:"optimization_suggestions"`
	BytesScanned            int64                  `json:"bytes_scanned"`
	CostEstimateUSD         float64                `json:"cost_estimate_usd"`
}

// ValidateSQL checks the statement against the warehouse dry-run.
// The result is authoritative, unlike ValidateQuerySyntax.
func (e *Engine) ValidateSQL(ctx context.Context, sql string, params map[string]any) ValidateSQLResponse {
	_, err := e.dryRun(ctx, sql, params, e.cfg.PricePerTiB)
	if err != nil {
		e.log.Warn("SQL validation failed", "error", err)
		return ValidateSQLResponse{IsValid: false, Error: warehouse.Normalize(err)}
	}
	e.log.Debug("SQL validation successful")
	return ValidateSQLResponse{IsValid: true}
}

// DryRunSQL plans the statement and reports bytes scanned, cost and
// the result schema preview.
func (e *Engine) DryRunSQL(ctx context.Context, sql string, params map[string]any, pricePerTiB *float64) (*DryRunResponse, *types.NormalizedError) {
	price := e.resolvePrice(pricePerTiB)
	res, err := e.dryRun(ctx, sql, params, price)
	if err != nil {
		return nil, warehouse.Normalize(err)
	}
	resp := &DryRunResponse{
		TotalBytesProcessed: res.BytesScanned,
		USDEstimate:         scorer.EstimateCost(res.BytesScanned, price),
		ReferencedTables:    res.ReferencedTables,
		SchemaPreview:       res.SchemaFields,
	}
	if resp.ReferencedTables == nil {
		resp.ReferencedTables = []types.TableRef{}
	}
	if resp.SchemaPreview == nil {
		resp.SchemaPreview = []types.SchemaField{}
	}
	return resp, nil
}

// AnalyzeQueryStructure returns the lexical structural profile. It
// makes no network call and never fails.
func (e *Engine) AnalyzeQueryStructure(sql string) types.ParsedQuery {
	return analyzer.Analyze(sql)
}

// ExtractDependencies resolves referenced tables and columns. It makes
// no network call and never fails.
func (e *Engine) ExtractDependencies(sql string) DependenciesResponse {
	graph := analyzer.ExtractDependencies(sql)
	return DependenciesResponse{
		Tables:          graph.Tables,
		Columns:         graph.Columns,
		DependencyGraph: graph.TableToColumns,
		TableCount:      len(graph.Tables),
		ColumnCount:     len(graph.Columns),
	}
}

// ValidateQuerySyntax runs the local heuristic checks. A passing result
// does not guarantee the warehouse accepts the statement.
func (e *Engine) ValidateQuerySyntax(sql string) types.ValidationResult {
	return advisor.ValidateSyntax(sql, analyzer.Analyze(sql))
}

// AnalyzeQueryPerformance scores the statement using warehouse-reported
// scan volume. The dry-run table fan-out takes precedence over the
// lexical count when the planner reports it.
func (e *Engine) AnalyzeQueryPerformance(ctx context.Context, sql string, params map[string]any, pricePerTiB *float64) (*PerformanceResponse, *types.NormalizedError) {
	price := e.resolvePrice(pricePerTiB)
	res, err := e.dryRun(ctx, sql, params, price)
	if err != nil {
		return nil, warehouse.Normalize(err)
	}

	structure := analyzer.Analyze(sql)
	tableCount := structure.TableCount
	if len(res.ReferencedTables) > 0 {
		tableCount = len(res.ReferencedTables)
	}

	report := scorer.Score(sql, structure, res.BytesScanned, tableCount, price, e.cfg)
	return &PerformanceResponse{
		QueryAnalysis:           structure,
		PerformanceScore:        report.Score,
		PerformanceRating:       report.Rating,
		OptimizationSuggestions: report.Suggestions,
		BytesScanned:            report.BytesScanned,
		CostEstimateUSD:         report.CostEstimateUSD,
	}, nil
}

// CacheStats exposes the dry-run cache counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.dryRuns.Stats()
}

// dryRun issues the executor round-trip through the cache. Requests
// with an identical (sql, params, price) key share one upstream call.
func (e *Engine) dryRun(ctx context.Context, sql string, params map[string]any, price float64) (*warehouse.DryRunResult, error) {
	if e.runner == nil {
		return nil, &warehouse.UpstreamError{
			Message: "no dry-run executor configured",
		}
	}

	coerced := warehouse.CoerceParams(params)
	key := cache.Key(
		sql,
		warehouse.ParamsKey(coerced),
		strconv.FormatFloat(price, 'g', -1, 64),
		e.cfg.Location,
	)
	return e.dryRuns.GetOrFill(key, func() (*warehouse.DryRunResult, error) {
		e.log.Debug("dry-run cache miss", "sql", truncateSQL(sql))
		return e.runner.DryRun(ctx, sql, coerced, e.cfg.Location)
	})
}

// resolvePrice applies the price precedence: argument, then configured
// default. Out-of-range arguments fall back to the default.
func (e *Engine) resolvePrice(pricePerTiB *float64) float64 {
	if pricePerTiB != nil && *pricePerTiB > 0 && *pricePerTiB <= config.MaxPricePerTiB {
		return *pricePerTiB
	}
	return e.cfg.PricePerTiB
}

// truncateSQL bounds statement text for logging.
func truncateSQL(sql string) string {
	const maxLen = 100
	if len(sql) <= maxLen {
		return sql
	}
	return fmt.Sprintf("%s...", sql[:maxLen])
}
