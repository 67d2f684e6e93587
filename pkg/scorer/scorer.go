// Package scorer fuses structural analysis with warehouse-reported scan
// volume into a 0-100 performance score, a rating bucket and ranked
// optimization suggestions. Scoring is deterministic: identical inputs
// produce byte-for-byte identical reports.
package scorer

import (
	"math"
	"regexp"

	"github.com/nsxbet/bq-inspector/pkg/analyzer"
	"github.com/nsxbet/bq-inspector/pkg/config"
	"github.com/nsxbet/bq-inspector/pkg/types"
)

// Suggestion type tags.
const (
	SuggestionSelectStar        = "SELECT_STAR"
	SuggestionHighDataScan      = "HIGH_DATA_SCAN"
	SuggestionManyJoins         = "MANY_JOINS"
	SuggestionCrossJoin         = "CROSS_JOIN"
	SuggestionSubqueryInWhere   = "SUBQUERY_IN_WHERE"
	SuggestionManyTables        = "MANY_TABLES"
	SuggestionLimitWithoutOrder = "LIMIT_WITHOUT_ORDER"
)

// Penalty weights and caps.
const (
	penaltySelectStar       = 15
	penaltyHighScanFloor    = 20
	penaltyHighScanCap      = 40
	penaltyPerExtraJoin     = 10
	maxJoinPenalty          = 30
	penaltyCrossJoin        = 10
	penaltyPerWhereSubquery = 5
	maxWhereSubqueryPenalty = 15
	penaltyPerExtraTable    = 5
	maxFanOutPenalty        = 25
	penaltyLimitNoOrder     = 5
)

var (
	selectStarRe  = regexp.MustCompile(`(?i)\bSELECT\s+\*`)
	limitRe       = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	orderByRe     = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)
	subSelectRe   = regexp.MustCompile(`(?i)\(\s*SELECT\b`)
	whereClauseRe = regexp.MustCompile(`(?is)\bWHERE\s+.*`)
)

// Score computes the performance report for a dry-run statement.
//
// bytesScanned is the warehouse-reported scan volume and must be
// non-negative. tableCount is the referenced-table fan-out (from the
// dry-run when available, otherwise the lexical count). pricePerTiB
// must be positive; callers fall back to the configured default before
// calling.
func Score(sql string, structure types.ParsedQuery, bytesScanned int64, tableCount int, pricePerTiB float64, cfg *config.Config) types.PerformanceReport {
	if cfg == nil {
		cfg = config.Default()
	}
	if bytesScanned < 0 {
		bytesScanned = 0
	}
	if pricePerTiB <= 0 {
		pricePerTiB = cfg.PricePerTiB
	}

	score := 100
	suggestions := []types.PerfSuggestion{}
	apply := func(penalty int, typ, message, recommendation string) {
		score -= penalty
		suggestions = append(suggestions, types.PerfSuggestion{
			Type:           typ,
			Severity:       severityFor(penalty),
			Message:        message,
			Recommendation: recommendation,
		})
	}

	if selectStarRe.MatchString(sql) {
		apply(penaltySelectStar, SuggestionSelectStar,
			"Query selects all columns with SELECT *",
			"Select only the columns you need to reduce bytes scanned")
	}

	if threshold := cfg.HighVolumeBytes; threshold > 0 && bytesScanned > threshold {
		apply(highScanPenalty(bytesScanned, threshold), SuggestionHighDataScan,
			"Query scans a large volume of data",
			"Filter on a partitioned or clustered column to prune the scan")
	}

	if joins := analyzer.CountJoins(sql); joins > 1 {
		penalty := (joins - 1) * penaltyPerExtraJoin
		if penalty > maxJoinPenalty {
			penalty = maxJoinPenalty
		}
		apply(penalty, SuggestionManyJoins,
			"Query performs several joins",
			"Pre-aggregate or materialize intermediate results to reduce join depth")
	}

	if hasCrossJoin(structure) {
		apply(penaltyCrossJoin, SuggestionCrossJoin,
			"Query contains a CROSS JOIN",
			"Replace the cross join with an explicit join condition")
	}

	if n := countWhereSubqueries(sql); n > 0 {
		penalty := n * penaltyPerWhereSubquery
		if penalty > maxWhereSubqueryPenalty {
			penalty = maxWhereSubqueryPenalty
		}
		apply(penalty, SuggestionSubqueryInWhere,
			"Query nests subqueries inside the WHERE clause",
			"Rewrite WHERE subqueries as joins or WITH clauses")
	}

	if threshold := cfg.FanOutThreshold; tableCount > threshold {
		penalty := (tableCount - threshold) * penaltyPerExtraTable
		if penalty > maxFanOutPenalty {
			penalty = maxFanOutPenalty
		}
		apply(penalty, SuggestionManyTables,
			"Query references an unusually high number of tables",
			"Split the query or consolidate upstream tables")
	}

	if limitRe.MatchString(sql) && !orderByRe.MatchString(sql) {
		apply(penaltyLimitNoOrder, SuggestionLimitWithoutOrder,
			"LIMIT without ORDER BY returns nondeterministic rows",
			"Add ORDER BY so the limited result set is stable")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return types.PerformanceReport{
		Score:           score,
		Rating:          RatingFor(score),
		Suggestions:     suggestions,
		BytesScanned:    bytesScanned,
		CostEstimateUSD: EstimateCost(bytesScanned, pricePerTiB),
	}
}

// RatingFor maps a score to its rating bucket. The bands are fixed and
// cover [0,100] with no gaps or overlaps.
func RatingFor(score int) types.Rating {
	switch {
	case score >= 85:
		return types.Rating_EXCELLENT
	case score >= 65:
		return types.Rating_GOOD
	case score >= 40:
		return types.Rating_FAIR
	default:
		return types.Rating_NEEDS_OPTIMIZATION
	}
}

// severityFor grades a suggestion by its penalty weight.
func severityFor(penalty int) types.SuggestionSeverity {
	switch {
	case penalty >= 15:
		return types.SuggestionSeverity_HIGH
	case penalty >= 8:
		return types.SuggestionSeverity_MEDIUM
	default:
		return types.SuggestionSeverity_LOW
	}
}

// highScanPenalty starts at the floor when the threshold is crossed and
// grows with the base-2 log of the overage, truncated, up to the cap.
func highScanPenalty(bytesScanned, threshold int64) int {
	overage := float64(bytesScanned) / float64(threshold)
	penalty := penaltyHighScanFloor + int(5*math.Log2(overage))
	if penalty < penaltyHighScanFloor {
		penalty = penaltyHighScanFloor
	}
	if penalty > penaltyHighScanCap {
		penalty = penaltyHighScanCap
	}
	return penalty
}

func hasCrossJoin(structure types.ParsedQuery) bool {
	for _, jt := range structure.JoinTypes {
		if jt == types.JoinType_CROSS {
			return true
		}
	}
	return false
}

// countWhereSubqueries counts parenthesized SELECTs inside the WHERE
// clause. It scans the clause tail, so subqueries in the select list or
// FROM position do not count.
func countWhereSubqueries(sql string) int {
	scrubbed := analyzer.Scrub(sql)
	clause := whereClauseRe.FindString(scrubbed)
	if clause == "" {
		return 0
	}
	return len(subSelectRe.FindAllString(clause, -1))
}
