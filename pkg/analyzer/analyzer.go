// Package analyzer derives structural metadata and table/column
// dependencies from raw SQL text without executing it.
//
// Detection is lexical and pattern-based by design. Exotic dialect
// constructs may be misclassified; the warehouse dry-run remains the
// authority on syntax. The scanners never fail: text they cannot
// classify degrades to UNKNOWN/empty results instead of an error.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/nsxbet/bq-inspector/pkg/types"
)

// Complexity weights. Each structural feature only ever adds points, so
// a statement that gains a feature can never score lower.
const (
	weightPerTable       = 1
	weightPerJoin        = 5
	weightSubqueries     = 10
	weightCTE            = 8
	weightAggregation    = 5
	weightWindowFunction = 10
)

var (
	joinRe     = regexp.MustCompile(`(?i)\b(?:(LEFT|RIGHT|FULL|CROSS|INNER)\s+(?:OUTER\s+)?)?JOIN\b`)
	subqueryRe = regexp.MustCompile(`(?i)\(\s*SELECT\b`)
	cteRe      = regexp.MustCompile(`(?i)^\s*WITH\b`)
	windowRe   = regexp.MustCompile(`(?i)\bOVER\s*\(`)
	funcCallRe = regexp.MustCompile(`(?i)\b([A-Z_][A-Z0-9_]*)\s*\(`)
)

// Analyze classifies a SQL text and detects its structural features.
// It never fails: unclassifiable text yields StatementType_UNKNOWN with
// every feature false.
func Analyze(sql string) types.ParsedQuery {
	scrubbed := scrub(sql)

	pq := types.ParsedQuery{
		StatementType: classify(scrubbed),
		JoinTypes:     []types.JoinType{},
		FunctionsUsed: []string{},
	}
	if pq.StatementType == types.StatementType_UNKNOWN {
		return pq
	}

	joinCount := 0
	seenJoins := map[types.JoinType]bool{}
	for _, m := range joinRe.FindAllStringSubmatch(scrubbed, -1) {
		joinCount++
		jt := types.JoinType_INNER
		if m[1] != "" {
			jt = types.JoinType(strings.ToUpper(m[1]))
		}
		if !seenJoins[jt] {
			seenJoins[jt] = true
			pq.JoinTypes = append(pq.JoinTypes, jt)
		}
	}
	pq.HasJoins = joinCount > 0

	pq.HasSubqueries = subqueryRe.MatchString(scrubbed)
	pq.HasCTE = cteRe.MatchString(scrubbed)
	pq.HasWindowFunctions = windowRe.MatchString(scrubbed)

	seenFuncs := map[string]bool{}
	for _, m := range funcCallRe.FindAllStringSubmatch(scrubbed, -1) {
		name := strings.ToUpper(m[1])
		if IsKeyword(name) {
			continue
		}
		if aggregateFunctions[name] {
			pq.HasAggregations = true
		}
		if !seenFuncs[name] {
			seenFuncs[name] = true
			pq.FunctionsUsed = append(pq.FunctionsUsed, name)
		}
	}

	pq.TableCount = len(extractTables(scrubbed))
	pq.ComplexityScore = complexityScore(pq, joinCount)
	return pq
}

// CountJoins returns the number of join clauses in the statement, not
// deduplicated by type. The scorer penalizes per join occurrence.
func CountJoins(sql string) int {
	return len(joinRe.FindAllString(scrub(sql), -1))
}

// classify assigns the statement type from the first significant keyword.
func classify(scrubbed string) types.StatementType {
	switch firstKeyword(scrubbed) {
	case "SELECT", "WITH":
		return types.StatementType_SELECT
	case "INSERT":
		return types.StatementType_INSERT
	case "UPDATE":
		return types.StatementType_UPDATE
	case "DELETE":
		return types.StatementType_DELETE
	case "MERGE":
		return types.StatementType_MERGE
	case "CREATE", "ALTER", "DROP", "TRUNCATE", "GRANT", "REVOKE":
		return types.StatementType_DDL
	case "BEGIN", "DECLARE", "CALL", "EXECUTE", "LOOP", "WHILE":
		return types.StatementType_SCRIPT
	default:
		return types.StatementType_UNKNOWN
	}
}

// complexityScore is a weighted sum of the detected features. The
// weights are all positive, which keeps the score monotone: a superset
// of features never scores lower.
func complexityScore(pq types.ParsedQuery, joinCount int) int {
	score := pq.TableCount * weightPerTable
	score += joinCount * weightPerJoin
	if pq.HasSubqueries {
		score += weightSubqueries
	}
	if pq.HasCTE {
		score += weightCTE
	}
	if pq.HasAggregations {
		score += weightAggregation
	}
	if pq.HasWindowFunctions {
		score += weightWindowFunction
	}
	return score
}
