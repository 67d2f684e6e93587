// Package advisor runs heuristic checks over SQL text and its
// structural profile, emitting advisory issues with remediation
// suggestions.
//
// The checks are local heuristics: balanced delimiters, anti-patterns,
// dialect markers. A passing result is not proof of validity — the
// warehouse dry-run stays authoritative — but an error-grade finding is
// a strong signal the statement needs attention before submission.
package advisor

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/nsxbet/bq-inspector/pkg/types"
)

// CheckContext carries everything a check may inspect.
type CheckContext struct {
	// SQL is the raw statement text, comments included.
	SQL string

	// Structure is the lexical profile from the analyzer.
	Structure types.ParsedQuery
}

// Check is a single heuristic inspection. A check returns at most one
// issue; Suggestion carries its remediation text and may be nil when
// there is nothing actionable.
type Check interface {
	Name() string
	Check(cc CheckContext) (*types.Issue, *types.Suggestion)
}

var (
	checkMu sync.RWMutex
	checks  []Check
)

// Register makes a check available to ValidateSyntax. It panics when
// the check is nil or its name is already taken.
func Register(c Check) {
	checkMu.Lock()
	defer checkMu.Unlock()
	if c == nil {
		panic("advisor: Register check is nil")
	}
	for _, existing := range checks {
		if existing.Name() == c.Name() {
			panic(fmt.Sprintf("advisor: Register called twice for check %q", c.Name()))
		}
	}
	checks = append(checks, c)
}

// ValidateSyntax runs every registered check against the statement and
// assembles the advisory result. It never fails: a panicking check is
// logged and skipped so one broken heuristic cannot take down the
// whole validation.
//
// IsValid is true when no error-grade issue was found.
func ValidateSyntax(sql string, structure types.ParsedQuery) types.ValidationResult {
	cc := CheckContext{SQL: sql, Structure: structure}

	result := types.ValidationResult{
		IsValid:     true,
		Issues:      []types.Issue{},
		Suggestions: []types.Suggestion{},
		Dialect:     detectDialectFlags(sql),
	}

	checkMu.RLock()
	registered := make([]Check, len(checks))
	copy(registered, checks)
	checkMu.RUnlock()

	for _, c := range registered {
		issue, suggestion := runCheck(c, cc)
		if issue == nil {
			continue
		}
		result.Issues = append(result.Issues, *issue)
		if suggestion != nil {
			result.Suggestions = append(result.Suggestions, *suggestion)
		}
		if issue.Severity == types.Severity_ERROR {
			result.IsValid = false
		}
	}
	return result
}

func runCheck(c Check, cc CheckContext) (issue *types.Issue, suggestion *types.Suggestion) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("advisor check panicked", "check", c.Name(), "panic", r)
			issue, suggestion = nil, nil
		}
	}()
	return c.Check(cc)
}
