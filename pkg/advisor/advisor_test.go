package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/bq-inspector/pkg/analyzer"
	"github.com/nsxbet/bq-inspector/pkg/types"
)

func validate(sql string) types.ValidationResult {
	return ValidateSyntax(sql, analyzer.Analyze(sql))
}

func issueTypes(result types.ValidationResult) []string {
	out := make([]string, 0, len(result.Issues))
	for _, is := range result.Issues {
		out = append(out, is.Type)
	}
	return out
}

func TestValidateSyntaxCleanStatement(t *testing.T) {
	result := validate("SELECT id, name FROM `proj.ds.users` WHERE id = 1")
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Issues)
	assert.Empty(t, result.Suggestions)
}

func TestValidateSyntaxErrorGradeIssues(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		issueType string
		message   string
	}{
		{
			"empty statement",
			"   ",
			IssueTypeSyntax,
			"Statement is empty",
		},
		{
			"comment-only statement",
			"-- nothing here",
			IssueTypeSyntax,
			"Statement is empty",
		},
		{
			"unbalanced parentheses",
			"SELECT (1 FROM `t`",
			IssueTypeSyntax,
			"Unbalanced parentheses in statement",
		},
		{
			"unterminated string",
			"SELECT 'abc FROM `t`",
			IssueTypeSyntax,
			"Unterminated string literal or quoted identifier",
		},
		{
			"delete without where",
			"DELETE FROM `ds.users`",
			IssueTypeSafety,
			"DELETE/UPDATE without WHERE clause affects all rows",
		},
		{
			"update without where",
			"UPDATE `ds.users` SET active = FALSE",
			IssueTypeSafety,
			"DELETE/UPDATE without WHERE clause affects all rows",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(tt.sql)
			assert.False(t, result.IsValid)

			found := false
			for _, is := range result.Issues {
				if is.Type == tt.issueType && is.Message == tt.message {
					found = true
					assert.Equal(t, types.Severity_ERROR, is.Severity)
				}
			}
			assert.True(t, found, "expected issue %q, got %v", tt.message, result.Issues)
		})
	}
}

func TestValidateSyntaxWarnings(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		issueType string
	}{
		{"select star", "SELECT * FROM `ds.users` WHERE id = 1", IssueTypePerformance},
		{"limit without order by", "SELECT id FROM `ds.users` WHERE id > 0 LIMIT 10", IssueTypeConsistency},
		{"legacy sql marker", "#legacySQL\nSELECT id FROM `ds.users` WHERE id = 1", IssueTypeCompatibility},
		{"legacy bracket reference", "SELECT id FROM [proj:ds.users] WHERE id = 1", IssueTypeCompatibility},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(tt.sql)
			assert.True(t, result.IsValid, "warnings must not invalidate: %v", result.Issues)
			assert.Contains(t, issueTypes(result), tt.issueType)
		})
	}
}

func TestValidateSyntaxSelectStarSuggestion(t *testing.T) {
	result := validate("SELECT * FROM `ds.users` WHERE id = 1")
	require.NotEmpty(t, result.Suggestions)

	texts := make([]string, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		texts = append(texts, s.Text)
	}
	assert.Contains(t, texts, "Specify exact columns needed instead of using SELECT *")
}

func TestValidateSyntaxInfoFindings(t *testing.T) {
	// Bare table reference without backticks, no WHERE and no LIMIT.
	result := validate("SELECT id FROM users")
	assert.True(t, result.IsValid)

	kinds := issueTypes(result)
	assert.Contains(t, kinds, IssueTypeStyle)
	assert.Contains(t, kinds, IssueTypeScan)
}

func TestValidateSyntaxReservedIdentifier(t *testing.T) {
	result := validate("SELECT id FROM order WHERE id = 1")
	assert.True(t, result.IsValid)
	assert.Contains(t, issueTypes(result), IssueTypeNaming)

	// Backtick-quoted names never trip the reserved word check.
	quoted := validate("SELECT id FROM `ds.order` WHERE id = 1")
	assert.NotContains(t, issueTypes(quoted), IssueTypeNaming)
}

func TestValidateSyntaxDialectFlags(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want types.DialectFlags
	}{
		{
			"standard sql",
			"SELECT id FROM `ds.users` WHERE id = 1",
			types.DialectFlags{},
		},
		{
			"legacy marker",
			"#legacySQL\nSELECT id FROM `ds.users`",
			types.DialectFlags{UsesLegacySyntax: true},
		},
		{
			"array literal",
			"SELECT ARRAY[1, 2, 3] FROM `ds.users` WHERE id = 1",
			types.DialectFlags{UsesArraySyntax: true},
		},
		{
			"struct constructor",
			"SELECT STRUCT(1 AS a, 2 AS b) FROM `ds.users` WHERE id = 1",
			types.DialectFlags{UsesStructSyntax: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validate(tt.sql)
			assert.Equal(t, tt.want, result.Dialect)
		})
	}
}

type panickyCheck struct{}

func (panickyCheck) Name() string { return "test.panics" }

func (panickyCheck) Check(CheckContext) (*types.Issue, *types.Suggestion) {
	panic("boom")
}

func TestValidateSyntaxSurvivesPanickingCheck(t *testing.T) {
	Register(panickyCheck{})

	require.NotPanics(t, func() {
		result := validate("SELECT id FROM `ds.users` WHERE id = 1")
		assert.True(t, result.IsValid)
	})
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() { Register(selectStarCheck{}) })
	assert.Panics(t, func() { Register(nil) })
}
