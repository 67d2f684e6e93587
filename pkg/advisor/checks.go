package advisor

import (
	"regexp"
	"strings"

	"github.com/nsxbet/bq-inspector/pkg/analyzer"
	"github.com/nsxbet/bq-inspector/pkg/types"
)

// Issue type tags. Kept stable: downstream tooling filters on them.
const (
	IssueTypePerformance   = "performance"
	IssueTypeSafety        = "safety"
	IssueTypeConsistency   = "consistency"
	IssueTypeStyle         = "style"
	IssueTypeCompatibility = "compatibility"
	IssueTypeSyntax        = "syntax"
	IssueTypeNaming        = "naming"
	IssueTypeScan          = "scan"
)

var (
	selectStarRe    = regexp.MustCompile(`(?i)\bSELECT\s+\*`)
	whereRe         = regexp.MustCompile(`(?i)\bWHERE\b`)
	limitRe         = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	orderByRe       = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)
	fromBareRe      = regexp.MustCompile(`(?i)\bFROM\s+[A-Za-z]`)
	fromBacktickRe  = regexp.MustCompile("(?i)\\bFROM\\s+`")
	fromBracketRe   = regexp.MustCompile(`(?i)\bFROM\s+\[[^\]]+\]`)
	arraySyntaxRe   = regexp.MustCompile(`(?i)\bARRAY\s*[\[<]`)
	structSyntaxRe  = regexp.MustCompile(`(?i)\bSTRUCT\s*[(<]`)
	tableOrAliasRe  = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_]*)\b`)
	legacySQLMarker = "#legacySQL"
)

func init() {
	Register(emptyStatementCheck{})
	Register(parenBalanceCheck{})
	Register(stringTerminationCheck{})
	Register(selectStarCheck{})
	Register(dmlWithoutWhereCheck{})
	Register(limitWithoutOrderCheck{})
	Register(unboundedScanCheck{})
	Register(backtickStyleCheck{})
	Register(legacySQLCheck{})
	Register(reservedIdentifierCheck{})
}

func detectDialectFlags(sql string) types.DialectFlags {
	return types.DialectFlags{
		UsesLegacySyntax: strings.Contains(sql, legacySQLMarker) || fromBracketRe.MatchString(sql),
		UsesArraySyntax:  arraySyntaxRe.MatchString(sql),
		UsesStructSyntax: structSyntaxRe.MatchString(sql),
	}
}

type emptyStatementCheck struct{}

func (emptyStatementCheck) Name() string { return "statement.not-empty" }

func (emptyStatementCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	if strings.TrimSpace(analyzer.Scrub(cc.SQL)) != "" {
		return nil, nil
	}
	return &types.Issue{
		Type:     IssueTypeSyntax,
		Message:  "Statement is empty",
		Severity: types.Severity_ERROR,
	}, nil
}

type parenBalanceCheck struct{}

func (parenBalanceCheck) Name() string { return "statement.balanced-parentheses" }

func (parenBalanceCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	parens, _ := analyzer.Balance(cc.SQL)
	if parens == 0 {
		return nil, nil
	}
	return &types.Issue{
			Type:     IssueTypeSyntax,
			Message:  "Unbalanced parentheses in statement",
			Severity: types.Severity_ERROR,
		}, &types.Suggestion{
			Text: "Check for a missing opening or closing parenthesis",
		}
}

type stringTerminationCheck struct{}

func (stringTerminationCheck) Name() string { return "statement.terminated-strings" }

func (stringTerminationCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	_, open := analyzer.Balance(cc.SQL)
	if !open {
		return nil, nil
	}
	return &types.Issue{
			Type:     IssueTypeSyntax,
			Message:  "Unterminated string literal or quoted identifier",
			Severity: types.Severity_ERROR,
		}, &types.Suggestion{
			Text: "Close the open quote before the end of the statement",
		}
}

type selectStarCheck struct{}

func (selectStarCheck) Name() string { return "statement.no-select-all" }

func (selectStarCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	if !selectStarRe.MatchString(cc.SQL) {
		return nil, nil
	}
	return &types.Issue{
			Type:     IssueTypePerformance,
			Message:  "SELECT * may impact performance - consider specifying columns",
			Severity: types.Severity_WARNING,
		}, &types.Suggestion{
			Text: "Specify exact columns needed instead of using SELECT *",
		}
}

type dmlWithoutWhereCheck struct{}

func (dmlWithoutWhereCheck) Name() string { return "statement.where-required-for-dml" }

func (dmlWithoutWhereCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	st := cc.Structure.StatementType
	if st != types.StatementType_UPDATE && st != types.StatementType_DELETE {
		return nil, nil
	}
	if whereRe.MatchString(cc.SQL) {
		return nil, nil
	}
	return &types.Issue{
			Type:     IssueTypeSafety,
			Message:  "DELETE/UPDATE without WHERE clause affects all rows",
			Severity: types.Severity_ERROR,
		}, &types.Suggestion{
			Text: "Add a WHERE clause to limit the scope of the operation",
		}
}

type limitWithoutOrderCheck struct{}

func (limitWithoutOrderCheck) Name() string { return "statement.limit-requires-order" }

func (limitWithoutOrderCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	if !limitRe.MatchString(cc.SQL) || orderByRe.MatchString(cc.SQL) {
		return nil, nil
	}
	return &types.Issue{
			Type:     IssueTypeConsistency,
			Message:  "LIMIT without ORDER BY may return inconsistent results",
			Severity: types.Severity_WARNING,
		}, &types.Suggestion{
			Text: "Add ORDER BY clause before LIMIT for consistent results",
		}
}

type unboundedScanCheck struct{}

func (unboundedScanCheck) Name() string { return "statement.bounded-scan" }

func (unboundedScanCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	if cc.Structure.StatementType != types.StatementType_SELECT || cc.Structure.TableCount < 1 {
		return nil, nil
	}
	if whereRe.MatchString(cc.SQL) || limitRe.MatchString(cc.SQL) {
		return nil, nil
	}
	return &types.Issue{
			Type:     IssueTypeScan,
			Message:  "Statement reads tables without WHERE or LIMIT",
			Severity: types.Severity_INFO,
		}, &types.Suggestion{
			Text: "Add a WHERE filter or LIMIT to bound the rows scanned",
		}
}

type backtickStyleCheck struct{}

func (backtickStyleCheck) Name() string { return "naming.backtick-table-references" }

func (backtickStyleCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	if !fromBareRe.MatchString(cc.SQL) || fromBacktickRe.MatchString(cc.SQL) {
		return nil, nil
	}
	return &types.Issue{
			Type:     IssueTypeStyle,
			Message:  "Consider using backticks for table references in BigQuery",
			Severity: types.Severity_INFO,
		}, &types.Suggestion{
			Text: "Use backticks (`) around table and column names",
		}
}

type legacySQLCheck struct{}

func (legacySQLCheck) Name() string { return "dialect.no-legacy-sql" }

func (legacySQLCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	if !strings.Contains(cc.SQL, legacySQLMarker) && !fromBracketRe.MatchString(cc.SQL) {
		return nil, nil
	}
	return &types.Issue{
			Type:     IssueTypeCompatibility,
			Message:  "Legacy SQL is deprecated - consider using Standard SQL",
			Severity: types.Severity_WARNING,
		}, &types.Suggestion{
			Text: "Migrate to Standard SQL for better support",
		}
}

type reservedIdentifierCheck struct{}

func (reservedIdentifierCheck) Name() string { return "naming.no-reserved-words" }

func (reservedIdentifierCheck) Check(cc CheckContext) (*types.Issue, *types.Suggestion) {
	for _, m := range tableOrAliasRe.FindAllStringSubmatch(cc.SQL, -1) {
		if analyzer.IsReservedIdentifier(m[1]) {
			return &types.Issue{
					Type:     IssueTypeNaming,
					Message:  "Identifier " + strings.ToUpper(m[1]) + " is a reserved word and must be quoted",
					Severity: types.Severity_WARNING,
				}, &types.Suggestion{
					Text: "Quote reserved words with backticks or rename the identifier",
				}
		}
	}
	return nil, nil
}
