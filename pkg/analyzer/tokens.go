package analyzer

import (
	"strings"
)

// sqlKeywords are tokens that must never be treated as column or table
// identifiers during lexical scanning.
var sqlKeywords = map[string]bool{
	"ALL": true, "AND": true, "ANY": true, "AS": true, "ASC": true,
	"BETWEEN": true, "BY": true, "CASE": true, "CAST": true, "CROSS": true,
	"CURRENT": true, "DESC": true, "DISTINCT": true, "ELSE": true,
	"END": true, "EXCEPT": true, "EXISTS": true, "FALSE": true,
	"FOLLOWING": true, "FROM": true, "FULL": true, "GROUP": true,
	"HAVING": true, "IF": true, "IN": true, "INNER": true, "INTERSECT": true,
	"INTERVAL": true, "IS": true, "JOIN": true, "LEFT": true, "LIKE": true,
	"LIMIT": true, "NOT": true, "NULL": true, "OFFSET": true, "ON": true,
	"OR": true, "ORDER": true, "OUTER": true, "OVER": true,
	"PARTITION": true, "PRECEDING": true, "QUALIFY": true, "RANGE": true,
	"RIGHT": true, "ROWS": true, "SELECT": true, "SET": true, "SOME": true,
	"THEN": true, "TRUE": true, "UNBOUNDED": true, "UNION": true,
	"UNNEST": true, "USING": true, "VALUES": true, "WHEN": true,
	"WHERE": true, "WINDOW": true, "WITH": true,
}

// reservedIdentifiers are keywords that show up as table or column names
// in the wild and break unquoted references.
var reservedIdentifiers = map[string]bool{
	"ORDER": true, "GROUP": true, "SELECT": true, "FROM": true,
	"WHERE": true, "JOIN": true, "LIMIT": true, "TABLE": true,
	"UNION": true, "CASE": true, "PARTITION": true, "RANGE": true,
	"ROWS": true, "CURRENT": true, "DEFAULT": true,
}

// aggregateFunctions is the fixed set whose presence as a call marks a
// statement as aggregating.
var aggregateFunctions = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"COUNTIF": true, "ARRAY_AGG": true, "STRING_AGG": true,
	"ANY_VALUE": true, "LOGICAL_AND": true, "LOGICAL_OR": true,
	"BIT_AND": true, "BIT_OR": true, "APPROX_COUNT_DISTINCT": true,
}

// IsKeyword reports whether the token is a SQL keyword (case-insensitive).
func IsKeyword(tok string) bool {
	return sqlKeywords[strings.ToUpper(tok)]
}

// IsReservedIdentifier reports whether an unquoted identifier collides
// with a reserved word.
func IsReservedIdentifier(ident string) bool {
	return reservedIdentifiers[strings.ToUpper(ident)]
}

// scrub returns the SQL text with comments removed and the contents of
// string literals blanked, preserving byte offsets so positions in the
// scrubbed text line up with the original. Backtick-quoted identifiers
// survive untouched.
//
// This is a lexical pass, not a parser: it only tracks enough state to
// keep scanning out of comments and literals.
func scrub(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	const (
		stSQL = iota
		stSingle
		stDouble
		stBacktick
		stLineComment
		stBlockComment
	)
	state := stSQL

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch state {
		case stSQL:
			switch {
			case c == '\'':
				state = stSingle
				b.WriteByte(c)
			case c == '"':
				state = stDouble
				b.WriteByte(c)
			case c == '`':
				state = stBacktick
				b.WriteByte(c)
			case c == '#':
				state = stLineComment
				b.WriteByte(' ')
			case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
				state = stLineComment
				b.WriteByte(' ')
			case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
				state = stBlockComment
				b.WriteByte(' ')
			default:
				b.WriteByte(c)
			}
		case stSingle:
			if c == '\\' && i+1 < len(sql) {
				b.WriteString("  ")
				i++
				continue
			}
			if c == '\'' {
				state = stSQL
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		case stDouble:
			if c == '\\' && i+1 < len(sql) {
				b.WriteString("  ")
				i++
				continue
			}
			if c == '"' {
				state = stSQL
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		case stBacktick:
			b.WriteByte(c)
			if c == '`' {
				state = stSQL
			}
		case stLineComment:
			if c == '\n' {
				state = stSQL
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		case stBlockComment:
			if c == '*' && i+1 < len(sql) && sql[i+1] == '/' {
				state = stSQL
				b.WriteString("  ")
				i++
			} else if c == '\n' {
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

// Scrub exposes the comment/literal scrubber for callers outside the
// package (the advisor shares it for delimiter checks).
func Scrub(sql string) string {
	return scrub(sql)
}

// Balance reports delimiter balance over the statement: the net
// parenthesis depth outside strings and comments, and whether the text
// ends inside an unterminated string literal.
func Balance(sql string) (parens int, openString bool) {
	const (
		stSQL = iota
		stSingle
		stDouble
		stBacktick
		stLineComment
		stBlockComment
	)
	state := stSQL
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch state {
		case stSQL:
			switch {
			case c == '(':
				parens++
			case c == ')':
				parens--
			case c == '\'':
				state = stSingle
			case c == '"':
				state = stDouble
			case c == '`':
				state = stBacktick
			case c == '#':
				state = stLineComment
			case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
				state = stLineComment
				i++
			case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
				state = stBlockComment
				i++
			}
		case stSingle:
			if c == '\\' {
				i++
			} else if c == '\'' {
				state = stSQL
			}
		case stDouble:
			if c == '\\' {
				i++
			} else if c == '"' {
				state = stSQL
			}
		case stBacktick:
			if c == '`' {
				state = stSQL
			}
		case stLineComment:
			if c == '\n' {
				state = stSQL
			}
		case stBlockComment:
			if c == '*' && i+1 < len(sql) && sql[i+1] == '/' {
				state = stSQL
				i++
			}
		}
	}
	openString = state == stSingle || state == stDouble || state == stBacktick
	return parens, openString
}

// firstKeyword returns the first bare word of the scrubbed statement,
// uppercased, or "" for an effectively empty statement.
func firstKeyword(scrubbed string) string {
	fields := strings.Fields(scrubbed)
	for _, f := range fields {
		f = strings.TrimLeft(f, "(")
		if f == "" {
			continue
		}
		return strings.ToUpper(strings.TrimRight(f, "(;"))
	}
	return ""
}
