package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nsxbet/bq-inspector/pkg/types"
)

var (
	tableRefRe = regexp.MustCompile("(?i)\\b(?:FROM|JOIN)\\s+(`[^`]+`|[A-Za-z_][A-Za-z0-9_.\\-]*)")
	aliasRe    = regexp.MustCompile(`^\s+(?:[Aa][Ss]\s+)?([A-Za-z_][A-Za-z0-9_]*)`)

	// Dotted identifier chains. Two parts is a qualified column
	// reference; three or more is a table reference and handled by
	// tableRefRe instead.
	qualifiedRe = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)((?:\.[A-Za-z_][A-Za-z0-9_]*)+)`)

	selectListRe  = regexp.MustCompile(`(?is)\bSELECT\s+(.*?)\s+FROM\b`)
	whereClauseRe = regexp.MustCompile(`(?is)\bWHERE\s+(.*?)(?:\s+GROUP\s+BY|\s+ORDER\s+BY|\s+LIMIT\b|\s+HAVING\b|\s+QUALIFY\b|\s*;|\s*$)`)
	groupOrderRe  = regexp.MustCompile(`(?is)\b(?:GROUP|ORDER)\s+BY\s+(.*?)(?:\s+LIMIT\b|\s+HAVING\b|\s+ORDER\s+BY\b|\s+WINDOW\b|\s*;|\s*$)`)
	identRe       = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)
	whereColRe    = regexp.MustCompile(`(?i)\b([A-Za-z_][A-Za-z0-9_]*)\s*(?:[=<>!]|IS\b|IN\b|LIKE\b|BETWEEN\b)`)
)

type tableHit struct {
	ref   types.TableRef
	alias string
}

// ExtractDependencies resolves every referenced table and column and
// builds a best-effort table-to-columns attribution.
//
// Attribution is precision-over-recall: a column qualified with a known
// alias or table name is attributed to that table; unqualified columns
// are attributed only when a single table is in scope. Ambiguous
// unqualified columns in multi-table statements stay in the flat column
// set but out of the mapping.
func ExtractDependencies(sql string) types.DependencyGraph {
	scrubbed := scrub(sql)

	hits := extractTableHits(scrubbed)
	tables := make([]types.TableRef, 0, len(hits))
	fullNames := map[string]bool{}
	aliasTo := map[string]string{}
	for _, h := range hits {
		if !fullNames[h.ref.FullName] {
			fullNames[h.ref.FullName] = true
			tables = append(tables, h.ref)
		}
		if h.alias != "" {
			aliasTo[h.alias] = h.ref.FullName
		}
		// The bare table part resolves too: users.id with table users.
		if _, taken := aliasTo[h.ref.Table]; !taken {
			aliasTo[h.ref.Table] = h.ref.FullName
		}
	}

	type colHit struct {
		pos   int
		name  string
		table string // resolved FullName, or ""
	}
	var cols []colHit

	// Qualified references anywhere in the statement (SELECT list,
	// JOIN ON, WHERE, ...).
	for _, m := range qualifiedRe.FindAllStringSubmatchIndex(scrubbed, -1) {
		whole := scrubbed[m[0]:m[1]]
		parts := strings.Split(whole, ".")
		if len(parts) != 2 {
			continue
		}
		if fullNames[whole] {
			continue
		}
		// A dotted chain followed by ( is a function reference.
		if rest := scrubbed[m[1]:]; strings.HasPrefix(strings.TrimLeft(rest, " \t"), "(") {
			continue
		}
		qualifier, column := parts[0], parts[1]
		if IsKeyword(column) {
			continue
		}
		cols = append(cols, colHit{pos: m[0], name: column, table: aliasTo[qualifier]})
	}

	// Unqualified identifiers in the SELECT list.
	if m := selectListRe.FindStringSubmatchIndex(scrubbed); m != nil {
		for _, c := range bareIdents(scrubbed, m[2], m[3]) {
			cols = append(cols, colHit{pos: c.pos, name: c.name})
		}
	}

	// WHERE clause: identifiers on the left of a comparison.
	if m := whereClauseRe.FindStringSubmatchIndex(scrubbed); m != nil {
		clause := scrubbed[m[2]:m[3]]
		for _, im := range whereColRe.FindAllStringSubmatchIndex(clause, -1) {
			pos, end := m[2]+im[2], m[2]+im[3]
			name := clause[im[2]:im[3]]
			if IsKeyword(name) || adjacentToDot(scrubbed, pos, end) {
				continue
			}
			cols = append(cols, colHit{pos: pos, name: name})
		}
	}

	// GROUP BY / ORDER BY lists.
	for _, m := range groupOrderRe.FindAllStringSubmatchIndex(scrubbed, -1) {
		for _, c := range bareIdents(scrubbed, m[2], m[3]) {
			cols = append(cols, colHit{pos: c.pos, name: c.name})
		}
	}

	sort.SliceStable(cols, func(i, j int) bool { return cols[i].pos < cols[j].pos })

	graph := types.DependencyGraph{
		Tables:         tables,
		Columns:        []string{},
		TableToColumns: map[string][]string{},
	}
	seenCols := map[string]bool{}
	seenPerTable := map[string]map[string]bool{}
	attribute := func(fullName, col string) {
		if !fullNames[fullName] {
			return
		}
		if seenPerTable[fullName] == nil {
			seenPerTable[fullName] = map[string]bool{}
		}
		if !seenPerTable[fullName][col] {
			seenPerTable[fullName][col] = true
			graph.TableToColumns[fullName] = append(graph.TableToColumns[fullName], col)
		}
	}

	for _, c := range cols {
		if !seenCols[c.name] {
			seenCols[c.name] = true
			graph.Columns = append(graph.Columns, c.name)
		}
		switch {
		case c.table != "":
			attribute(c.table, c.name)
		case len(tables) == 1:
			attribute(tables[0].FullName, c.name)
		}
	}
	return graph
}

// extractTableHits scans FROM/JOIN targets in first-seen order. The
// alias is probed after the match without consuming it, so that a bare
// JOIN following an unaliased table still starts its own match.
func extractTableHits(scrubbed string) []tableHit {
	var hits []tableHit
	for _, m := range tableRefRe.FindAllStringSubmatchIndex(scrubbed, -1) {
		raw := strings.Trim(scrubbed[m[2]:m[3]], "`")
		if raw == "" || IsKeyword(raw) {
			continue
		}
		parts := strings.Split(raw, ".")
		ref := types.TableRef{FullName: raw}
		switch len(parts) {
		case 1:
			ref.Table = parts[0]
		case 2:
			ref.Dataset = parts[0]
			ref.Table = parts[1]
		case 3:
			ref.Project = parts[0]
			ref.Dataset = parts[1]
			ref.Table = parts[2]
		default:
			continue
		}
		alias := ""
		if am := aliasRe.FindStringSubmatch(scrubbed[m[1]:]); am != nil && !IsKeyword(am[1]) {
			alias = am[1]
		}
		hits = append(hits, tableHit{ref: ref, alias: alias})
	}
	return hits
}

// extractTables returns the deduplicated table references; used by the
// structure analyzer for its table count.
func extractTables(scrubbed string) []types.TableRef {
	var tables []types.TableRef
	seen := map[string]bool{}
	for _, h := range extractTableHits(scrubbed) {
		if !seen[h.ref.FullName] {
			seen[h.ref.FullName] = true
			tables = append(tables, h.ref)
		}
	}
	return tables
}

type bareIdent struct {
	pos  int
	name string
}

// bareIdents finds plain column identifiers in scrubbed[start:end],
// skipping keywords, function names and dot-qualified parts.
func bareIdents(scrubbed string, start, end int) []bareIdent {
	section := scrubbed[start:end]
	var out []bareIdent
	for _, m := range identRe.FindAllStringIndex(section, -1) {
		name := section[m[0]:m[1]]
		absStart, absEnd := start+m[0], start+m[1]
		if IsKeyword(name) {
			continue
		}
		if adjacentToDot(scrubbed, absStart, absEnd) {
			continue
		}
		// Function call, not a column.
		if rest := scrubbed[absEnd:]; strings.HasPrefix(strings.TrimLeft(rest, " \t"), "(") {
			continue
		}
		out = append(out, bareIdent{pos: absStart, name: name})
	}
	return out
}

func adjacentToDot(s string, start, end int) bool {
	if start > 0 && s[start-1] == '.' {
		return true
	}
	if end < len(s) && s[end] == '.' {
		return true
	}
	return false
}
