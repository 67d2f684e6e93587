package types

// StatementType classifies the leading statement of a SQL text.
type StatementType int32

const (
	StatementType_UNKNOWN StatementType = 0
	StatementType_SELECT  StatementType = 1
	StatementType_INSERT  StatementType = 2
	StatementType_UPDATE  StatementType = 3
	StatementType_DELETE  StatementType = 4
	StatementType_MERGE   StatementType = 5
	StatementType_DDL     StatementType = 6
	StatementType_SCRIPT  StatementType = 7
)

func (s StatementType) String() string {
	switch s {
	case StatementType_SELECT:
		return "SELECT"
	case StatementType_INSERT:
		return "INSERT"
	case StatementType_UPDATE:
		return "UPDATE"
	case StatementType_DELETE:
		return "DELETE"
	case StatementType_MERGE:
		return "MERGE"
	case StatementType_DDL:
		return "DDL"
	case StatementType_SCRIPT:
		return "SCRIPT"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the statement type as its name, matching the
// tool-call payload shape.
func (s StatementType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// JoinType identifies a join keyword found in the statement.
type JoinType string

const (
	JoinType_INNER JoinType = "INNER"
	JoinType_LEFT  JoinType = "LEFT"
	JoinType_RIGHT JoinType = "RIGHT"
	JoinType_FULL  JoinType = "FULL"
	JoinType_CROSS JoinType = "CROSS"
)

// ParsedQuery is the structural profile of a single SQL text.
// It is derived, immutable and recomputed per call; it is never persisted.
type ParsedQuery struct {
	StatementType      StatementType `json:"statement_type"`
	HasJoins           bool          `json:"has_joins"`
	JoinTypes          []JoinType    `json:"join_types"`
	HasSubqueries      bool          `json:"has_subqueries"`
	HasCTE             bool          `json:"has_cte"`
	HasAggregations    bool          `json:"has_aggregations"`
	HasWindowFunctions bool          `json:"has_window_functions"`
	TableCount         int           `json:"table_count"`
	FunctionsUsed      []string      `json:"functions_used"`
	ComplexityScore    int           `json:"complexity_score"`
}

// TableRef is a referenced table identifier, split into its qualified
// parts when the reference is fully qualified.
type TableRef struct {
	Project  string `json:"project,omitempty"`
	Dataset  string `json:"dataset,omitempty"`
	Table    string `json:"table"`
	FullName string `json:"full_name"`
}

// DependencyGraph maps the tables and columns a statement touches.
//
// Tables are deduplicated by FullName in first-seen order. Columns are
// deduplicated case-preserved in first-seen order. TableToColumns only
// carries attributions the extractor is confident about; ambiguous
// unqualified columns in multi-table statements stay out of the mapping
// but remain in Columns.
type DependencyGraph struct {
	Tables         []TableRef          `json:"tables"`
	Columns        []string            `json:"columns"`
	TableToColumns map[string][]string `json:"dependency_graph"`
}

// Severity grades an advisory issue.
type Severity string

const (
	Severity_INFO    Severity = "info"
	Severity_WARNING Severity = "warning"
	Severity_ERROR   Severity = "error"
)

// Issue is a single advisory finding over a statement.
type Issue struct {
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Suggestion carries the remediation text paired with an issue.
type Suggestion struct {
	Text string `json:"text"`
}

// DialectFlags report use of BigQuery-specific language extensions.
type DialectFlags struct {
	UsesLegacySyntax bool `json:"uses_legacy_sql"`
	UsesArraySyntax  bool `json:"has_array_syntax"`
	UsesStructSyntax bool `json:"has_struct_syntax"`
}

// ValidationResult is the outcome of local heuristic validation.
//
// IsValid reflects local checks only (balanced parens/quotes, non-empty
// statement, no error-grade findings). The warehouse dry-run remains the
// authority on actual syntax correctness.
type ValidationResult struct {
	IsValid     bool         `json:"is_valid"`
	Issues      []Issue      `json:"issues"`
	Suggestions []Suggestion `json:"suggestions"`
	Dialect     DialectFlags `json:"bigquery_specific"`
}

// Rating buckets a performance score.
type Rating string

const (
	Rating_EXCELLENT          Rating = "EXCELLENT"
	Rating_GOOD               Rating = "GOOD"
	Rating_FAIR               Rating = "FAIR"
	Rating_NEEDS_OPTIMIZATION Rating = "NEEDS_OPTIMIZATION"
)

// SuggestionSeverity grades an optimization suggestion by its penalty weight.
type SuggestionSeverity string

const (
	SuggestionSeverity_LOW    SuggestionSeverity = "LOW"
	SuggestionSeverity_MEDIUM SuggestionSeverity = "MEDIUM"
	SuggestionSeverity_HIGH   SuggestionSeverity = "HIGH"
)

// PerfSuggestion is one ranked optimization suggestion.
type PerfSuggestion struct {
	Type           string             `json:"type"`
	Severity       SuggestionSeverity `json:"severity"`
	Message        string             `json:"message"`
	Recommendation string             `json:"recommendation"`
}

// PerformanceReport fuses structural analysis with warehouse-reported
// byte volume into a score, a rating bucket and ranked suggestions.
type PerformanceReport struct {
	Score           int              `json:"score"`
	Rating          Rating           `json:"rating"`
	Suggestions     []PerfSuggestion `json:"suggestions"`
	BytesScanned    int64            `json:"bytes_scanned"`
	CostEstimateUSD float64          `json:"cost_estimate_usd"`
}

// ErrorKind is the stable taxonomy for upstream failures.
type ErrorKind string

const (
	ErrorKind_INVALID_SQL          ErrorKind = "INVALID_SQL"
	ErrorKind_AUTHENTICATION_ERROR ErrorKind = "AUTHENTICATION_ERROR"
	ErrorKind_PERMISSION_DENIED    ErrorKind = "PERMISSION_DENIED"
	ErrorKind_UNKNOWN_ERROR        ErrorKind = "UNKNOWN_ERROR"
)

// ErrorLocation is a 1-based line/column position extracted from an
// upstream error message.
type ErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// NormalizedError is the single error shape every tool call reports.
type NormalizedError struct {
	Kind     ErrorKind      `json:"code"`
	Message  string         `json:"message"`
	Location *ErrorLocation `json:"location,omitempty"`
	Details  []any          `json:"details,omitempty"`
}

// SchemaField is one column of a dry-run result schema preview.
type SchemaField struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Mode string `json:"mode"`
}
