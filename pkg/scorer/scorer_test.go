package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/bq-inspector/pkg/analyzer"
	"github.com/nsxbet/bq-inspector/pkg/config"
	"github.com/nsxbet/bq-inspector/pkg/types"
)

func suggestionTypes(report types.PerformanceReport) []string {
	out := make([]string, 0, len(report.Suggestions))
	for _, s := range report.Suggestions {
		out = append(out, s.Type)
	}
	return out
}

func TestRatingBands(t *testing.T) {
	tests := []struct {
		score int
		want  types.Rating
	}{
		{100, types.Rating_EXCELLENT},
		{85, types.Rating_EXCELLENT},
		{84, types.Rating_GOOD},
		{65, types.Rating_GOOD},
		{64, types.Rating_FAIR},
		{40, types.Rating_FAIR},
		{39, types.Rating_NEEDS_OPTIMIZATION},
		{0, types.Rating_NEEDS_OPTIMIZATION},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatingFor(tt.score), "score %d", tt.score)
	}
}

func TestScoreCleanQuery(t *testing.T) {
	sql := "SELECT id, name FROM `ds.users` WHERE created_at > '2026-01-01'"
	report := Score(sql, analyzer.Analyze(sql), 1024, 1, 5.0, nil)

	assert.Equal(t, 100, report.Score)
	assert.Equal(t, types.Rating_EXCELLENT, report.Rating)
	assert.Empty(t, report.Suggestions)
	assert.Equal(t, int64(1024), report.BytesScanned)
}

func TestScoreSelectStarOverLargeTable(t *testing.T) {
	sql := "SELECT * FROM large_table"
	bytes := int64(107374182400) // 100 GiB reported by the dry-run
	report := Score(sql, analyzer.Analyze(sql), bytes, 1, 5.0, nil)

	assert.Contains(t, suggestionTypes(report), SuggestionSelectStar)
	assert.Contains(t, suggestionTypes(report), SuggestionHighDataScan)
	assert.NotEqual(t, types.Rating_EXCELLENT, report.Rating)
	assert.Equal(t, 0.488281, report.CostEstimateUSD)
}

func TestScorePenalties(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		bytes      int64
		tableCount int
		wantTypes  []string
	}{
		{
			"three joins",
			"SELECT a.x FROM a JOIN b ON a.i=b.i JOIN c ON a.i=c.i JOIN d ON a.i=d.i",
			0, 4,
			[]string{SuggestionManyJoins},
		},
		{
			"cross join",
			"SELECT a.x FROM a CROSS JOIN b WHERE a.i = 1",
			0, 2,
			[]string{SuggestionCrossJoin},
		},
		{
			"subquery in where",
			"SELECT id FROM t WHERE id IN (SELECT user_id FROM s)",
			0, 1,
			[]string{SuggestionSubqueryInWhere},
		},
		{
			"table fan-out",
			"SELECT a.x FROM a WHERE a.i = 1",
			0, 9,
			[]string{SuggestionManyTables},
		},
		{
			"limit without order",
			"SELECT id FROM t WHERE id > 0 LIMIT 10",
			0, 1,
			[]string{SuggestionLimitWithoutOrder},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Score(tt.sql, analyzer.Analyze(tt.sql), tt.bytes, tt.tableCount, 5.0, nil)
			got := suggestionTypes(report)
			for _, want := range tt.wantTypes {
				assert.Contains(t, got, want)
			}
			assert.Less(t, report.Score, 100)
		})
	}
}

func TestScoreSubqueryInFromDoesNotCount(t *testing.T) {
	sql := "SELECT x FROM (SELECT id AS x FROM t) WHERE x > 0"
	report := Score(sql, analyzer.Analyze(sql), 0, 1, 5.0, nil)
	assert.NotContains(t, suggestionTypes(report), SuggestionSubqueryInWhere)
}

func TestScoreHighScanThresholdIsExclusive(t *testing.T) {
	cfg := config.Default()
	sql := "SELECT id FROM t WHERE id = 1"

	at := Score(sql, analyzer.Analyze(sql), cfg.HighVolumeBytes, 1, 5.0, cfg)
	assert.NotContains(t, suggestionTypes(at), SuggestionHighDataScan)

	over := Score(sql, analyzer.Analyze(sql), cfg.HighVolumeBytes+1, 1, 5.0, cfg)
	assert.Contains(t, suggestionTypes(over), SuggestionHighDataScan)
}

func TestScoreHighScanPenaltyGrowsWithVolume(t *testing.T) {
	cfg := config.Default()
	sql := "SELECT id FROM t WHERE id = 1"

	mild := Score(sql, analyzer.Analyze(sql), cfg.HighVolumeBytes*2, 1, 5.0, cfg)
	severe := Score(sql, analyzer.Analyze(sql), cfg.HighVolumeBytes*1000, 1, 5.0, cfg)
	assert.Greater(t, mild.Score, severe.Score)
}

func TestScoreClampsAtZero(t *testing.T) {
	sql := `SELECT * FROM a
		CROSS JOIN b
		JOIN c ON a.i = c.i
		JOIN d ON a.i = d.i
		JOIN e ON a.i = e.i
		WHERE a.i IN (SELECT i FROM f) AND a.j IN (SELECT j FROM g) AND a.k IN (SELECT k FROM h)
		LIMIT 10`
	report := Score(sql, analyzer.Analyze(sql), 1<<50, 12, 5.0, nil)

	assert.Equal(t, 0, report.Score)
	assert.Equal(t, types.Rating_NEEDS_OPTIMIZATION, report.Rating)
}

func TestScoreSeverities(t *testing.T) {
	sql := "SELECT * FROM t WHERE id = 1"
	report := Score(sql, analyzer.Analyze(sql), 0, 1, 5.0, nil)

	require.Len(t, report.Suggestions, 1)
	assert.Equal(t, SuggestionSelectStar, report.Suggestions[0].Type)
	assert.Equal(t, types.SuggestionSeverity_HIGH, report.Suggestions[0].Severity)
}

func TestScoreDeterministic(t *testing.T) {
	sql := "SELECT * FROM a JOIN b ON a.i = b.i JOIN c ON a.i = c.i WHERE a.i IN (SELECT i FROM d) LIMIT 5"
	pq := analyzer.Analyze(sql)

	first := Score(sql, pq, 1<<41, 4, 5.0, nil)
	second := Score(sql, pq, 1<<41, 4, 5.0, nil)
	assert.Equal(t, first, second)
}

func TestScoreNegativeBytesTreatedAsZero(t *testing.T) {
	sql := "SELECT id FROM t WHERE id = 1"
	report := Score(sql, analyzer.Analyze(sql), -1, 1, 5.0, nil)
	assert.Equal(t, int64(0), report.BytesScanned)
	assert.Equal(t, 0.0, report.CostEstimateUSD)
}

func TestScoreDefaultPriceFallback(t *testing.T) {
	report := Score("SELECT id FROM t WHERE id = 1", types.ParsedQuery{}, 1<<40, 1, 0, nil)
	assert.Equal(t, 5.0, report.CostEstimateUSD)
}
