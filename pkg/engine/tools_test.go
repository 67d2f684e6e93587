package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsxbet/bq-inspector/pkg/types"
	"github.com/nsxbet/bq-inspector/pkg/warehouse"
)

func TestToolsCatalog(t *testing.T) {
	e := New(nil, nil, nil)
	tools := e.Tools()
	require.Len(t, tools, 6)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
		require.NotNil(t, tool.InputSchema)
		assert.Equal(t, []string{"sql"}, tool.InputSchema["required"])
	}
	assert.Equal(t, []string{
		ToolValidateSQL,
		ToolDryRunSQL,
		ToolAnalyzeQueryStructure,
		ToolExtractDependencies,
		ToolValidateQuerySyntax,
		ToolAnalyzeQueryPerformance,
	}, names)
}

func TestCallToolUnknownName(t *testing.T) {
	e := New(nil, nil, nil)
	_, err := e.CallTool(context.Background(), "bq_do_magic", nil)
	assert.Error(t, err)
}

func TestCallToolMalformedArguments(t *testing.T) {
	e := New(nil, nil, nil)
	_, err := e.CallTool(context.Background(), ToolAnalyzeQueryStructure, json.RawMessage(`{not json`))
	assert.Error(t, err)
}

func TestCallToolStructure(t *testing.T) {
	e := New(nil, nil, nil)

	payload, err := e.CallTool(context.Background(), ToolAnalyzeQueryStructure,
		json.RawMessage(`{"sql": "SELECT a.x FROM a JOIN b ON a.i = b.i"}`))
	require.NoError(t, err)

	pq, ok := payload.(types.ParsedQuery)
	require.True(t, ok)
	assert.True(t, pq.HasJoins)
	assert.Equal(t, types.StatementType_SELECT, pq.StatementType)
}

func TestCallToolDependencies(t *testing.T) {
	e := New(nil, nil, nil)

	payload, err := e.CallTool(context.Background(), ToolExtractDependencies,
		json.RawMessage(`{"sql": "SELECT u.name FROM users u"}`))
	require.NoError(t, err)

	deps, ok := payload.(DependenciesResponse)
	require.True(t, ok)
	assert.Equal(t, 1, deps.TableCount)
	assert.Contains(t, deps.Columns, "name")
}

func TestCallToolSyntaxValidation(t *testing.T) {
	e := New(nil, nil, nil)

	payload, err := e.CallTool(context.Background(), ToolValidateQuerySyntax,
		json.RawMessage(`{"sql": "SELECT * FROM `+"`ds.users`"+` WHERE id = 1"}`))
	require.NoError(t, err)

	result, ok := payload.(types.ValidationResult)
	require.True(t, ok)
	assert.True(t, result.IsValid)
	assert.NotEmpty(t, result.Issues)
}

func TestCallToolValidateSQL(t *testing.T) {
	e := New(nil, fixedRunner(&warehouse.DryRunResult{BytesScanned: 1}), nil)

	payload, err := e.CallTool(context.Background(), ToolValidateSQL,
		json.RawMessage(`{"sql": "SELECT 1"}`))
	require.NoError(t, err)

	resp, ok := payload.(ValidateSQLResponse)
	require.True(t, ok)
	assert.True(t, resp.IsValid)
}

func TestCallToolDryRunErrorEnvelope(t *testing.T) {
	e := New(nil, failingRunner(&warehouse.UpstreamError{
		Reason:  "notFound",
		Message: "Table not found: ds.missing",
	}), nil)

	payload, err := e.CallTool(context.Background(), ToolDryRunSQL,
		json.RawMessage(`{"sql": "SELECT id FROM `+"`ds.missing`"+`"}`))
	require.NoError(t, err, "operation failures come back as envelopes, not errors")

	env, ok := payload.(ErrorEnvelope)
	require.True(t, ok)
	require.NotNil(t, env.Error)
	assert.Equal(t, types.ErrorKind_INVALID_SQL, env.Error.Kind)
	assert.Contains(t, env.Error.Message, "Please verify the table exists")
}

func TestCallToolDryRunPriceArgument(t *testing.T) {
	e := New(nil, fixedRunner(&warehouse.DryRunResult{BytesScanned: 1 << 40}), nil)

	payload, err := e.CallTool(context.Background(), ToolDryRunSQL,
		json.RawMessage(`{"sql": "SELECT 1", "pricePerTiB": 2.5}`))
	require.NoError(t, err)

	resp, ok := payload.(*DryRunResponse)
	require.True(t, ok)
	assert.Equal(t, 2.5, resp.USDEstimate)
}

func TestCallToolPerformance(t *testing.T) {
	e := New(nil, fixedRunner(&warehouse.DryRunResult{BytesScanned: 512}), nil)

	payload, err := e.CallTool(context.Background(), ToolAnalyzeQueryPerformance,
		json.RawMessage(`{"sql": "SELECT id FROM `+"`ds.users`"+` WHERE id = 1"}`))
	require.NoError(t, err)

	resp, ok := payload.(*PerformanceResponse)
	require.True(t, ok)
	assert.Equal(t, 100, resp.PerformanceScore)
	assert.Equal(t, types.Rating_EXCELLENT, resp.PerformanceRating)
}

func TestCallToolPayloadsMarshal(t *testing.T) {
	e := New(nil, fixedRunner(&warehouse.DryRunResult{BytesScanned: 1}), nil)
	calls := []struct {
		tool string
		args string
	}{
		{ToolValidateSQL, `{"sql": "SELECT 1"}`},
		{ToolDryRunSQL, `{"sql": "SELECT 1"}`},
		{ToolAnalyzeQueryStructure, `{"sql": "SELECT 1"}`},
		{ToolExtractDependencies, `{"sql": "SELECT id FROM t"}`},
		{ToolValidateQuerySyntax, `{"sql": "SELECT 1"}`},
		{ToolAnalyzeQueryPerformance, `{"sql": "SELECT 1"}`},
	}
	for _, c := range calls {
		payload, err := e.CallTool(context.Background(), c.tool, json.RawMessage(c.args))
		require.NoError(t, err, c.tool)
		_, err = json.Marshal(payload)
		require.NoError(t, err, c.tool)
	}
}
