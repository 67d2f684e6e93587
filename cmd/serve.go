package cmd

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nsxbet/bq-inspector/pkg/types"
	"github.com/nsxbet/bq-inspector/pkg/warehouse"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis tools over stdio",
	Long: `Serve reads newline-delimited JSON tool requests on stdin and
writes one JSON response per request on stdout. Logs go to stderr.

Request shape:  {"id": 1, "tool": "bq_validate_query_syntax", "arguments": {"sql": "SELECT 1"}}
Response shape: {"id": 1, "result": {...}} or {"id": 1, "error": {...}}

The special tool name "list_tools" returns the tool catalogue. Tools
that need a warehouse dry-run report an error unless the embedding
environment provides an executor; the offline analysis tools always
work.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type toolRequest struct {
	ID        json.RawMessage `json:"id"`
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolResponse struct {
	ID     json.RawMessage        `json:"id,omitempty"`
	Result any                    `json:"result,omitempty"`
	Error  *types.NormalizedError `json:"error,omitempty"`
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := newEngineFromFlags(serveRunner())
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req toolRequest
		if err := json.Unmarshal(line, &req); err != nil {
			_ = encoder.Encode(toolResponse{Error: &types.NormalizedError{
				Kind:    types.ErrorKind_UNKNOWN_ERROR,
				Message: "malformed request: " + err.Error(),
			}})
			continue
		}

		resp := toolResponse{ID: req.ID}
		if req.Tool == "list_tools" {
			resp.Result = eng.Tools()
		} else {
			result, err := eng.CallTool(cmd.Context(), req.Tool, req.Arguments)
			if err != nil {
				resp.Error = &types.NormalizedError{
					Kind:    types.ErrorKind_UNKNOWN_ERROR,
					Message: err.Error(),
				}
			} else {
				resp.Result = result
			}
		}
		if err := encoder.Encode(resp); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	}
	return scanner.Err()
}

// serveRunner returns the dry-run executor for serve mode. The binary
// ships without a warehouse client; embedders wire a real executor
// through the engine API instead.
func serveRunner() warehouse.DryRunner {
	return nil
}
