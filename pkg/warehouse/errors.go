package warehouse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nsxbet/bq-inspector/pkg/types"
)

// BigQuery embeds the error position in the message as [line:column].
var locationRe = regexp.MustCompile(`\[(\d+):(\d+)\]`)

// ExtractLocation scans an upstream error message for a [line:column]
// marker and returns the first one, 1-based. It returns nil when the
// message carries no position.
func ExtractLocation(message string) *types.ErrorLocation {
	m := locationRe.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	line, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	column, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	return &types.ErrorLocation{Line: line, Column: column}
}

// NormalizeKind maps an upstream reason string (and, as a fallback, the
// message text) to the stable error taxonomy. Unmapped reasons become
// UNKNOWN_ERROR rather than failing: normalization always produces a
// reportable kind.
func NormalizeKind(reason, message string) types.ErrorKind {
	switch reason {
	case "accessDenied", "responseTooLarge", "quotaExceeded":
		return types.ErrorKind_PERMISSION_DENIED
	case "invalidQuery", "invalid", "notFound", "badRequest", "resourcesExceeded":
		return types.ErrorKind_INVALID_SQL
	case "authError", "unauthenticated", "invalidCredentials":
		return types.ErrorKind_AUTHENTICATION_ERROR
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "credential") || strings.Contains(lower, "could not find default"):
		return types.ErrorKind_AUTHENTICATION_ERROR
	case strings.Contains(lower, "permission"):
		return types.ErrorKind_PERMISSION_DENIED
	default:
		return types.ErrorKind_UNKNOWN_ERROR
	}
}

// Normalize converts any executor failure into the single error shape
// tool calls report. It never fails and never returns nil for a
// non-nil error.
func Normalize(err error) *types.NormalizedError {
	if err == nil {
		return nil
	}

	if ue, ok := err.(*UpstreamError); ok {
		ne := &types.NormalizedError{
			Kind:     NormalizeKind(ue.Reason, ue.Message),
			Message:  clarifyMessage(ue.Message, NormalizeKind(ue.Reason, ue.Message)),
			Location: ExtractLocation(ue.Message),
			Details:  ue.Details,
		}
		return ne
	}

	message := err.Error()
	return &types.NormalizedError{
		Kind:    NormalizeKind("", message),
		Message: clarifyMessage(message, NormalizeKind("", message)),
	}
}

// clarifyMessage augments well-known upstream messages with the next
// step the caller should take.
func clarifyMessage(message string, kind types.ErrorKind) string {
	switch {
	case strings.Contains(message, "Table not found"):
		return message + ". Please verify the table exists and you have access."
	case strings.Contains(message, "Column not found"):
		return message + ". Please check column names and spelling."
	case kind == types.ErrorKind_AUTHENTICATION_ERROR:
		return message + ". Please run 'gcloud auth application-default login' to set up credentials."
	case kind == types.ErrorKind_PERMISSION_DENIED && strings.Contains(strings.ToLower(message), "permission"):
		return message + ". Please verify you have the necessary BigQuery permissions."
	default:
		return message
	}
}
