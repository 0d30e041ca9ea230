// ABOUTME: Command/response envelope and machine-readable error codes
// ABOUTME: The gateway never surfaces raw errors or decrypted content to callers
package gateway

import (
	"errors"

	"github.com/oakhaven/memvault/internal/logger"
	"github.com/oakhaven/memvault/internal/storage/sqlite"
)

// Error codes returned in Response.Error. Short machine-readable strings,
// never stack traces.
const (
	CodeBadArgs       = "bad_args"
	CodeValueTooLong  = "value_too_long"
	CodeInvalidRole   = "invalid_role"
	CodeNotFound      = "not_found"
	CodeHighPIIDenied = "high_pii_denied"
	CodeRateLimited   = "rate_limited"
	CodeSessionClosed = "session_closed"
	CodeStoreCorrupt  = "store_corrupt"
	CodeInternal      = "internal"
)

// Response is the uniform command result: {ok:true, data} or
// {ok:false, error:code}.
type Response struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func ok(data any) Response {
	return Response{OK: true, Data: data}
}

func fail(code string) Response {
	return Response{OK: false, Error: code}
}

// failFrom maps an internal error to its public code. The underlying error
// is logged with identifiers only.
func failFrom(op string, err error) Response {
	code := CodeInternal
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, sqlite.ErrSessionClosed):
		code = CodeSessionClosed
	case errors.Is(err, sqlite.ErrStoreCorrupt):
		code = CodeStoreCorrupt
	}
	if code == CodeInternal {
		logger.Error("gateway operation failed", "op", op, "code", code)
	} else {
		logger.Debug("gateway operation rejected", "op", op, "code", code)
	}
	return fail(code)
}
