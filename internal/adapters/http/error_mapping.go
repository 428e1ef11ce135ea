package httpadapter

import (
	"github.com/rsnlabs/docbase/internal/core/domain"
)

// messageFor keeps engine and driver detail out of client-facing messages.
// The full chain still lands in the access log.
func messageFor(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid request"
	case domain.IsKind(err, domain.ErrUnsupportedFormat):
		return "unsupported file format"
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return "no data found"
	case domain.IsKind(err, domain.ErrTemporary):
		return "service temporarily unavailable, try again"
	default:
		return "internal error"
	}
}

// searchMessageFor surfaces the engine's own reason for a failed search so
// callers can tell a dead collection from a dead embedder. Input validation
// and transient failures keep the generic wording.
func searchMessageFor(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid request"
	case domain.IsKind(err, domain.ErrTemporary):
		return "service temporarily unavailable, try again"
	default:
		return err.Error()
	}
}
