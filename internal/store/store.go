// Package store provides backends for the core.Store contract: whole
// worksheets read and replaced as units, with no partial update
// primitives. Backends wrap their connection and IO failures in
// *core.UnavailableError carrying a suggested backoff; nothing here
// retries automatically.
package store

import (
	"time"

	"github.com/reportstack/consolidator/internal/core"
)

// DefaultRetryAfter is the suggested backoff attached to unavailable
// errors when the caller has not configured one.
const DefaultRetryAfter = 5 * time.Second

func unavailable(op, worksheet string, retryAfter time.Duration, err error) error {
	return &core.UnavailableError{
		Op:         op,
		Worksheet:  worksheet,
		RetryAfter: retryAfter,
		Err:        err,
	}
}
