package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/damon-houk/fxconv/internal/domain/entity"
)

// ErrorKind classifies a failed upstream call
type ErrorKind string

const (
	// KindMissingCredential means no access key is configured
	KindMissingCredential ErrorKind = "missing_credential"
	// KindUnauthorized means the access key was rejected (401)
	KindUnauthorized ErrorKind = "unauthorized"
	// KindRateLimited means the upstream asked us to slow down (429)
	KindRateLimited ErrorKind = "rate_limited"
	// KindUpstream covers every other error status
	KindUpstream ErrorKind = "upstream_error"
	// KindTransport means the request never produced a response
	KindTransport ErrorKind = "transport"
	// KindMalformed means the response body did not have the expected shape
	KindMalformed ErrorKind = "malformed_response"
)

// APIError describes a failed call to the exchange rate API
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Info       string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Info != "":
		return fmt.Sprintf("exchange rate API %s (%d): %s", e.Kind, e.StatusCode, e.Info)
	case e.StatusCode != 0:
		return fmt.Sprintf("exchange rate API %s (%d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("exchange rate API %s: %v", e.Kind, e.Err)
	case e.Info != "":
		return fmt.Sprintf("exchange rate API %s: %s", e.Kind, e.Info)
	default:
		return fmt.Sprintf("exchange rate API %s", e.Kind)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// kindForStatus maps an HTTP status to an error kind
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindUpstream
	}
}

// kindForCode maps the error codes the API reports inside a 200 body
// ({"success": false, "error": {"code": 101, ...}}) to an error kind.
func kindForCode(code int64) ErrorKind {
	switch code {
	case 101, 102, 401:
		return KindUnauthorized
	case 104, 106, 429:
		return KindRateLimited
	default:
		return KindUpstream
	}
}

// KindOf returns the kind of an API error, or KindTransport for anything else
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// ReasonFor maps a failed upstream call to the reason recorded on a fallback
// snapshot. Errors that are not APIErrors count as transport failures.
func ReasonFor(err error) entity.Reason {
	switch KindOf(err) {
	case KindMissingCredential:
		return entity.ReasonMissingCredential
	case KindUnauthorized:
		return entity.ReasonUnauthorized
	case KindRateLimited:
		return entity.ReasonRateLimited
	case KindUpstream:
		return entity.ReasonUpstreamError
	case KindMalformed:
		return entity.ReasonMalformedResponse
	default:
		return entity.ReasonTransport
	}
}
