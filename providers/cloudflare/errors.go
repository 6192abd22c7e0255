package cloudflare

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	// ErrNetwork indicates a transport-level failure talking to the API.
	ErrNetwork = errors.New("network error")

	// ErrParse indicates the response did not have the expected shape, or an
	// expected field was absent or mistyped.
	ErrParse = errors.New("parse error")

	// ErrEmptyResponse indicates the API returned no result payload.
	ErrEmptyResponse = errors.New("empty response")

	// ErrUnsuccessful indicates the API reported failure, or a lookup that
	// must match exactly one entity matched zero or several.
	ErrUnsuccessful = errors.New("unsuccessful")
)

// RequestError describes a failed API call. It keeps the request URL and the
// raw response body for diagnostics and unwraps to both its kind and cause.
type RequestError struct {
	Method    string
	URL       string
	Status    int
	Body      []byte
	APIErrors []APIError
	Kind      error
	Err       error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %v", e.Method, e.URL, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	for _, apiErr := range e.APIErrors {
		fmt.Fprintf(&b, ": %s", apiErr)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// MatchError is returned by ResolveUnique when the predicate matched zero or
// more than one candidate. Candidates holds the full unfiltered set.
type MatchError struct {
	Want       string
	Matches    int
	Candidates []Record
}

func (e *MatchError) Error() string {
	if e.Matches == 0 {
		return fmt.Sprintf("no match for %s among %d candidates", e.Want, len(e.Candidates))
	}
	return fmt.Sprintf("%d matches for %s among %d candidates, expected exactly one",
		e.Matches, e.Want, len(e.Candidates))
}

// Is reports MatchError as an ErrUnsuccessful.
func (e *MatchError) Is(target error) bool {
	return target == ErrUnsuccessful
}

// IsNetwork returns true if the error is a transport-level failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsParse returns true if the error indicates a malformed response.
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsEmptyResponse returns true if the API returned no result.
func IsEmptyResponse(err error) bool {
	return errors.Is(err, ErrEmptyResponse)
}

// IsUnsuccessful returns true if the API reported failure or a unique lookup
// was ambiguous.
func IsUnsuccessful(err error) bool {
	return errors.Is(err, ErrUnsuccessful)
}
