package watch

import "fmt"

// FetchError marks a failure to produce rendered markup: navigation
// timeout, network failure, or browser launch failure. It aborts one
// poll cycle and nothing more.
type FetchError struct {
	URL string
	Err error
}

// NewFetchError wraps a cause with the URL being fetched.
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}
