package article

import "fmt"

type Reason string

const (
	ReasonInvalidURL  Reason = "invalid_url"
	ReasonUnreachable Reason = "unreachable"
	ReasonNoContent   Reason = "no_content"
)

// FetchError is returned by Fetcher for every failure.
type FetchError struct {
	Reason Reason
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("fetch article (%s): %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("fetch article %s (%s): %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchError(reason Reason, rawURL string, err error) *FetchError {
	return &FetchError{Reason: reason, URL: rawURL, Err: err}
}
