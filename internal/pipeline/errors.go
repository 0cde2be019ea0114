package pipeline

type Kind string

const (
	// KindEmptyInput is reported as a warning; nothing was fetched.
	KindEmptyInput Kind = "empty_input"
	KindFetch      Kind = "fetch"
	KindModel      Kind = "model"
)

// Error classifies why a request did not render a summary.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
