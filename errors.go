package fluent

import "fmt"

// IOError reports a transport-level failure: connection errors, timeouts,
// or a failure while reading the response payload. It is never retried.
type IOError struct {
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("fluent: transport error: %v", e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// MappingError reports a structured-data encode or decode failure. It is
// never retried.
type MappingError struct {
	Err error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("fluent: mapping error: %v", e.Err)
}

func (e *MappingError) Unwrap() error { return e.Err }
