package contract

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCriteria   = errors.New("search criteria has no usable field")
	ErrCustomerNotFound  = errors.New("no customer matched the criteria")
	ErrAmbiguousMatch    = errors.New("criteria matched more than one customer")
	ErrExtractionFailed  = errors.New("criteria extraction failed")
	ErrCompositionFailed = errors.New("answer composition failed")
	ErrUpstream          = errors.New("upstream call failed")
)

// UpstreamError is a transport or protocol failure reported by a
// collaborator. Source names the originating call, Status is the HTTP status
// if one was received (0 otherwise), and Message carries the upstream body or
// fault text. Credentials never appear in Message.
type UpstreamError struct {
	Source  string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream %s: status=%d: %s", e.Source, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s: %s", e.Source, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}
