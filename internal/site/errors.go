package site

import (
	"errors"
	"fmt"
)

// DocumentError reports a document whose build failed.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// BuildError collects the documents that failed in one build. Documents not
// listed were written.
type BuildError struct {
	Failures []*DocumentError
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed for %d document(s):\n%v", len(e.Failures), errors.Join(e.Unwrap()...))
}

func (e *BuildError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}

	return errs
}
