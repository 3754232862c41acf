package snapshot

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSourceUnavailable is matched by every connection or command failure.
	ErrSourceUnavailable = errors.New("stats source unavailable")
	// ErrSnapshotMalformed is returned when a snapshot file lacks the expected structure.
	ErrSnapshotMalformed = errors.New("snapshot malformed")
)

// SourceError wraps a failed call to the stats source.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return "cannot " + e.Op + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is makes every SourceError match ErrSourceUnavailable.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

func sourceErrorf(err error, format string, args ...interface{}) error {
	return &SourceError{Op: fmt.Sprintf(format, args...), Err: err}
}

func malformedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSnapshotMalformed, format, args...)
}
