package normcache

import (
	"errors"
	"fmt"
)

// ErrValueMissing is returned by Storage.Get when the key is absent.
// It is a routine control-flow signal, not a failure.
var ErrValueMissing = errors.New("normcache: value missing")

// ConfigurationError reports an unusable Cache configuration at
// construction time. The cache must not be used after one is returned.
type ConfigurationError struct {
	Reason string
}

func (err *ConfigurationError) Error() string {
	return "normcache: " + err.Reason
}

// CorruptRecordError reports a stored value the Codec could not decode.
// It is local to Key: the affected key is treated as a cache miss, other
// records are unaffected.
type CorruptRecordError struct {
	Key string
	Err error
}

func (err *CorruptRecordError) Error() string {
	return fmt.Sprintf("normcache: corrupt record %q: %s", err.Key, err.Err.Error())
}

func (err *CorruptRecordError) Unwrap() error {
	return err.Err
}

// DanglingReferenceError reports a record that references a key with no
// stored target. The referencing read observes a miss; the error itself is
// only surfaced through the diagnostic log.
type DanglingReferenceError struct {
	From string
	To   string
	Path string
}

func (err *DanglingReferenceError) Error() string {
	return fmt.Sprintf("normcache: dangling reference %s -> %s at %s", err.From, err.To, err.Path)
}

// MultiError collects per-record errors from bulk operations such as
// Restore. The operation applies every entry it can; the MultiError names
// the ones it could not.
type MultiError []error

func (merr MultiError) Error() string {
	s, n := "", 0
	for _, err := range merr {
		if err == nil {
			continue
		}
		if n == 0 {
			s = err.Error()
		}
		n++
	}
	switch n {
	case 0:
		return "(0 errors)"
	case 1:
		return s
	case 2:
		return s + " (and 1 other error)"
	}
	return fmt.Sprintf("%s (and %d other errors)", s, n-1)
}
