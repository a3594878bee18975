package errors

import (
	"context"
)

// CheckContext returns an error if the context is canceled or timed out.
// This provides a standardized way to check and wrap context errors.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(err, Canceled, operation+" canceled")
	}
	return nil
}

// Code extracts the ErrorCode from an error chain. Non-structured errors
// report Unknown.
func Code(err error) ErrorCode {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return Unknown
		}
		err = u.Unwrap()
	}
	return Unknown
}

// IsFatal reports whether an error invalidates the whole pipeline rather
// than a single unit of work. Leakage and missing prerequisite artifacts
// abort everything; extraction, selection and generalization failures
// degrade locally.
func IsFatal(err error) bool {
	switch Code(err) {
	case LeakageDetected, MissingArtifact:
		return true
	default:
		return false
	}
}
