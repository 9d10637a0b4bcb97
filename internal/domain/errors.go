package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrMalformedValue   = errors.New("malformed value")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrMissingFeature   = errors.New("missing feature")
	ErrArtifactNotFound = errors.New("artifact not found")
)

// SchemaError reports columns a table or record was expected to carry.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: missing column(s) %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaMismatch }

// ValueError reports a cell that could not be interpreted. Row is -1 when
// the value did not come from a table.
type ValueError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *ValueError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("malformed %s %q: %s", e.Column, e.Value, e.Reason)
	}
	return fmt.Sprintf("row %d: malformed %s %q: %s", e.Row, e.Column, e.Value, e.Reason)
}

func (e *ValueError) Is(target error) bool { return target == ErrMalformedValue }

// CategoryError reports a categorical value absent from a fitted encoder.
type CategoryError struct {
	Column string
	Value  string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for column %s", e.Value, e.Column)
}

func (e *CategoryError) Is(target error) bool { return target == ErrUnknownCategory }

// FeatureError reports model inputs absent from a feature vector.
type FeatureError struct {
	Missing []string
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("missing feature(s) %s", strings.Join(e.Missing, ", "))
}

func (e *FeatureError) Is(target error) bool { return target == ErrMissingFeature }
