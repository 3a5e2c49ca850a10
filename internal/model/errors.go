package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySource is returned when a source has no header row
var ErrEmptySource = errors.New("source has no header row")

// LoadError wraps a failure to open or parse a source file
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// MissingColumnsError reports required columns absent from a dataset
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}
