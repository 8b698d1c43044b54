package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration and input validation
var (
	// ErrUnknownSpec is returned when a specification name is not in the registry
	ErrUnknownSpec = errors.New("unknown specification")

	// ErrFilterFlags is returned when sample filtering is requested without choosing a side
	ErrFilterFlags = errors.New("invalid filter flags")

	// ErrMissingColumn is returned when a workbook lacks a configured column
	ErrMissingColumn = errors.New("missing column")

	// ErrInvalidRow is returned when a workbook row cannot be turned into a sentence
	ErrInvalidRow = errors.New("invalid row")

	// ErrInvalidThreshold is returned for an inclusion threshold outside [0, 1]
	ErrInvalidThreshold = errors.New("threshold must be within [0, 1]")
)

// UnknownSpecError names the specification that could not be resolved
type UnknownSpecError struct {
	Name  string
	Known []string
}

func (e *UnknownSpecError) Error() string {
	return fmt.Sprintf("unknown specification %q (known: %v)", e.Name, e.Known)
}

func (e *UnknownSpecError) Is(target error) bool {
	return target == ErrUnknownSpec
}

// MissingColumnError names the header that was not found in a sheet
type MissingColumnError struct {
	Column string
	Sheet  string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in sheet %q", e.Column, e.Sheet)
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// InvalidRowError reports a malformed workbook row (1-based, as shown by spreadsheet tools)
type InvalidRowError struct {
	Row    int
	Reason string
}

func (e *InvalidRowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *InvalidRowError) Is(target error) bool {
	return target == ErrInvalidRow
}
