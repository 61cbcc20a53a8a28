package domain

import "fmt"

// MalformedRecordError reports a raw field that cannot be interpreted. It
// aborts processing of the whole record set.
type MalformedRecordError struct {
	Group string
	Index int
	Field string
	Value any
	Err   error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("malformed record %s[%d]: field %q has value %#v", e.Group, e.Index, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// DateParseError reports a dataset date that none of the accepted layouts match.
type DateParseError struct {
	Index int
	Field string
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("ticket %d: cannot parse %s %q as a date", e.Index, e.Field, e.Value)
}

type UnsupportedModelError struct {
	Kind string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported model %q: must be one of regression, tree, forest", e.Kind)
}

type InvalidFeatureVectorError struct {
	Reason string
}

func (e *InvalidFeatureVectorError) Error() string {
	return "invalid feature vector: " + e.Reason
}

// InsufficientDataError is returned when the training partition is empty.
type InsufficientDataError struct {
	Total int
	Train int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d training rows out of %d examples", e.Train, e.Total)
}

type InvalidLimitError struct {
	Limit int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("invalid limit %d: must be >= 0", e.Limit)
}
