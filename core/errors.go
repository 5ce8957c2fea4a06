package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field,
// such as an assignment target that is not a student.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is an input error found by a service after the payload itself validated,
// typically a reference to a missing class, learner or workbook.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// FieldValidationError is a shortcut for a ValidationError on a single field.
func FieldValidationError(field string, err error) error {
	return NewValidationError(err, FieldError{Field: field, Error: err.Error()})
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldMap returns the field errors keyed by field, nil if there are none.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	flds := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

type shutdown struct {
	message string
}

// NewShutdownError reports a failure after which the API server must stop, like a lost database.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
