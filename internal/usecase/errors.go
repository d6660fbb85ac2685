package usecase

import "errors"

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnknownField    = "UNKNOWN_FIELD"
	CodeInvalidValue    = "INVALID_VALUE"
	CodeFormCompleted   = "FORM_COMPLETED"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeDatabase        = "DATABASE_ERROR"
)

type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// ErrorCode returns the DomainError/TechnicalError code carried by err, or "".
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

var ErrFormCompleted = &DomainError{
	Code:    CodeFormCompleted,
	Message: "formulário já foi enviado",
}
