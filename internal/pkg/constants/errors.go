package constants

import "net/http"

// CodedError ошибка с http-кодом, который отдает api.
type CodedError struct {
	msg  string
	code int
}

func NewCodedError(msg string, code int) *CodedError {
	return &CodedError{msg: msg, code: code}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound           = NewCodedError("not found", http.StatusNotFound)
	ErrUnauthorized         = NewCodedError("unauthorized", http.StatusUnauthorized)
	ErrBadRequest           = NewCodedError("bad request", http.StatusBadRequest)
	ErrInvalidPeriodToken   = NewCodedError("invalid period token", http.StatusBadRequest)
	ErrUnsupportedFrequency = NewCodedError("unsupported frequency", http.StatusBadRequest)
	ErrIncompleteMetadata   = NewCodedError("incomplete metadata", http.StatusUnprocessableEntity)
)
