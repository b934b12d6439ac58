package service

import (
	"errors"
	"fmt"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}
	return busErr
}

func NewNotFound(resource string, id string) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %s не найден(а)", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

func NewValidationError(field string, reason error) *BusinessError {
	busErr := NewBusinessError(CodeValidation,
		fmt.Sprintf("Неверное значение поля '%s'", field),
		ToDetail("field", field),
		ToDetail("reason", reason.Error()),
	)
	busErr.Err = reason
	return busErr
}

func NewConflict(message string, details ...Detail) *BusinessError {
	return NewBusinessError(CodeConflict, message, details...)
}

func NewUnauthorized() *BusinessError {
	return NewBusinessError(CodeUnauthorized, "Сначала войдите под своим именем")
}

func hasCode(err error, code string) bool {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}
