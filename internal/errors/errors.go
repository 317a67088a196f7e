package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError структурированная ошибка приложения
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Коды ошибок
const (
	CodeDecodeError     = "DECODE_ERROR"
	CodeEncodeError     = "ENCODE_ERROR"
	CodeMissingInput    = "MISSING_INPUT"
	CodeProcessingError = "PROCESSING_ERROR"
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeInputTooLarge   = "INPUT_TOO_LARGE"
	CodeInternalError   = "INTERNAL_ERROR"
)

// New создаёт AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf создаёт AppError с форматированным сообщением
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// WithCode оборачивает ошибку с явным кодом
func WithCode(code string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// GetCode возвращает код ближайшей AppError в цепочке или INTERNAL_ERROR
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

func DecodeError(source string, cause error) *AppError {
	return &AppError{
		Code:    CodeDecodeError,
		Message: fmt.Sprintf("ошибка чтения файла %s", source),
		Cause:   cause,
	}
}

func EncodeError(cause error) *AppError {
	return &AppError{
		Code:    CodeEncodeError,
		Message: "ошибка формирования файла результата",
		Cause:   cause,
	}
}

func MissingInput(message string) *AppError {
	return New(CodeMissingInput, message)
}

func ProcessingError(message string) *AppError {
	return New(CodeProcessingError, message)
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InputTooLarge(limit int64, cause error) *AppError {
	return &AppError{
		Code:    CodeInputTooLarge,
		Message: fmt.Sprintf("размер загрузки превышает %d байт", limit),
		Cause:   cause,
	}
}
