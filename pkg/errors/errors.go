// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeValidation         ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1002"
	CodeInternalError      ErrorCode = "1003"
	CodeServiceUnavailable ErrorCode = "1004"

	// 配置错误 (2xxx)
	CodeMissingCredential ErrorCode = "2001"

	// 生成流水线错误 (4xxx)
	CodeGenerationFailed      ErrorCode = "4001"
	CodeMalformedQuizData     ErrorCode = "4002"
	CodeNoVoiceForGender      ErrorCode = "4003"
	CodeImageBlocked          ErrorCode = "4004"
	CodeImageGenerationFailed ErrorCode = "4005"

	// 外部服务错误 (5xxx)
	CodeVoiceFetchFailed ErrorCode = "5001"
	CodeSynthesisFailed  ErrorCode = "5002"
	CodeProviderError    ErrorCode = "5003"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 支持 errors.Is 按错误码匹配
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithDetail 添加详细信息；返回副本，预定义错误可安全复用
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误；返回副本，预定义错误可安全复用
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeValidation, CodeNoVoiceForGender:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMalformedQuizData, CodeImageBlocked:
		return http.StatusUnprocessableEntity
	case CodeGenerationFailed, CodeImageGenerationFailed,
		CodeVoiceFetchFailed, CodeSynthesisFailed, CodeProviderError:
		return http.StatusBadGateway
	case CodeMissingCredential, CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrValidation        = New(CodeValidation, "invalid request")
	ErrNotFound          = New(CodeNotFound, "resource not found")
	ErrInternalError     = New(CodeInternalError, "internal server error")
	ErrMissingCredential = New(CodeMissingCredential, "provider credential not configured")

	ErrGenerationFailed  = New(CodeGenerationFailed, "story generation failed")
	ErrMalformedQuizData = New(CodeMalformedQuizData, "provider returned malformed quiz data")
	ErrNoVoiceForGender  = New(CodeNoVoiceForGender, "no narrator voice available for the requested gender")
	ErrImageBlocked      = New(CodeImageBlocked, "image generation was blocked")
	ErrImageGenFailed    = New(CodeImageGenerationFailed, "image generation failed")
	ErrVoiceFetchFailed  = New(CodeVoiceFetchFailed, "failed to fetch narrator voices")
	ErrSynthesisFailed   = New(CodeSynthesisFailed, "speech synthesis failed")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
