package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetailDoesNotMutatePredefined(t *testing.T) {
	detailed := ErrImageBlocked.WithDetail("safety filter triggered")
	assert.Equal(t, "safety filter triggered", detailed.Detail)
	assert.Empty(t, ErrImageBlocked.Detail)
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := ErrSynthesisFailed.WithDetail("voice quota exceeded")
	assert.True(t, stderrors.Is(err, ErrSynthesisFailed))
	assert.False(t, stderrors.Is(err, ErrImageBlocked))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[ErrorCode]int{
		CodeValidation:            http.StatusBadRequest,
		CodeNoVoiceForGender:      http.StatusBadRequest,
		CodeMalformedQuizData:     http.StatusUnprocessableEntity,
		CodeImageBlocked:          http.StatusUnprocessableEntity,
		CodeGenerationFailed:      http.StatusBadGateway,
		CodeSynthesisFailed:       http.StatusBadGateway,
		CodeMissingCredential:     http.StatusServiceUnavailable,
		CodeImageGenerationFailed: http.StatusBadGateway,
	}
	for code, want := range cases {
		assert.Equal(t, want, New(code, "x").HTTPStatus, string(code))
	}
}

func TestAsAppErrorWrapsForeignErrors(t *testing.T) {
	plain := stderrors.New("boom")
	appErr := AsAppError(plain)
	assert.Equal(t, CodeUnknown, appErr.Code)
	assert.ErrorIs(t, appErr, plain)

	same := ErrValidation.WithDetail("topic missing")
	assert.Same(t, same, AsAppError(same))
}
