package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storybook-ai-api/pkg/errors"
)

type stubEditor struct {
	image     string
	err       error
	gotPrompt string
	gotMime   string
}

func (s *stubEditor) EditImage(ctx context.Context, dataURL, mimeType, prompt string) (string, error) {
	s.gotPrompt = prompt
	s.gotMime = mimeType
	if s.err != nil {
		return "", s.err
	}
	return s.image, nil
}

func imageEngine(editor ImageEditor) *gin.Engine {
	e := gin.New()
	e.POST("/v1/images/edit", NewImageHandler(editor).Edit)
	return e
}

func TestEditImage(t *testing.T) {
	editor := &stubEditor{image: "data:image/png;base64,bmV3"}
	w := doJSON(t, imageEngine(editor), http.MethodPost, "/v1/images/edit", map[string]string{
		"image":     "data:image/png;base64,b2xk",
		"mime_type": "image/png",
		"prompt":    "add a red hat",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Image string `json:"image"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "data:image/png;base64,bmV3", resp.Data.Image)
	assert.Equal(t, "add a red hat", editor.gotPrompt)
	assert.Equal(t, "image/png", editor.gotMime)
}

func TestEditImageMissingPrompt(t *testing.T) {
	w := doJSON(t, imageEngine(&stubEditor{}), http.MethodPost, "/v1/images/edit", map[string]string{
		"image":     "data:image/png;base64,b2xk",
		"mime_type": "image/png",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditImageBlocked(t *testing.T) {
	editor := &stubEditor{err: apperrors.ErrImageBlocked.WithDetail("reason: SAFETY")}
	w := doJSON(t, imageEngine(editor), http.MethodPost, "/v1/images/edit", map[string]string{
		"image":     "data:image/png;base64,b2xk",
		"mime_type": "image/png",
		"prompt":    "something disallowed",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
