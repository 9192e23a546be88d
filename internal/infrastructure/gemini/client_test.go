package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-ai-api/internal/config"
	apperrors "storybook-ai-api/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.ImageConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gemini-2.5-flash-image",
		Timeout: 5 * time.Second,
	})
}

func TestGenerateImageSuccess(t *testing.T) {
	var captured generateContentRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash-image:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{
						{"inlineData": map[string]string{"mimeType": "image/png", "data": "aGVsbG8="}},
					},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	})

	uri, err := client.GenerateImage(context.Background(), "a fox in a meadow", "soft watercolor")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", uri)

	require.Len(t, captured.Contents, 1)
	require.Len(t, captured.Contents[0].Parts, 1)
	prompt := captured.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, `Follow this style guide strictly: "soft watercolor"`)
	assert.Contains(t, prompt, `The scene to draw is: "a fox in a meadow"`)
	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, []string{"IMAGE"}, captured.GenerationConfig.ResponseModalities)
}

func TestGenerateImageBlocked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"promptFeedback": map[string]string{"blockReason": "SAFETY"},
		})
	})

	_, err := client.GenerateImage(context.Background(), "scene", "style")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrImageBlocked)
	assert.Contains(t, apperrors.AsAppError(err).Detail, "SAFETY")
}

func TestGenerateImageNoImagePart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "sorry, no image"}},
				},
			}},
		})
	})

	_, err := client.GenerateImage(context.Background(), "scene", "style")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrImageGenFailed)
}

func TestGenerateImageProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exceeded"},
		})
	})

	_, err := client.GenerateImage(context.Background(), "scene", "style")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrImageGenFailed)
	assert.Contains(t, apperrors.AsAppError(err).Detail, "quota exceeded")
}

func TestGenerateImageMissingCredential(t *testing.T) {
	client := NewClient(&config.ImageConfig{BaseURL: "http://localhost:0"})
	_, err := client.GenerateImage(context.Background(), "scene", "style")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingCredential)
}

func TestEditImageSendsInlineDataAndPrompt(t *testing.T) {
	var captured generateContentRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{
						{"inlineData": map[string]string{"mimeType": "image/png", "data": "bmV3"}},
					},
				},
			}},
		})
	})

	uri, err := client.EditImage(context.Background(), "data:image/png;base64,b2xk", "image/png", "add a red hat")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,bmV3", uri)

	require.Len(t, captured.Contents, 1)
	parts := captured.Contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	// 仅上传 base64 负载，不含 data URI 前缀
	assert.Equal(t, "b2xk", parts[0].InlineData.Data)
	assert.Equal(t, "image/png", parts[0].InlineData.MimeType)
	assert.Equal(t, "add a red hat", parts[1].Text)
}
