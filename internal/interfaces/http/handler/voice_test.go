package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-ai-api/internal/domain/story"
	apperrors "storybook-ai-api/pkg/errors"
)

type stubVoices struct {
	voices []story.Voice
	err    error
}

func (s *stubVoices) GetVoices(ctx context.Context) ([]story.Voice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.voices, nil
}

func voiceEngine(voices VoiceLister) *gin.Engine {
	e := gin.New()
	e.GET("/v1/voices", NewVoiceHandler(voices).List)
	return e
}

func TestListVoices(t *testing.T) {
	lister := &stubVoices{voices: []story.Voice{
		{VoiceID: "v1", Name: "Aria", Labels: map[string]string{"gender": "female"}},
		{VoiceID: "v2", Name: "Brian", Labels: map[string]string{"gender": "male"}},
	}}
	w := doJSON(t, voiceEngine(lister), http.MethodGet, "/v1/voices", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			VoiceID string            `json:"voice_id"`
			Name    string            `json:"name"`
			Labels  map[string]string `json:"labels"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "v1", resp.Data[0].VoiceID)
	assert.Equal(t, "female", resp.Data[0].Labels["gender"])
}

func TestListVoicesGenderFilter(t *testing.T) {
	lister := &stubVoices{voices: []story.Voice{
		{VoiceID: "v1", Name: "Aria", Labels: map[string]string{"gender": "female"}},
		{VoiceID: "v2", Name: "Brian", Labels: map[string]string{"gender": "male"}},
	}}
	w := doJSON(t, voiceEngine(lister), http.MethodGet, "/v1/voices?gender=male", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			VoiceID string `json:"voice_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "v2", resp.Data[0].VoiceID)
}

func TestListVoicesUnknownGender(t *testing.T) {
	lister := &stubVoices{voices: []story.Voice{
		{VoiceID: "v1", Name: "Aria", Labels: map[string]string{"gender": "female"}},
	}}
	w := doJSON(t, voiceEngine(lister), http.MethodGet, "/v1/voices?gender=robot", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListVoicesFetchFailure(t *testing.T) {
	lister := &stubVoices{err: apperrors.ErrVoiceFetchFailed.WithDetail("invalid api key")}
	w := doJSON(t, voiceEngine(lister), http.MethodGet, "/v1/voices", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
