// Package elevenlabs 提供旁白语音服务客户端
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storybook-ai-api/internal/config"
	"storybook-ai-api/internal/domain/story"
	apperrors "storybook-ai-api/pkg/errors"
	"storybook-ai-api/pkg/metrics"
)

type Client struct {
	apiKey     string
	baseURL    string
	modelID    string
	httpClient *http.Client
}

// toneProfile 每种语气的语音参数与朗读前缀
type toneProfile struct {
	stability       float64
	similarityBoost float64
	promptPrefix    string
}

// toneProfiles 语气到语音参数的静态映射；未命中的语气用默认参数、无前缀
var toneProfiles = map[story.Tone]toneProfile{
	story.ToneCalm:       {0.7, 0.8, "[narration, calm and soothing] "},
	story.ToneWise:       {0.7, 0.8, "[narration, wise and gentle] "},
	story.ToneEnergetic:  {0.4, 0.6, "[narration, energetic and excited] "},
	story.ToneDramatic:   {0.4, 0.6, "[narration, dramatic and expressive] "},
	story.ToneMysterious: {0.45, 0.8, "[narration, mysterious and suspenseful] "},
	story.ToneCheerful:   {0.55, 0.7, "[narration, cheerful and bright] "},
	story.ToneFriendly:   {0.55, 0.7, "[narration, friendly and warm] "},
}

var defaultToneProfile = toneProfile{stability: 0.5, similarityBoost: 0.75}

type voicesResponse struct {
	Voices []story.Voice `json:"voices"`
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func NewClient(cfg *config.SpeechConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "eleven_multilingual_v2"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		modelID: modelID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetVoices 拉取提供商的全部可用声音，保持原始顺序
func (c *Client) GetVoices(ctx context.Context) ([]story.Voice, error) {
	if c.apiKey == "" {
		return nil, apperrors.ErrMissingCredential.WithDetail("speech API key is not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create voices request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.ErrVoiceFetchFailed.WithError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperrors.ErrVoiceFetchFailed.WithError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, apperrors.ErrVoiceFetchFailed.WithDetail(apiErrorDetail(body, httpResp.Status))
	}

	var resp voicesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.ErrVoiceFetchFailed.WithError(err)
	}
	return resp.Voices, nil
}

// Synthesize 用指定声音朗读全文，按语气调整语音参数并加朗读前缀。
// 返回 audio/mpeg 的 data URI。
func (c *Client) Synthesize(ctx context.Context, text, voiceID string, tone story.Tone) (string, error) {
	if c.apiKey == "" {
		return "", apperrors.ErrMissingCredential.WithDetail("speech API key is not configured")
	}

	profile, ok := toneProfiles[tone]
	if !ok {
		profile = defaultToneProfile
	}

	reqBody, err := json.Marshal(&synthesizeRequest{
		Text:    profile.promptPrefix + text,
		ModelID: c.modelID,
		VoiceSettings: voiceSettings{
			Stability:       profile.stability,
			SimilarityBoost: profile.similarityBoost,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal synthesize request: %w", err)
	}

	endpoint := c.baseURL + "/v1/text-to-speech/" + voiceID
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create synthesize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Accept", "audio/mpeg")

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.TTSSynthesisTotal.WithLabelValues("error").Inc()
		return "", apperrors.ErrSynthesisFailed.WithError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		metrics.TTSSynthesisTotal.WithLabelValues("error").Inc()
		return "", apperrors.ErrSynthesisFailed.WithError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		metrics.TTSSynthesisTotal.WithLabelValues("error").Inc()
		return "", apperrors.ErrSynthesisFailed.WithDetail(apiErrorDetail(body, httpResp.Status))
	}

	metrics.TTSSynthesisTotal.WithLabelValues("success").Inc()
	metrics.TTSSynthesisDuration.WithLabelValues(string(tone)).Observe(time.Since(start).Seconds())
	metrics.TTSAudioBytes.Observe(float64(len(body)))

	return "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(body), nil
}

// apiErrorDetail 逐层提取错误信息：detail 字段 → 原始响应体 → HTTP 状态文本
func apiErrorDetail(body []byte, status string) string {
	var parsed struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Detail) > 0 {
		var s string
		if json.Unmarshal(parsed.Detail, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(parsed.Detail, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	if len(body) > 0 {
		return fmt.Sprintf("%s. Details: %s", status, string(body))
	}
	return status
}
