// Package gemini 提供插画生成服务客户端
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storybook-ai-api/internal/config"
	apperrors "storybook-ai-api/pkg/errors"
	"storybook-ai-api/pkg/metrics"
)

// imagePromptTemplate 统一的插画提示词包装，保证整本故事书画风一致
const imagePromptTemplate = `A vibrant, child-friendly illustration. Follow this style guide strictly: "%s". The scene to draw is: "%s". Ensure any characters mentioned are consistent with the style guide's description.`

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(cfg *config.ImageConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash-image"
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateImage 按风格指南绘制一幅场景插画，返回 data URI。
// 提示词被安全屏蔽返回 ImageBlocked，其余失败返回 ImageGenerationFailed。
func (c *Client) GenerateImage(ctx context.Context, scenePrompt, styleGuide string) (string, error) {
	fullPrompt := fmt.Sprintf(imagePromptTemplate, styleGuide, scenePrompt)
	req := &generateContentRequest{
		Contents: []content{{Parts: []part{{Text: fullPrompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}
	return c.doGenerate(ctx, "generate", req)
}

// EditImage 以现有插画和文字指令重绘，返回新的 data URI。
// dataURL 为 data:<mime>;base64,<data> 形式。
func (c *Client) EditImage(ctx context.Context, dataURL, mimeType, prompt string) (string, error) {
	base64Data := dataURL
	if idx := strings.Index(dataURL, ","); idx >= 0 {
		base64Data = dataURL[idx+1:]
	}
	req := &generateContentRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MimeType: mimeType, Data: base64Data}},
			{Text: prompt},
		}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
	}
	return c.doGenerate(ctx, "edit", req)
}

func (c *Client) doGenerate(ctx context.Context, operation string, req *generateContentRequest) (string, error) {
	if c.apiKey == "" {
		return "", apperrors.ErrMissingCredential.WithDetail("image API key is not configured")
	}

	start := time.Now()
	dataURI, err := c.call(ctx, req)
	metrics.ImageGenerationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ImageGenerationTotal.WithLabelValues(operation, "error").Inc()
		return "", err
	}
	metrics.ImageGenerationTotal.WithLabelValues(operation, "success").Inc()
	return dataURI, nil
}

func (c *Client) call(ctx context.Context, req *generateContentRequest) (string, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.ErrImageGenFailed.WithError(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", apperrors.ErrImageGenFailed.WithError(err)
	}

	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperrors.ErrImageGenFailed.WithDetail(fmt.Sprintf("invalid response: status=%d", httpResp.StatusCode)).WithError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		detail := fmt.Sprintf("status=%d", httpResp.StatusCode)
		if resp.Error != nil && resp.Error.Message != "" {
			detail = resp.Error.Message
		}
		return "", apperrors.ErrImageGenFailed.WithDetail(detail)
	}

	// 无候选时优先上报屏蔽原因
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", apperrors.ErrImageBlocked.WithDetail("reason: " + resp.PromptFeedback.BlockReason)
		}
		return "", apperrors.ErrImageGenFailed.WithDetail("provider returned an invalid response")
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return fmt.Sprintf("data:%s;base64,%s", p.InlineData.MimeType, p.InlineData.Data), nil
		}
	}
	return "", apperrors.ErrImageGenFailed.WithDetail("no image data found in the response parts")
}
