// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storybook-ai-api/internal/config"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.cfg.App.Version,
	})
}

// Ready 就绪检查接口。
// 三个提供商凭证齐备才算就绪，缺一个就无法完成任何一次生成。
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]*readinessCheck{
		"llm":    {Status: "ok"},
		"image":  {Status: "ok"},
		"speech": {Status: "ok"},
	}
	ready := true

	provider, ok := h.cfg.LLM.Providers[h.cfg.LLM.DefaultProvider]
	if !ok || provider.APIKey == "" {
		checks["llm"].Status = "missing"
		checks["llm"].Error = "LLM API key not configured"
		ready = false
	}
	if h.cfg.Image.APIKey == "" {
		checks["image"].Status = "missing"
		checks["image"].Error = "image API key not configured"
		ready = false
	}
	if h.cfg.Speech.APIKey == "" {
		checks["speech"].Status = "missing"
		checks["speech"].Error = "speech API key not configured"
		ready = false
	}

	resp := readinessResponse{
		Status: "ok",
		Checks: checks,
	}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}
