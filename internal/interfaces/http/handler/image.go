package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"storybook-ai-api/internal/interfaces/http/dto"
)

// ImageEditor 按文字指令重绘已有插画
type ImageEditor interface {
	EditImage(ctx context.Context, dataURL, mimeType, prompt string) (string, error)
}

// ImageHandler 插画处理器
type ImageHandler struct {
	editor ImageEditor
}

// NewImageHandler 创建插画处理器
func NewImageHandler(editor ImageEditor) *ImageHandler {
	return &ImageHandler{editor: editor}
}

// Edit 以现有插画和文字指令重绘，返回新插画的 data URI
func (h *ImageHandler) Edit(c *gin.Context) {
	var req dto.EditImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	image, err := h.editor.EditImage(c.Request.Context(), req.Image, req.MimeType, req.Prompt)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	dto.Success(c, &dto.EditImageResponse{Image: image})
}
