package dto

import (
	"storybook-ai-api/internal/domain/story"
)

// GenerateStoryRequest 故事生成请求
type GenerateStoryRequest struct {
	Topic              string   `json:"topic" binding:"required"`
	AgeRange           string   `json:"age_range" binding:"required"`
	Gender             string   `json:"gender" binding:"required"`
	Tone               string   `json:"tone" binding:"required"`
	UseBackgroundMusic bool     `json:"use_background_music"`
	MusicVolume        *float64 `json:"music_volume"`
}

// ToDomain 转换为领域请求；音量缺省时取配置默认值
func (r *GenerateStoryRequest) ToDomain(defaultVolume float64) *story.GenerationRequest {
	volume := defaultVolume
	if r.MusicVolume != nil {
		volume = *r.MusicVolume
	}
	return &story.GenerationRequest{
		Topic:              r.Topic,
		AgeRange:           r.AgeRange,
		Gender:             story.Gender(r.Gender),
		Tone:               story.Tone(r.Tone),
		UseBackgroundMusic: r.UseBackgroundMusic,
		MusicVolume:        volume,
	}
}

// StoryPartResponse 最终结果中的一个段落
type StoryPartResponse struct {
	Paragraph string `json:"paragraph"`
	Image     string `json:"image"`
}

// QuizQuestionResponse 测验题目
type QuizQuestionResponse struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// GenerateStoryResponse 故事生成结果
type GenerateStoryResponse struct {
	Parts              []StoryPartResponse    `json:"parts"`
	NarrationURL       string                 `json:"narration_url"`
	BackgroundMusicURL string                 `json:"background_music_url,omitempty"`
	MusicVolume        float64                `json:"music_volume,omitempty"`
	Quiz               []QuizQuestionResponse `json:"quiz"`
}

// FromResult 领域结果转响应
func FromResult(result *story.Result, musicVolume float64) *GenerateStoryResponse {
	parts := make([]StoryPartResponse, 0, len(result.Parts))
	for _, p := range result.Parts {
		parts = append(parts, StoryPartResponse{
			Paragraph: p.Paragraph,
			Image:     p.Image,
		})
	}
	quiz := make([]QuizQuestionResponse, 0, len(result.Quiz))
	for _, q := range result.Quiz {
		quiz = append(quiz, QuizQuestionResponse{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}
	resp := &GenerateStoryResponse{
		Parts:        parts,
		NarrationURL: result.NarrationURL,
		Quiz:         quiz,
	}
	if result.BackgroundMusicURL != "" {
		resp.BackgroundMusicURL = result.BackgroundMusicURL
		resp.MusicVolume = musicVolume
	}
	return resp
}

// EditImageRequest 插画重绘请求
type EditImageRequest struct {
	Image    string `json:"image" binding:"required"`
	MimeType string `json:"mime_type" binding:"required"`
	Prompt   string `json:"prompt" binding:"required"`
}

// EditImageResponse 插画重绘结果
type EditImageResponse struct {
	Image string `json:"image"`
}

// VoiceResponse 可用旁白声音
type VoiceResponse struct {
	VoiceID string            `json:"voice_id"`
	Name    string            `json:"name"`
	Labels  map[string]string `json:"labels,omitempty"`
}

// AgeRangeOption 年龄段选项
type AgeRangeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StoryOptionsResponse 前端表单的可选项目录
type StoryOptionsResponse struct {
	Tones              []string         `json:"tones"`
	AgeRanges          []AgeRangeOption `json:"age_ranges"`
	Genders            []string         `json:"genders"`
	DefaultMusicVolume float64          `json:"default_music_volume"`
	QuizAdvanceDelayMs int64            `json:"quiz_advance_delay_ms"`
}
