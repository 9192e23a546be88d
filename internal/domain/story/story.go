// Package story 定义故事生成领域模型
package story

import (
	"fmt"
	"strings"
)

// Gender 旁白性别
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid 检查性别取值是否合法
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Tone 旁白语气，固定 7 种
type Tone string

const (
	ToneFriendly   Tone = "Friendly"
	ToneCalm       Tone = "Calm"
	ToneEnergetic  Tone = "Energetic"
	ToneWise       Tone = "Wise"
	ToneMysterious Tone = "Mysterious"
	ToneCheerful   Tone = "Cheerful"
	ToneDramatic   Tone = "Dramatic"
)

// Tones 全部语气，顺序与前端下拉框展示顺序一致
var Tones = []Tone{
	ToneFriendly,
	ToneCalm,
	ToneEnergetic,
	ToneWise,
	ToneMysterious,
	ToneCheerful,
	ToneDramatic,
}

// Valid 检查语气取值是否合法
func (t Tone) Valid() bool {
	for _, v := range Tones {
		if t == v {
			return true
		}
	}
	return false
}

// AgeRange 目标年龄段选项
type AgeRange struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AgeRanges 全部年龄段选项
var AgeRanges = []AgeRange{
	{Value: "3-4 years", Label: "Toddler (3-4)"},
	{Value: "5-6 years", Label: "Preschool (5-6)"},
	{Value: "7-8 years", Label: "Early Elementary (7-8)"},
	{Value: "9-10 years", Label: "Late Elementary (9-10)"},
	{Value: "11-12 years", Label: "Middle School (11-12)"},
	{Value: "13-15 years", Label: "Early Teen (13-15)"},
	{Value: "16-18 years", Label: "Late Teen (16-18)"},
}

// GenerationRequest 一次生成运行的全部用户输入
type GenerationRequest struct {
	Topic              string  `json:"topic"`
	AgeRange           string  `json:"age_range"`
	Gender             Gender  `json:"gender"`
	Tone               Tone    `json:"tone"`
	UseBackgroundMusic bool    `json:"use_background_music"`
	MusicVolume        float64 `json:"music_volume"`
}

// Validate 校验用户输入；任何网络调用前执行
func (r *GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if !r.Gender.Valid() {
		return fmt.Errorf("gender must be %q or %q", GenderMale, GenderFemale)
	}
	if !r.Tone.Valid() {
		return fmt.Errorf("unknown tone %q", r.Tone)
	}
	if r.MusicVolume < 0 || r.MusicVolume > 1 {
		return fmt.Errorf("music_volume must be within [0, 1]")
	}
	return nil
}

// Part 生成期的故事段落：正文 + 对应插画提示词。
// 顺序即阅读顺序，端到端保持不变。
type Part struct {
	Paragraph   string `json:"paragraph"`
	ImagePrompt string `json:"imagePrompt"`
}

// QuizQuestionCount 每个故事固定附带的题目数
const QuizQuestionCount = 3

// QuizQuestion 故事附带的选择题
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Validate 校验题目结构：恰好 4 个选项，正确答案必须是其中之一
func (q *QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("question %q has %d options, want 4", q.Question, len(q.Options))
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return fmt.Errorf("correct answer %q is not among the options of %q", q.CorrectAnswer, q.Question)
}

// Generated 故事生成步骤的完整输出。
// StyleGuide 全程唯一，约束本次运行的所有插画。
type Generated struct {
	StyleGuide       string         `json:"styleGuide"`
	Story            []Part         `json:"story"`
	VoiceDescription string         `json:"voiceDescription"`
	Quiz             []QuizQuestion `json:"quiz"`
}

// Validate 校验生成结果的结构约束
func (g *Generated) Validate() error {
	if strings.TrimSpace(g.StyleGuide) == "" {
		return fmt.Errorf("style guide is empty")
	}
	if len(g.Story) == 0 {
		return fmt.Errorf("story has no paragraphs")
	}
	for i, p := range g.Story {
		if strings.TrimSpace(p.Paragraph) == "" {
			return fmt.Errorf("paragraph %d is empty", i)
		}
		if strings.TrimSpace(p.ImagePrompt) == "" {
			return fmt.Errorf("image prompt %d is empty", i)
		}
	}
	return nil
}

// NarrationText 按阅读顺序拼接全部段落，作为单次语音合成的脚本
func (g *Generated) NarrationText() string {
	paragraphs := make([]string, 0, len(g.Story))
	for _, p := range g.Story {
		paragraphs = append(paragraphs, p.Paragraph)
	}
	return strings.Join(paragraphs, "\n\n")
}

// Voice 语音提供商的一个旁白声音
type Voice struct {
	VoiceID string            `json:"voice_id"`
	Name    string            `json:"name"`
	Labels  map[string]string `json:"labels"`
}

// Label 读取标签值，缺失返回空串
func (v *Voice) Label(key string) string {
	if v.Labels == nil {
		return ""
	}
	return v.Labels[key]
}

// FilterVoicesByGender 按性别标签过滤声音列表，保持提供商原始顺序
func FilterVoicesByGender(voices []Voice, gender Gender) []Voice {
	filtered := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if v.Label("gender") == string(gender) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// ResultPart 最终结果中的段落：正文 + 已生成的插画
type ResultPart struct {
	Paragraph string `json:"paragraph"`
	Image     string `json:"image"`
}

// Result 一次生成运行的最终产物。
// Parts 与生成步骤返回的段落数和顺序完全一致。
type Result struct {
	Parts              []ResultPart   `json:"parts"`
	NarrationURL       string         `json:"narration_url"`
	BackgroundMusicURL string         `json:"background_music_url,omitempty"`
	Quiz               []QuizQuestion `json:"quiz"`
}
