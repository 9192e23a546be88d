// Package llm 封装文本生成模型的创建与复用
package llm

import (
	"context"
	"fmt"
	"sync"

	"storybook-ai-api/internal/config"
	apperrors "storybook-ai-api/pkg/errors"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// EinoFactory 管理多个 Eino ChatModel 客户端实例
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}
	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}
	return f.get(ctx, name, providerCfg, providerCfg.Model)
}

// GetSelectModel 返回声音挑选用的轻量模型。
// 未单独配置 select_model 时与默认模型共用一个实例。
func (f *EinoFactory) GetSelectModel(ctx context.Context) (model.BaseChatModel, error) {
	if f.config.SelectModel == "" {
		return f.Get(ctx, "")
	}
	name := f.config.DefaultProvider
	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}
	return f.get(ctx, name+"/"+f.config.SelectModel, providerCfg, f.config.SelectModel)
}

func (f *EinoFactory) get(ctx context.Context, key string, providerCfg config.ProviderConfig, modelName string) (model.BaseChatModel, error) {
	f.mu.RLock()
	m, ok := f.models[key]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 任何网络调用前先校验凭证
	if providerCfg.APIKey == "" {
		return nil, apperrors.ErrMissingCredential.WithDetail("LLM API key is not configured")
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[key]; ok {
		return m, nil
	}

	// 使用 Eino 的 OpenAI 适配器
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      providerCfg.APIKey,
		BaseURL:     providerCfg.BaseURL,
		Model:       modelName,
		MaxTokens:   &providerCfg.MaxTokens,
		Temperature: ptrFloat32(float32(providerCfg.Temperature)),
		Timeout:     providerCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", key, err)
	}

	f.models[key] = chatModel
	return chatModel, nil
}

// Default 返回默认 ChatModel
func (f *EinoFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

func ptrFloat32(f float32) *float32 {
	return &f
}
