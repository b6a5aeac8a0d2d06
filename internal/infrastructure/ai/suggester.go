// Package ai 调用 OpenAI 兼容接口，为家长发布职位时生成标题和参考价格
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tutor_match_server/internal/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrDisabled 未配置 API Key
var ErrDisabled = errors.New("ai suggester disabled")

// Suggestion 模型给出的职位标题与价格区间
type Suggestion struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// Suggester 职位建议生成接口
type Suggester interface {
	Suggest(ctx context.Context, grade, subject string) (Suggestion, error)
}

// New 按配置创建 Suggester；APIKey 为空时返回的实现总是返回 ErrDisabled
func New(cfg config.AIConfig) Suggester {
	if cfg.APIKey == "" {
		return disabled{}
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &openaiSuggester{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
	}
}

type disabled struct{}

func (disabled) Suggest(context.Context, string, string) (Suggestion, error) {
	return Suggestion{}, ErrDisabled
}

type openaiSuggester struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func (s *openaiSuggester) Suggest(ctx context.Context, grade, subject string) (Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("你是家教中介的运营助手，只输出 JSON。"),
			openai.UserMessage(Prompt(grade, subject)),
		}),
		Model: openai.F(openai.ChatModel(s.model)),
	}
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Suggestion{}, err
	}
	if len(resp.Choices) == 0 {
		return Suggestion{}, errors.New("empty completion")
	}
	return ParseReply(resp.Choices[0].Message.Content)
}

// Prompt 生成提示词
func Prompt(grade, subject string) string {
	return fmt.Sprintf(
		"为一个%s%s家教职位写一个不超过 20 字的吸引人的标题，并给出当地大学生家教的合理课时费区间。"+
			`只返回 JSON：{"title": "...", "price": "¥X - ¥Y / 小时"}`,
		grade, subject)
}

// ParseReply 解析模型回复，容忍 ```json 代码块包裹
func ParseReply(content string) (Suggestion, error) {
	text := strings.TrimSpace(content)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}
	var sg Suggestion
	if err := json.Unmarshal([]byte(text), &sg); err != nil {
		return Suggestion{}, fmt.Errorf("parse ai reply: %w", err)
	}
	sg.Title = strings.TrimSpace(sg.Title)
	sg.Price = strings.TrimSpace(sg.Price)
	if sg.Title == "" || sg.Price == "" {
		return Suggestion{}, errors.New("ai reply missing title or price")
	}
	return sg, nil
}
