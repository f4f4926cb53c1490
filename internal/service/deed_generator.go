package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// MaxSentenceWords 善行句子的最大词数。
	MaxSentenceWords = 10

	minSentenceLength = 5
)

var (
	errSentenceInvalid = errors.New("AI returned an invalid sentence")
	errSentenceTooLong = errors.New("AI returned a sentence that was not concise enough")
)

// DeedGenerator 为某个星座生成一条善行句子。
type DeedGenerator interface {
	GenerateDeed(ctx context.Context, sign string) (string, error)
}

// AIDeedGenerator 通过文本生成接口产出善行：先走 chat 接口，不可用或结果不合格时退回纯文本接口。
type AIDeedGenerator struct {
	client *aiChatClient
	strict *bluemonday.Policy
}

// NewAIDeedGenerator 构造生成器
func NewAIDeedGenerator(cfg AIClientConfig) *AIDeedGenerator {
	return &AIDeedGenerator{
		client: newAIChatClient(cfg),
		strict: bluemonday.StrictPolicy(),
	}
}

// SetHTTPClient 替换底层 HTTP 客户端。
func (g *AIDeedGenerator) SetHTTPClient(client httpDoer) {
	g.client.SetHTTPClient(client)
}

// DeedPrompt 返回生成善行的提示词。
func DeedPrompt(sign string) string {
	return fmt.Sprintf("Respond with exactly one clear sentence (less than or equal to %d words) giving the user a task as a good deed to help someone or do an action that aligns that with the nature of someone whose zodiac sign is %s. Do not add extra commentary.", MaxSentenceWords, sign)
}

// GenerateDeed 实现 DeedGenerator。
func (g *AIDeedGenerator) GenerateDeed(ctx context.Context, sign string) (string, error) {
	prompt := DeedPrompt(sign)
	logAIExchange("DEED", "prompt", prompt)

	resp, chatErr := g.client.call(ctx, aiChatRequest{UserPrompt: prompt, MaxTokens: 60, Temperature: 0.9})
	if chatErr == nil {
		logAIExchange("DEED", "chat response", resp.Content)
		sentence, err := g.validate(resp.Content)
		if err == nil {
			return sentence, nil
		}
		chatErr = err
	}

	raw, err := g.client.fetchText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: chat: %v; text: %v", ErrDeedUnavailable, chatErr, err)
	}
	logAIExchange("DEED", "text response", raw)

	sentence, err := g.validate(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeedUnavailable, err)
	}
	return sentence, nil
}

func (g *AIDeedGenerator) validate(raw string) (string, error) {
	// 去掉模型可能夹带的标记，再还原实体
	cleaned := html.UnescapeString(g.strict.Sanitize(raw))
	cleaned = strings.Trim(strings.TrimSpace(cleaned), "\"'“”")
	sentence := NormalizeSentence(cleaned)
	if len(sentence) < minSentenceLength {
		return "", errSentenceInvalid
	}
	if !IsConcise(sentence, MaxSentenceWords) {
		return "", errSentenceTooLong
	}
	return sentence, nil
}

// NormalizeSentence 合并空白并确保以句号结尾。
func NormalizeSentence(text string) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	if cleaned == "" {
		return ""
	}
	if !strings.HasSuffix(cleaned, ".") {
		cleaned += "."
	}
	return cleaned
}

// IsConcise 判断句子词数不超过 maxWords。
func IsConcise(text string, maxWords int) bool {
	return len(strings.Fields(text)) <= maxWords
}
