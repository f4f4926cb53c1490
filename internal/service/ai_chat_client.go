package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAIBaseURL  = "https://text.pollinations.ai/openai"
	defaultAITextURL  = "https://text.pollinations.ai"
	defaultAIModel    = "openai"
	aiResponseLimit   = 1 << 20
	defaultAITimeout  = 60 * time.Second
	aiUserAgentHeader = "decodeit-ai/1.0"
)

// httpDoer 抽象 HTTP 客户端，测试中注入假实现。
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type aiChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

type aiChatResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// AIClientConfig 描述文本生成接口。APIKey 可为空（公共接口无需鉴权）。
type AIClientConfig struct {
	BaseURL string
	TextURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// aiChatClient 调用 OpenAI 兼容的 /chat/completions，失败时可退回纯文本 GET 接口。
type aiChatClient struct {
	http    httpDoer
	baseURL string
	textURL string
	model   string
	apiKey  string
}

func newAIChatClient(cfg AIClientConfig) *aiChatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	c := &aiChatClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: defaultAIBaseURL,
		textURL: defaultAITextURL,
		model:   defaultAIModel,
		apiKey:  strings.TrimSpace(cfg.APIKey),
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		c.baseURL = base
	}
	if text := strings.TrimRight(strings.TrimSpace(cfg.TextURL), "/"); text != "" {
		c.textURL = text
	}
	if model := strings.TrimSpace(cfg.Model); model != "" {
		c.model = model
	}
	return c
}

func (c *aiChatClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: defaultAITimeout}
		return
	}
	c.http = client
}

func (c *aiChatClient) call(ctx context.Context, req aiChatRequest) (aiChatResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens < 0 {
		maxTokens = 0
	}

	messages := make([]chatMessage, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("build request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", aiUserAgentHeader)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("call chat endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, aiResponseLimit))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("read chat response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return aiChatResponse{}, fmt.Errorf("chat endpoint returned %s", resp.Status)
		}
		return aiChatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(completion.Error.Message)
		if errMsg == "" {
			errMsg = resp.Status
		}
		return aiChatResponse{}, fmt.Errorf("chat endpoint error: %s", errMsg)
	}

	if len(completion.Choices) == 0 {
		return aiChatResponse{}, fmt.Errorf("chat endpoint returned no choices")
	}

	return aiChatResponse{
		Content:          strings.TrimSpace(completion.Choices[0].Message.Content),
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}, nil
}

// fetchText 调用纯文本接口：GET <textURL>/<url-encoded prompt>。
func (c *aiChatClient) fetchText(ctx context.Context, prompt string) (string, error) {
	endpoint := c.textURL + "/" + url.PathEscape(prompt)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create text request: %w", err)
	}
	httpReq.Header.Set("User-Agent", aiUserAgentHeader)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call text endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, aiResponseLimit))
	if err != nil {
		return "", fmt.Errorf("read text response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("text endpoint returned %s", resp.Status)
	}
	return strings.TrimSpace(string(body)), nil
}
