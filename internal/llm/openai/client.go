package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/FranksOps/newsbrief/internal/llm"
	"github.com/FranksOps/newsbrief/pkg/httpclient"
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	api         *goopenai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = goopenai.GPT4oMini
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	hc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	transportCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		transportCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	transportCfg.HTTPClient = hc.Client

	return &Client{
		api:         goopenai.NewClientWithConfig(transportCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}, nil
}

func (c *Client) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", classify(err)
	}

	c.logger.Debug("chat completion finished",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("took", time.Since(start)),
	)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", llm.ErrAuthFailed, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s", llm.ErrRateLimit, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d: %s", llm.ErrRequestFailed, apiErr.HTTPStatusCode, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", llm.ErrRequestFailed, err)
}

var _ llm.Client = (*Client)(nil)
