package mock

import (
	"context"
	"time"

	"github.com/FranksOps/newsbrief/internal/llm"
)

type Client struct {
	Response string
	Error    error
	Delay    time.Duration

	CallCount  int
	LastSystem string
	LastPrompt string
}

func New() *Client {
	return &Client{
		Response: `{"main_summary": "mock summary", "one_line_summary": "mock one-liner", "keywords": ["mock"], "recommended_articles": [], "perspectives": "mock perspectives"}`,
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	c.CallCount++
	c.LastSystem = system
	c.LastPrompt = prompt

	if c.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.Delay):
		}
	}

	if c.Error != nil {
		return "", c.Error
	}
	return c.Response, nil
}

var _ llm.Client = (*Client)(nil)
