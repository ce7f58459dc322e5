package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply is the chat backend's response for one completion. MediaType and
// MediaData carry optional generated artifacts (e.g. a rendered deck).
type ChatReply struct {
	Response  string   `json:"response"`
	MediaType string   `json:"media_type,omitempty"`
	MediaData []string `json:"media_data,omitempty"`
}

// ChatClient talks to the chat completion backend: POST {base}/chat with
// {messages, model}.
type ChatClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewChatClient(baseURL string) *ChatClient {
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *ChatClient) Complete(ctx context.Context, model string, messages []ChatMessage) (*ChatReply, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	reqBody := map[string]interface{}{
		"messages": messages,
		"model":    model,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build chat request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chat response status %d: %s", resp.StatusCode, string(raw))
	}

	var reply ChatReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("parse chat json failed: %w", err)
	}
	if strings.TrimSpace(reply.Response) == "" {
		return nil, fmt.Errorf("empty response from chat backend")
	}
	return &reply, nil
}
