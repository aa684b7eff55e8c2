package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/thinkscotty/reelhouse/internal/style"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

const openAISystemPrompt = "You are a senior front-end designer. Reply with one JSON object containing the keys html, css and notes, and nothing else."

// OpenAI-compatible request/response types (unexported).

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *responseFmt  `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFmt struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Model   string       `json:"model"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// OpenAIProvider implements Provider for OpenAI and any server exposing the
// same /chat/completions API.
type OpenAIProvider struct {
	name       string
	httpClient *http.Client
	repairer   style.Repairer
}

// NewOpenAIProvider creates an OpenAI-compatible provider reported under name.
func NewOpenAIProvider(name string, httpClient *http.Client) *OpenAIProvider {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OpenAIProvider{name: name, httpClient: httpClient, repairer: style.DefaultRepairer}
}

func (o *OpenAIProvider) Name() string { return o.name }

// Generate posts a system instruction plus the prompt and asks for a JSON object reply.
func (o *OpenAIProvider) Generate(ctx context.Context, cfg style.ProviderConfig, prompt string) (*style.Composition, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", o.name, ErrMissingCredential)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	body := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: openAISystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFmt{Type: "json_object"},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	slog.Debug("Chat completion request starting", "provider", o.name, "model", model, "prompt_chars", len(prompt))

	start := time.Now()
	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("Chat completion request failed", "provider", o.name, "model", model, "elapsed", time.Since(start), "error", err)
		return nil, fmt.Errorf("%s request failed (model=%s): %w", o.name, model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		errMsg := extractAPIError(respBody)
		if errMsg == "" {
			errMsg = string(respBody)
		}
		slog.Error("Chat completion API error", "provider", o.name, "status", resp.StatusCode, "model", model, "error", errMsg)
		return nil, fmt.Errorf("%s returned status %d: %s", o.name, resp.StatusCode, errMsg)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		slog.Warn("Chat completion envelope not decodable", "provider", o.name, "body", string(respBody))
		return nil, fmt.Errorf("%w: parse %s response: %w", ErrUnusableResponse, o.name, err)
	}

	content := ""
	if len(chatResp.Choices) > 0 {
		content = chatResp.Choices[0].Message.Content
	}

	slog.Debug("Chat completion request completed", "provider", o.name, "model", model, "elapsed", time.Since(start), "response_chars", len(content))

	return parseComposition(o.name, content, o.repairer)
}

// extractAPIError pulls a readable message out of an OpenAI-style error body.
// Servers send either {"error":"message"} or {"error":{"message":"text","type":"..."}}.
func extractAPIError(body []byte) string {
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}

	var nested struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	return ""
}
