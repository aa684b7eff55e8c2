package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/thinkscotty/reelhouse/internal/style"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel = "gemini-2.5-flash"
)

// Gemini API request/response types (unexported).

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// GeminiProvider implements Provider for Google's Gemini generateContent API.
type GeminiProvider struct {
	httpClient *http.Client
	repairer   style.Repairer
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(httpClient *http.Client) *GeminiProvider {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GeminiProvider{httpClient: httpClient, repairer: style.DefaultRepairer}
}

func (g *GeminiProvider) Name() string { return string(style.ProviderGemini) }

// Generate sends the prompt as a single user turn. The key travels as a query parameter.
func (g *GeminiProvider) Generate(ctx context.Context, cfg style.ProviderConfig, prompt string) (*style.Composition, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingCredential)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = geminiBaseURL
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := base + "/" + url.PathEscape(model) + ":generateContent?key=" + url.QueryEscape(apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("Gemini request failed", "model", model, "error", redactKey(err.Error(), apiKey))
		return nil, fmt.Errorf("gemini request failed: %s", redactKey(err.Error(), apiKey))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != 200 {
		slog.Error("Gemini API error", "status", resp.StatusCode, "model", model, "body", string(respBody))
		return nil, fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var genResp geminiResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		slog.Warn("Gemini envelope not decodable", "model", model, "body", string(respBody))
		return nil, fmt.Errorf("%w: parse gemini response: %w", ErrUnusableResponse, err)
	}

	var texts []string
	if len(genResp.Candidates) > 0 {
		for _, p := range genResp.Candidates[0].Content.Parts {
			texts = append(texts, p.Text)
		}
	}

	return parseComposition(g.Name(), strings.Join(texts, " "), g.repairer)
}

// redactKey keeps the query-string credential out of transport error messages.
func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
	return strings.ReplaceAll(msg, key, "REDACTED")
}
