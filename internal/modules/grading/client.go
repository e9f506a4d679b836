package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/inkgrade/core/internal/config"
	"github.com/inkgrade/core/internal/models"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

// Client grades one normalized essay image per call.
type Client interface {
	Grade(ctx context.Context, imageB64 string) (*models.GradingResult, error)
	Model() string
}

// providerClient dispatches to the configured provider type. The
// openai-compatible path speaks raw chat-completions HTTP, which is what
// most domestic vision endpoints (Ark, DashScope, ...) expect.
type providerClient struct {
	provider    config.AIProvider
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewClient selects the first enabled provider and builds a client for it.
// Returns ErrNotConfigured when no usable provider exists.
func NewClient(cfg config.GradingConfig) (Client, error) {
	provider := selectProvider(cfg)
	if provider == nil || strings.TrimSpace(provider.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	model := strings.TrimSpace(provider.DefaultModel)
	if model == "" {
		model = defaultModelFor(provider.Type)
	}

	return &providerClient{
		provider:    *provider,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (c *providerClient) Model() string { return c.model }

func (c *providerClient) Grade(ctx context.Context, imageB64 string) (*models.GradingResult, error) {
	var raw string
	var err error
	switch {
	case isAnthropicProviderType(c.provider.Type):
		raw, err = c.gradeAnthropic(ctx, imageB64)
	case normalizeProviderType(c.provider.Type) == "openai":
		raw, err = c.gradeOpenAI(ctx, imageB64)
	default:
		raw, err = c.gradeOpenAICompatible(ctx, imageB64)
	}
	if err != nil {
		return nil, err
	}
	return ParseGradingReply(raw)
}

func (c *providerClient) gradeOpenAICompatible(ctx context.Context, imageB64 string) (string, error) {
	endpoint := chatCompletionsURL(c.provider.Endpoint)

	body, _ := json.Marshal(map[string]interface{}{
		"model": c.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": rubricSystemPrompt},
			{"role": "user", "content": []map[string]interface{}{
				{"type": "text", "text": gradeUserPrompt},
				{"type": "image_url", "image_url": map[string]string{"url": DataURL(imageB64)}},
			}},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Provider: c.provider.Name, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.provider.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Provider: c.provider.Name, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Provider: c.provider.Name, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", &TransportError{
			Provider: c.provider.Name,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &TransportError{Provider: c.provider.Name, Err: err}
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return "", &TransportError{Provider: c.provider.Name, Err: errors.New(result.Error.Message)}
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", &TransportError{Provider: c.provider.Name, Err: errors.New("empty response from AI")}
	}
	return result.Choices[0].Message.Content, nil
}

func (c *providerClient) gradeOpenAI(ctx context.Context, imageB64 string) (string, error) {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(c.provider.APIKey)),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(c.provider.Endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}

	client := openaiclient.NewClient(opts...)
	resp, err := client.Chat.Completions.New(ctx, openaiclient.ChatCompletionNewParams{
		Model: openaiclient.ChatModel(c.model),
		Messages: []openaiclient.ChatCompletionMessageParamUnion{
			openaiclient.SystemMessage(rubricSystemPrompt),
			openaiclient.UserMessage([]openaiclient.ChatCompletionContentPartUnionParam{
				openaiclient.TextContentPart(gradeUserPrompt),
				openaiclient.ImageContentPart(openaiclient.ChatCompletionContentPartImageImageURLParam{
					URL: DataURL(imageB64),
				}),
			}),
		},
		Temperature: openaiclient.Float(c.temperature),
		MaxTokens:   openaiclient.Int(int64(c.maxTokens)),
	})
	if err != nil {
		return "", &TransportError{Provider: c.provider.Name, Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &TransportError{Provider: c.provider.Name, Err: errors.New("empty response from AI")}
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *providerClient) gradeAnthropic(ctx context.Context, imageB64 string) (string, error) {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(strings.TrimSpace(c.provider.APIKey)),
		anthropicoption.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(c.provider.Endpoint); endpoint != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}

	client := anthropicclient.NewClient(opts...)
	msg, err := client.Messages.New(ctx, anthropicclient.MessageNewParams{
		Model:       anthropicclient.Model(c.model),
		MaxTokens:   int64(c.maxTokens),
		Temperature: anthropicclient.Float(c.temperature),
		System: []anthropicclient.TextBlockParam{
			{Text: rubricSystemPrompt},
		},
		Messages: []anthropicclient.MessageParam{
			anthropicclient.NewUserMessage(
				anthropicclient.NewImageBlockBase64("image/jpeg", imageB64),
				anthropicclient.NewTextBlock(gradeUserPrompt),
			),
		},
	})
	if err != nil {
		return "", &TransportError{Provider: c.provider.Name, Err: err}
	}

	var full strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			full.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(full.String()) == "" {
		return "", &TransportError{Provider: c.provider.Name, Err: errors.New("empty response from AI")}
	}
	return full.String(), nil
}

func isAnthropicProviderType(raw string) bool {
	return normalizeProviderType(raw) == "anthropic"
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

func defaultModelFor(providerType string) string {
	if isAnthropicProviderType(providerType) {
		return "claude-haiku-4-5-20251001"
	}
	return "gpt-4o-mini"
}

// selectProvider picks the assigned provider, falling back to the first
// enabled one. The assignment may override the model.
func selectProvider(cfg config.GradingConfig) *config.AIProvider {
	var providerID, overrideModel string
	if cfg.Assignment != nil {
		providerID = strings.TrimSpace(cfg.Assignment.ProviderID)
		overrideModel = strings.TrimSpace(cfg.Assignment.Model)
	}

	pick := func(provider config.AIProvider) *config.AIProvider {
		selected := provider
		if overrideModel != "" {
			selected.DefaultModel = overrideModel
		}
		return &selected
	}

	if providerID != "" {
		for _, provider := range cfg.Providers {
			if !provider.Enabled {
				continue
			}
			if strings.TrimSpace(provider.ID) != providerID {
				continue
			}
			return pick(provider)
		}
	}

	for _, provider := range cfg.Providers {
		if !provider.Enabled {
			continue
		}
		return pick(provider)
	}

	return nil
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		if path == "" {
			path = "/v1"
		} else {
			path += "/v1"
		}
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

// chatCompletionsURL builds the chat-completions URL for an
// openai-compatible endpoint. A bare host gets the standard /v1 prefix;
// endpoints that carry their own API path (e.g. Ark's /api/v3) keep it.
func chatCompletionsURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com/v1/chat/completions"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		cleaned := strings.TrimRight(base, "/")
		cleaned = strings.TrimSuffix(cleaned, "/chat/completions")
		return cleaned + "/chat/completions"
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/chat/completions")
	if path == "" {
		path = "/v1"
	}
	parsed.Path = path + "/chat/completions"
	return parsed.String()
}
