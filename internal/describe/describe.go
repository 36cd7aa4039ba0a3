package describe

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

	"github.com/wellnesslabco/glowpost/internal/catalog"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
	defaultModel      = "claude-3-5-sonnet-20241022"
	defaultTimeout    = 30 * time.Second
)

// Source tags where a description came from.
type Source string

const (
	// SourceGenerated marks copy produced by the external text service.
	SourceGenerated Source = "generated"
	// SourceTemplate marks copy produced by the deterministic template.
	SourceTemplate Source = "template"
)

// Description is marketing copy for one product.
type Description struct {
	Text   string
	Source Source
}

// Generator produces pin descriptions, preferring the external text service
// and falling back to the template. Generation never fails: any external
// error degrades to the template path.
type Generator struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

// New returns a Generator. An empty apiKey disables the external path.
func New(apiKey string) *Generator {
	return &Generator{
		apiKey:   apiKey,
		model:    defaultModel,
		endpoint: anthropicEndpoint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Generate returns a description for the product. When useExternal is set and
// a credential is configured, one call is made to the text service; on any
// failure the template is used instead.
func (g *Generator) Generate(ctx context.Context, product catalog.Product, useExternal bool) Description {
	if !useExternal || g.apiKey == "" {
		return Description{Text: Template(product), Source: SourceTemplate}
	}

	text, err := g.generateExternal(ctx, product)
	if err != nil {
		slog.Warn("external description generation failed, using template",
			"asin", product.ASIN, "error", err)
		return Description{Text: Template(product), Source: SourceTemplate}
	}

	slog.Info("generated description with external service",
		"asin", product.ASIN, "model", g.model, "chars", len([]rune(text)))
	return Description{Text: text, Source: SourceGenerated}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (g *Generator) generateExternal(ctx context.Context, product catalog.Product) (string, error) {
	req := messagesRequest{
		Model:     g.model,
		MaxTokens: 1024,
		Messages: []message{
			{Role: "user", Content: buildPrompt(product)},
		},
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if msgResp.Error != nil {
		return "", fmt.Errorf("API error: %s", msgResp.Error.Message)
	}

	for _, block := range msgResp.Content {
		if text := strings.TrimSpace(block.Text); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("empty response from model")
}

func buildPrompt(product catalog.Product) string {
	return fmt.Sprintf(`Write a compelling Pinterest description for this skincare product. Make it:
- Attention-grabbing and authentic
- Include science-backed benefits (be specific about ingredients)
- Use emojis strategically
- Include a clear CTA
- Add relevant hashtags at the end
- Maximum 500 characters for main text
- Emphasize why people NEED this now

Product: %s
ASIN: %s

Write ONLY the Pinterest description, nothing else.`, product.Name, product.ASIN)
}

// Template is the deterministic fallback description. Identical product input
// yields byte-identical output.
func Template(product catalog.Product) string {
	return fmt.Sprintf(`✨ %s - Your New Skincare Essential

Transform your routine with this trending product that's taking 2026 by storm.

💫 WHY SKINCARE LOVERS ARE OBSESSED:
• Science-backed formula with proven results
• Addresses multiple skin concerns
• Suitable for all skin types
• Visible improvement in just weeks

👉 Tap the link to shop and transform your skincare routine!

#KBeauty #Skincare #SkincareRoutine #BeautyFinds #GlowingSkin #SkincareAddict #HealthySkin #SkincareTips #BeautyDeals`, product.Name)
}
