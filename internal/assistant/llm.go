// internal/assistant/llm.go

package assistant

import (
    "context"
    "fmt"
    "strings"

    "github.com/google/generative-ai-go/genai"
    "google.golang.org/api/option"
)

// LLM generates text for a prompt
type LLM interface {
    Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient talks to Google's Gemini models
type GeminiClient struct {
    client *genai.Client
    model  *genai.GenerativeModel
}

// NewGeminiClient creates a client for the named model
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
    client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
    if err != nil {
        return nil, fmt.Errorf("failed to create gemini client: %w", err)
    }

    model := client.GenerativeModel(modelName)
    model.SetTemperature(0.4)
    model.SetMaxOutputTokens(500)

    return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Close() error {
    return c.client.Close()
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
    resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
    if err != nil {
        return "", fmt.Errorf("gemini request failed: %w", err)
    }

    if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
        return "", fmt.Errorf("gemini returned no content")
    }

    var sb strings.Builder
    for _, part := range resp.Candidates[0].Content.Parts {
        if txt, ok := part.(genai.Text); ok {
            sb.WriteString(string(txt))
        }
    }

    text := strings.TrimSpace(sb.String())
    if text == "" {
        return "", fmt.Errorf("gemini returned empty text")
    }
    return text, nil
}

// stripCodeFence removes a markdown ```json fence around a model answer
func stripCodeFence(s string) string {
    s = strings.TrimSpace(s)
    s = strings.TrimPrefix(s, "```json")
    s = strings.TrimPrefix(s, "```")
    s = strings.TrimSuffix(s, "```")
    return strings.TrimSpace(s)
}
