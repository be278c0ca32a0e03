package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/redpenlabs/teardown/internal/config"
)

// GeminiClient implements Client against the Google Gemini API.
//
// A minimum inter-request interval, when configured, paces successive
// calls to respect provider quotas. The pacing lock is the only state
// shared between concurrent item pipelines.
type GeminiClient struct {
	client      *genai.Client
	model       string
	visionModel string
	temperature float32

	minInterval time.Duration
	mu          sync.Mutex
	lastRequest time.Time
}

// NewGeminiClient creates a Gemini-backed client from configuration.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required (set GEMINI_API_KEY)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
		temperature: cfg.Temperature,
		minInterval: time.Duration(cfg.MinRequestIntervalMS) * time.Millisecond,
	}, nil
}

// Complete sends a system + user prompt and returns the model text.
func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.pace(ctx); err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(c.temperature),
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// DescribeImage sends a prompt plus PNG bytes to the vision model.
func (c *GeminiClient) DescribeImage(ctx context.Context, prompt string, pngData []byte) (string, error) {
	if err := c.pace(ctx); err != nil {
		return "", err
	}

	content := genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(pngData, "image/png"),
	}, genai.RoleUser)

	resp, err := c.client.Models.GenerateContent(ctx, c.visionModel, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini vision call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini vision returned an empty response")
	}
	return text, nil
}

// pace blocks until the minimum interval since the previous request has
// elapsed, or the context is cancelled.
func (c *GeminiClient) pace(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}

	c.mu.Lock()
	now := time.Now()
	wait := c.lastRequest.Add(c.minInterval).Sub(now)
	if wait < 0 {
		wait = 0
	}
	c.lastRequest = now.Add(wait)
	c.mu.Unlock()

	if wait == 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
