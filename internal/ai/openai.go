package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/david/parts-broker/internal/procure"
)

const (
	defaultModel = "gpt-4o"

	maxRetries     = 3
	attemptTimeout = 20 * time.Second
)

// chatCompleter is the slice of the OpenAI client the package uses, split
// out so tests can stub the API.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client talks to the OpenAI API for query parsing and recommendations.
// Both operations are best-effort: callers hold the deterministic fallback.
type Client struct {
	api     chatCompleter
	model   string
	limiter *rate.Limiter

	// backoff computes the delay before a retry; overridable in tests.
	backoff func(attempt int) time.Duration
}

// NewClient builds a Client for the given API key. model may be empty.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		api:     openai.NewClient(apiKey),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(3), 5), // 3 requests per second, burst of 5
		backoff: jitteredBackoff,
	}
}

func jitteredBackoff(attempt int) time.Duration {
	return time.Duration(attempt)*time.Second + time.Duration(rand.Intn(1000))*time.Millisecond
}

const intentSystemPrompt = `You are a procurement assistant for automotive parts.
Parse the user's query and extract the following information:
- product_category (brakes, filters, engine, electrical, suspension, ignition, transmission, exhaust, cooling, steering, fuel_system, interior, exterior, accessories, or "general")
- product_name (specific part name)
- brand (if mentioned, else empty string)
- quantity (number of units, default 1)
- urgency (high, medium, low)
- price_preference (budget, mid-range, premium)

Respond ONLY with a JSON object containing exactly these fields.`

// ResolveIntent parses a free-text procurement query into a structured
// intent. Implements procure.IntentResolver.
func (c *Client) ResolveIntent(ctx context.Context, query string) (procure.Intent, error) {
	content, err := c.complete(ctx, intentSystemPrompt, query, 0.1)
	if err != nil {
		return procure.Intent{}, err
	}

	payload, err := extractJSON(content)
	if err != nil {
		return procure.Intent{}, fmt.Errorf("intent response: %w", err)
	}

	var intent procure.Intent
	if err := json.Unmarshal([]byte(payload), &intent); err != nil {
		return procure.Intent{}, fmt.Errorf("failed to parse intent json: %w", err)
	}
	return intent, nil
}

const recommendSystemPrompt = "You are a procurement expert. Provide 2-3 concise recommendations based on the offers provided."

// Recommend asks for purchasing advice over the top offers. Implements
// procure.Recommender.
func (c *Client) Recommend(ctx context.Context, query string, intent procure.Intent, top []procure.OfferSummary) ([]string, error) {
	summaries := make([]string, 0, len(top))
	for _, o := range top {
		summaries = append(summaries, fmt.Sprintf("%s: $%.2f (%d days)", o.Supplier, o.TotalCost, o.DeliveryDays))
	}

	user := fmt.Sprintf("Query: %s\nUrgency: %s, price preference: %s\nOffers: %s\nProvide procurement recommendations.",
		query, intent.Urgency, intent.PricePreference, strings.Join(summaries, ", "))

	content, err := c.complete(ctx, recommendSystemPrompt, user, 0.3)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// complete issues one chat completion with rate limiting and retries.
func (c *Client) complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	var resp openai.ChatCompletionResponse
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if c.limiter != nil {
			if err = c.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limiter: %w", err)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		resp, err = c.api.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			Temperature: temperature,
		})
		cancel()

		if err == nil && len(resp.Choices) > 0 {
			return resp.Choices[0].Message.Content, nil
		}
		if err == nil {
			err = fmt.Errorf("openai returned no choices")
		}
		log.Printf("openai attempt %d/%d failed: %v", attempt, maxRetries, err)

		if attempt < maxRetries {
			var delay time.Duration
			if c.backoff != nil {
				delay = c.backoff(attempt)
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	return "", fmt.Errorf("openai request failed after %d attempts: %w", maxRetries, err)
}

// extractJSON pulls the outermost JSON object out of a completion. Models
// occasionally wrap JSON in prose or code fences even when told not to.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON object in response: %q", raw)
	}
	return raw[start : end+1], nil
}
