package advisor

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

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	minDifficulty = 1
	maxDifficulty = 5
)

// OpenAI talks to an OpenAI-compatible chat-completions endpoint and
// asks for strict JSON answers.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (o *OpenAI) SuggestOrder(ctx context.Context, items []Item) ([]int64, error) {
	if len(items) == 0 {
		return nil, nil
	}
	raw, err := o.complete(ctx, buildOrderPrompt(items))
	if err != nil {
		return nil, err
	}
	return parseOrderResponse(raw)
}

func (o *OpenAI) EstimateEffort(ctx context.Context, title, subject, description string) (Estimate, error) {
	raw, err := o.complete(ctx, buildEstimatePrompt(title, subject, description))
	if err != nil {
		return Estimate{}, err
	}
	return parseEstimateResponse(raw)
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete sends one chat turn and returns the raw assistant content.
func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a study planning assistant. Respond with a single JSON object and nothing else."},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.7,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("advisor request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("advisor response read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advisor returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("advisor response decode failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("advisor returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func buildOrderPrompt(items []Item) string {
	var sb strings.Builder

	sb.WriteString("Order these assignments by the most effective sequence to work on them.\n")
	sb.WriteString("Weigh deadline urgency first, then total effort, then difficulty.\n\n")
	sb.WriteString("Assignments:\n")
	for _, it := range items {
		deadline := it.Deadline
		if deadline == "" {
			deadline = "none"
		}
		sb.WriteString(fmt.Sprintf("- id %d: %q (subject: %s, deadline: %s, difficulty: %d/5, estimated: %d min)\n",
			it.ID, it.Title, it.Subject, deadline, it.Difficulty, it.EstimatedTime))
	}
	sb.WriteString("\nRespond with JSON: {\"sorted_ids\": [id, id, ...]} listing every id exactly once.\n")

	return sb.String()
}

func buildEstimatePrompt(title, subject, description string) string {
	var sb strings.Builder

	sb.WriteString("Estimate the effort for this assignment.\n\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", title))
	sb.WriteString(fmt.Sprintf("Subject: %s\n", subject))
	if description != "" {
		sb.WriteString(fmt.Sprintf("Details: %s\n", description))
	}
	sb.WriteString("\nRespond with JSON: {\"difficulty\": 1-5, \"estimatedTime\": total minutes, \"reason\": one short sentence}.\n")

	return sb.String()
}

type orderResponse struct {
	SortedIDs []int64 `json:"sorted_ids"`
}

// parseOrderResponse decodes {"sorted_ids": [...]} from an untrusted
// reply. Duplicate IDs are dropped; validity against the live list is
// the caller's merge step.
func parseOrderResponse(raw string) ([]int64, error) {
	var parsed orderResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("advisor sort reply malformed: %w", err)
	}
	if len(parsed.SortedIDs) == 0 {
		return nil, fmt.Errorf("advisor sort reply has no sorted_ids")
	}

	seen := make(map[int64]bool, len(parsed.SortedIDs))
	ids := make([]int64, 0, len(parsed.SortedIDs))
	for _, id := range parsed.SortedIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func parseEstimateResponse(raw string) (Estimate, error) {
	var parsed Estimate
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Estimate{}, fmt.Errorf("advisor estimate reply malformed: %w", err)
	}
	parsed.Difficulty = clampDifficulty(parsed.Difficulty)
	if parsed.EstimatedTime < 1 {
		parsed.EstimatedTime = 1
	}
	parsed.Reason = strings.TrimSpace(parsed.Reason)
	return parsed, nil
}

func clampDifficulty(d int) int {
	if d < minDifficulty {
		return minDifficulty
	}
	if d > maxDifficulty {
		return maxDifficulty
	}
	return d
}
