// Package advisor wraps the optional language-model service that
// suggests an assignment ordering or a difficulty/time estimate. Its
// output is advisory: every caller must be correct with the advisor
// absent, erroring, or returning nonsense.
package advisor

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("advisor: service not configured")

// Item is the slice of an assignment the service is allowed to see.
type Item struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Subject       string `json:"subject"`
	Deadline      string `json:"deadline"`
	Difficulty    int    `json:"difficulty"`
	EstimatedTime int    `json:"estimatedTime"`
}

// Estimate is a suggested effort rating for a single assignment. The
// fields arrive clamped to the model's legal ranges.
type Estimate struct {
	Difficulty    int    `json:"difficulty"`
	EstimatedTime int    `json:"estimatedTime"`
	Reason        string `json:"reason"`
}

type Advisor interface {
	// SuggestOrder proposes a processing order as a list of assignment
	// IDs. The list may omit IDs or include unknown ones; callers merge
	// it against the live list.
	SuggestOrder(ctx context.Context, items []Item) ([]int64, error)

	// EstimateEffort suggests a difficulty and time estimate for a
	// single assignment described in free text.
	EstimateEffort(ctx context.Context, title, subject, description string) (Estimate, error)
}

// New picks an implementation from the configured credentials. An
// empty API key yields the disabled advisor rather than an error so
// the app runs fully offline by default.
func New(apiKey, model string) Advisor {
	if apiKey == "" {
		return Disabled{}
	}
	return NewOpenAI(apiKey, model)
}

// Disabled is the advisor used when no API key is configured; every
// call reports ErrUnavailable.
type Disabled struct{}

func (Disabled) SuggestOrder(context.Context, []Item) ([]int64, error) {
	return nil, ErrUnavailable
}

func (Disabled) EstimateEffort(context.Context, string, string, string) (Estimate, error) {
	return Estimate{}, ErrUnavailable
}
