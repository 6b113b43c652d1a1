package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/stratalace/site/internal/form"
)

const briefSystemPrompt = "You are a sales operations assistant at a technology consultancy. " +
	"Summarize inbound leads for the sales team in at most three sentences: what they need, " +
	"how ready they look, and the best next step. Plain text only."

// Briefer writes a short triage summary of a lead.
type Briefer interface {
	Brief(ctx context.Context, lead Lead) (string, error)
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicBriefer asks Claude for the triage summary.
type AnthropicBriefer struct {
	messages AnthropicMessager
}

func NewAnthropicBriefer(apiKey string) (*AnthropicBriefer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key not configured")
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicBriefer{messages: &c.Messages}, nil
}

func (b *AnthropicBriefer) Brief(ctx context.Context, lead Lead) (string, error) {
	resp, err := b.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.ModelClaudeSonnet4_20250514,
		MaxTokens:   300,
		System:      []anthropic.TextBlockParam{{Text: briefSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(briefPrompt(lead)))},
		Temperature: anthropic.Float(0.2),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", errors.New("empty brief")
	}
	return out, nil
}

func briefPrompt(lead Lead) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Lead %s, score %d/100 (%s).\n\n", lead.Reference, lead.Score.Total, lead.Score.Tier)
	for _, k := range form.AllKeys() {
		if k == form.Email || k == form.Phone {
			continue
		}
		v := lead.Fields.List(k)
		if len(v) == 0 || strings.TrimSpace(strings.Join(v, "")) == "" {
			continue
		}
		labels := make([]string, 0, len(v))
		for _, item := range v {
			labels = append(labels, form.Label(k, item))
		}
		fmt.Fprintf(&sb, "%s: %s\n", k, strings.Join(labels, form.ListSeparator))
	}
	return sb.String()
}
