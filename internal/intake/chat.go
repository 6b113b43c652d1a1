package intake

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/scoring"
)

// webhookFunc executes a chat webhook. It exists so tests can capture the
// message instead of calling out.
type webhookFunc func(webhookID, token string, params *discordgo.WebhookParams) error

// ChatNotifier posts a lead summary to a Discord-compatible webhook.
type ChatNotifier struct {
	webhookID string
	token     string
	siteURL   string
	execute   webhookFunc
}

// NewChatNotifier parses a webhook URL of the form
// https://discord.com/api/webhooks/{id}/{token}.
func NewChatNotifier(webhookURL, siteURL string) (*ChatNotifier, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return &ChatNotifier{
		webhookID: id,
		token:     token,
		siteURL:   strings.TrimRight(siteURL, "/"),
		execute: func(webhookID, token string, params *discordgo.WebhookParams) error {
			_, err := session.WebhookExecute(webhookID, token, true, params)
			return err
		},
	}, nil
}

func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("parse webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("webhook url %q has no /webhooks/{id}/{token} path", u.Redacted())
}

func (n *ChatNotifier) Name() string { return "chat" }

func (n *ChatNotifier) Notify(ctx context.Context, lead Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.execute(n.webhookID, n.token, &discordgo.WebhookParams{
		Username: "Stratalace Leads",
		Content:  Subject(lead),
		Embeds:   []*discordgo.MessageEmbed{n.buildLeadEmbed(lead)},
	}); err != nil {
		return fmt.Errorf("execute chat webhook: %w", err)
	}
	return nil
}

func (n *ChatNotifier) buildLeadEmbed(lead Lead) *discordgo.MessageEmbed {
	color := 0x95A5A6
	switch lead.Score.Tier {
	case scoring.TierHigh:
		color = 0xE74C3C
	case scoring.TierMedium:
		color = 0xF39C12
	}

	f := lead.Fields
	fields := []*discordgo.MessageEmbedField{
		{Name: "Score", Value: fmt.Sprintf("%d (%s)", lead.Score.Total, lead.Score.Tier), Inline: true},
		{Name: "Budget", Value: orDash(form.Label(form.BudgetRange, f.Get(form.BudgetRange))), Inline: true},
		{Name: "Urgency", Value: orDash(form.Label(form.Urgency, f.Get(form.Urgency))), Inline: true},
		{Name: "Challenge", Value: orDash(form.Label(form.PrimaryChallenge, f.Get(form.PrimaryChallenge))), Inline: true},
		{Name: "Company size", Value: orDash(form.Label(form.CompanySize, f.Get(form.CompanySize))), Inline: true},
		{Name: "Contact", Value: orDash(strings.TrimSpace(f.Get(form.ContactName) + " <" + f.Get(form.Email) + ">"))},
	}
	description := lead.Brief
	if description == "" {
		description = truncate(f.Get(form.ProjectScope), 500)
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s - %s", lead.Reference, orDash(f.Get(form.CompanyName))),
		Description: description,
		Color:       color,
		Fields:      fields,
		Timestamp:   lead.ReceivedAt.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Website contact wizard",
		},
	}
	if base := strings.TrimRight(n.siteURL, "/"); base != "" {
		embed.URL = base + "/contact"
	}
	return embed
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
