package intake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/form/formtest"
	"github.com/stratalace/site/internal/scoring"
)

func testLead() Lead {
	f := formtest.ValidFields()
	return Lead{
		Reference:  "LEAD-TEST",
		ReceivedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Fields:     f,
		Score:      scoring.Score(f),
	}
}

func TestCRMNotifierPostsJSON(t *testing.T) {
	var got crmLead
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	n := NewCRMNotifier(srv.URL, "crm-key")
	require.NoError(t, n.Notify(context.Background(), testLead()))
	assert.Equal(t, "Bearer crm-key", auth)
	assert.Equal(t, "LEAD-TEST", got.Reference)
	assert.Equal(t, "aws, salesforce", got.Fields[form.CurrentTechStack])
	assert.Equal(t, testLead().Score.Total, got.Score)
}

func TestCRMNotifierErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewCRMNotifier(srv.URL, "").Notify(context.Background(), testLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}

func TestParseWebhookURL(t *testing.T) {
	id, token, err := parseWebhookURL("https://discord.com/api/webhooks/123456/abc-DEF_ghi")
	require.NoError(t, err)
	assert.Equal(t, "123456", id)
	assert.Equal(t, "abc-DEF_ghi", token)

	_, _, err = parseWebhookURL("https://discord.com/api/channels/1")
	assert.Error(t, err)
}

func TestChatNotifierBuildsEmbed(t *testing.T) {
	var captured *discordgo.WebhookParams
	n := &ChatNotifier{
		webhookID: "1",
		token:     "t",
		siteURL:   "https://stratalace.example/",
		execute: func(id, token string, params *discordgo.WebhookParams) error {
			captured = params
			return nil
		},
	}
	lead := testLead()
	lead.Brief = "Ready to buy."
	require.NoError(t, n.Notify(context.Background(), lead))

	require.NotNil(t, captured)
	assert.Equal(t, Subject(lead), captured.Content)
	require.Len(t, captured.Embeds, 1)
	embed := captured.Embeds[0]
	assert.Equal(t, "LEAD-TEST - Acme Logistics", embed.Title)
	assert.Equal(t, "Ready to buy.", embed.Description)
	assert.Equal(t, "https://stratalace.example/contact", embed.URL)
	assert.Equal(t, "$100k - $250k", embed.Fields[1].Value)
}

func TestChatEmbedURLIgnoresTrailingSlashes(t *testing.T) {
	for _, site := range []string{"https://stratalace.example", "https://stratalace.example/", "https://stratalace.example//"} {
		n := &ChatNotifier{siteURL: site}
		assert.Equal(t, "https://stratalace.example/contact", n.buildLeadEmbed(testLead()).URL, site)
	}
	assert.Empty(t, (&ChatNotifier{}).buildLeadEmbed(testLead()).URL)
}

func TestSubject(t *testing.T) {
	lead := testLead()
	assert.Equal(t, "[MEDIUM 69] New lead: Acme Logistics", Subject(lead))
}

type mockMessager struct {
	params anthropic.MessageNewParams
	resp   *anthropic.Message
	err    error
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	m.params = params
	return m.resp, m.err
}

func TestAnthropicBriefer(t *testing.T) {
	m := &mockMessager{resp: &anthropic.Message{Content: []anthropic.ContentBlockUnion{
		{Type: "text", Text: "  Logistics firm automating dispatch.  "},
	}}}
	b := &AnthropicBriefer{messages: m}

	out, err := b.Brief(context.Background(), testLead())
	require.NoError(t, err)
	assert.Equal(t, "Logistics firm automating dispatch.", out)
	require.Len(t, m.params.Messages, 1)

	prompt := briefPrompt(testLead())
	assert.Contains(t, prompt, "companyName: Acme Logistics")
	assert.Contains(t, prompt, "budgetRange: $100k - $250k")
	assert.NotContains(t, prompt, "jordan@acme.example")
}

func TestAnthropicBrieferEmpty(t *testing.T) {
	b := &AnthropicBriefer{messages: &mockMessager{resp: &anthropic.Message{}}}
	_, err := b.Brief(context.Background(), testLead())
	assert.Error(t, err)

	_, err = NewAnthropicBriefer(" ")
	assert.Error(t, err)
}
