package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stratalace/site/internal/form"
)

// Notifier delivers an accepted lead to one downstream system.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, lead Lead) error
}

// CRMNotifier posts leads as JSON to a CRM intake endpoint.
type CRMNotifier struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewCRMNotifier(url, apiKey string) *CRMNotifier {
	return &CRMNotifier{
		url:    strings.TrimRight(url, "/"),
		apiKey: apiKey,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *CRMNotifier) Name() string { return "crm" }

type crmLead struct {
	Reference  string            `json:"reference"`
	ReceivedAt time.Time         `json:"received_at"`
	Fields     map[string]string `json:"fields"`
	Score      int               `json:"score"`
	Tier       string            `json:"tier"`
	Brief      string            `json:"brief,omitempty"`
	Source     string            `json:"source"`
}

func (n *CRMNotifier) Notify(ctx context.Context, lead Lead) error {
	blob, err := json.Marshal(crmLead{
		Reference:  lead.Reference,
		ReceivedAt: lead.ReceivedAt,
		Fields:     lead.Fields.Flatten(),
		Score:      lead.Score.Total,
		Tier:       string(lead.Score.Tier),
		Brief:      lead.Brief,
		Source:     "website-contact-wizard",
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(blob))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}
	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("POST %s failed status=%d body=%s", n.url, resp.StatusCode, string(body))
	}
	return nil
}

// EmailNotifier stands in for a transactional email integration; it only
// logs the message it would send.
type EmailNotifier struct {
	to     string
	logger *zap.Logger
}

func NewEmailNotifier(to string, logger *zap.Logger) *EmailNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailNotifier{to: to, logger: logger}
}

func (n *EmailNotifier) Name() string { return "email" }

func (n *EmailNotifier) Notify(ctx context.Context, lead Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Info("lead email (stub)",
		zap.String("to", n.to),
		zap.String("subject", Subject(lead)),
		zap.String("reference", lead.Reference),
	)
	return nil
}

// Subject is the one-line summary used by email and chat notifications.
func Subject(lead Lead) string {
	company := strings.TrimSpace(lead.Fields.Get(form.CompanyName))
	if company == "" {
		company = "Unknown company"
	}
	return fmt.Sprintf("[%s %d] New lead: %s", strings.ToUpper(string(lead.Score.Tier)), lead.Score.Total, company)
}
