// Package leads is the boundary between a validated, scored wizard session
// and whatever takes in leads (CRM, email, chat).
package leads

import (
	"context"

	"go.uber.org/zap"

	"github.com/stratalace/site/internal/form"
)

// Receipt acknowledges an accepted lead.
type Receipt struct {
	Reference string
	Duplicate bool
}

// SubmissionAdapter hands a payload to lead intake. It returns a
// *ValidationError when intake rejects fields, any other error for transport
// or upstream failures.
type SubmissionAdapter interface {
	CreateLead(ctx context.Context, p Payload) (Receipt, error)
}

// LogAdapter accepts every lead and only logs it.
type LogAdapter struct {
	logger *zap.Logger
}

func NewLogAdapter(logger *zap.Logger) *LogAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogAdapter{logger: logger}
}

func (a *LogAdapter) CreateLead(ctx context.Context, p Payload) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, &SubmitError{Message: "cancelled", Transient: true, Err: err}
	}
	a.logger.Info("lead received (log adapter)",
		zap.String("company", p.Fields[form.CompanyName]),
		zap.String("email", p.Fields[form.Email]),
		zap.String("lead_score", p.LeadScore),
		zap.String("idempotency_key", p.IdempotencyKey),
	)
	return Receipt{Reference: "LOG-" + p.IdempotencyKey}, nil
}
