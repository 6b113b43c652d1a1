package intake

import (
	"context"
	"errors"

	"github.com/stratalace/site/internal/leads"
)

// LocalAdapter is a leads.SubmissionAdapter that calls the intake service in
// process, for deployments where the wizard and intake share a binary.
type LocalAdapter struct {
	svc *Service
}

func NewLocalAdapter(svc *Service) *LocalAdapter {
	return &LocalAdapter{svc: svc}
}

func (a *LocalAdapter) CreateLead(ctx context.Context, p leads.Payload) (leads.Receipt, error) {
	rec, err := a.svc.Intake(ctx, p)
	if err == nil {
		return rec, nil
	}
	var ve *leads.ValidationError
	if errors.As(err, &ve) {
		return leads.Receipt{}, err
	}
	se := &leads.SubmitError{Message: err.Error(), Err: err}
	var ie *Error
	if errors.As(err, &ie) {
		se.Status = ie.Status
		se.Transient = ie.Code == CodeUnavailable
	}
	return leads.Receipt{}, se
}
