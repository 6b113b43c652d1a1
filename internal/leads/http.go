package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// HTTPAdapter posts payloads as multipart/form-data to an intake endpoint.
type HTTPAdapter struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

func NewHTTPAdapter(endpoint string, logger *zap.Logger) *HTTPAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPAdapter{
		endpoint: strings.TrimRight(endpoint, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

func (a *HTTPAdapter) CreateLead(ctx context.Context, p Payload) (Receipt, error) {
	ctx, span := otel.Tracer("github.com/stratalace/site/internal/leads").Start(ctx, "leads.CreateLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.endpoint", a.endpoint))

	rec, err := a.post(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Warn("lead submission failed", zap.String("endpoint", a.endpoint), zap.Error(err))
		return Receipt{}, err
	}
	return rec, nil
}

func (a *HTTPAdapter) post(ctx context.Context, p Payload) (Receipt, error) {
	body, contentType, err := p.Encode()
	if err != nil {
		return Receipt{}, &SubmitError{Message: "encode payload", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, body)
	if err != nil {
		return Receipt{}, &SubmitError{Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if p.IdempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, p.IdempotencyKey)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return Receipt{}, &SubmitError{Message: "request failed", Transient: true, Err: err}
	}
	defer resp.Body.Close()
	blob, _ := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))

	var out Response
	if err := json.Unmarshal(blob, &out); err != nil {
		return Receipt{}, &SubmitError{
			Status:    resp.StatusCode,
			Message:   fmt.Sprintf("unreadable response body=%q", truncate(string(blob), 200)),
			Transient: resp.StatusCode >= 500,
			Err:       err,
		}
	}
	if out.Success && resp.StatusCode < 400 {
		return Receipt{Reference: out.Reference, Duplicate: out.Duplicate}, nil
	}
	if out.Error != nil && out.Error.Type == ErrorTypeValidation && len(out.Error.Errors) > 0 {
		return Receipt{}, &ValidationError{Errors: out.Error.Errors}
	}
	msg := "lead intake rejected submission"
	if out.Error != nil && out.Error.Message != "" {
		msg = out.Error.Message
	}
	return Receipt{}, &SubmitError{
		Status:    resp.StatusCode,
		Message:   msg,
		Transient: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
