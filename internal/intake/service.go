// Package intake is the server side of lead submission: it re-validates the
// payload, dedupes retries, scores the lead and fans it out to the configured
// notifiers.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/leads"
	"github.com/stratalace/site/internal/scoring"
)

const (
	briefTimeout  = 8 * time.Second
	notifyTimeout = 10 * time.Second
)

var tracer = otel.Tracer("github.com/stratalace/site/internal/intake")

type Config struct {
	Notifiers []Notifier
	Briefer   Briefer
	Inbox     *Inbox
	Logger    *zap.Logger
	Clock     func() time.Time
}

type Service struct {
	notifiers []Notifier
	briefer   Briefer
	inbox     *Inbox
	logger    *zap.Logger
	now       func() time.Time

	// keyLocks serializes submissions sharing an idempotency key.
	keyMu    sync.Mutex
	keyLocks map[string]*keyLock
}

func NewService(cfg Config) *Service {
	s := &Service{
		notifiers: cfg.Notifiers,
		briefer:   cfg.Briefer,
		inbox:     cfg.Inbox,
		logger:    cfg.Logger,
		now:       cfg.Clock,
		keyLocks:  map[string]*keyLock{},
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.inbox == nil {
		s.inbox = NewInbox(DefaultIdempotencyWindow, 0, s.now)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *Service) Inbox() *Inbox {
	return s.inbox
}

// Intake accepts one lead payload. It returns *leads.ValidationError for
// schema failures and *Error for everything else.
func (s *Service) Intake(ctx context.Context, p leads.Payload) (leads.Receipt, error) {
	ctx, span := tracer.Start(ctx, "intake.Intake")
	defer span.End()

	fields := p.FormFields()
	if errs := form.ValidateAll(fields); len(errs) > 0 {
		span.SetAttributes(attribute.Int("lead.validation_errors", len(errs)))
		return leads.Receipt{}, &leads.ValidationError{Errors: errs}
	}

	if p.IdempotencyKey != "" {
		unlock := s.lockKey(p.IdempotencyKey)
		defer unlock()
		if prev, ok := s.inbox.Lookup(p.IdempotencyKey); ok {
			s.logger.Info("duplicate lead submission",
				zap.String("reference", prev.Reference),
				zap.String("idempotency_key", p.IdempotencyKey),
			)
			return leads.Receipt{Reference: prev.Reference, Duplicate: true}, nil
		}
	}

	ref, err := newReference()
	if err != nil {
		return leads.Receipt{}, newError(CodeInternal, "failed to allocate lead reference", err)
	}
	lead := Lead{
		Reference:      ref,
		IdempotencyKey: p.IdempotencyKey,
		ReceivedAt:     s.now().UTC(),
		Fields:         fields,
		Score:          scoring.Score(fields),
		ClientScore:    s.clientScore(p),
		Notifications:  map[string]NotificationStatus{},
	}
	span.SetAttributes(
		attribute.String("lead.reference", ref),
		attribute.Int("lead.score", lead.Score.Total),
		attribute.String("lead.tier", string(lead.Score.Tier)),
	)
	if lead.ClientScore != nil && *lead.ClientScore != lead.Score {
		s.logger.Debug("client lead score differs from server score",
			zap.String("reference", ref),
			zap.Int("client_total", lead.ClientScore.Total),
			zap.Int("server_total", lead.Score.Total),
		)
	}

	lead.Brief = s.brief(ctx, lead)

	if err := s.notify(ctx, &lead); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return leads.Receipt{}, err
	}

	s.inbox.Record(lead)
	s.logger.Info("lead accepted",
		zap.String("reference", lead.Reference),
		zap.Int("score", lead.Score.Total),
		zap.String("tier", string(lead.Score.Tier)),
		zap.Any("notifications", lead.Notifications),
	)
	return leads.Receipt{Reference: lead.Reference}, nil
}

// clientScore parses the submitted score best-effort. A corrupt value is
// logged and treated as absent.
func (s *Service) clientScore(p leads.Payload) *scoring.LeadScore {
	if p.LeadScore == "" {
		return nil
	}
	sc, err := scoring.Decode(p.LeadScore)
	if err != nil {
		s.logger.Warn("ignoring unparsable lead score", zap.Error(err))
		return nil
	}
	return &sc
}

func (s *Service) brief(ctx context.Context, lead Lead) string {
	if s.briefer == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, briefTimeout)
	defer cancel()
	out, err := s.briefer.Brief(ctx, lead)
	if err != nil {
		s.logger.Warn("lead brief failed", zap.String("reference", lead.Reference), zap.Error(err))
		return ""
	}
	return out
}

// notify fans the lead out to every notifier. The lead is accepted when at
// least one notifier succeeds, or when none are configured.
func (s *Service) notify(ctx context.Context, lead *Lead) error {
	if len(s.notifiers) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	results := make([]error, len(s.notifiers))
	var g errgroup.Group
	for i, n := range s.notifiers {
		g.Go(func() error {
			nctx, span := tracer.Start(ctx, "intake.notify."+n.Name())
			defer span.End()
			if err := n.Notify(nctx, *lead); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				results[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for i, n := range s.notifiers {
		if results[i] != nil {
			lead.Notifications[n.Name()] = NotificationFailed
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), results[i]))
			s.logger.Warn("lead notification failed",
				zap.String("reference", lead.Reference),
				zap.String("notifier", n.Name()),
				zap.Error(results[i]),
			)
			continue
		}
		lead.Notifications[n.Name()] = NotificationSent
	}
	if len(errs) == len(s.notifiers) {
		return newError(CodeUnavailable, "lead could not be delivered", errors.Join(errs...))
	}
	return nil
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (s *Service) lockKey(key string) func() {
	s.keyMu.Lock()
	kl, ok := s.keyLocks[key]
	if !ok {
		kl = &keyLock{}
		s.keyLocks[key] = kl
	}
	kl.refs++
	s.keyMu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		s.keyMu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(s.keyLocks, key)
		}
		s.keyMu.Unlock()
	}
}

func newReference() (string, error) {
	id, err := gonanoid.Generate("0123456789ABCDEFGHJKLMNPQRSTUVWXYZ", 10)
	if err != nil {
		return "", err
	}
	return "LEAD-" + id, nil
}
