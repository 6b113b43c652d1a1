package wizard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/leads"
)

// DefaultSubmitTimeout bounds the adapter call so a hung intake cannot leave
// the session submitting forever.
const DefaultSubmitTimeout = 15 * time.Second

// Controller owns one wizard State. It is not safe for concurrent use; each
// session gets its own Controller.
type Controller struct {
	state   State
	adapter leads.SubmissionAdapter
	timeout time.Duration
	logger  *zap.Logger
}

type Option func(*Controller)

func WithSubmitTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController starts a fresh session.
func NewController(adapter leads.SubmissionAdapter, opts ...Option) *Controller {
	return Resume(NewState(), adapter, opts...)
}

// Resume continues an existing session, e.g. one rebuilt from a posted form.
func Resume(s State, adapter leads.SubmissionAdapter, opts ...Option) *Controller {
	if s.Fields == nil {
		s.Fields = form.Fields{}
	}
	if s.Errors == nil {
		s.Errors = map[string]string{}
	}
	s.Step = clampStep(s.Step)
	if s.SessionID == "" {
		s.SessionID = newSessionID()
	}
	c := &Controller{
		state:   s,
		adapter: adapter,
		timeout: DefaultSubmitTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Update(f form.Fields) State {
	return c.dispatch(Update{Fields: f})
}

func (c *Controller) Next() State {
	return c.dispatch(Next{})
}

func (c *Controller) Previous() State {
	return c.dispatch(Previous{})
}

// Submit validates the final step, builds the payload and hands it to the
// adapter. Failures leave the session editable with the error shown.
func (c *Controller) Submit(ctx context.Context) State {
	s := c.dispatch(SubmitStarted{})
	if !s.Submitting {
		return s
	}

	payload := leads.NewPayload(s.Fields, s.Score, s.SessionID)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rec, err := c.createLead(ctx, payload)
	if err != nil {
		c.logger.Warn("wizard submission failed",
			zap.String("session_id", s.SessionID),
			zap.Error(err),
		)
		return c.dispatch(SubmitFailed{Err: err})
	}
	c.logger.Info("wizard submitted",
		zap.String("session_id", s.SessionID),
		zap.String("reference", rec.Reference),
		zap.Int("score", s.Score.Total),
		zap.String("tier", string(s.Score.Tier)),
	)
	return c.dispatch(SubmitSucceeded{Reference: rec.Reference})
}

type createResult struct {
	rec leads.Receipt
	err error
}

// createLead returns when the adapter does or when ctx ends, whichever comes
// first. An adapter that ignores ctx is left to finish in the background.
func (c *Controller) createLead(ctx context.Context, p leads.Payload) (leads.Receipt, error) {
	done := make(chan createResult, 1)
	go func() {
		rec, err := c.adapter.CreateLead(ctx, p)
		done <- createResult{rec: rec, err: err}
	}()
	select {
	case res := <-done:
		return res.rec, res.err
	case <-ctx.Done():
		return leads.Receipt{}, &leads.SubmitError{Message: "submission timed out", Transient: true, Err: ctx.Err()}
	}
}

func (c *Controller) dispatch(a Action) State {
	c.state = Reduce(c.state, a)
	return c.state
}
