package intake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stratalace/site/internal/form/formtest"
	"github.com/stratalace/site/internal/leads"
	"github.com/stratalace/site/internal/scoring"
)

type fakeNotifier struct {
	name string
	err  error

	mu    sync.Mutex
	leads []Lead
}

func (n *fakeNotifier) Name() string { return n.name }

func (n *fakeNotifier) Notify(_ context.Context, lead Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.leads = append(n.leads, lead)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.leads)
}

type fakeBriefer struct {
	out string
	err error
}

func (b fakeBriefer) Brief(context.Context, Lead) (string, error) {
	return b.out, b.err
}

var errBoom = errors.New("boom")

func fixedClock() func() time.Time {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func validPayload(key string) leads.Payload {
	f := formtest.ValidFields()
	return leads.NewPayload(f, scoring.Score(f), key)
}
