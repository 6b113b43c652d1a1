package intake

import (
	"sync"
	"time"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/scoring"
)

// DefaultIdempotencyWindow is how long a repeated Idempotency-Key maps to the
// first accepted lead.
const DefaultIdempotencyWindow = 24 * time.Hour

type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// Lead is an accepted submission as seen by the intake side.
type Lead struct {
	Reference      string                        `json:"reference"`
	IdempotencyKey string                        `json:"idempotency_key,omitempty"`
	ReceivedAt     time.Time                     `json:"received_at"`
	Fields         form.Fields                   `json:"fields"`
	Score          scoring.LeadScore             `json:"score"`
	ClientScore    *scoring.LeadScore            `json:"client_score,omitempty"`
	Brief          string                        `json:"brief,omitempty"`
	Notifications  map[string]NotificationStatus `json:"notifications"`
}

// Inbox keeps accepted leads in memory for idempotency lookups. It is
// bounded; the oldest leads are evicted first.
type Inbox struct {
	mu       sync.RWMutex
	leads    map[string]*Lead
	byKey    map[string]string
	window   time.Duration
	capacity int
	now      func() time.Time
}

func NewInbox(window time.Duration, capacity int, clock func() time.Time) *Inbox {
	if window <= 0 {
		window = DefaultIdempotencyWindow
	}
	if capacity <= 0 {
		capacity = 1000
	}
	if clock == nil {
		clock = time.Now
	}
	return &Inbox{
		leads:    make(map[string]*Lead),
		byKey:    make(map[string]string),
		window:   window,
		capacity: capacity,
		now:      clock,
	}
}

// Lookup returns the lead previously accepted under key within the window.
func (b *Inbox) Lookup(key string) (Lead, bool) {
	if key == "" {
		return Lead{}, false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	ref, ok := b.byKey[key]
	if !ok {
		return Lead{}, false
	}
	lead, ok := b.leads[ref]
	if !ok || b.now().Sub(lead.ReceivedAt) > b.window {
		return Lead{}, false
	}
	return *lead, true
}

// Record stores an accepted lead.
func (b *Inbox) Record(lead Lead) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leads[lead.Reference] = &lead
	if lead.IdempotencyKey != "" {
		b.byKey[lead.IdempotencyKey] = lead.Reference
	}
	b.evictLocked()
}

func (b *Inbox) Get(reference string) (Lead, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lead, ok := b.leads[reference]
	if !ok {
		return Lead{}, false
	}
	return *lead, true
}

func (b *Inbox) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.leads)
}

func (b *Inbox) evictLocked() {
	for len(b.leads) > b.capacity {
		var oldest *Lead
		for _, l := range b.leads {
			if oldest == nil || l.ReceivedAt.Before(oldest.ReceivedAt) {
				oldest = l
			}
		}
		delete(b.leads, oldest.Reference)
		if oldest.IdempotencyKey != "" && b.byKey[oldest.IdempotencyKey] == oldest.Reference {
			delete(b.byKey, oldest.IdempotencyKey)
		}
	}
}
