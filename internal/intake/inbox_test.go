package intake

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboxLookupWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inbox := NewInbox(time.Hour, 10, func() time.Time { return now })

	inbox.Record(Lead{Reference: "LEAD-1", IdempotencyKey: "k1", ReceivedAt: now})

	got, ok := inbox.Lookup("k1")
	require.True(t, ok)
	assert.Equal(t, "LEAD-1", got.Reference)

	_, ok = inbox.Lookup("")
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = inbox.Lookup("k1")
	assert.False(t, ok, "key outside the window must not match")

	_, ok = inbox.Get("LEAD-1")
	assert.True(t, ok)
}

func TestInboxEvictsOldest(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	inbox := NewInbox(time.Hour, 3, func() time.Time { return base })
	for i := 0; i < 5; i++ {
		inbox.Record(Lead{
			Reference:      fmt.Sprintf("LEAD-%d", i),
			IdempotencyKey: fmt.Sprintf("k%d", i),
			ReceivedAt:     base.Add(time.Duration(i) * time.Minute),
		})
	}
	assert.Equal(t, 3, inbox.Len())
	_, ok := inbox.Get("LEAD-0")
	assert.False(t, ok)
	_, ok = inbox.Lookup("k1")
	assert.False(t, ok)

	for _, ref := range []string{"LEAD-2", "LEAD-3", "LEAD-4"} {
		_, ok = inbox.Get(ref)
		assert.True(t, ok, ref)
	}
}
