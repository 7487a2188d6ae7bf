package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/propconsole/internal/model"
)

func sampleEvent() LeaseCreatedEvent {
	return NewLeaseCreatedEvent(model.Lease{
		ID:          "l1",
		PropertyID:  "p1",
		ClientID:    "c1",
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		TotalAmount: 500,
		Status:      model.LeaseActive,
		CreatedAt:   time.Date(2025, 1, 1, 19, 30, 0, 0, time.FixedZone("PGT", 10*3600)),
	})
}

func TestNewLeaseCreatedEvent(t *testing.T) {
	ev := sampleEvent()
	assert.Equal(t, "2025-01-01", ev.StartDate)
	assert.Equal(t, "2025-12-31", ev.EndDate)
	assert.Equal(t, "2025-01-01T09:30:00Z", ev.CreatedAt)

	bs, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(bs), `"lease_id":"l1"`)
	assert.Contains(t, string(bs), `"total_amount":500`)
}

func TestHandleMessageAppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	require.NoError(t, HandleMessage(dir, body))
	require.NoError(t, HandleMessage(dir, body))

	out, err := os.ReadFile(filepath.Join(dir, "lease.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"[2025-01-01T09:30:00Z] Lease created | lease_id=l1 | property_id=p1 | client_id=c1 | status=active | term=2025-01-01..2025-12-31 | total=500.00",
		lines[0])
}

func TestHandleMessageRejectsBadPayloads(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, HandleMessage(dir, []byte("not json")))
	assert.EqualError(t, HandleMessage(dir, []byte(`{"status":"active"}`)), "event has no lease_id")

	_, err := os.Stat(filepath.Join(dir, "lease.log"))
	assert.True(t, os.IsNotExist(err))
}
