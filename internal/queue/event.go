// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/propconsole/internal/model"
)

// LeaseCreatedQueue is the durable queue lease events are routed to.
const LeaseCreatedQueue = "lease.created"

// LeaseCreatedEvent is published once a lease insert has committed.  When
// Status is "active" the property was marked leased in the same commit.
type LeaseCreatedEvent struct {
	LeaseID     string  `json:"lease_id"`
	PropertyID  string  `json:"property_id"`
	ClientID    string  `json:"client_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

// NewLeaseCreatedEvent flattens l into its wire form.  Dates travel as
// YYYY-MM-DD, the creation time as RFC 3339 in UTC.
func NewLeaseCreatedEvent(l model.Lease) LeaseCreatedEvent {
	return LeaseCreatedEvent{
		LeaseID:     l.ID,
		PropertyID:  l.PropertyID,
		ClientID:    l.ClientID,
		StartDate:   l.StartDate.Format("2006-01-02"),
		EndDate:     l.EndDate.Format("2006-01-02"),
		TotalAmount: l.TotalAmount,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
	}
}
