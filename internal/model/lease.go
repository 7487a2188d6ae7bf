package model

import "time"

// Lease statuses accepted by the creation form.
const (
	LeasePending    = "pending"
	LeaseActive     = "active"
	LeaseCompleted  = "completed"
	LeaseTerminated = "terminated"
)

// LeaseStatuses lists the statuses in the order the form offers them.
var LeaseStatuses = []string{LeasePending, LeaseActive, LeaseCompleted, LeaseTerminated}

// Lease models a row in the `leases` table together with the embedded
// property and client columns returned by the relational read.  The
// embedded parts are nil when the referenced row no longer exists.
//
// Fields:
//  ID          – uuid primary key.
//  PropertyID  – references properties.id.
//  ClientID    – references clients.id.
//  StartDate   – first day of the lease.
//  EndDate     – last day of the lease (not validated against StartDate).
//  TotalAmount – agreed amount in kina.
//  Status      – pending, active, completed or terminated.
//  CreatedAt   – timestamp of creation.
type Lease struct {
	ID          string         `json:"id"`           // leases.id
	PropertyID  string         `json:"property_id"`  // leases.property_id
	ClientID    string         `json:"client_id"`    // leases.client_id
	StartDate   time.Time      `json:"start_date"`   // leases.start_date
	EndDate     time.Time      `json:"end_date"`     // leases.end_date
	TotalAmount float64        `json:"total_amount"` // leases.total_amount
	Status      string         `json:"status"`       // leases.status
	CreatedAt   time.Time      `json:"created_at"`   // leases.created_at
	Property    *LeaseProperty `json:"properties"`   // embedded properties(address, property_type)
	Client      *LeaseClient   `json:"clients"`      // embedded clients(full_name, email)
}

// LeaseProperty is the slice of a property embedded into a lease read.
type LeaseProperty struct {
	Address      string `json:"address"`
	PropertyType string `json:"property_type"`
}

// LeaseClient is the slice of a client embedded into a lease read.
type LeaseClient struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// LeaseAmount is the column-limited projection (status, total_amount)
// scanned by the dashboard.  TotalAmount is kept as raw text so the
// aggregator decides how to coerce absent or non-numeric values.
type LeaseAmount struct {
	Status      string
	TotalAmount *string
}
