package model

import "time"

// Client represents a prospective or current tenant stored in the
// `clients` table.  Phone and Preferences are optional free text.
type Client struct {
	ID          string    `json:"id"`          // clients.id
	FullName    string    `json:"full_name"`   // clients.full_name
	Email       string    `json:"email"`       // clients.email
	Phone       *string   `json:"phone"`       // clients.phone (nullable)
	Preferences *string   `json:"preferences"` // clients.preferences (nullable)
	CreatedAt   time.Time `json:"created_at"`  // clients.created_at
}

// ClientOption is the narrow projection used by the lease form's tenant
// selector.
type ClientOption struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}
