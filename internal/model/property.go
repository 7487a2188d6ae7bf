package model

import "time"

// Property statuses known to the console.  Other values may exist in the
// table and are rendered as-is.
const (
	PropertyAvailable = "available"
	PropertyLeased    = "leased"
)

// Property represents a real-estate listing as stored in the
// `properties` table.  Sqft is optional; every other column is
// required by the creation form.
//
// Fields:
//  ID           – uuid primary key.
//  Address      – street address shown in every listing.
//  PropertyType – Apartment, House, Commercial or Condo.
//  Bedrooms     – number of bedrooms.
//  Bathrooms    – number of bathrooms.
//  Sqft         – floor area in square feet (nullable).
//  Price        – asking price in kina.
//  Status       – available, leased, ...
//  CreatedAt    – timestamp of creation; lists are ordered by it.
type Property struct {
	ID           string    `json:"id"`            // properties.id
	Address      string    `json:"address"`       // properties.address
	PropertyType string    `json:"property_type"` // properties.property_type
	Bedrooms     int       `json:"bedrooms"`      // properties.bedrooms
	Bathrooms    int       `json:"bathrooms"`     // properties.bathrooms
	Sqft         *int      `json:"sqft"`          // properties.sqft (nullable)
	Price        float64   `json:"price"`         // properties.price
	Status       string    `json:"status"`        // properties.status
	CreatedAt    time.Time `json:"created_at"`    // properties.created_at
}

// PropertyOption is the narrow projection used to populate the lease
// form's property selector.
type PropertyOption struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Status  string `json:"status"`
}
