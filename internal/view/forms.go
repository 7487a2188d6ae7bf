package view

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/propconsole/internal/model"
)

// PropertyTypes are the choices offered by the property form.
var PropertyTypes = []string{"Apartment", "House", "Commercial", "Condo"}

// FieldError reports a missing or unreadable form field.  Its message is
// shown to the user the same way a remote error is.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return e.Field + " " + e.Reason }

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &FieldError{Field: field, Reason: "is required"}
	}
	return nil
}

func parseInt(field string, n json.Number) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(string(n)))
	if err != nil {
		return 0, &FieldError{Field: field, Reason: fmt.Sprintf("must be a whole number, got %q", string(n))}
	}
	return v, nil
}

func parseAmount(field string, n json.Number) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	if err != nil {
		return 0, &FieldError{Field: field, Reason: fmt.Sprintf("must be a number, got %q", string(n))}
	}
	return v, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// PropertyForm is the property creation form.  Numeric inputs are kept as
// entered so a failed submit can redisplay them verbatim.
type PropertyForm struct {
	Address      string      `json:"address" form:"address"`
	PropertyType string      `json:"property_type" form:"property_type"`
	Bedrooms     json.Number `json:"bedrooms" form:"bedrooms"`
	Bathrooms    json.Number `json:"bathrooms" form:"bathrooms"`
	Sqft         json.Number `json:"sqft" form:"sqft"`
	Price        json.Number `json:"price" form:"price"`
	Status       string      `json:"status" form:"status"`
}

// DefaultPropertyForm is the field set a new property form starts from.
func DefaultPropertyForm() PropertyForm {
	return PropertyForm{
		PropertyType: "Apartment",
		Bedrooms:     "1",
		Bathrooms:    "1",
		Status:       model.PropertyAvailable,
	}
}

// Property checks required fields and converts the form into a record.
func (f PropertyForm) Property() (model.Property, error) {
	for _, r := range []struct{ field, v string }{
		{"address", f.Address},
		{"price", string(f.Price)},
		{"bedrooms", string(f.Bedrooms)},
		{"bathrooms", string(f.Bathrooms)},
	} {
		if err := required(r.field, r.v); err != nil {
			return model.Property{}, err
		}
	}
	p := model.Property{
		Address:      strings.TrimSpace(f.Address),
		PropertyType: f.PropertyType,
		Status:       f.Status,
	}
	if p.PropertyType == "" {
		p.PropertyType = "Apartment"
	}
	if p.Status == "" {
		p.Status = model.PropertyAvailable
	}
	var err error
	if p.Bedrooms, err = parseInt("bedrooms", f.Bedrooms); err != nil {
		return model.Property{}, err
	}
	if p.Bathrooms, err = parseInt("bathrooms", f.Bathrooms); err != nil {
		return model.Property{}, err
	}
	if p.Price, err = parseAmount("price", f.Price); err != nil {
		return model.Property{}, err
	}
	if strings.TrimSpace(string(f.Sqft)) != "" {
		sqft, err := parseInt("sqft", f.Sqft)
		if err != nil {
			return model.Property{}, err
		}
		p.Sqft = &sqft
	}
	return p, nil
}

// ClientForm is the client creation form.
type ClientForm struct {
	FullName    string `json:"full_name" form:"full_name"`
	Email       string `json:"email" form:"email"`
	Phone       string `json:"phone" form:"phone"`
	Preferences string `json:"preferences" form:"preferences"`
}

func DefaultClientForm() ClientForm { return ClientForm{} }

// Client checks required fields and converts the form into a record.
func (f ClientForm) Client() (model.Client, error) {
	if err := required("full_name", f.FullName); err != nil {
		return model.Client{}, err
	}
	if err := required("email", f.Email); err != nil {
		return model.Client{}, err
	}
	return model.Client{
		FullName:    strings.TrimSpace(f.FullName),
		Email:       strings.TrimSpace(f.Email),
		Phone:       optional(f.Phone),
		Preferences: optional(f.Preferences),
	}, nil
}

// LeaseForm is the lease creation form.  Dates use the HTML date input
// layout (2006-01-02).
type LeaseForm struct {
	PropertyID  string      `json:"property_id" form:"property_id"`
	ClientID    string      `json:"client_id" form:"client_id"`
	StartDate   string      `json:"start_date" form:"start_date"`
	EndDate     string      `json:"end_date" form:"end_date"`
	TotalAmount json.Number `json:"total_amount" form:"total_amount"`
	Status      string      `json:"status" form:"status"`
}

func DefaultLeaseForm() LeaseForm { return LeaseForm{Status: model.LeasePending} }

const dateInput = "2006-01-02"

// Lease checks required fields and converts the form into a record.  The
// end date is not compared with the start date.
func (f LeaseForm) Lease() (model.Lease, error) {
	for _, r := range []struct{ field, v string }{
		{"property_id", f.PropertyID},
		{"client_id", f.ClientID},
		{"start_date", f.StartDate},
		{"end_date", f.EndDate},
		{"total_amount", string(f.TotalAmount)},
	} {
		if err := required(r.field, r.v); err != nil {
			return model.Lease{}, err
		}
	}
	start, err := time.Parse(dateInput, strings.TrimSpace(f.StartDate))
	if err != nil {
		return model.Lease{}, &FieldError{Field: "start_date", Reason: fmt.Sprintf("is not a date: %q", f.StartDate)}
	}
	end, err := time.Parse(dateInput, strings.TrimSpace(f.EndDate))
	if err != nil {
		return model.Lease{}, &FieldError{Field: "end_date", Reason: fmt.Sprintf("is not a date: %q", f.EndDate)}
	}
	amount, err := parseAmount("total_amount", f.TotalAmount)
	if err != nil {
		return model.Lease{}, err
	}
	status := f.Status
	if status == "" {
		status = model.LeasePending
	}
	valid := false
	for _, s := range model.LeaseStatuses {
		if s == status {
			valid = true
			break
		}
	}
	if !valid {
		return model.Lease{}, &FieldError{Field: "status", Reason: fmt.Sprintf("must be one of %s", strings.Join(model.LeaseStatuses, ", "))}
	}
	return model.Lease{
		PropertyID:  strings.TrimSpace(f.PropertyID),
		ClientID:    strings.TrimSpace(f.ClientID),
		StartDate:   start,
		EndDate:     end,
		TotalAmount: amount,
		Status:      status,
	}, nil
}
