package domain

import "time"

// Customer is a CRM contact. It has no relationship to the authorization graph.
type Customer struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CustomerPatch carries the sparse fields of a partial customer update.
type CustomerPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Company   *string
	Notes     *string
}

// MergeCustomer applies the present fields of patch onto base. Absent fields
// keep their base value. Timestamps are the caller's concern.
func MergeCustomer(base Customer, patch CustomerPatch) Customer {
	if patch.FirstName != nil {
		base.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		base.LastName = *patch.LastName
	}
	if patch.Email != nil {
		base.Email = *patch.Email
	}
	if patch.Phone != nil {
		base.Phone = *patch.Phone
	}
	if patch.Company != nil {
		base.Company = *patch.Company
	}
	if patch.Notes != nil {
		base.Notes = *patch.Notes
	}
	return base
}
