package model

import "time"

// Contact represents a single contact record. A contact never changes after
// ingestion; which identity it belongs to is tracked by the identity groups,
// not by the record itself.
type Contact struct {
	ContactID      int64      `json:"id"`
	Email          *string    `json:"email,omitempty"`
	PhoneNumber    *string    `json:"phoneNumber,omitempty"`
	LinkedID       *int64     `json:"linkedId,omitempty"`
	LinkPrecedence string     `json:"linkPrecedence"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ContactRequest is the ingestion payload. Contact ids are always assigned
// by the server; the payload cannot carry one.
type ContactRequest struct {
	Email          *string `json:"email"`
	PhoneNumber    *string `json:"phoneNumber"`
	LinkedID       *int64  `json:"linkedId"`
	LinkPrecedence string  `json:"linkPrecedence"`
}
