package model

// IdentityGroup is one disjoint set of linked contact ids. RootID is always
// the minimal member id, and Members always contains RootID. RowVersion
// guards merges against concurrent writers.
type IdentityGroup struct {
	RootID     int64   `json:"rootId"`
	Members    []int64 `json:"members"`
	RowVersion int64   `json:"-"`
}

// ResolveRequest is the identify payload. At least one identifier must be
// present.
type ResolveRequest struct {
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
}

// IdentitySummary is the consolidated view of a single identity.
// PrimaryContactID is the group root; emails and phone numbers are listed
// with the primary contact's values first, deduplicated in order of first
// appearance across ascending contact ids.
type IdentitySummary struct {
	PrimaryContactID    int64    `json:"primaryContactId"`
	Emails              []string `json:"emails"`
	PhoneNumbers        []string `json:"phoneNumbers"`
	SecondaryContactIDs []int64  `json:"secondaryContactIds"`
}

// ResolveResponse wraps the summary under a "contact" key.
type ResolveResponse struct {
	Contact IdentitySummary `json:"contact"`
}
