package models

import (
	"strings"

	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
)

// UpdateRequest is the full aggregate submitted when an applicant completes
// their application: every scalar field plus the complete list of setts.
type UpdateRequest struct {
	ApplicationFields
	Setts []SettEntry `json:"setts"`
}

// SettEntry is a sett as the applicant describes it. ID is the applicant's own
// label for the sett, not a storage key.
type SettEntry struct {
	ID            string `json:"id"`
	GridReference string `json:"gridReference"`
	Entrances     int    `json:"entrances"`
}

func (r *UpdateRequest) Normalize() {
	if r == nil {
		return
	}
	f := &r.ApplicationFields
	for _, s := range []*string{
		&f.FullName, &f.CompanyOrganisation, &f.EmailAddress, &f.AddressLine1,
		&f.AddressLine2, &f.AddressTown, &f.AddressCounty, &f.AddressPostcode,
		&f.PhoneNumber, &f.UPRN,
	} {
		*s = strings.TrimSpace(*s)
	}
	for i := range r.Setts {
		r.Setts[i].ID = strings.TrimSpace(r.Setts[i].ID)
		r.Setts[i].GridReference = strings.TrimSpace(r.Setts[i].GridReference)
	}
}

// Follows validation order: Required -> Semantic.
func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Setts == nil {
		return dErrors.New(dErrors.CodeValidation, "setts is required")
	}
	for _, s := range r.Setts {
		if s.Entrances < 0 {
			return dErrors.New(dErrors.CodeValidation, "sett entrances cannot be negative")
		}
	}
	return nil
}

// Patch is a partial update of an application's scalar fields. Nil fields are
// absent and left untouched; setts cannot be patched.
type Patch struct {
	FullName                  *string `json:"fullName,omitempty"`
	CompanyOrganisation       *string `json:"companyOrganisation,omitempty"`
	EmailAddress              *string `json:"emailAddress,omitempty"`
	AddressLine1              *string `json:"addressLine1,omitempty"`
	AddressLine2              *string `json:"addressLine2,omitempty"`
	AddressTown               *string `json:"addressTown,omitempty"`
	AddressCounty             *string `json:"addressCounty,omitempty"`
	AddressPostcode           *string `json:"addressPostcode,omitempty"`
	PhoneNumber               *string `json:"phoneNumber,omitempty"`
	Convictions               *bool   `json:"convictions,omitempty"`
	ComplyWithTerms           *bool   `json:"complyWithTerms,omitempty"`
	CreatedByLicensingOfficer *bool   `json:"createdByLicensingOfficer,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// RevocationRequest carries the justification recorded when an application is revoked.
type RevocationRequest struct {
	Reason    string `json:"reason"`
	RevokedBy string `json:"revokedBy"`
}

func (r *RevocationRequest) Normalize() {
	if r == nil {
		return
	}
	r.Reason = strings.TrimSpace(r.Reason)
	r.RevokedBy = strings.TrimSpace(r.RevokedBy)
}

func (r *RevocationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Reason) > 2000 {
		return dErrors.New(dErrors.CodeValidation, "reason must be 2000 characters or less")
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}
