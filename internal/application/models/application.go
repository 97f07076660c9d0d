package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
)

// MaxApplicationID is the top of the identity space: five decimal digits.
const MaxApplicationID = 99999

// LicencePrefix is prepended to the identity to form the public licence number.
const LicencePrefix = "NS-SFO-"

// ApplicationID is the identity of an application and the numeric part of its
// licence number.
type ApplicationID int

// ParseApplicationID parses a path parameter into an identity.
func ParseApplicationID(raw string) (ApplicationID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "application id must be a non-negative integer")
	}
	return ApplicationID(n), nil
}

func (id ApplicationID) String() string {
	return strconv.Itoa(int(id))
}

// LicenceNumber renders the identity as it appears on the licence, e.g. NS-SFO-42.
func (id ApplicationID) LicenceNumber() string {
	return LicencePrefix + id.String()
}

// ExpiryDate is the licence expiry shown to applicants: 30 November of the
// year the licence is issued.
func ExpiryDate(issuedAt time.Time) string {
	return fmt.Sprintf("30/11/%d", issuedAt.Year())
}

// ApplicationFields are the scalar, applicant-supplied parts of an application.
type ApplicationFields struct {
	FullName                  string `json:"fullName"`
	CompanyOrganisation       string `json:"companyOrganisation"`
	EmailAddress              string `json:"emailAddress"`
	AddressLine1              string `json:"addressLine1"`
	AddressLine2              string `json:"addressLine2"`
	AddressTown               string `json:"addressTown"`
	AddressCounty             string `json:"addressCounty"`
	AddressPostcode           string `json:"addressPostcode"`
	PhoneNumber               string `json:"phoneNumber"`
	UPRN                      string `json:"uprn"`
	Convictions               bool   `json:"convictions"`
	ComplyWithTerms           bool   `json:"complyWithTerms"`
	CreatedByLicensingOfficer bool   `json:"createdByLicensingOfficer"`
}

// Application is the aggregate root for a licence application.
//
// Invariants:
//   - ID is unique across live and revoked applications; a revoked identity is never reissued
//   - A newly allocated application has only ID and timestamps set
//   - Setts always belong to this application's ID
type Application struct {
	ID ApplicationID `json:"id"`
	ApplicationFields
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Setts     []*Sett   `json:"Setts,omitempty"`
}

// NewApplication returns an empty application holding only its identity.
func NewApplication(id ApplicationID, now time.Time) *Application {
	return &Application{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyFields replaces every scalar field.
func (a *Application) ApplyFields(fields ApplicationFields, now time.Time) {
	a.ApplicationFields = fields
	a.UpdatedAt = now
}

// ApplyPatch overwrites only the fields present in p.
func (a *Application) ApplyPatch(p Patch, now time.Time) {
	setString(&a.FullName, p.FullName)
	setString(&a.CompanyOrganisation, p.CompanyOrganisation)
	setString(&a.EmailAddress, p.EmailAddress)
	setString(&a.AddressLine1, p.AddressLine1)
	setString(&a.AddressLine2, p.AddressLine2)
	setString(&a.AddressTown, p.AddressTown)
	setString(&a.AddressCounty, p.AddressCounty)
	setString(&a.AddressPostcode, p.AddressPostcode)
	setString(&a.PhoneNumber, p.PhoneNumber)
	setBool(&a.Convictions, p.Convictions)
	setBool(&a.ComplyWithTerms, p.ComplyWithTerms)
	setBool(&a.CreatedByLicensingOfficer, p.CreatedByLicensingOfficer)
	a.UpdatedAt = now
}

// Clone returns a deep copy, so stores can hand out values callers may mutate.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	if a.Setts != nil {
		c.Setts = make([]*Sett, len(a.Setts))
		for i, s := range a.Setts {
			sc := *s
			c.Setts[i] = &sc
		}
	}
	return &c
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
