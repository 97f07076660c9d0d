// Package sanitize cleans partial application updates before they are applied.
//
// Only fields present in the patch are processed. Absent fields stay nil so the
// store leaves the matching columns alone.
package sanitize

import (
	"strings"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
	"github.com/jmassie/standard-forestry-operations-api/pkg/email"
	"github.com/jmassie/standard-forestry-operations-api/pkg/postcode"
)

// Patch returns a cleaned copy of p. Free text is trimmed, the email address is
// canonicalised, and the postcode is reformatted then checked against the UK
// postcode areas. Booleans pass through untouched.
func Patch(p models.Patch) (models.Patch, error) {
	out := models.Patch{
		FullName:                  trimmed(p.FullName),
		CompanyOrganisation:       trimmed(p.CompanyOrganisation),
		AddressLine1:              trimmed(p.AddressLine1),
		AddressLine2:              trimmed(p.AddressLine2),
		AddressTown:               trimmed(p.AddressTown),
		AddressCounty:             trimmed(p.AddressCounty),
		PhoneNumber:               trimmed(p.PhoneNumber),
		Convictions:               p.Convictions,
		ComplyWithTerms:           p.ComplyWithTerms,
		CreatedByLicensingOfficer: p.CreatedByLicensingOfficer,
	}

	if p.EmailAddress != nil {
		formatted, err := email.ValidateAndFormat(*p.EmailAddress)
		if err != nil {
			return models.Patch{}, err
		}
		out.EmailAddress = &formatted
	}

	if p.AddressPostcode != nil {
		printed, err := Postcode(*p.AddressPostcode)
		if err != nil {
			return models.Patch{}, err
		}
		out.AddressPostcode = &printed
	}

	return out, nil
}

// Postcode formats raw for printing and rejects codes outside the UK areas.
func Postcode(raw string) (string, error) {
	printed := postcode.FormatForPrinting(raw)
	if !postcode.IsRealUK(printed) {
		return "", dErrors.New(dErrors.CodeValidation, "invalid postcode")
	}
	return printed, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
