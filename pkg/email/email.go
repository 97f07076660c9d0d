package email

import (
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
)

var validate = validator.New()

// ValidateAndFormat trims and lower-cases an email address and checks it is a
// well-formed mailbox. The result is stable: formatting an already formatted
// address returns it unchanged.
func ValidateAndFormat(address string) (string, error) {
	formatted := strings.ToLower(strings.TrimSpace(address))
	if err := validate.Var(formatted, "required,email"); err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "invalid email address")
	}
	return formatted, nil
}
