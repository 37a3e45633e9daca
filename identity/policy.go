package identity

import (
	"fmt"
	"unicode"

	"github.com/upb/hotel-listing/models"
)

// Identity error codes reported by Manager.Create.
const (
	CodeInvalidEmail                    = "InvalidEmail"
	CodeDuplicateEmail                  = "DuplicateEmail"
	CodeDuplicateUserName               = "DuplicateUserName"
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
)

// PasswordPolicy lists the rules a new password must satisfy.
type PasswordPolicy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// DefaultPasswordPolicy requires six characters with a digit, a lower and an upper case letter.
var DefaultPasswordPolicy = PasswordPolicy{
	MinLength:        6,
	RequireDigit:     true,
	RequireLowercase: true,
	RequireUppercase: true,
}

// Validate returns every rule password breaks, in a stable order.
func (p PasswordPolicy) Validate(password string) []models.IdentityError {
	var errs []models.IdentityError

	if len([]rune(password)) < p.MinLength {
		errs = append(errs, models.IdentityError{
			Code:        CodePasswordTooShort,
			Description: fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength),
		})
	}

	var hasDigit, hasLower, hasUpper, hasOther bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasOther = true
		}
	}

	if p.RequireNonAlphanumeric && !hasOther {
		errs = append(errs, models.IdentityError{
			Code:        CodePasswordRequiresNonAlphanumeric,
			Description: "Passwords must have at least one non alphanumeric character.",
		})
	}
	if p.RequireDigit && !hasDigit {
		errs = append(errs, models.IdentityError{
			Code:        CodePasswordRequiresDigit,
			Description: "Passwords must have at least one digit ('0'-'9').",
		})
	}
	if p.RequireLowercase && !hasLower {
		errs = append(errs, models.IdentityError{
			Code:        CodePasswordRequiresLower,
			Description: "Passwords must have at least one lowercase ('a'-'z').",
		})
	}
	if p.RequireUppercase && !hasUpper {
		errs = append(errs, models.IdentityError{
			Code:        CodePasswordRequiresUpper,
			Description: "Passwords must have at least one uppercase ('A'-'Z').",
		})
	}

	return errs
}
