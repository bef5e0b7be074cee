package accounts

import (
	"strings"

	"github.com/tavolaclub/tavola/internal/reservations"
)

const minPasswordLength = 8

// ValidateRegisterRequest checks a signup payload and returns the list of
// problems found.
func ValidateRegisterRequest(name, email, phone, password string) []string {
	var errs []string

	if strings.TrimSpace(name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(email) == "" {
		errs = append(errs, "email is required")
	} else if !strings.Contains(email, "@") {
		errs = append(errs, "email is not valid")
	}
	if phone != "" && len(reservations.NormalizePhone(phone)) != 10 {
		errs = append(errs, "phone must have 10 digits")
	}
	if len(password) < minPasswordLength {
		errs = append(errs, "password must be at least 8 characters")
	}

	return errs
}

// ValidateLoginRequest checks a signin payload.
func ValidateLoginRequest(email, password string) []string {
	var errs []string

	if strings.TrimSpace(email) == "" {
		errs = append(errs, "email is required")
	}
	if password == "" {
		errs = append(errs, "password is required")
	}

	return errs
}
