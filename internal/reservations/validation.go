package reservations

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizePhone strips every non-digit character. Callers validate the
// result length; the stored value is always the stripped form.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validateDateTime(date, slot string, guests int) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(date) == "" {
		errs = append(errs, ValidationError{Field: "date", Message: "date is required"})
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}

	if strings.TrimSpace(slot) == "" {
		errs = append(errs, ValidationError{Field: "time", Message: "time slot is required"})
	} else if !ValidTimeSlot(slot) {
		errs = append(errs, ValidationError{Field: "time", Message: "time slot is not a recognized service period"})
	}

	if guests < 1 {
		errs = append(errs, ValidationError{Field: "guests", Message: "guest count must be at least 1"})
	}

	return errs
}

func validateDetails(d CustomerDetails) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(d.FullName) == "" {
		errs = append(errs, ValidationError{Field: "full_name", Message: "full name is required"})
	}

	if len(NormalizePhone(d.Phone)) != 10 {
		errs = append(errs, ValidationError{Field: "phone", Message: "phone must be exactly 10 digits"})
	}

	if strings.TrimSpace(d.Email) == "" {
		errs = append(errs, ValidationError{Field: "email", Message: "email is required"})
	} else if !strings.Contains(d.Email, "@") {
		errs = append(errs, ValidationError{Field: "email", Message: "email is not valid"})
	}

	if !d.Agreed {
		errs = append(errs, ValidationError{Field: "agree", Message: "terms must be accepted"})
	}

	return errs
}

// ValidateReservationCreate checks a create request before the workflow sees
// the store.
func ValidateReservationCreate(ctx context.Context, req ReservationCreateRequest) []ValidationError {
	errs := validateDateTime(req.Date, req.Time, req.Guests)
	errs = append(errs, validateDetails(CustomerDetails{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Agreed:   req.Agree,
	})...)

	if len(req.Tables) == 0 {
		errs = append(errs, ValidationError{Field: "tables", Message: "at least one table is required"})
	}

	return errs
}

func ValidateReservationUpdate(ctx context.Context, req ReservationUpdateRequest) []ValidationError {
	var errs []ValidationError

	if req.OrderID == uuid.Nil {
		errs = append(errs, ValidationError{Field: "order_id", Message: "order_id is required"})
	}

	errs = append(errs, ValidateReservationCreate(ctx, ReservationCreateRequest{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Date:     req.Date,
		Time:     req.Time,
		Guests:   req.Guests,
		Tables:   req.Tables,
		Agree:    req.Agree,
	})...)

	return errs
}
