package takeaway

import (
	"context"
	"fmt"
	"strings"

	"github.com/tavolaclub/tavola/internal/reservations"
)

func ValidateOrderCreate(ctx context.Context, req OrderCreateRequest) []reservations.ValidationError {
	var errs []reservations.ValidationError

	if strings.TrimSpace(req.FullName) == "" {
		errs = append(errs, reservations.ValidationError{Field: "full_name", Message: "full name is required"})
	}

	if len(reservations.NormalizePhone(req.Phone)) != 10 {
		errs = append(errs, reservations.ValidationError{Field: "phone", Message: "phone must be exactly 10 digits"})
	}

	if strings.TrimSpace(req.Address) == "" {
		errs = append(errs, reservations.ValidationError{Field: "address", Message: "address is required"})
	}

	if len(req.Items) == 0 {
		errs = append(errs, reservations.ValidationError{Field: "items", Message: "at least one item is required"})
	}

	for i, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, reservations.ValidationError{Field: fmt.Sprintf("items[%d].name", i), Message: "item name is required"})
		}
		if item.Quantity <= 0 {
			errs = append(errs, reservations.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be greater than 0"})
		}
		if item.Price < 0 {
			errs = append(errs, reservations.ValidationError{Field: fmt.Sprintf("items[%d].price", i), Message: "price cannot be negative"})
		}
	}

	return errs
}
