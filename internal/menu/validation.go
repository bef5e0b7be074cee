package menu

import (
	"context"
	"strings"
)

var categories = []string{"brunch", "lunch", "dinner", "dessert", "drinks"}

func validCategory(category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

func ValidateMenuItemCreate(ctx context.Context, req MenuItemCreateRequest) []string {
	var errors []string

	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, "name is required")
	}

	if req.Price < 0 {
		errors = append(errors, "price cannot be negative")
	}

	if strings.TrimSpace(req.Category) == "" {
		errors = append(errors, "category is required")
	} else if !validCategory(req.Category) {
		errors = append(errors, "invalid category")
	}

	return errors
}

func ValidateMenuItemUpdate(ctx context.Context, req MenuItemUpdateRequest) []string {
	var errors []string

	if req.Price != nil && *req.Price < 0 {
		errors = append(errors, "price cannot be negative")
	}

	if req.Category != "" && !validCategory(req.Category) {
		errors = append(errors, "invalid category")
	}

	return errors
}
