// Package auth is the permission table for admin-gated register operations.
// Credential storage and verification live outside the core; callers supply
// an already-authenticated operator.
package auth

import "errors"

var ErrPermissionDenied = errors.New("auth: permission denied")

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

type Action string

const (
	// ActionDiscountOverride covers discounts beyond the configured cashier cap.
	ActionDiscountOverride Action = "discount_override"
	ActionPriceEdit        Action = "price_edit"
	ActionProductCreate    Action = "product_create"
	ActionRestock          Action = "restock"
	ActionReportRead       Action = "report_read"
)

// Operator identifies who is driving the register for a given request.
type Operator struct {
	UserID string
	Role   Role
}

var grants = map[Role]map[Action]bool{
	RoleAdmin: {
		ActionDiscountOverride: true,
		ActionPriceEdit:        true,
		ActionProductCreate:    true,
		ActionRestock:          true,
		ActionReportRead:       true,
	},
	RoleCashier: {
		ActionRestock:    true,
		ActionReportRead: true,
	},
}

// Allow reports whether role may perform action. Unknown roles get nothing.
func Allow(role Role, action Action) bool {
	return grants[role][action]
}

// Require returns ErrPermissionDenied unless role may perform action.
func Require(role Role, action Action) error {
	if !Allow(role, action) {
		return ErrPermissionDenied
	}
	return nil
}
