package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleAdmin, ActionDiscountOverride, true},
		{RoleAdmin, ActionPriceEdit, true},
		{RoleAdmin, ActionProductCreate, true},
		{RoleAdmin, ActionRestock, true},
		{RoleAdmin, ActionReportRead, true},
		{RoleCashier, ActionRestock, true},
		{RoleCashier, ActionReportRead, true},
		{RoleCashier, ActionDiscountOverride, false},
		{RoleCashier, ActionPriceEdit, false},
		{RoleCashier, ActionProductCreate, false},
		{Role("manager"), ActionReportRead, false},
		{Role(""), ActionRestock, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.role, tt.action))
		})
	}
}

func TestRequire(t *testing.T) {
	require.NoError(t, Require(RoleAdmin, ActionPriceEdit))
	require.ErrorIs(t, Require(RoleCashier, ActionPriceEdit), ErrPermissionDenied)
}
