package access_test

import (
	"testing"

	"feedmart-pos/internal/access"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities(t *testing.T) {
	tests := []struct {
		role access.Role
		cap  access.Capability
		want bool
	}{
		{access.RoleCashier, access.ViewProfit, false},
		{access.RoleCashier, access.CloseDay, false},
		{access.RoleCashier, access.ViewJournal, true},
		{access.RoleManager, access.ViewProfit, true},
		{access.RoleManager, access.CloseDay, true},
		{access.RoleAdmin, access.ViewProfit, true},
		{access.Role(""), access.ViewJournal, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Can(tt.cap))
		})
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, access.RoleManager, access.ParseRole(" Manager "))
	assert.Equal(t, access.RoleAdmin, access.ParseRole("ADMIN"))
	assert.Equal(t, access.Role(""), access.ParseRole("supervisor"))
}
