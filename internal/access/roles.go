package access

import "strings"

type Role string

const (
	RoleCashier Role = "cashier"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

type Capability string

const (
	ViewProfit  Capability = "view_profit"
	CloseDay    Capability = "close_day"
	ViewJournal Capability = "view_journal"
	ViewCost    Capability = "view_cost"
)

var grants = map[Role][]Capability{
	RoleCashier: {ViewJournal},
	RoleManager: {ViewJournal, ViewProfit, ViewCost, CloseDay},
	RoleAdmin:   {ViewJournal, ViewProfit, ViewCost, CloseDay},
}

// ParseRole normalizes a role name coming from the remote API. Unknown roles
// map to "" which holds no capabilities.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := grants[r]; !ok {
		return ""
	}
	return r
}

func (r Role) Can(c Capability) bool {
	for _, g := range grants[r] {
		if g == c {
			return true
		}
	}
	return false
}
