package users

import "time"

// SeedAdminID is the bootstrap administrator. That account can never
// be deleted or moved away from active status.
const SeedAdminID int64 = 1

// Role labels an administrative role.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
	RoleViewer   Role = "Viewer"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee, RoleViewer:
		return true
	}
	return false
}

// Permissions returns the display labels shown next to a role in the
// admin screen. Enforcement happens at the route layer, not here.
func Permissions(r Role) []string {
	switch r {
	case RoleAdmin:
		return []string{"all permissions"}
	case RoleManager:
		return []string{"manage orders", "manage products", "manage customers", "reports"}
	case RoleEmployee:
		return []string{"manage orders", "manage products"}
	case RoleViewer:
		return []string{"view only"}
	}
	return nil
}

// Status labels a user account.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

// ValidStatus reports whether s is a known account status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}

// User is an administrative account record.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    Status     `json:"status"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Stats is the head-count breakdown shown above the user table.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Admins    int `json:"admins"`
	Managers  int `json:"managers"`
	Employees int `json:"employees"`
	Viewers   int `json:"viewers"`
}

// ComputeStats tallies the breakdown over all accounts.
func ComputeStats(accounts []User) Stats {
	var stats Stats
	stats.Total = len(accounts)
	for _, user := range accounts {
		switch user.Status {
		case StatusActive:
			stats.Active++
		case StatusInactive:
			stats.Inactive++
		}
		switch user.Role {
		case RoleAdmin:
			stats.Admins++
		case RoleManager:
			stats.Managers++
		case RoleEmployee:
			stats.Employees++
		case RoleViewer:
			stats.Viewers++
		}
	}
	return stats
}
