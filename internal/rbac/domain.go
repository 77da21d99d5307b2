package rbac

// Role names as stored in the session. The users module manages a wider
// set for account administration; route gating only understands these.
const (
	RoleAdmin      = "Admin"
	RoleAccountant = "Accountant"
	RoleSalesRep   = "SalesRep"
	RoleViewer     = "Viewer"
)

// MenuEntry describes a navigable section and the roles allowed into it.
type MenuEntry struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Path  string   `json:"path"`
	Roles []string `json:"-"`
}

// Menu is the canonical section table. Route mounting and the /menu
// endpoint both read from it so the two can never drift apart.
var Menu = []MenuEntry{
	{Key: "dashboard", Label: "Dashboard", Path: "/", Roles: []string{RoleAdmin, RoleAccountant, RoleSalesRep, RoleViewer}},
	{Key: "orders", Label: "Orders", Path: "/orders", Roles: []string{RoleAdmin, RoleAccountant, RoleSalesRep}},
	{Key: "products", Label: "Products", Path: "/products", Roles: []string{RoleAdmin, RoleAccountant}},
	{Key: "billing", Label: "Billing", Path: "/billing", Roles: []string{RoleAdmin, RoleAccountant}},
	{Key: "delivery", Label: "Delivery", Path: "/delivery", Roles: []string{RoleAdmin, RoleSalesRep}},
	{Key: "crm", Label: "Customers & Suppliers", Path: "/crm", Roles: []string{RoleAdmin, RoleAccountant, RoleSalesRep}},
	{Key: "collections", Label: "Collections", Path: "/collections", Roles: []string{RoleAdmin, RoleAccountant, RoleSalesRep}},
	{Key: "reports", Label: "Reports", Path: "/reports", Roles: []string{RoleAdmin, RoleAccountant, RoleViewer}},
	{Key: "users", Label: "User Management", Path: "/users", Roles: []string{RoleAdmin}},
}

// RolesFor returns the allowed roles for a section key, or nil when the
// section is unknown.
func RolesFor(key string) []string {
	for _, entry := range Menu {
		if entry.Key == key {
			return entry.Roles
		}
	}
	return nil
}

// VisibleTo filters the menu down to the entries a role may open.
func VisibleTo(role string) []MenuEntry {
	visible := make([]MenuEntry, 0, len(Menu))
	for _, entry := range Menu {
		if allowed(entry.Roles, role) {
			visible = append(visible, entry)
		}
	}
	return visible
}

func allowed(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
