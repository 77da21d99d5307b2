package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMenuSectionsAndRoles(t *testing.T) {
	expected := map[string][]string{
		"dashboard":   {RoleAdmin, RoleAccountant, RoleSalesRep, RoleViewer},
		"orders":      {RoleAdmin, RoleAccountant, RoleSalesRep},
		"products":    {RoleAdmin, RoleAccountant},
		"billing":     {RoleAdmin, RoleAccountant},
		"delivery":    {RoleAdmin, RoleSalesRep},
		"crm":         {RoleAdmin, RoleAccountant, RoleSalesRep},
		"collections": {RoleAdmin, RoleAccountant, RoleSalesRep},
		"reports":     {RoleAdmin, RoleAccountant, RoleViewer},
		"users":       {RoleAdmin},
	}

	require.Len(t, Menu, len(expected))
	for key, roles := range expected {
		require.Equal(t, roles, RolesFor(key), "section %s", key)
	}
}

func TestVisibleTo(t *testing.T) {
	keys := func(entries []MenuEntry) []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.Key)
		}
		return out
	}

	require.Equal(t,
		[]string{"dashboard", "orders", "products", "billing", "delivery", "crm", "collections", "reports", "users"},
		keys(VisibleTo(RoleAdmin)))
	require.Equal(t,
		[]string{"dashboard", "reports"},
		keys(VisibleTo(RoleViewer)))
	require.Equal(t,
		[]string{"dashboard", "orders", "delivery", "crm", "collections"},
		keys(VisibleTo(RoleSalesRep)))
	require.Empty(t, keys(VisibleTo("Unknown")))
}

func TestRolesForUnknownSection(t *testing.T) {
	require.Nil(t, RolesFor("nope"))
}
