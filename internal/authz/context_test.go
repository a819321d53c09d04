package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/models"
)

func TestContext_RolePredicates(t *testing.T) {
	tests := []struct {
		role           models.MemberRole
		isOwner        bool
		isOwnerOrAdmin bool
		isManagerUp    bool
	}{
		{models.RoleOwner, true, true, true},
		{models.RoleAdmin, false, true, true},
		{models.RoleManager, false, false, true},
		{models.RoleMember, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			ctx := Context{UserID: 1, OrganizationID: 1, Role: tt.role}
			require.Equal(t, tt.isOwner, ctx.IsOwner())
			require.Equal(t, tt.isOwnerOrAdmin, ctx.IsOwnerOrAdmin())
			require.Equal(t, tt.isManagerUp, ctx.IsManagerOrAbove())
		})
	}
}

func TestContext_OwnerScope(t *testing.T) {
	manager := Context{UserID: 7, OrganizationID: 1, Role: models.RoleManager}
	require.Nil(t, manager.OwnerScope())

	member := Context{UserID: 7, OrganizationID: 1, Role: models.RoleMember}
	scope := member.OwnerScope()
	require.NotNil(t, scope)
	require.Equal(t, uint64(7), *scope)
}

func TestContext_CheckOwnership(t *testing.T) {
	member := Context{UserID: 7, OrganizationID: 1, Role: models.RoleMember}

	require.NoError(t, member.CheckOwnership(7))

	err := member.CheckOwnership(8)
	require.Error(t, err)
	require.ErrorIs(t, err, models.ErrPermissionDenied)

	// Managers and above pass for any owner
	for _, role := range []models.MemberRole{models.RoleManager, models.RoleAdmin, models.RoleOwner} {
		elevated := Context{UserID: 7, OrganizationID: 1, Role: role}
		require.NoError(t, elevated.CheckOwnership(8))
	}
}
