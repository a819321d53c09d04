package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/models"
)

func TestCreateOrganization_CreatorBecomesOwner(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "alice@example.com")

	org := env.createOrg(t, "Acme", user.ID)

	member, err := env.orgRepo.FindMember(org.ID, user.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleOwner, member.Role)
}

func TestInviteMember_RequiresOwnerOrAdmin(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	manager := env.createUser(t, "manager@example.com")
	invitee := env.createUser(t, "invitee@example.com")

	org := env.createOrg(t, "Acme", owner.ID)
	env.addMember(t, org.ID, manager.ID, models.RoleManager)

	_, err := env.orgService.InviteMember(env.ctx(manager.ID, org.ID, models.RoleManager), invitee.ID, models.RoleMember)
	require.ErrorIs(t, err, models.ErrPermissionDenied)

	member, err := env.orgService.InviteMember(env.ctx(owner.ID, org.ID, models.RoleOwner), invitee.ID, models.RoleMember)
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, member.Role)

	// Inviting twice is a conflict
	_, err = env.orgService.InviteMember(env.ctx(owner.ID, org.ID, models.RoleOwner), invitee.ID, models.RoleMember)
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestChangeMemberRole_CannotModifySelf(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, "Acme", owner.ID)

	_, err := env.orgService.ChangeMemberRole(env.ctx(owner.ID, org.ID, models.RoleOwner), owner.ID, models.RoleAdmin)
	require.ErrorIs(t, err, ErrModifyOwnMembership)
}

func TestChangeMemberRole_LastOwnerProtected(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	admin := env.createUser(t, "admin@example.com")
	org := env.createOrg(t, "Acme", owner.ID)
	env.addMember(t, org.ID, admin.ID, models.RoleAdmin)

	// The admin cannot demote the only owner
	_, err := env.orgService.ChangeMemberRole(env.ctx(admin.ID, org.ID, models.RoleAdmin), owner.ID, models.RoleMember)
	require.ErrorIs(t, err, ErrLastOwner)

	// With a second owner the demotion goes through
	second := env.createUser(t, "second@example.com")
	env.addMember(t, org.ID, second.ID, models.RoleOwner)

	member, err := env.orgService.ChangeMemberRole(env.ctx(admin.ID, org.ID, models.RoleAdmin), owner.ID, models.RoleMember)
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, member.Role)
}

func TestRemoveMember_LastOwnerProtected(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	admin := env.createUser(t, "admin@example.com")
	org := env.createOrg(t, "Acme", owner.ID)
	env.addMember(t, org.ID, admin.ID, models.RoleAdmin)

	err := env.orgService.RemoveMember(env.ctx(admin.ID, org.ID, models.RoleAdmin), owner.ID)
	require.ErrorIs(t, err, ErrLastOwner)

	err = env.orgService.RemoveMember(env.ctx(owner.ID, org.ID, models.RoleOwner), admin.ID)
	require.NoError(t, err)

	_, err = env.orgRepo.FindMember(org.ID, admin.ID)
	require.Error(t, err)
}

func TestDeleteOrganization_OwnerOnlyAndCascades(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	admin := env.createUser(t, "admin@example.com")
	org := env.createOrg(t, "Acme", owner.ID)
	env.addMember(t, org.ID, admin.ID, models.RoleAdmin)

	ownerCtx := env.ctx(owner.ID, org.ID, models.RoleOwner)

	contact, err := env.contactService.CreateContact(ownerCtx, CreateContactInput{Name: "Carol"})
	require.NoError(t, err)

	deal, err := env.dealService.CreateDeal(ownerCtx, CreateDealInput{Title: "Big deal", Amount: 100, ContactID: &contact.ID})
	require.NoError(t, err)

	_, err = env.taskService.CreateTask(ownerCtx, CreateTaskInput{DealID: deal.ID, Title: "Follow up"})
	require.NoError(t, err)

	// Admins cannot delete the organization
	err = env.orgService.DeleteOrganization(env.ctx(admin.ID, org.ID, models.RoleAdmin))
	require.ErrorIs(t, err, ErrDeleteRequiresOwner)

	require.NoError(t, env.orgService.DeleteOrganization(ownerCtx))

	// Everything inside the organization is gone
	var counts [5]int64
	env.db.Model(&models.OrganizationMember{}).Where("organization_id = ?", org.ID).Count(&counts[0])
	env.db.Model(&models.Contact{}).Where("organization_id = ?", org.ID).Count(&counts[1])
	env.db.Model(&models.Deal{}).Where("organization_id = ?", org.ID).Count(&counts[2])
	env.db.Model(&models.Task{}).Where("deal_id = ?", deal.ID).Count(&counts[3])
	env.db.Model(&models.Activity{}).Where("deal_id = ?", deal.ID).Count(&counts[4])
	for i, count := range counts {
		require.Zero(t, count, "table %d not cleaned up", i)
	}
}
