package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/models"
)

func TestDeleteContact_BlockedWhenDealsExist(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, "Acme", owner.ID)
	ctx := env.ctx(owner.ID, org.ID, models.RoleOwner)

	contact, err := env.contactService.CreateContact(ctx, CreateContactInput{Name: "Carol"})
	require.NoError(t, err)

	deal, err := env.dealService.CreateDeal(ctx, CreateDealInput{Title: "Linked deal", Amount: 10, ContactID: &contact.ID})
	require.NoError(t, err)

	err = env.contactService.DeleteContact(ctx, contact.ID)
	require.ErrorIs(t, err, ErrContactHasDeals)

	// Once the deal is gone the contact can be deleted
	require.NoError(t, env.dealService.DeleteDeal(ctx, deal.ID))
	require.NoError(t, env.contactService.DeleteContact(ctx, contact.ID))

	_, err = env.contactService.GetContact(ctx, contact.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateContact_MemberOwnershipEnforced(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")
	org := env.createOrg(t, "Acme", owner.ID)
	env.addMember(t, org.ID, member.ID, models.RoleMember)

	contact, err := env.contactService.CreateContact(env.ctx(owner.ID, org.ID, models.RoleOwner), CreateContactInput{Name: "Carol"})
	require.NoError(t, err)

	name := "Carla"
	_, err = env.contactService.UpdateContact(env.ctx(member.ID, org.ID, models.RoleMember), contact.ID, UpdateContactInput{Name: &name})
	require.ErrorIs(t, err, models.ErrPermissionDenied)

	updated, err := env.contactService.UpdateContact(env.ctx(owner.ID, org.ID, models.RoleOwner), contact.ID, UpdateContactInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Carla", updated.Name)
}

func TestListContacts_MemberScopedAndSearch(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")
	org := env.createOrg(t, "Acme", owner.ID)
	env.addMember(t, org.ID, member.ID, models.RoleMember)

	_, err := env.contactService.CreateContact(env.ctx(owner.ID, org.ID, models.RoleOwner), CreateContactInput{Name: "Alice Archer"})
	require.NoError(t, err)
	_, err = env.contactService.CreateContact(env.ctx(member.ID, org.ID, models.RoleMember), CreateContactInput{Name: "Bob Builder"})
	require.NoError(t, err)

	// Members only see their own contacts
	contacts, total, err := env.contactService.ListContacts(env.ctx(member.ID, org.ID, models.RoleMember), ListContactsInput{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Bob Builder", contacts[0].Name)

	// Managers see everyone, and search narrows by name
	_, total, err = env.contactService.ListContacts(env.ctx(owner.ID, org.ID, models.RoleOwner), ListContactsInput{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	contacts, total, err = env.contactService.ListContacts(env.ctx(owner.ID, org.ID, models.RoleOwner), ListContactsInput{Search: "Archer"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Alice Archer", contacts[0].Name)
}
