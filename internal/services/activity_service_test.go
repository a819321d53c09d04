package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/models"
)

func TestAddComment_AppearsInChronologicalOrder(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, "Acme", owner.ID)
	ctx := env.ctx(owner.ID, org.ID, models.RoleOwner)

	deal, err := env.dealService.CreateDeal(ctx, CreateDealInput{Title: "Deal", Amount: 10})
	require.NoError(t, err)

	_, err = env.activityService.AddComment(ctx, deal.ID, "first")
	require.NoError(t, err)

	inProgress := models.DealStatusInProgress
	_, err = env.dealService.UpdateDeal(ctx, deal.ID, UpdateDealInput{Status: &inProgress})
	require.NoError(t, err)

	_, err = env.activityService.AddComment(ctx, deal.ID, "second")
	require.NoError(t, err)

	activities, err := env.activityService.ListActivities(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, activities, 3)
	require.Equal(t, models.ActivityTypeComment, activities[0].Type)
	require.Equal(t, models.ActivityTypeStatusChanged, activities[1].Type)
	require.Equal(t, models.ActivityTypeComment, activities[2].Type)
}

func TestAddComment_MemberNeedsDealOwnership(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	member := env.createUser(t, "member@example.com")
	org := env.createOrg(t, "Acme", owner.ID)
	env.addMember(t, org.ID, member.ID, models.RoleMember)

	deal, err := env.dealService.CreateDeal(env.ctx(owner.ID, org.ID, models.RoleOwner), CreateDealInput{Title: "Deal", Amount: 10})
	require.NoError(t, err)

	_, err = env.activityService.AddComment(env.ctx(member.ID, org.ID, models.RoleMember), deal.ID, "drive-by")
	require.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = env.activityService.ListActivities(env.ctx(member.ID, org.ID, models.RoleMember), deal.ID)
	require.ErrorIs(t, err, models.ErrPermissionDenied)
}

func TestAddComment_EmptyTextRejected(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	org := env.createOrg(t, "Acme", owner.ID)
	ctx := env.ctx(owner.ID, org.ID, models.RoleOwner)

	deal, err := env.dealService.CreateDeal(ctx, CreateDealInput{Title: "Deal", Amount: 10})
	require.NoError(t, err)

	_, err = env.activityService.AddComment(ctx, deal.ID, "   ")
	require.ErrorIs(t, err, ErrCommentTextRequired)
}
