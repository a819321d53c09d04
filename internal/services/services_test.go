package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/cache"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	cache *cache.MemoryCache

	userRepo     repository.UserRepository
	orgRepo      repository.OrganizationRepository
	contactRepo  repository.ContactRepository
	dealRepo     repository.DealRepository
	taskRepo     repository.TaskRepository
	activityRepo repository.ActivityRepository

	authService      *AuthService
	orgService       *OrganizationService
	contactService   *ContactService
	dealService      *DealService
	taskService      *TaskService
	activityService  *ActivityService
	analyticsService *AnalyticsService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Contact{},
		&models.Deal{},
		&models.Task{},
		&models.Activity{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	env := &testEnv{
		db:           db,
		cache:        cache.NewMemoryCache(),
		userRepo:     repository.NewUserRepository(db),
		orgRepo:      repository.NewOrganizationRepository(db),
		contactRepo:  repository.NewContactRepository(db),
		dealRepo:     repository.NewDealRepository(db),
		taskRepo:     repository.NewTaskRepository(db),
		activityRepo: repository.NewActivityRepository(db),
	}

	env.authService = NewAuthService(env.userRepo)
	env.orgService = NewOrganizationService(env.orgRepo, env.userRepo)
	env.contactService = NewContactService(env.contactRepo, env.dealRepo)
	env.analyticsService = NewAnalyticsService(env.dealRepo, env.cache, 5*time.Minute)
	env.dealService = NewDealService(env.dealRepo, env.contactRepo, env.analyticsService)
	env.taskService = NewTaskService(env.taskRepo, env.dealRepo)
	env.activityService = NewActivityService(env.activityRepo, env.dealRepo)

	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()

	user, err := e.authService.Register(RegisterInput{
		Email:    email,
		Password: "password123",
		Name:     "Test User",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createOrg(t *testing.T, name string, ownerID uint64) *models.Organization {
	t.Helper()

	org, err := e.orgService.CreateOrganization(name, ownerID)
	require.NoError(t, err)
	return org
}

func (e *testEnv) addMember(t *testing.T, orgID, userID uint64, role models.MemberRole) {
	t.Helper()

	err := e.orgRepo.AddMember(&models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		JoinedAt:       time.Now(),
	})
	require.NoError(t, err)
}

func (e *testEnv) ctx(userID, orgID uint64, role models.MemberRole) authz.Context {
	return authz.Context{UserID: userID, OrganizationID: orgID, Role: role}
}
