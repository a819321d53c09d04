package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/cache"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type apiTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupAPITestEnv(t *testing.T) apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	contactRepo := repository.NewContactRepository(db)
	dealRepo := repository.NewDealRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, userRepo)
	analyticsService := services.NewAnalyticsService(dealRepo, cache.NewMemoryCache(), 5*time.Minute)
	dealService := services.NewDealService(dealRepo, contactRepo, analyticsService)
	activityService := services.NewActivityService(activityRepo, dealRepo)

	authHandler := NewAuthHandler(authService)
	orgHandler := NewOrganizationHandler(orgService)
	dealHandler := NewDealHandler(dealService, activityService)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	api := r.Group("/api/v1")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	orgs := api.Group("/organizations", middleware.RequireAuth())
	orgs.POST("", orgHandler.CreateOrganization)
	orgs.POST("/:id/members", middleware.RequireOrganizationPath(orgRepo), orgHandler.InviteMember)

	deals := api.Group("/deals", middleware.RequireAuth(), middleware.RequireOrganizationContext(orgRepo))
	deals.GET("/statuses", dealHandler.ListDealStatuses)
	deals.POST("", dealHandler.CreateDeal)
	deals.GET("/:id", dealHandler.GetDeal)
	deals.PATCH("/:id", dealHandler.UpdateDeal)
	deals.GET("/:id/activities", dealHandler.ListActivities)

	return apiTestEnv{db: db, router: r}
}

func (e apiTestEnv) request(t *testing.T, method, path string, payload any, cookies []*http.Cookie, orgID uint64) *httptest.ResponseRecorder {
	t.Helper()

	var bodyReader *bytes.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(body)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if orgID != 0 {
		req.Header.Set(constants.HeaderOrganizationID, strconv.FormatUint(orgID, 10))
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e apiTestEnv) signUpAndLogin(t *testing.T, email string) (uint64, []*http.Cookie) {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": "supersecret",
		"name":     "Test User",
	}, nil, 0)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = e.request(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": "supersecret",
	}, nil, 0)
	require.Equal(t, http.StatusOK, w.Code)

	return created.ID, w.Result().Cookies()
}

func (e apiTestEnv) createOrg(t *testing.T, cookies []*http.Cookie, name string) uint64 {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/v1/organizations", map[string]string{"name": name}, cookies, 0)
	require.Equal(t, http.StatusCreated, w.Code)

	var org struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &org))
	return org.ID
}

func TestDealHandler_LifecycleOverHTTP(t *testing.T) {
	env := setupAPITestEnv(t)

	_, cookies := env.signUpAndLogin(t, "alice@example.com")
	orgID := env.createOrg(t, cookies, "Acme")

	// Create a deal
	w := env.request(t, http.MethodPost, "/api/v1/deals", map[string]any{
		"title": "Big deal",
	}, cookies, orgID)
	require.Equal(t, http.StatusCreated, w.Code)

	var deal struct {
		ID     uint64 `json:"id"`
		Status string `json:"status"`
		Stage  string `json:"stage"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deal))
	require.Equal(t, "new", deal.Status)
	require.Equal(t, "qualification", deal.Stage)

	// Winning a zero-amount deal violates a business rule
	w = env.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/deals/%d", deal.ID), map[string]any{
		"status": "won",
	}, cookies, orgID)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// With an amount it goes through
	w = env.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/deals/%d", deal.ID), map[string]any{
		"status": "won",
		"amount": 1200.50,
	}, cookies, orgID)
	require.Equal(t, http.StatusOK, w.Code)

	// The transition landed on the timeline
	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d/activities", deal.ID), nil, cookies, orgID)
	require.Equal(t, http.StatusOK, w.Code)

	var timeline struct {
		Activities []struct {
			Type string `json:"type"`
		} `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &timeline))
	require.Len(t, timeline.Activities, 1)
	require.Equal(t, "status_changed", timeline.Activities[0].Type)
}

func TestDealHandler_StatusesEndpoint(t *testing.T) {
	env := setupAPITestEnv(t)

	_, cookies := env.signUpAndLogin(t, "alice@example.com")
	orgID := env.createOrg(t, cookies, "Acme")

	w := env.request(t, http.MethodGet, "/api/v1/deals/statuses", nil, cookies, orgID)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Statuses []string `json:"statuses"`
		Stages   []string `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, []string{"new", "in_progress", "won", "lost"}, resp.Statuses)
	require.Equal(t, []string{"qualification", "proposal", "negotiation", "closed"}, resp.Stages)
}

func TestDealHandler_TenantAndOwnershipBoundaries(t *testing.T) {
	env := setupAPITestEnv(t)

	_, aliceCookies := env.signUpAndLogin(t, "alice@example.com")
	orgID := env.createOrg(t, aliceCookies, "Acme")

	w := env.request(t, http.MethodPost, "/api/v1/deals", map[string]any{
		"title":  "Acme deal",
		"amount": 100,
	}, aliceCookies, orgID)
	require.Equal(t, http.StatusCreated, w.Code)

	var deal struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deal))

	// A non-member is rejected by the organization middleware
	bobID, bobCookies := env.signUpAndLogin(t, "bob@example.com")
	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d", deal.ID), nil, bobCookies, orgID)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Invited as MEMBER, bob still cannot read alice's deal
	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/organizations/%d/members", orgID), map[string]any{
		"user_id": bobID,
		"role":    "member",
	}, aliceCookies, 0)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d", deal.ID), nil, bobCookies, orgID)
	require.Equal(t, http.StatusForbidden, w.Code)

	// From bob's own organization the deal simply does not exist
	bobOrgID := env.createOrg(t, bobCookies, "Bobs Org")
	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/deals/%d", deal.ID), nil, bobCookies, bobOrgID)
	require.Equal(t, http.StatusNotFound, w.Code)
}
