package main

import (
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/cache"
	"github.com/yukikurage/crm-api/internal/config"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/database"
	"github.com/yukikurage/crm-api/internal/handlers"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/repository"
	"github.com/yukikurage/crm-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Analytics cache shares the Redis instance with the session store
	analyticsCache := cache.NewRedisCache(redisAddr)
	defer analyticsCache.Close()

	// Initialize repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	contactRepo := repository.NewContactRepository(db)
	dealRepo := repository.NewDealRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, userRepo)
	contactService := services.NewContactService(contactRepo, dealRepo)
	analyticsService := services.NewAnalyticsService(dealRepo, analyticsCache, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	dealService := services.NewDealService(dealRepo, contactRepo, analyticsService)
	taskService := services.NewTaskService(taskRepo, dealRepo)
	activityService := services.NewActivityService(activityRepo, dealRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService)
	contactHandler := handlers.NewContactHandler(contactService)
	dealHandler := handlers.NewDealHandler(dealService, activityService)
	taskHandler := handlers.NewTaskHandler(taskService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "CRM API is running",
		})
	})

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Organization management routes (protected, org from path)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)

			withOrg := orgs.Group("/:id")
			withOrg.Use(middleware.RequireOrganizationPath(orgRepo))
			{
				withOrg.GET("", orgHandler.GetOrganization)
				withOrg.DELETE("", orgHandler.DeleteOrganization)
				withOrg.POST("/members", orgHandler.InviteMember)
				withOrg.PATCH("/members/:user_id", orgHandler.ChangeMemberRole)
				withOrg.DELETE("/members/:user_id", orgHandler.RemoveMember)
			}
		}

		// CRM resource routes (protected, org from X-Organization-ID header)
		crm := api.Group("")
		crm.Use(middleware.RequireAuth(), middleware.RequireOrganizationContext(orgRepo))
		{
			contacts := crm.Group("/contacts")
			{
				contacts.POST("", contactHandler.CreateContact)
				contacts.GET("", contactHandler.ListContacts)
				contacts.GET("/:id", contactHandler.GetContact)
				contacts.PATCH("/:id", contactHandler.UpdateContact)
				contacts.DELETE("/:id", contactHandler.DeleteContact)
			}

			deals := crm.Group("/deals")
			{
				deals.GET("/statuses", dealHandler.ListDealStatuses)
				deals.POST("", dealHandler.CreateDeal)
				deals.GET("", dealHandler.ListDeals)
				deals.GET("/:id", dealHandler.GetDeal)
				deals.PATCH("/:id", dealHandler.UpdateDeal)
				deals.DELETE("/:id", dealHandler.DeleteDeal)
				deals.POST("/:id/comments", dealHandler.AddComment)
				deals.GET("/:id/activities", dealHandler.ListActivities)
			}

			tasks := crm.Group("/tasks")
			{
				tasks.POST("", taskHandler.CreateTask)
				tasks.GET("", taskHandler.ListTasks)
				tasks.GET("/:id", taskHandler.GetTask)
				tasks.PATCH("/:id", taskHandler.UpdateTask)
				tasks.DELETE("/:id", taskHandler.DeleteTask)
			}

			analytics := crm.Group("/analytics")
			{
				analytics.GET("/summary", analyticsHandler.GetSummary)
				analytics.GET("/funnel", analyticsHandler.GetFunnel)
			}
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
