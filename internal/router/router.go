package router

import (
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/config"
	"github.com/colline-kooza/export-coffee-sub000/internal/handler"
	"github.com/colline-kooza/export-coffee-sub000/internal/middleware"
	"github.com/colline-kooza/export-coffee-sub000/internal/repository"
	"github.com/colline-kooza/export-coffee-sub000/internal/service"
	"github.com/colline-kooza/export-coffee-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	traderRepo := repository.NewTraderRepository(db)
	entryRepo := repository.NewTruckEntryRepository(db)
	readingRepo := repository.NewWeighbridgeRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	qualityRepo := repository.NewQualityRepository(db)
	perfRepo := repository.NewPerformanceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	traderSvc := service.NewTraderService(traderRepo)
	entrySvc := service.NewTruckEntryService(entryRepo, traderRepo)
	weighbridgeSvc := service.NewWeighbridgeService(readingRepo, entryRepo)
	perfSvc := service.NewPerformanceService(perfRepo, noteRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	noteSvc := service.NewNoteService(noteRepo, readingRepo, traderRepo, qualityRepo, perfSvc, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	tradersH := handler.NewTradersHandler(traderSvc, perfSvc)
	entriesH := handler.NewTruckEntriesHandler(entrySvc)
	weighbridgeH := handler.NewWeighbridgeHandler(weighbridgeSvc)
	notesH := handler.NewNotesHandler(noteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: gate, operator, supervisor, admin — declared per-endpoint

		// Gate registration
		v1.POST("/truck-entries", middleware.RequireRole("gate", "operator", "supervisor", "admin"), entriesH.Register)
		v1.GET("/truck-entries", middleware.RequireRole("gate", "operator", "supervisor", "admin"), entriesH.List)

		// Weighbridge
		v1.POST("/weighbridge-readings", middleware.RequireRole("operator", "supervisor", "admin"), weighbridgeH.Record)
		v1.GET("/weighbridge-readings", middleware.RequireRole("operator", "supervisor", "admin"), weighbridgeH.List)

		// Buying weight notes
		notes := v1.Group("/buying-weight-notes")
		{
			notes.POST("", middleware.RequireRole("operator", "supervisor", "admin"), notesH.Create)
			notes.GET("", middleware.RequireRole("operator", "supervisor", "admin"), notesH.List)
			notes.GET("/:id", middleware.RequireRole("operator", "supervisor", "admin"), notesH.Get)
			notes.PATCH("/:id", middleware.RequireRole("operator", "supervisor", "admin"), notesH.Update)
			notes.POST("/:id/transition", middleware.RequireRole("supervisor", "admin"), notesH.Transition)
			notes.POST("/:id/qc-result", middleware.RequireRole("supervisor", "admin"), notesH.RecordQCResult)
			notes.POST("/:id/payment", middleware.RequireRole("supervisor", "admin"), notesH.RecordPayment)
			notes.GET("/:id/slip", middleware.RequireRole("operator", "supervisor", "admin"), notesH.DownloadSlip)
		}

		// Traders — supervisors manage eligibility, admin manages identity
		v1.GET("/traders", middleware.RequireRole("gate", "operator", "supervisor", "admin"), tradersH.List)
		v1.GET("/traders/:id", middleware.RequireRole("gate", "operator", "supervisor", "admin"), tradersH.Get)
		v1.GET("/traders/:id/performance", middleware.RequireRole("operator", "supervisor", "admin"), tradersH.GetPerformance)
		v1.POST("/traders", middleware.RequireRole("supervisor", "admin"), tradersH.Create)
		v1.PATCH("/traders/:id/status", middleware.RequireRole("supervisor", "admin"), tradersH.UpdateStatus)

		// Staff accounts — admin only
		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
