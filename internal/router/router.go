package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/regsite/registry-backend/internal/config"
	"github.com/regsite/registry-backend/internal/handler"
	"github.com/regsite/registry-backend/internal/middleware"
	"github.com/regsite/registry-backend/internal/response"
	"github.com/regsite/registry-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Answer   *handler.AnswerHandler
	Consent  *handler.ConsentHandler
	Cohort   *handler.CohortHandler
	Registry *handler.RegistryHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Metrics())
	router.Use(middleware.Brotli())

	// Health check and Prometheus scrape endpoint.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", middleware.MetricsHandler())

	// ─── 1. Public Group (No Auth) ─────────────────────────────────────
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", loginLimiter.Middleware(), handlers.Auth.Login)
		// Peer registries call this during cross-host federated counts.
		public.POST("/cohorts/federated", handlers.Cohort.PeerCount)
	}

	// ─── 2. Authenticated Group (any role) ─────────────────────────────
	authed := router.Group("/api/v1")
	authed.Use(middleware.RequireJWT(authService))
	{
		authed.GET("/auth/me", handlers.Auth.Me)
	}

	// ─── 3. Participant Group (JWT) ────────────────────────────────────
	participant := router.Group("/api/v1")
	participant.Use(middleware.RequireParticipantJWT(authService))
	participant.Use(middleware.NoStore())
	{
		participant.POST("/answers", handlers.Answer.Submit)
		participant.GET("/surveys/:surveyId/answers", handlers.Answer.GetSurveyAnswers)
		participant.GET("/answers/history", handlers.Answer.History)
		participant.POST("/answers/export", handlers.Answer.StartExport)
		participant.GET("/answers/export/:jobId", handlers.Answer.GetExport)
		participant.POST("/answers/import", handlers.Answer.Import)

		participant.GET("/surveys/:surveyId/consents", handlers.Consent.ListOutstanding)
		participant.POST("/consent-documents/:id/sign", handlers.Consent.Sign)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	admin := router.Group("/api/v1")
	admin.Use(middleware.RequireAdminJWT(authService))
	{
		admin.POST("/cohorts/search", handlers.Cohort.Search)
		admin.POST("/cohorts/count", handlers.Cohort.Count)
		admin.POST("/cohorts/federated-count", handlers.Cohort.FederatedCount)

		admin.GET("/registries", handlers.Registry.List)
		admin.POST("/registries", handlers.Registry.Create)
		admin.POST("/registries/identifiers", handlers.Registry.CreateIdentifier)
	}

	return router
}
