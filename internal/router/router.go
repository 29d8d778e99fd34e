package router

import (
	"github.com/gin-gonic/gin"

	"walksocr/internal/handler"
	"walksocr/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	onboardingH *handler.OnboardingHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	onboarding := v1.Group("/onboarding")
	onboarding.POST("", onboardingH.Create)
	onboarding.GET("/export", onboardingH.Export)
	onboarding.GET("/:id", onboardingH.GetByID)

	return r
}
