package handlers

import (
	"github.com/contactkeeper/contacts_backend/cmd/docs"
	portssvc "github.com/contactkeeper/contacts_backend/internal/core/ports/services"
	"github.com/contactkeeper/contacts_backend/internal/middleware"
	"github.com/contactkeeper/contacts_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	dbPool *pgxpool.Pool,
) {
	r.GET("/", GetHome)
	r.GET("/api/healthchecker", Healthchecker(dbPool))

	// Public authentication routes
	registerAuthRoutes(r, cfg, services)

	// Protected routes behind the auth gate
	setupProtectedRoutes(r, services)

	// Swagger routes (conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupProtectedRoutes configures the /api group gated by the auth middleware
// and delegates to specific entity route registrations.
func setupProtectedRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	// Per-user limit across all protected endpoints
	rate, _ := limiter.NewRateFromFormatted("60-M")
	store := memory.NewStore()
	userLimiter := limiter.New(store, rate)

	api := r.Group("/api",
		middleware.AuthMiddleware(services.Auth),
		middleware.RateLimitPerUser(userLimiter),
	)

	registerUserRoutes(api, services.User)
	registerContactRoutes(api, services.Contact)
}

// setupSwaggerRoutes configures the swagger documentation routes.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
