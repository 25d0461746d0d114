package handlers

import (
	"net/http"

	"github.com/SscSPs/expenseflow/cmd/docs"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/middleware"
	"github.com/SscSPs/expenseflow/internal/platform/config"
	"github.com/SscSPs/expenseflow/internal/utils"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

type routeOptions struct {
	limiter *limiter.Limiter
	posthog *utils.PosthogClientWrapper
}

// RouteOption adds optional middleware to the API group.
type RouteOption func(*routeOptions)

// WithRateLimiter limits /api requests per user, or per IP before authentication.
func WithRateLimiter(l *limiter.Limiter) RouteOption {
	return func(o *routeOptions) { o.limiter = l }
}

// WithPosthog records API requests in PostHog.
func WithPosthog(client *utils.PosthogClientWrapper) RouteOption {
	return func(o *routeOptions) { o.posthog = client }
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts ...RouteOption,
) {
	options := &routeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Register public authentication routes
	RegisterAuthRoutes(r, cfg, services)

	setupAPIRoutes(r, cfg, services, options)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIRoutes configures the authenticated /api group and delegates to the
// per-area registrations.
func setupAPIRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	options *routeOptions,
) {
	chain := []gin.HandlerFunc{
		middleware.APITokenAuth(services.APIToken),
		middleware.AuthMiddleware(cfg.JWTSecret),
	}
	if options.limiter != nil {
		chain = append(chain, middleware.RateLimit(options.limiter))
	}
	if options.posthog != nil {
		chain = append(chain, middleware.PosthogMiddleware(options.posthog))
	}
	chain = append(chain, middleware.RequireRouteAccess(services.User))

	api := r.Group("/api", chain...)

	RegisterExpenseRoutes(api, services)
	RegisterApprovalRoutes(api, services.Submission)
	registerAttachmentRoutes(api, services.Attachment)
	registerNotificationRoutes(api, services.Notification)
	registerReportingRoutes(api, services.Reporting)
	registerUserRoutes(api, services.User)
	RegisterAPITokenRoutes(api, services.APIToken)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
