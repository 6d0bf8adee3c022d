package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"studio-booking/internal/domain/user"
	"studio-booking/internal/handler/api"
	"studio-booking/internal/handler/middleware"
	"studio-booking/internal/metrics"
	"studio-booking/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	bookingHandler *api.BookingHandler,
	catalogHandler *api.CatalogHandler,
	settingsHandler *api.SettingsHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cfg, authHandler, bookingHandler, catalogHandler, settingsHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.MetricsMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	bookingHandler *api.BookingHandler,
	catalogHandler *api.CatalogHandler,
	settingsHandler *api.SettingsHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	metrics.Register()

	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Locally stored payment proofs are served by the app itself; on S3 the
	// proof URLs point at the bucket directly.
	if cfg.Storage.Backend == "local" {
		engine.Static(cfg.Storage.PublicURL, cfg.Storage.LocalDir)
	}

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/auth/login", Handler: authHandler.Login},
			{Method: http.MethodGet, Path: "/services", Handler: catalogHandler.ListServices},
			{Method: http.MethodGet, Path: "/addons", Handler: catalogHandler.ListAddons},
			{Method: http.MethodPost, Path: "/bookings", Handler: bookingHandler.CreateBooking},
			{Method: http.MethodPost, Path: "/bookings/estimate", Handler: bookingHandler.Estimate},
		})

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		{
			adminOnly := authMiddleware.RequireRoleAtLeast(user.RoleAdmin)

			addRoutes(admin, []route{
				// Staff can read the back office; mutations require admin.
				{Method: http.MethodGet, Path: "/bookings", Handler: bookingHandler.ListBookings},
				{Method: http.MethodGet, Path: "/bookings/search", Handler: bookingHandler.SearchBookings},
				{Method: http.MethodGet, Path: "/bookings/export.xlsx", Handler: bookingHandler.ExportBookings},
				{Method: http.MethodGet, Path: "/bookings/:id", Handler: bookingHandler.GetBooking},
				{Method: http.MethodGet, Path: "/settings", Handler: settingsHandler.GetSettings},

				{Method: http.MethodPut, Path: "/bookings/:id/price", Handler: bookingHandler.AdjustPrice, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodPut, Path: "/bookings/:id/schedule", Handler: bookingHandler.Reschedule, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodPatch, Path: "/bookings/:id/status", Handler: bookingHandler.UpdateStatus, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodPost, Path: "/bookings/:id/payments", Handler: bookingHandler.AddPayment, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodDelete, Path: "/bookings/:id", Handler: bookingHandler.DeleteBooking, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodPut, Path: "/settings", Handler: settingsHandler.UpdateSettings, Mw: []gin.HandlerFunc{adminOnly}},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
