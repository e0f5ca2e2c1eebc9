package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"merch-api/internal/domain/user"
	"merch-api/internal/handler/api"
	"merch-api/internal/handler/middleware"
	"merch-api/internal/pkg/config"
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
	merchHandler *api.MerchHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, merchHandler, adminHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	merchHandler *api.MerchHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/signup", Handler: authHandler.Signup},
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: authHandler.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		merch := apiGroup.Group("/merch")
		merch.Use(authMiddleware.RequireAuth())
		{
			addRoutes(merch, []route{
				{Method: http.MethodGet, Path: "/products", Handler: merchHandler.ListProducts},
				{Method: http.MethodPost, Path: "/quote", Handler: merchHandler.Quote},
				{Method: http.MethodPost, Path: "/redeem", Handler: merchHandler.Redeem},
				{Method: http.MethodGet, Path: "/redemptions", Handler: merchHandler.ListRedemptions},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		admin.Use(authMiddleware.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/products", Handler: adminHandler.ListProducts},
				{Method: http.MethodPost, Path: "/products", Handler: adminHandler.CreateProduct},
				{Method: http.MethodPut, Path: "/products/:id", Handler: adminHandler.UpdateProduct},
				{Method: http.MethodDelete, Path: "/products/:id", Handler: adminHandler.DeleteProduct},
				{Method: http.MethodGet, Path: "/metrics", Handler: adminHandler.GetMetrics},
				{Method: http.MethodGet, Path: "/dashboard", Handler: adminHandler.GetDashboard},
				{Method: http.MethodGet, Path: "/lanes", Handler: adminHandler.ListLanes},
				{Method: http.MethodPut, Path: "/lanes/:id/state", Handler: adminHandler.UpdateLaneState},
				{Method: http.MethodGet, Path: "/users", Handler: adminHandler.ListUsers},
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
