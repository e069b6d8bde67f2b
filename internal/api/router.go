package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/quill/internal/api/handlers"
	"github.com/nebari-dev/quill/internal/api/middleware"
	"github.com/nebari-dev/quill/internal/auth"
	"github.com/nebari-dev/quill/internal/cache"
	"github.com/nebari-dev/quill/internal/config"
	"github.com/nebari-dev/quill/internal/policy"
	"github.com/nebari-dev/quill/internal/service"
	"github.com/nebari-dev/quill/internal/store"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter creates and configures the Gin router. identities may be nil, in
// which case every authenticated request reads the user from the store.
func NewRouter(cfg *config.Config, st *store.Store, identities *cache.IdentityCache) *gin.Engine {
	// Set Gin mode
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware(cfg.Server.FrontendURL))

	engine := policy.Default()
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)

	accountOpts := []service.AccountOption{
		service.WithPolicy(engine),
		service.WithRoleSelection(cfg.Auth.AllowRoleSelection),
	}
	var users auth.UserFinder = st
	if identities != nil {
		users = identities
		accountOpts = append(accountOpts, service.WithInvalidator(identities))
	}
	authn := auth.NewAuthenticator(tokens, users, cfg.Auth.CookieName, cfg.Server.IsProduction())

	articles := handlers.NewArticleHandler(service.NewArticleService(st, engine))
	accounts := service.NewAccountService(st, tokens, accountOpts...)
	authHandler := handlers.NewAuthHandler(accounts, authn)
	adminHandler := handlers.NewAdminHandler(accounts)
	health := handlers.NewHealthHandler(st.DB())
	version := handlers.NewVersionHandler(cfg.Server.Mode, handlers.Features{
		IdentityCache: identities != nil,
		RoleSelection: cfg.Auth.AllowRoleSelection,
	})

	router.GET("/health", health.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/version", version.GetVersion)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authn.RequireAuth(), authHandler.Me)

		// Reads resolve the caller when possible; mutations require one.
		articleGroup := api.Group("/articles")
		articleGroup.GET("", authn.OptionalAuth(), articles.ListArticles)
		articleGroup.GET("/:id", authn.OptionalAuth(), articles.GetArticle)
		articleGroup.POST("", authn.RequireAuth(), articles.CreateArticle)
		articleGroup.PUT("/:id", authn.RequireAuth(), articles.UpdateArticle)
		articleGroup.DELETE("/:id", authn.RequireAuth(), articles.DeleteArticle)

		admin := api.Group("/admin")
		admin.Use(authn.RequireAuth(), middleware.RequireUserAdmin(engine))
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.PUT("/users/:id/role", adminHandler.SetUserRole)
		}
	}

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	slog.Info("API router initialized", "mode", cfg.Server.Mode, "identity_cache", identities != nil)
	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		slog.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"ip", c.ClientIP(),
		)
	}
}

// corsMiddleware allows credentialed requests from the configured frontend
// origin only.
func corsMiddleware(frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && origin == frontendURL {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		c.Writer.Header().Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
