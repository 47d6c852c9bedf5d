package app

import (
	"net/http"

	"github.com/Weskio/ai-task-whisperer/internal/auth"
	"github.com/Weskio/ai-task-whisperer/internal/config"
	"github.com/Weskio/ai-task-whisperer/internal/handlers"
	"github.com/Weskio/ai-task-whisperer/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, a *App) {
	cfg := a.cfg
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	// The passcode is optional; without it the board is open to whoever can reach it.
	protected := api
	owner := service.NewOwnerService(cfg.Auth.PasswordHash)
	if owner.Enabled() && a.redis != nil {
		sessionStore := auth.NewStore(a.redis, cfg.Auth.SessionTTL.Duration(), cfg.Store.KeyPrefix)
		registerAuthRoutes(api, handlers.NewAuthHandler(sessionStore, owner))
		protected = api.Group("", auth.RequireSession(sessionStore))
	}

	registerTaskRoutes(protected, handlers.NewTaskHandler(a.board))

	var invalidator handlers.CacheInvalidator
	if a.cache != nil {
		invalidator = a.cache
	}
	registerSettingsRoutes(protected, handlers.NewSettingsHandler(a.creds, invalidator, a.feed))
	protected.GET("/notifications", handlers.NewNotificationHandler(a.feed).List)
	protected.GET("/export", handlers.NewExportHandler(a.exporter).Export)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Task Whisperer API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env, "store": cfg.Store.Backend})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.GET("/board", h.Board)
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.List)
	api.GET("/tasks/:id", h.Get)
	api.PATCH("/tasks/:id", h.Update)
	api.DELETE("/tasks/:id", h.Delete)
	api.POST("/tasks/:id/move", h.Move)
	api.POST("/tasks/:id/suggestions", h.RegenerateSuggestions)
	api.POST("/tasks/:id/subtasks", h.AddSubtask)
	api.PATCH("/tasks/:id/subtasks/:subtaskId", h.EditSubtask)
	api.POST("/tasks/:id/subtasks/:subtaskId/toggle", h.ToggleSubtask)
	api.DELETE("/tasks/:id/subtasks/:subtaskId", h.DeleteSubtask)
}

func registerSettingsRoutes(api *gin.RouterGroup, h *handlers.SettingsHandler) {
	api.GET("/settings/api-key", h.APIKeyStatus)
	api.PUT("/settings/api-key", h.SetAPIKey)
	api.DELETE("/settings/api-key", h.ClearAPIKey)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
}
