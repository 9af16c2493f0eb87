package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xrplist/warden/service"
)

// SetupRouter wires all routes. The public surface is the challenge/verify
// pair, the allow-list signup and the collection listing; everything else
// sits behind the bearer middleware. Super-admin-only checks live in the
// services, not here.
func SetupRouter(
	auth *service.AuthService,
	admins *service.AdminService,
	registry *service.RegistryService,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	handlers := NewHandlers(auth, admins, registry, log)

	router.GET("/healthz", handlers.Healthz)

	api := router.Group("/api")
	{
		api.POST("/auth/challenge", handlers.Challenge)
		api.POST("/auth/verify", handlers.Verify)

		api.POST("/whitelist", handlers.CreateEntry)
		api.GET("/collections", handlers.ListCollections)
	}

	protected := router.Group("/api")
	protected.Use(AuthMiddleware(auth))
	{
		protected.GET("/whitelist", handlers.ListEntries)

		protected.GET("/admin/wallets", handlers.ListAdmins)
		protected.POST("/admin/wallets", handlers.AddAdmin)
		protected.DELETE("/admin/wallets/:address", handlers.RemoveAdmin)

		protected.DELETE("/admin/whitelist", handlers.ClearEntries)
		protected.DELETE("/admin/collections", handlers.ClearCollections)
		protected.GET("/admin/download/json", handlers.DownloadJSON)
		protected.GET("/admin/download/txt", handlers.DownloadText)
		protected.GET("/admin/download/addresses", handlers.DownloadAddresses)

		protected.POST("/collections", handlers.CreateCollection)
		protected.DELETE("/collections/:id", handlers.DeleteCollection)
	}

	return router
}
