package proxy

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Upstreams are the base URLs of the backing services.
type Upstreams struct {
	Auth      string
	User      string
	Statement string
}

// Register mounts every public route. Token checks stay in the services;
// the gateway only forwards.
func Register(router gin.IRouter, p *Proxy, up Upstreams) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "api-gateway"})
	})

	// Auth routes (no authentication required)
	router.POST("/v1/auth/login", p.To(up.Auth))
	router.POST("/v1/auth/refresh", p.To(up.Auth))

	// User routes
	router.POST("/v1/users", p.To(up.User))
	router.GET("/v1/users/profile", p.To(up.User))

	// Statement routes
	router.GET("/v1/statements/balance", p.To(up.Statement))
	router.POST("/v1/statements/deposit", p.To(up.Statement))
	router.POST("/v1/statements/withdraw", p.To(up.Statement))
	router.POST("/v1/statements/transfers/:receiverId", p.To(up.Statement))
	router.GET("/v1/statements/:statementId", p.To(up.Statement))
}
