package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taic-market/internal/domain"
	"taic-market/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	adminKeyHash string,
	authH *AuthHandler,
	stakingH *StakingHandler,
	productH *ProductHandler,
	merchantH *MerchantHandler,
	assistantH *AssistantHandler,
	adminH *AdminHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/challenge", authH.Challenge)
	auth.POST("/verify", authH.Verify)
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.Refresh)
	auth.GET("/me", JWTAuthMiddleware(jwtSvc), authH.Me)

	staking := api.Group("/user/staking", JWTAuthMiddleware(jwtSvc))
	staking.GET("", stakingH.List)
	staking.POST("/stake", stakingH.Stake)
	staking.POST("/unstake", stakingH.Unstake)

	products := api.Group("/products")
	products.GET("", productH.List)
	products.GET("/:id", productH.Get)

	merchant := api.Group("/merchant", JWTAuthMiddleware(jwtSvc), RequireRole(domain.RoleMerchant))
	merchant.GET("/products", merchantH.ListProducts)
	merchant.POST("/products", merchantH.CreateProduct)
	merchant.PUT("/products/:id", merchantH.UpdateProduct)
	merchant.DELETE("/products/:id", merchantH.DeleteProduct)
	merchant.POST("/products/bulk", merchantH.BulkUpload)
	merchant.POST("/products/image-upload", merchantH.ImageUploadURL)

	api.POST("/assistant/query", assistantH.Query)

	admin := api.Group("/admin", AdminKeyMiddleware(adminKeyHash))
	admin.GET("/users", adminH.ListUsers)
	admin.POST("/users/:id/cashback", adminH.CreditCashback)
	admin.GET("/imports", adminH.ListImports)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
