package controller

import (
	"net/http"

	"trivia-token-service/conf"
	"trivia-token-service/controller/handler"
	"trivia-token-service/controller/respond"
	"trivia-token-service/docs"
	"trivia-token-service/service/catalog_service"
	"trivia-token-service/service/eligibility_service"
	"trivia-token-service/service/forge_service"
	"trivia-token-service/service/mint_service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Services everything the router dispatches to
type Services struct {
	Eligibility *eligibility_service.EligibilityService
	Catalog     *catalog_service.CatalogService
	Mint        *mint_service.MintService
	Forge       *forge_service.ForgeService

	// Metrics serves /metrics when set
	Metrics http.Handler
}

// SetupRouter setup API router
func SetupRouter(s Services) *gin.Engine {
	pathPrefix := ""
	if conf.Cfg != nil {
		if conf.Cfg.Server.SwaggerBaseUrl != "" {
			docs.SwaggerInfo.Host = conf.Cfg.Server.SwaggerBaseUrl
		}
		pathPrefix = conf.Cfg.Server.PathPrefix
	}

	// Create Gin engine
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "Accept", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * 3600, // 12 hours
	}))

	// Add timing middleware
	r.Use(respond.TimingMiddleware())

	// Create handlers
	eligibilityHandler := handler.NewEligibilityHandler(s.Eligibility, s.Mint)
	tokenHandler := handler.NewTokenHandler(s.Mint)
	forgeHandler := handler.NewForgeHandler(s.Forge)
	catalogHandler := handler.NewCatalogHandler(s.Catalog)

	// API v1 route group
	v1 := r.Group(pathPrefix + "/api/v1")
	{
		eligibilities := v1.Group("/eligibilities")
		{
			eligibilities.POST("", eligibilityHandler.CreateEligibility)
			eligibilities.GET("/:id", eligibilityHandler.GetEligibility)
			eligibilities.POST("/:id/claim", eligibilityHandler.Claim)
		}
		v1.GET("/players/:playerId/eligibilities", eligibilityHandler.ListPlayerEligibilities)

		v1.GET("/mints/:id", tokenHandler.GetMint)
		v1.GET("/owners/:ownerKey/tokens", tokenHandler.ListTokens)

		forge := v1.Group("/forge")
		{
			// Progress must be registered before /:id
			forge.GET("/progress/:ownerKey", forgeHandler.GetProgress)
			forge.POST("", forgeHandler.Initiate)
			forge.GET("/:id", forgeHandler.GetStatus)
			forge.POST("/:id/cancel", forgeHandler.Cancel)
		}

		v1.GET("/identifiers/:identifier", catalogHandler.InspectIdentifier)
		v1.GET("/categories", catalogHandler.ListCategories)
		v1.GET("/catalog/:categoryId/availability", catalogHandler.GetAvailability)

		admin := v1.Group("/admin")
		{
			admin.POST("/catalog/:itemId/release", catalogHandler.ReleaseItem)
			admin.GET("/forge/stuck", forgeHandler.ListStuck)
			admin.POST("/forge/:id/reconcile", forgeHandler.Reconcile)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "trivia-token",
		})
	})

	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics))
	}

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.InstanceName("swagger")))

	return r
}
