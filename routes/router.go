package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beanbuddy/beanbuddy/config"
	"github.com/beanbuddy/beanbuddy/controllers"
	"github.com/beanbuddy/beanbuddy/middleware"
	"github.com/beanbuddy/beanbuddy/services"
	"github.com/beanbuddy/beanbuddy/utils"
)

// SetupRouter wires routes, middlewares, services, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.AccessLog())
	r.Use(utils.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-POS-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	pointsService := services.NewPointsService(db)
	buddyService := services.NewBuddyService(db,
		time.Duration(cfg.DecayUnitMinutes)*time.Minute,
		cfg.DecayPerUnit,
		cfg.FeedRestoreEnergy,
		cfg.RefillPerDay,
	)
	codec := utils.NewRewardTokenCodec(utils.DeriveRewardKey(cfg.JWTSecret))
	redemptionService := services.NewRedemptionService(db, pointsService, codec,
		time.Duration(cfg.RedemptionTTLMinutes)*time.Minute)
	receiptService := services.NewReceiptService(db, pointsService, utils.Sugar, cfg.PointsPerCurrencyUnit)

	authController := controllers.NewAuthController(db, buddyService)
	buddyController := controllers.NewBuddyController(buddyService)
	pointsController := controllers.NewPointsController(pointsService)
	redemptionController := controllers.NewRedemptionController(redemptionService)
	posController := controllers.NewPOSController(redemptionService, receiptService)
	giftCardController := controllers.NewGiftCardController(db)
	menuController := controllers.NewMenuController(db)
	statsController := controllers.NewStatsController(db)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public read surface
	api.GET("/menu", menuController.ListMenu)
	api.GET("/promotions", menuController.ListPromotions)
	api.GET("/stats", statsController.GetStats)
	api.GET("/giftcards/:code", giftCardController.Get)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.GET("/buddy", buddyController.Get)
	protected.POST("/buddy/feed", buddyController.Feed)
	protected.GET("/points", pointsController.GetBalance)
	protected.GET("/points/history", pointsController.GetHistory)
	protected.POST("/redemptions", redemptionController.Request)
	protected.POST("/giftcards", giftCardController.Create)
	protected.POST("/giftcards/:code/redeem", giftCardController.Redeem)
	protected.POST("/giftcards/:code/cancel", giftCardController.Cancel)

	// Terminal-facing endpoints, authenticated by API key instead of JWT.
	pos := api.Group("/pos")
	pos.Use(middleware.POSAuthRequired())
	pos.POST("/redemptions/consume", posController.ConsumeRedemption)
	pos.POST("/receipts", posController.CreditReceipt)
	pos.POST("/sales", posController.CreditSale)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
