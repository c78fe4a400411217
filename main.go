package main

import (
	"github.com/beanbuddy/beanbuddy/config"
	"github.com/beanbuddy/beanbuddy/models"
	"github.com/beanbuddy/beanbuddy/routes"
	"github.com/beanbuddy/beanbuddy/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.PointTransaction{},
		&models.Redemption{},
		&models.Receipt{},
		&models.GiftCard{},
		&models.MenuItem{},
		&models.Promotion{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
