package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beanbuddy/beanbuddy/models"
	"github.com/beanbuddy/beanbuddy/utils"
)

// MenuController serves the public menu and promotion listings. Both are
// read-mostly and cached in Redis.
type MenuController struct {
	db *gorm.DB
}

// NewMenuController creates a MenuController.
func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{db: db}
}

// ListMenu returns available menu items.
func (m *MenuController) ListMenu(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:menu"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var items []models.MenuItem
	if err := m.db.Where("available = ?", true).Order("category, name").Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to load menu")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"items": items}}
	utils.CacheSetJSON("cache:menu", wrapper, 10*time.Minute)
	utils.Success(ctx, gin.H{"items": items})
}

// ListPromotions returns promotions currently in their active window.
func (m *MenuController) ListPromotions(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:promotions"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	now := time.Now()
	var promos []models.Promotion
	if err := m.db.Where("starts_at <= ? AND ends_at >= ?", now, now).Order("starts_at DESC").Find(&promos).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load promotions")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"items": promos}}
	utils.CacheSetJSON("cache:promotions", wrapper, 10*time.Minute)
	utils.Success(ctx, gin.H{"items": promos})
}
