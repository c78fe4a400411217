package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beanbuddy/beanbuddy/models"
	"github.com/beanbuddy/beanbuddy/utils"
)

// StatsController exposes aggregate loyalty program counters.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a StatsController.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns program-wide totals.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var accounts, redemptionsConsumed, receiptsProcessed int64
	var pointsIssued struct {
		Total int64
	}

	if err := s.db.Model(&models.User{}).Count(&accounts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load stats")
		return
	}
	if err := s.db.Model(&models.Redemption{}).
		Where("status = ?", models.RedemptionConsumed).
		Count(&redemptionsConsumed).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load stats")
		return
	}
	if err := s.db.Model(&models.Receipt{}).Count(&receiptsProcessed).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load stats")
		return
	}
	if err := s.db.Model(&models.User{}).
		Select("COALESCE(SUM(lifetime_points), 0) AS total").
		Scan(&pointsIssued).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load stats")
		return
	}

	utils.Success(ctx, gin.H{
		"accounts":             accounts,
		"points_issued":        pointsIssued.Total,
		"redemptions_consumed": redemptionsConsumed,
		"receipts_processed":   receiptsProcessed,
	})
}
