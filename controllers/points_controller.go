package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/beanbuddy/beanbuddy/middleware"
	"github.com/beanbuddy/beanbuddy/services"
	"github.com/beanbuddy/beanbuddy/utils"
)

// PointsController exposes read access to the points ledger.
type PointsController struct {
	points *services.PointsService
}

// NewPointsController creates a PointsController.
func NewPointsController(points *services.PointsService) *PointsController {
	return &PointsController{points: points}
}

// GetBalance returns the current and lifetime balances.
func (p *PointsController) GetBalance(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	balance, err := p.points.BalanceOf(userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "account not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load balance")
		return
	}
	utils.Success(ctx, balance)
}

// GetHistory returns recent ledger entries, newest first.
func (p *PointsController) GetHistory(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	limit := 50
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := p.points.History(userID, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load history")
		return
	}
	utils.Success(ctx, gin.H{"items": entries})
}
