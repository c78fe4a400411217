package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/beanbuddy/beanbuddy/middleware"
	"github.com/beanbuddy/beanbuddy/services"
	"github.com/beanbuddy/beanbuddy/utils"
)

// RedemptionController exposes the client-facing half of the redemption flow.
type RedemptionController struct {
	redemptions *services.RedemptionService
}

// NewRedemptionController creates a RedemptionController.
func NewRedemptionController(redemptions *services.RedemptionService) *RedemptionController {
	return &RedemptionController{redemptions: redemptions}
}

type redemptionRequest struct {
	RewardKind string `json:"reward_kind" binding:"required"`
}

// Request issues a short-lived redemption token after an affordability check.
func (r *RedemptionController) Request(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	var req redemptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid redemption payload")
		return
	}

	grant, err := r.redemptions.Request(userID, req.RewardKind, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidReward):
			utils.Error(ctx, http.StatusBadRequest, 40042, "unknown reward kind")
		case errors.Is(err, services.ErrInsufficientPoints):
			utils.Error(ctx, http.StatusConflict, 40941, "not enough points for this reward")
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40410, "account not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to create redemption")
		}
		return
	}
	utils.Success(ctx, grant)
}
