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

// BuddyController exposes the virtual pet endpoints.
type BuddyController struct {
	buddy *services.BuddyService
}

// NewBuddyController creates a BuddyController.
func NewBuddyController(buddy *services.BuddyService) *BuddyController {
	return &BuddyController{buddy: buddy}
}

// Get returns the buddy with pending decay applied.
func (b *BuddyController) Get(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	view, err := b.buddy.Get(userID, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "account not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load buddy")
		return
	}
	utils.Success(ctx, view)
}

type feedRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// Feed consumes one feed item and restores energy. Exhausted stock maps to a
// distinct code so the client can disable the matching button.
func (b *BuddyController) Feed(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	var req feedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid feed payload")
		return
	}

	view, err := b.buddy.Feed(userID, req.Kind, time.Now())
	if err != nil {
		var noStock *services.NoStockError
		switch {
		case errors.Is(err, services.ErrInvalidFeedKind):
			utils.Error(ctx, http.StatusBadRequest, 40022, "unknown feed kind")
		case errors.As(err, &noStock):
			utils.Error(ctx, http.StatusConflict, 40921, "no "+noStock.Kind+" left")
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40420, "account not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to feed buddy")
		}
		return
	}
	utils.Success(ctx, view)
}
