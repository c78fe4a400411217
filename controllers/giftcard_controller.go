package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beanbuddy/beanbuddy/middleware"
	"github.com/beanbuddy/beanbuddy/models"
	"github.com/beanbuddy/beanbuddy/utils"
)

// GiftCardController handles prepaid gift card CRUD. Thin field-level
// mapping; the only stateful care is the ACTIVE->REDEEMED/CANCELLED
// transitions being conditional single updates.
type GiftCardController struct {
	db *gorm.DB
}

// NewGiftCardController creates a GiftCardController.
func NewGiftCardController(db *gorm.DB) *GiftCardController {
	return &GiftCardController{db: db}
}

type createGiftCardRequest struct {
	AmountCents int    `json:"amount_cents" binding:"required,gt=0"`
	Email       string `json:"email" binding:"omitempty,email"`
	Message     string `json:"message" binding:"max=512"`
}

// Create issues a new gift card from the authenticated sender.
func (g *GiftCardController) Create(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	var req createGiftCardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid gift card payload")
		return
	}

	card := models.GiftCard{
		Code:        uuid.NewString(),
		AmountCents: req.AmountCents,
		Status:      models.GiftCardActive,
		SenderID:    userID,
		Email:       req.Email,
		Message:     utils.Sanitize(req.Message),
	}
	if err := g.db.Create(&card).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to create gift card")
		return
	}

	if card.Email != "" {
		// Best effort; delivery failure never blocks issuance.
		go func(to, code string) {
			if err := utils.SendMail(to, "You received a BeanBuddy gift card",
				"Redeem it in the app with code: "+code); err != nil && utils.Sugar != nil {
				utils.Sugar.Warnf("gift card mail to %s failed: %v", to, err)
			}
		}(card.Email, card.Code)
	}

	utils.Success(ctx, card)
}

// Get returns a gift card by code.
func (g *GiftCardController) Get(ctx *gin.Context) {
	code := ctx.Param("code")
	var card models.GiftCard
	if err := g.db.Where("code = ?", code).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40461, "gift card not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load gift card")
		return
	}
	utils.Success(ctx, card)
}

// Redeem claims an active card for the authenticated account. The
// ACTIVE->REDEEMED flip is conditional so two concurrent redeems cannot both
// succeed.
func (g *GiftCardController) Redeem(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	code := ctx.Param("code")
	now := time.Now()
	res := g.db.Model(&models.GiftCard{}).
		Where("code = ? AND status = ?", code, models.GiftCardActive).
		Updates(map[string]interface{}{
			"status":       models.GiftCardRedeemed,
			"recipient_id": userID,
			"redeemed_at":  now,
		})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to redeem gift card")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusConflict, 40961, "gift card not active")
		return
	}

	var card models.GiftCard
	if err := g.db.Where("code = ?", code).First(&card).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load gift card")
		return
	}
	utils.Success(ctx, card)
}

// Cancel voids an active card; only the sender may cancel.
func (g *GiftCardController) Cancel(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	code := ctx.Param("code")
	res := g.db.Model(&models.GiftCard{}).
		Where("code = ? AND status = ? AND sender_id = ?", code, models.GiftCardActive, userID).
		Update("status", models.GiftCardCancelled)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to cancel gift card")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusConflict, 40962, "gift card not active or not yours")
		return
	}
	utils.Success(ctx, gin.H{"code": code, "status": models.GiftCardCancelled})
}
