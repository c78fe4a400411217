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

// POSController handles terminal-facing endpoints: consuming redemption
// tokens and crediting purchases. All routes sit behind POSAuthRequired.
type POSController struct {
	redemptions *services.RedemptionService
	receipts    *services.ReceiptService
}

// NewPOSController creates a POSController.
func NewPOSController(redemptions *services.RedemptionService, receipts *services.ReceiptService) *POSController {
	return &POSController{redemptions: redemptions, receipts: receipts}
}

type consumeRequest struct {
	Token string `json:"token" binding:"required"`
}

// ConsumeRedemption validates a presented token and debits the reward cost
// exactly once. Signature and expiry failures share one message so the
// endpoint is not a verification oracle.
func (p *POSController) ConsumeRedemption(ctx *gin.Context) {
	posID, ok := middleware.POSID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40121, "unauthorized terminal")
		return
	}

	var req consumeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid consume payload")
		return
	}

	result, err := p.redemptions.Consume(req.Token, posID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenInvalid), errors.Is(err, services.ErrExpired):
			utils.Error(ctx, http.StatusUnauthorized, 40151, "invalid or expired token")
		case errors.Is(err, services.ErrAlreadyConsumed):
			utils.Error(ctx, http.StatusConflict, 40951, "redemption already consumed")
		case errors.Is(err, services.ErrTokenMismatch):
			utils.Error(ctx, http.StatusConflict, 40952, "token does not match redemption")
		case errors.Is(err, services.ErrInsufficientPoints):
			utils.Error(ctx, http.StatusConflict, 40953, "not enough points at consume time")
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40451, "redemption not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to consume redemption")
		}
		return
	}
	utils.Success(ctx, result)
}

type creditRequest struct {
	ExternalID string `json:"external_id" binding:"required"`
	AccountID  uint   `json:"account_id" binding:"required"`
	TotalCents int    `json:"total_cents" binding:"required,gt=0"`
}

// CreditReceipt credits points for a scanned purchase receipt, at most once
// per receipt identifier. Replays return success with zero points added.
func (p *POSController) CreditReceipt(ctx *gin.Context) {
	p.credit(ctx, p.receipts.CreditFromReceipt)
}

// CreditSale credits points for a direct terminal sale, idempotent on the
// sale identifier.
func (p *POSController) CreditSale(ctx *gin.Context) {
	p.credit(ctx, p.receipts.CreditFromPosSale)
}

func (p *POSController) credit(ctx *gin.Context, fn func(string, uint, int) (*services.CreditResult, error)) {
	var req creditRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid credit payload")
		return
	}

	result, err := fn(req.ExternalID, req.AccountID, req.TotalCents)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoPointsEarned):
			utils.Error(ctx, http.StatusBadRequest, 40053, "purchase total too small to earn points")
		case errors.Is(err, services.ErrNotFound):
			utils.Error(ctx, http.StatusNotFound, 40410, "account not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to credit purchase")
		}
		return
	}
	utils.Success(ctx, result)
}
