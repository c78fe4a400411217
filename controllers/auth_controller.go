package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beanbuddy/beanbuddy/middleware"
	"github.com/beanbuddy/beanbuddy/models"
	"github.com/beanbuddy/beanbuddy/services"
	"github.com/beanbuddy/beanbuddy/utils"
)

const sessionDuration = 72 * time.Hour

// AuthController handles account registration and session endpoints.
type AuthController struct {
	db    *gorm.DB
	buddy *services.BuddyService
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, buddy *services.BuddyService) *AuthController {
	return &AuthController{db: db, buddy: buddy}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Register creates a new account with a fresh buddy at full energy.
func (a *AuthController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid register payload")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40901, "username or email already registered")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create account")
		return
	}

	utils.Success(ctx, gin.H{"id": user.ID, "username": user.Username})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials, issues a session token, and fires the buddy
// login refill as the session-start event.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid login payload")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, sessionDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to issue token")
		return
	}

	buddy, err := a.buddy.LoginRefill(user.ID, time.Now())
	if err != nil {
		// The session is still valid even if the refill write failed.
		utils.Sugar.Warnf("login refill failed for account %d: %v", user.ID, err)
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "username": user.Username, "email": user.Email},
		"buddy": buddy,
	})
}

// Logout revokes the presented session token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		token := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated account with current balances.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "account not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to load account")
		return
	}

	utils.Success(ctx, gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"points":          user.Points,
		"lifetime_points": user.LifetimePoints,
	})
}
