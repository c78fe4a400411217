package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RewardClaims are the claims embedded in a redemption bearer token. The
// signature binds every field; tampering with any of them invalidates the
// token as a whole.
type RewardClaims struct {
	RedemptionID string `json:"redemption_id"`
	AccountID    uint   `json:"account_id"`
	RewardKind   string `json:"reward_kind"`
	CostPoints   int    `json:"cost_points"`
	jwt.RegisteredClaims
}

// RewardTokenCodec signs and verifies redemption tokens. The signing key is
// injected at construction so tests can run with a fixed deterministic key.
// It is deliberately separate from the account session token helpers: a
// session JWT must never be presentable at the POS consume endpoint.
type RewardTokenCodec struct {
	secret []byte
}

// NewRewardTokenCodec creates a codec with the given signing key.
func NewRewardTokenCodec(secret []byte) *RewardTokenCodec {
	return &RewardTokenCodec{secret: secret}
}

// DeriveRewardKey derives the reward token signing key from the application
// secret. A session JWT signed with the raw secret can never verify against
// the derived key, and vice versa.
func DeriveRewardKey(appSecret string) []byte {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte("reward-token-v1"))
	return mac.Sum(nil)
}

// Sign issues an HS256 token for a redemption with the embedded expiry.
func (c *RewardTokenCodec) Sign(redemptionID string, accountID uint, rewardKind string, costPoints int, expiresAt time.Time) (string, error) {
	claims := RewardClaims{
		RedemptionID: redemptionID,
		AccountID:    accountID,
		RewardKind:   rewardKind,
		CostPoints:   costPoints,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates signature and embedded expiry and returns the claims.
// All failures collapse into one error so callers cannot distinguish
// tampering from expiry.
func (c *RewardTokenCodec) Verify(tokenStr string) (*RewardClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &RewardClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*RewardClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
