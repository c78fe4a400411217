package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/beanbuddy/beanbuddy/config"
	"github.com/beanbuddy/beanbuddy/utils"
)

// ContextPOSIDKey stores the authenticated POS terminal identifier.
const ContextPOSIDKey = "pos_id"

// POSAuthRequired authenticates point-of-sale terminals by API key. This is a
// separate channel from account JWTs: a customer session can never call the
// consume or credit endpoints.
func POSAuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := strings.TrimSpace(ctx.GetHeader("X-POS-Key"))
		if key == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40121, "pos api key missing")
			ctx.Abort()
			return
		}

		cfg := config.Get()
		for terminal, expected := range cfg.POSTerminalKeys {
			if subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1 {
				ctx.Set(ContextPOSIDKey, terminal)
				ctx.Next()
				return
			}
		}

		utils.Error(ctx, http.StatusUnauthorized, 40122, "invalid pos api key")
		ctx.Abort()
	}
}

// POSID extracts the terminal identifier placed by POSAuthRequired.
func POSID(ctx *gin.Context) (string, bool) {
	v, ok := ctx.Get(ContextPOSIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
