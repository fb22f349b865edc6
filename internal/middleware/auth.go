package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
)

// APIKeyHeader carries the shared API key used when operator tokens are off.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth rejects requests whose X-API-Key is not one of keys. With no
// keys configured every request passes. Keys are not read from the query
// string so they stay out of request logs.
func APIKeyAuth(keys map[string]bool) gin.HandlerFunc {
	accepted := make([][]byte, 0, len(keys))
	for key, ok := range keys {
		if ok && key != "" {
			accepted = append(accepted, []byte(key))
		}
	}

	return func(c *gin.Context) {
		if len(accepted) == 0 {
			c.Next()
			return
		}

		presented := c.GetHeader(APIKeyHeader)
		switch {
		case presented == "":
			abortUnauthorized(c, dto.MsgAPIKeyRequired, GetRequestID(c))
		case !matchesAny(accepted, []byte(presented)):
			abortUnauthorized(c, dto.MsgInvalidAPIKey, GetRequestID(c))
		default:
			c.Next()
		}
	}
}

// matchesAny compares against every key in constant time.
func matchesAny(accepted [][]byte, presented []byte) bool {
	found := 0
	for _, key := range accepted {
		found |= subtle.ConstantTimeCompare(key, presented)
	}
	return found == 1
}
