package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
	"github.com/guttosm/pack-assistant/internal/service"
)

const (
	// OperatorIDKey is the gin context key holding the authenticated operator id.
	OperatorIDKey = "operator_id"
	// OperatorNameKey is the gin context key holding the operator display name.
	OperatorNameKey = "operator_name"
	// OperatorClaimsKey is the gin context key holding the parsed token claims.
	OperatorClaimsKey = "operator_claims"
)

// TokenValidator validates operator bearer tokens.
type TokenValidator interface {
	Validate(token string) (*service.OperatorClaims, error)
}

// JWTAuth returns a middleware that validates operator bearer tokens.
// The operator id is stored in the gin context and in the request context,
// where the packing service picks it up for draft attribution.
func JWTAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := GetRequestID(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, dto.MsgTokenRequired, requestID)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, dto.MsgInvalidToken, requestID)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			abortUnauthorized(c, dto.MsgTokenRequired, requestID)
			return
		}

		claims, err := validator.Validate(tokenString)
		if err != nil {
			abortUnauthorized(c, dto.MsgInvalidToken, requestID)
			return
		}

		operatorID := claims.OperatorID()
		c.Set(OperatorIDKey, operatorID)
		c.Set(OperatorNameKey, claims.Name)
		c.Set(OperatorClaimsKey, claims)
		c.Request = c.Request.WithContext(service.WithOperator(c.Request.Context(), operatorID))

		c.Next()
	}
}

// GetOperatorID returns the authenticated operator id, or "" when the
// request was not authenticated with a bearer token.
func GetOperatorID(c *gin.Context) string {
	return c.GetString(OperatorIDKey)
}

func abortUnauthorized(c *gin.Context, message, requestID string) {
	errorResp := dto.NewError(dto.ErrCodeUnauthorized, message).
		WithRequestID(requestID)
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResp)
}
