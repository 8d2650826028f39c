package middleware

import (
	"context"
	"strings"

	"campuscomplaint/internal/backend/service"
	pkgerrors "campuscomplaint/pkg/errors"
	"campuscomplaint/pkg/utils/contextkey"
	"campuscomplaint/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Auth requires a valid access token. When roles are given the caller must carry one of them.
func Auth(tokens *service.TokenIssuer, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			response.AbortWithErrorCode(c, pkgerrors.ServiceUnavailable, "auth service unavailable")
			return
		}

		principal, err := tokens.Authenticate(extractBearerToken(c.GetHeader("Authorization")))
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		if len(roles) > 0 && !hasAnyRole(principal, roles) {
			response.AbortWithErrorCode(c, pkgerrors.Forbidden, "insufficient role")
			return
		}

		c.Set(principalKey, principal)
		ctx := context.WithValue(c.Request.Context(), contextkey.UserID, principal.ID)
		ctx = context.WithValue(ctx, contextkey.UserRoles, principal.Roles)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CurrentPrincipal returns the caller set by Auth.
func CurrentPrincipal(c *gin.Context) (service.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return service.Principal{}, false
	}
	p, ok := v.(service.Principal)
	return p, ok
}

func extractBearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func hasAnyRole(p service.Principal, allowed []string) bool {
	for _, role := range allowed {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}
