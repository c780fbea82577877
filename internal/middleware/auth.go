package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/dto"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/service"
	"github.com/Beliver-cell/Fantasy-luxe-store/internal/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys for user info
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
)

// LegacyTokenHeader: заголовок, которым витрина передаёт токен.
const LegacyTokenHeader = "token"

type TokenVerifier interface {
	ParseAndValidate(ctx context.Context, raw string) (*token.Claims, error)
}

// AuthRequired validates the bearer (or legacy "token" header) JWT and puts the
// caller identity both into the gin context and into the request context.
func AuthRequired(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, msg := tokenFromRequest(c.Request)
		if msg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError(msg))
			return
		}

		claims, err := verifier.ParseAndValidate(c.Request.Context(), raw)
		if err != nil {
			log.Warn("token validation failed", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("Not Authorized Login Again"))
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserRole, string(claims.Role))

		ctx := service.WithUserID(c.Request.Context(), claims.UserID)
		ctx = service.WithRole(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := service.RoleFromContext(c.Request.Context()); role != service.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}

func tokenFromRequest(r *http.Request) (string, string) {
	if authz := r.Header.Get("Authorization"); authz != "" {
		t, ok := ExtractBearerToken(authz)
		if !ok {
			return "", "invalid Authorization header"
		}
		if t == "" {
			return "", "empty token"
		}
		return t, ""
	}
	if t := strings.Trim(strings.TrimSpace(r.Header.Get(LegacyTokenHeader)), "\"'"); t != "" {
		return t, ""
	}
	return "", "Not Authorized Login Again"
}

// ExtractBearerToken извлекает токен из заголовка Authorization, устойчиво к лишним символам
// Примеры допустимых значений:
// - "Bearer abc.def.ghi"
// - "Bearer \"abc.def.ghi\""
// - "Bearer abc.def.ghi, extra"
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.Trim(strings.TrimSpace(parts[1]), " \"'")
	// Обрезать всё после первой запятой
	if i := strings.IndexRune(t, ','); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	// Взять первый токен до пробела
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return strings.Trim(t, " \"'"), true
}
