package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/infrastructure/auth"
	"github.com/echomag/echomag/internal/shared/constants"
	"github.com/echomag/echomag/internal/shared/errors"
	"github.com/echomag/echomag/internal/shared/logger"
	"github.com/echomag/echomag/internal/shared/utils"
)

const (
	defaultRoleCacheSize = 1024
	defaultRoleCacheTTL  = time.Minute
)

// Authorizer decides whether a role may call a route.
type Authorizer interface {
	Enforce(role string, resource string, action string) (bool, error)
}

type tokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type accountLookup interface {
	GetByUID(ctx context.Context, uid int64) (*account.Account, error)
}

// AdminAuthMiddleware gates management routes on a bearer token naming the
// caller's uid, then on that account's role. Roles are cached briefly so a
// dashboard refresh does not hit the store on every request.
type AdminAuthMiddleware struct {
	tokens     tokenVerifier
	accounts   accountLookup
	authorizer Authorizer
	roles      *expirable.LRU[int64, account.UserType]
	logger     logger.Interface
}

func NewAdminAuthMiddleware(
	tokens tokenVerifier,
	accounts accountLookup,
	authorizer Authorizer,
	cacheSize int,
	cacheTTL time.Duration,
	logger logger.Interface,
) *AdminAuthMiddleware {
	if cacheSize <= 0 {
		cacheSize = defaultRoleCacheSize
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultRoleCacheTTL
	}
	return &AdminAuthMiddleware{
		tokens:     tokens,
		accounts:   accounts,
		authorizer: authorizer,
		roles:      expirable.NewLRU[int64, account.UserType](cacheSize, nil, cacheTTL),
		logger:     logger,
	}
}

func (m *AdminAuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.AbortWithError(c, errors.NewUnauthorizedError("authorization header is required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			utils.AbortWithError(c, errors.NewUnauthorizedError("invalid authorization header format"))
			return
		}

		claims, err := m.tokens.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("admin token rejected", "path", c.Request.URL.Path, "error", err)
			utils.AbortWithError(c, errors.NewUnauthorizedError("invalid or expired token"))
			return
		}
		uid := claims.UID

		role, err := m.roleOf(c.Request.Context(), uid)
		if err != nil {
			m.logger.Errorw("failed to load admin account", "uid", uid, "error", err)
			utils.AbortWithError(c, errors.NewUnavailableError("account store unavailable"))
			return
		}
		if role == "" {
			utils.AbortWithError(c, errors.NewUnauthorizedError("account not found"))
			return
		}

		allowed, err := m.authorizer.Enforce(string(role), c.Request.URL.Path, c.Request.Method)
		if err != nil {
			utils.ErrorResponse(c, http.StatusInternalServerError, "permission check failed")
			c.Abort()
			return
		}
		if !allowed {
			m.logger.Warnw("admin access denied", "uid", uid, "role", role, "path", c.Request.URL.Path)
			utils.AbortWithError(c, errors.NewForbiddenError("admin privileges required"))
			return
		}

		c.Set(constants.ContextKeyAdminUID, uid)
		c.Set(constants.ContextKeyUserRole, string(role))
		c.Next()
	}
}

// roleOf returns "" when the account does not exist. Misses are not cached.
func (m *AdminAuthMiddleware) roleOf(ctx context.Context, uid int64) (account.UserType, error) {
	if role, ok := m.roles.Get(uid); ok {
		return role, nil
	}

	acc, err := m.accounts.GetByUID(ctx, uid)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", nil
	}

	m.roles.Add(uid, acc.UserType())
	return acc.UserType(), nil
}
