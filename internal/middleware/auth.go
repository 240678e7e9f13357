package middleware

import (
	"errors"
	"net/http"
	"strings"

	"kos-manager/internal/models"
	"kos-manager/internal/service"
	"kos-manager/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the signed session token.
const SessionCookie = "kos_session"

const (
	ctxUser    = "currentUser"
	ctxSession = "currentSession"
)

func tokenFrom(c *gin.Context) string {
	// 1) Header: Authorization: Bearer xxx
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// 2) Cookie kos_session
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}
	// 3) ?token=xxx，用于下载等无法自定义 Header 的场景
	return c.Query("token")
}

// AuthMiddleware resolves the session token and stores the user and session
// in the context. Requests without a live session get 401.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Please log in to access this page.")
			c.Abort()
			return
		}

		user, session, err := auth.Resolve(c.Request.Context(), tokenStr)
		if err != nil {
			if errors.Is(err, service.ErrSessionInvalid) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Your session has expired, please log in again.")
			} else {
				_ = c.Error(err)
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load session.")
			}
			c.Abort()
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxSession, session)
		c.Next()
	}
}

// CurrentUser returns the signed-in user, or nil outside AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// CurrentSession returns the session behind the request token.
func CurrentSession(c *gin.Context) *models.Session {
	if v, ok := c.Get(ctxSession); ok {
		if s, ok := v.(*models.Session); ok {
			return s
		}
	}
	return nil
}
