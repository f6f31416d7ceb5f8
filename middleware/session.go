package middleware

import (
	"errors"
	"net/http"
	"strings"

	"slotbook/services/session"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sessionToken reads the token from the session cookie, then from a Bearer
// Authorization header.
func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(utils.SessionCookieName); err == nil && v != "" {
		return v
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// SessionMiddleware resolves the host session. With optional set, requests
// without a valid session continue anonymously; otherwise they are rejected
// with 401.
func SessionMiddleware(manager *session.Manager, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.RequestLogger(c)
		token := sessionToken(c)

		sess, err := manager.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(utils.CtxSession, sess)
			c.Request = c.Request.WithContext(sess.Context(c.Request.Context()))
			c.Next()
			return
		case session.IsUnauthenticated(err):
			if errors.Is(err, session.ErrSessionExpired) {
				ClearSessionCookie(c)
			}
			if optional {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Not authenticated"})
			return
		default:
			logger.Error("Session lookup failed", zap.Error(err))
			if optional {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusBadGateway, utils.ErrorResponse{
				Error:   "Could not verify your session",
				Details: "Please try again.",
			})
		}
	}
}

// CurrentSession returns the session set by SessionMiddleware, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(utils.CtxSession)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// SetSessionCookie stores token in the browser session cookie.
func SetSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

// ClearSessionCookie expires the browser session cookie.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(utils.SessionCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}
