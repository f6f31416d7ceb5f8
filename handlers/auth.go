package handlers

import (
	"net/http"
	"time"

	"slotbook/middleware"
	"slotbook/models"
	"slotbook/services/apierr"
	"slotbook/services/session"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler exposes signup, login, logout and the current host.
type AuthHandler struct {
	Sessions *session.Manager
	// CookieTTL is the lifetime of the browser session cookie.
	CookieTTL time.Duration
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sessions *session.Manager, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{Sessions: sessions, CookieTTL: cookieTTL}
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Signup registers a host and opens a session.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, token, err := h.Sessions.Signup(c.Request.Context(), req)
	if err != nil {
		h.authFailed(c, err, "Signup failed")
		return
	}
	middleware.SetSessionCookie(c, token, int(h.CookieTTL.Seconds()))
	c.JSON(http.StatusCreated, authResponse{User: sess.User, Token: token})
}

// Login signs a host in and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, token, err := h.Sessions.Login(c.Request.Context(), req)
	if err != nil {
		h.authFailed(c, err, "Login failed")
		return
	}
	middleware.SetSessionCookie(c, token, int(h.CookieTTL.Seconds()))
	c.JSON(http.StatusOK, authResponse{User: sess.User, Token: token})
}

// Logout ends the session. The cookie is cleared even when the backend
// could not be reached.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess != nil {
		if err := h.Sessions.Logout(c.Request.Context(), sess); err != nil {
			utils.RequestLogger(c).Warn("Logout incomplete", zap.String("sessionID", sess.ID), zap.Error(err))
		}
	}
	middleware.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the signed-in host.
func (h *AuthHandler) Me(c *gin.Context) {
	sess := requireSession(c)
	if sess == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sess.User})
}

func (h *AuthHandler) authFailed(c *gin.Context, err error, fallback string) {
	if apierr.IsValidation(err) {
		respondError(c, err)
		return
	}
	status := apierr.Status(err)
	if status < 400 || status >= 500 {
		status = http.StatusBadGateway
	}
	utils.RequestLogger(c).Warn(fallback, zap.Error(err))
	c.JSON(status, utils.ErrorResponse{Error: apierr.Message(err, fallback)})
}
