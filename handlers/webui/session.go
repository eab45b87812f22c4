package webui

import (
	"errors"
	"net/http"
	"time"

	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/NomadCrew/feedback-collector/services/session"
	"github.com/NomadCrew/feedback-collector/types"
	"github.com/gin-gonic/gin"
)

// sessionKey holds the *types.Session of a logged-in request.
const sessionKey = "web_session"

// CookieOptions describes the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

func (h *Handler) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, id, int(h.cookie.MaxAge.Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

// LoadSession attaches the caller's live session, if any. A store failure is
// logged and treated as logged out.
func (h *Handler) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(h.cookie.Name)
		if err != nil || id == "" {
			c.Next()
			return
		}

		sess, err := h.sessions.Get(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(sessionKey, sess)
			c.Set("username", sess.Username)
		case errors.Is(err, session.ErrNotFound):
			h.clearSessionCookie(c)
		default:
			logger.GetLogger().Warnw("Failed to load session", "error", err, "request_id", c.GetString("request_id"))
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous callers to /login.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentSession(c) == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *types.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*types.Session)
	return sess
}

func usernameOf(c *gin.Context) string {
	if sess := currentSession(c); sess != nil {
		return sess.Username
	}
	return ""
}
