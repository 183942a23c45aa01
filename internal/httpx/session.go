package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/auth"
)

const (
	sessionKey = "session"
	loginKey   = "login"
)

// Revalidator confirms a stored session still matches its user row.
type Revalidator interface {
	Revalidate(ctx context.Context, sess auth.Session) error
}

// BearerToken extracts the session id from "Authorization: Bearer <id>".
func BearerToken(c *gin.Context) (uuid.UUID, bool) {
	h := c.GetHeader("Authorization")
	tok, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(tok))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// RequireSession loads the bearer session and rejects the request when it
// is missing, expired or no longer valid. A session invalidated by a
// credential change is deleted from the store.
func RequireSession(store auth.Store, rv Revalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer session token"})
			return
		}
		sess, err := store.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, auth.ErrNoSession) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
			return
		}
		if err := rv.Revalidate(c.Request.Context(), sess); err != nil {
			if errors.Is(err, apperr.ErrReauthRequired) {
				_ = store.Delete(c.Request.Context(), id)
			}
			Error(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		c.Set(loginKey, sess.Login)
		c.Next()
	}
}

// CurrentSession returns the session set by RequireSession.
func CurrentSession(c *gin.Context) auth.Session {
	v, _ := c.Get(sessionKey)
	sess, _ := v.(auth.Session)
	return sess
}
