package middleware

import (
	"context"
	"net/http"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	ctxlog "github.com/ErlanBelekov/student-portal/internal/log"
	"github.com/ErlanBelekov/student-portal/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	errUnauthorized = "Unauthorized"
	sessionKey      = "session"
)

// SessionResolver is satisfied by *usecase.AuthUsecase.
type SessionResolver interface {
	Session(ctx context.Context, tok string) (*domain.Session, bool)
}

// RequireSession verifies the session cookie and stores the session in the
// gin context. Missing or invalid sessions get a 401.
func RequireSession(store *session.Store, resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := LoadSession(c, store, resolver)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": errUnauthorized})
			return
		}
		c.Set(sessionKey, sess)
		if sess.Student != nil {
			c.Request = c.Request.WithContext(ctxlog.WithStudentID(c.Request.Context(), sess.Student.ID))
		}
		c.Next()
	}
}

// LoadSession reads and verifies the session cookie without aborting.
func LoadSession(c *gin.Context, store *session.Store, resolver SessionResolver) (*domain.Session, bool) {
	tok, ok := store.Token(c)
	if !ok {
		return nil, false
	}
	return resolver.Session(c.Request.Context(), tok)
}

// CurrentSession returns the session stored by RequireSession.
func CurrentSession(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*domain.Session)
	return sess, ok && sess != nil
}
