package middleware

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/student-portal/internal/guard"
	"github.com/ErlanBelekov/student-portal/internal/metrics"
	"github.com/ErlanBelekov/student-portal/internal/session"
	"github.com/gin-gonic/gin"
)

// Guard runs guard.Decide for page requests. It only looks at whether the
// session cookie is present; the redirect counter round-trips through its
// own cookie.
func Guard(store *session.Store, logger *slog.Logger) gin.HandlerFunc {
	logger = logger.With("component", "guard")
	return func(c *gin.Context) {
		_, hasSession := store.Token(c)
		prior := store.RedirectCount(c)

		d := guard.Decide(guard.Input{
			Path:       c.Request.URL.Path,
			HasSession: hasSession,
			PriorCount: prior,
		})
		metrics.GuardDecisionsTotal.WithLabelValues(d.Action.String()).Inc()

		switch d.Action {
		case guard.ForceLogout:
			logger.WarnContext(c.Request.Context(), "redirect loop detected, forcing logout",
				"path", c.Request.URL.Path, "count", prior)
			store.ForceClear(c)
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
		case guard.Redirect:
			store.SetRedirectCount(c, d.Count)
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
		default:
			if prior != 0 {
				store.SetRedirectCount(c, d.Count)
			}
			c.Next()
		}
	}
}
