package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/student-portal/internal/session"
	"github.com/ErlanBelekov/student-portal/internal/transport/http/handler"
	"github.com/ErlanBelekov/student-portal/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterDeps struct {
	Logger   *slog.Logger
	Sessions *session.Store
	Resolver middleware.SessionResolver
	Auth     *handler.AuthHandler
	Portal   *handler.PortalHandler
	Pages    *handler.PageHandler
	HSTS     bool
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(d.HSTS))
	r.Use(sloggin.New(d.Logger))
	r.Use(middleware.Metrics())

	requireSession := middleware.RequireSession(d.Sessions, d.Resolver)

	// Auth endpoints are never guarded; the guard is for page navigation.
	auth := r.Group("/api/auth", middleware.NoStore())
	auth.POST("/login", d.Auth.Login)
	auth.POST("/password-login", d.Auth.PasswordLogin)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.POST("/setup-password", requireSession, d.Auth.SetupPassword)
	auth.GET("/callback", d.Auth.Callback)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/force-logout", d.Auth.ForceLogout)
	auth.GET("/check-session", d.Auth.CheckSession)
	auth.GET("/clear-cookies", d.Auth.ClearCookies)
	auth.GET("/validate-session", d.Auth.ValidateSession)

	// Portal API
	api := r.Group("/api", middleware.NoStore(), requireSession)
	api.GET("/tasks", d.Portal.ListTasks)
	api.PATCH("/tasks/:id", d.Portal.SetTaskCompleted)
	api.GET("/submissions", d.Portal.ListSubmissions)
	api.POST("/submissions", d.Portal.AddSubmission)
	api.GET("/schedules", d.Portal.ListSchedules)
	api.POST("/consultation/reserve", d.Portal.Reserve)
	api.GET("/consultation/user-reservations", d.Portal.UserReservations)

	// Guarded pages
	pages := r.Group("", middleware.NoStore(), middleware.Guard(d.Sessions, d.Logger))
	pages.GET("/", d.Pages.Login)
	pages.GET("/login", d.Pages.Login)
	pages.GET("/dashboard", d.Pages.Dashboard)
	pages.GET("/dashboard/schedule", d.Pages.Schedule)
	pages.GET("/dashboard/task", d.Pages.Task)
	pages.GET("/dashboard/setup-password", d.Pages.SetupPassword)
	pages.GET("/login/check-email", d.Pages.CheckEmail)

	return r
}
