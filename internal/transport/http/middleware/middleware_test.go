package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/session"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	session func(ctx context.Context, tok string) (*domain.Session, bool)
}

func (r *fakeResolver) Session(ctx context.Context, tok string) (*domain.Session, bool) {
	return r.session(ctx, tok)
}

func newStore() *session.Store {
	return session.NewStore(session.Options{})
}

func request(path string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return req
}

func tokenCookie(v string) *http.Cookie {
	return &http.Cookie{Name: session.TokenCookie, Value: v}
}

func counterCookie(n int) *http.Cookie {
	return &http.Cookie{Name: session.RedirectCookie, Value: strconv.Itoa(n)}
}

// responseCookie returns the last Set-Cookie for name.
func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			found = ck
		}
	}
	return found
}

func hasSetCookie(w *httptest.ResponseRecorder, name string) bool {
	for _, line := range w.Header().Values("Set-Cookie") {
		if strings.HasPrefix(line, name+"=") {
			return true
		}
	}
	return false
}
