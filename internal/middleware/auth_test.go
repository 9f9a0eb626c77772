package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/yamdb/internal/model"
	"github.com/user/yamdb/internal/permission"
	"github.com/user/yamdb/internal/service"
)

const testSecret = "this-is-a-test-secret-with-32-bytes!"

type mockResolver struct {
	identities map[int64]*permission.Identity
}

func (m *mockResolver) Resolve(_ context.Context, userID int64) (*permission.Identity, error) {
	if id, ok := m.identities[userID]; ok {
		return id, nil
	}
	return nil, service.ErrUnauthenticated
}

func setupAuthRouter(policy permission.Policy) (*gin.Engine, *service.TokenService) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(testSecret, time.Hour)
	resolver := &mockResolver{identities: map[int64]*permission.Identity{
		1: {UserID: 1, Username: "user", Role: model.RoleUser},
		2: {UserID: 2, Username: "admin", Role: model.RoleAdmin},
	}}

	r := gin.New()
	r.Use(Authenticate(tokens, resolver))
	handler := func(c *gin.Context) {
		if id := GetIdentity(c); id != nil {
			c.String(http.StatusOK, id.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	}
	g := r.Group("/", Authorize(policy))
	g.GET("/resource", handler)
	g.POST("/resource", handler)
	return r, tokens
}

func tokenFor(t *testing.T, tokens *service.TokenService, id int64, username string) string {
	t.Helper()
	token, err := tokens.Issue(&model.User{ID: id, Username: username})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	r, tokens := setupAuthRouter(permission.ReadOrAdminOnly)
	userToken := tokenFor(t, tokens, 1, "user")
	adminToken := tokenFor(t, tokens, 2, "admin")
	deletedToken := tokenFor(t, tokens, 3, "ghost")

	tests := []struct {
		name   string
		method string
		token  string
		want   int
		body   string
	}{
		{"anonymous read", http.MethodGet, "", http.StatusOK, "anonymous"},
		{"anonymous write", http.MethodPost, "", http.StatusUnauthorized, ""},
		{"user read", http.MethodGet, userToken, http.StatusOK, "user"},
		{"user write", http.MethodPost, userToken, http.StatusForbidden, ""},
		{"admin write", http.MethodPost, adminToken, http.StatusOK, "admin"},
		{"invalid token", http.MethodGet, "garbage", http.StatusUnauthorized, ""},
		{"deleted user", http.MethodGet, deletedToken, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/resource", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestAuthenticateReadsCookie(t *testing.T) {
	r, tokens := setupAuthRouter(permission.IsAuthenticated)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tokenFor(t, tokens, 1, "user")})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "user" {
		t.Errorf("status = %d body = %q", w.Code, w.Body.String())
	}
}
