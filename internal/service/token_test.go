package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/user/yamdb/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	user := &model.User{ID: 42, Username: "alice", Role: model.RoleModerator}

	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" || claims.Role != "moderator" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Subject != "42" || claims.TokenType != "access" {
		t.Errorf("subject = %q type = %q", claims.Subject, claims.TokenType)
	}
}

func TestTokenParseRejects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	user := &model.User{ID: 1, Username: "alice", Role: model.RoleUser}

	other, _ := NewTokenService("another-secret-with-at-least-32-bytes", time.Hour).Issue(user)

	expiredSvc := NewTokenService(testSecret, time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := expiredSvc.Issue(user)

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:    1,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	refreshToken, _ := refresh.SignedString([]byte(testSecret))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, TokenType: "access"})
	noneToken, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": other,
		"expired":      expired,
		"wrong type":   refreshToken,
		"alg none":     noneToken,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Parse(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
