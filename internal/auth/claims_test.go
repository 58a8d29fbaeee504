package auth

import (
	"errors"
	"strings"
	"testing"
)

const testSecret = "test-secret-at-least-32-characters-long"

func testUser() *User {
	return &User{
		ID:       "usr-12345678",
		Username: "alice",
		Role:     RoleAdmin,
		IsActive: true,
	}
}

func TestGenerateAccessToken(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	// A JWT has three dot-separated segments
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("token has %d segments, want 3", len(parts))
	}
}

func TestParseToken_RoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.Subject != "usr-12345678" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "usr-12345678")
	}
	if claims.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, RoleAdmin)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(testUser(), testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	_, err = ParseToken(token, "a-completely-different-secret-value-here")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("garbage", testSecret)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestRequireRole(t *testing.T) {
	admin := &CustomClaims{Role: RoleAdmin}
	user := &CustomClaims{Role: RoleUser}

	if err := admin.RequireRole(RoleAdmin); err != nil {
		t.Errorf("admin RequireRole(admin) error = %v", err)
	}
	if err := user.RequireRole(RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Errorf("user RequireRole(admin) error = %v, want ErrForbidden", err)
	}

	var missing *CustomClaims
	if err := missing.RequireRole(RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Errorf("nil claims RequireRole(admin) error = %v, want ErrForbidden", err)
	}
}
