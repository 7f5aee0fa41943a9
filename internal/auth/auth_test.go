package auth

import (
	"net/http/httptest"
	"testing"
)

const testSecret = "unit-test-secret"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("uid = %d, want 42", claims.UserID)
	}
	if claims.Subject != "42" {
		t.Errorf("sub = %q, want 42", claims.Subject)
	}
}

func TestParseAccessToken_Invalid(t *testing.T) {
	good, _ := GenerateAccessToken(1, testSecret, 15)
	expired, _ := GenerateAccessToken(1, testSecret, -1)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", good + ""},
		{"expired", expired},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := testSecret
			if tt.name == "wrong secret" {
				secret = "other"
			}
			if _, err := ParseAccessToken(tt.token, secret); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestGenerateRefreshToken_Unique(t *testing.T) {
	a, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	b, _ := GenerateRefreshToken()
	if a == b {
		t.Error("refresh tokens should be random")
	}
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(a))
	}
}

func TestBearerFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		url    string
		want   string
	}{
		{"header", "Bearer abc123", "/ws", "abc123"},
		{"header lowercase scheme", "bearer abc123", "/ws", "abc123"},
		{"header padded", "Bearer   abc123", "/ws", "abc123"},
		{"query param", "", "/ws?token=qtok", "qtok"},
		{"header wins over query", "Bearer htok", "/ws?token=qtok", "htok"},
		{"wrong scheme", "Basic abc123", "/ws", ""},
		{"missing", "", "/ws", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := BearerFromRequest(req); got != tt.want {
				t.Errorf("BearerFromRequest = %q, want %q", got, tt.want)
			}
		})
	}
}
