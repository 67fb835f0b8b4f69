package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/grammar-azi/user-service/internal/auth"
)

// stubParser accepts exactly one token value.
type stubParser struct {
	want   string
	claims *auth.Claims
}

func (p *stubParser) ParseAccess(token string) (*auth.Claims, error) {
	if token == p.want {
		return p.claims, nil
	}
	return nil, errors.New("bad token")
}

func guardedRouter(p AccessTokenParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthRequired(p), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("userID"),
			"email":   c.GetString("userEmail"),
		})
	})
	return r
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	r := guardedRouter(&stubParser{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error envelope: %v", err)
	}
	if body["code"] != "unauthorized" {
		t.Fatalf("code = %q, want unauthorized", body["code"])
	}
}

func TestAuthRequired_BadToken(t *testing.T) {
	r := guardedRouter(&stubParser{want: "good"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer evil")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuthRequired_SetsIdentity(t *testing.T) {
	p := &stubParser{want: "good", claims: &auth.Claims{Email: "jane@x.com"}}
	p.claims.Subject = "user-1"
	r := guardedRouter(p)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer good") // scheme is case-insensitive
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["user_id"] != "user-1" || body["email"] != "jane@x.com" {
		t.Fatalf("identity not propagated: %v", body)
	}
}

func Test_bearerToken(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := bearerToken(c.in); got != c.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
