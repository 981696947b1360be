package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-key"
	testIssuer = "lesson-scheduler"
)

func issue(t *testing.T, id Identity, ttl time.Duration) string {
	t.Helper()
	token, _, err := Issue(id, testIssuer, testKey, ttl)
	require.NoError(t, err)
	return token
}

func TestIssueAndParse(t *testing.T) {
	token := issue(t, Identity{Subject: "u1", Role: "student", Name: "Alice", EmailVerified: true}, time.Hour)

	claims, err := Parse(token, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "Alice", claims.Name)
	assert.True(t, claims.EmailVerified)
}

func TestParseRejects(t *testing.T) {
	valid := issue(t, Identity{Subject: "u1", Role: "student", EmailVerified: true}, time.Hour)

	tests := []struct {
		name   string
		token  string
		key    string
		issuer string
	}{
		{"wrong key", valid, "other", testIssuer},
		{"wrong issuer", valid, testKey, "someone-else"},
		{"expired", issue(t, Identity{Subject: "u1"}, -time.Minute), testKey, testIssuer},
		{"no subject", issue(t, Identity{Role: "student"}, time.Hour), testKey, testIssuer},
		{"garbage", "not-a-token", testKey, testIssuer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.token, tt.key, tt.issuer)
			assert.Error(t, err)
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/me", Middleware(testKey, testIssuer), func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject})
	})
	router.GET("/teacher", Middleware(testKey, testIssuer), RequireRole("teacher"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	student := issue(t, Identity{Subject: "u1", Role: "student", EmailVerified: true}, time.Hour)
	unverified := issue(t, Identity{Subject: "u2", Role: "student"}, time.Hour)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"not bearer", "/me", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"unverified email", "/me", "Bearer " + unverified, http.StatusForbidden},
		{"ok", "/me", "Bearer " + student, http.StatusOK},
		{"wrong role", "/teacher", "Bearer " + student, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
