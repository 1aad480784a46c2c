package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daniyal-sudo/heraklean-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, role domain.Role, ttl time.Duration) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: "64f000000000000000000001",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func protectedRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(middlewares, func(c *gin.Context) {
		id, _ := getUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	r.GET("/secure", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	router := protectedRouter(AuthMiddleware(testSecret))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, domain.RoleClient, time.Hour), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"expired token", "Bearer " + signToken(t, testSecret, domain.RoleClient, -time.Hour), http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", domain.RoleClient, time.Hour), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus != http.StatusOK {
				var body struct {
					Success bool   `json:"success"`
					Message string `json:"message"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.False(t, body.Success)
				assert.NotEmpty(t, body.Message)
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	router := protectedRouter(AuthMiddleware(testSecret), RoleMiddleware(domain.RoleTrainer))

	t.Run("allowed role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, domain.RoleTrainer, time.Hour))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("forbidden role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, domain.RoleClient, time.Hour))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(1, 2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	// Burst of 2 passes, the third request in the same instant is rejected.
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiterSweepsStaleEntries(t *testing.T) {
	rl := newRateLimiter(1, 1)

	rl.get("10.0.0.1")
	rl.get("10.0.0.2")
	require.Len(t, rl.clients, 2)

	// Age one entry past the stale cutoff and force the next access to sweep.
	rl.clients["10.0.0.1"].seen = time.Now().Add(-10 * time.Minute)
	rl.lastSweep = time.Now().Add(-2 * limiterSweepInterval)

	rl.get("10.0.0.3")

	assert.NotContains(t, rl.clients, "10.0.0.1")
	assert.Contains(t, rl.clients, "10.0.0.2")
	assert.Contains(t, rl.clients, "10.0.0.3")
}
