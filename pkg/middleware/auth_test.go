package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	userID string
	err    error
}

func (v *stubVerifier) Verify(ctx context.Context, token string) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	return v.userID, nil
}

func authRouter(verifier TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(verifier))
	router.GET("/me", func(c *gin.Context) {
		id, ok := GetUserID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		verifier   TokenVerifier
		wantStatus int
	}{
		{
			name:       "valid bearer token",
			header:     "Bearer good-token",
			verifier:   &stubVerifier{userID: "user-001"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			header:     "",
			verifier:   &stubVerifier{userID: "user-001"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			header:     "Basic dXNlcjpwYXNz",
			verifier:   &stubVerifier{userID: "user-001"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty bearer token",
			header:     "Bearer ",
			verifier:   &stubVerifier{userID: "user-001"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "verification failure",
			header:     "Bearer expired-token",
			verifier:   &stubVerifier{err: errors.New("token expired")},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := authRouter(tt.verifier)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("honors a supplied id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	})
}
