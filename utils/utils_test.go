package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+212612345678", true},
		{"+33 6 12 34 56 78", true},
		{"0612345678", true},
		{"06-12-34-56-78", true},
		{"(0522) 12.34.56", true},
		{"12345", false},
		{"+0612345678", false},
		{"abc", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhone(tt.phone))
		})
	}
}

func TestLooksLikeDate(t *testing.T) {
	assert.True(t, LooksLikeDate("2026-03-10"))
	assert.False(t, LooksLikeDate("10/03/2026"))
	assert.False(t, LooksLikeDate("2026-3-10"))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 66.7, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(4, 4))
	assert.Equal(t, 12.35, RoundFloat(12.345001, 2))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("docteur123")
	require.NoError(t, err)
	assert.NotEqual(t, "docteur123", hash)
	assert.True(t, CheckPasswordHash("docteur123", hash))
	assert.False(t, CheckPasswordHash("docteur124", hash))
	assert.False(t, CheckPasswordHash("docteur123", ""))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "u1", "admin", time.Hour)
	require.NoError(t, err)

	userID, role, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "admin", role)

	_, _, err = ParseToken("other-secret", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", "u1", "admin", -time.Minute)
	require.NoError(t, err)
	_, _, err = ParseToken("secret", expired)
	assert.Error(t, err)

	_, err = GenerateToken("", "u1", "admin", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", AuthMiddleware("secret"), RequireRole("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	call := func(setup func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		setup(req)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	admin, err := GenerateToken("secret", "u1", "admin", time.Hour)
	require.NoError(t, err)
	secretary, err := GenerateToken("secret", "u2", "secretaire", time.Hour)
	require.NoError(t, err)

	w := call(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+admin) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = call(func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: admin}) })
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+secretary) })
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(func(*http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
