package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, role string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"role":    role,
		"exp":     exp.Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", RequireAuth(testSecret), RequireRole("admin", "supplier"), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	r.GET("/admin", RequireAuth(testSecret), RequireAdmin(), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, path, token string) int {
	return serve(r, path, token).Code
}

func serve(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newRouter()
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", signToken(t, "other", "supplier", future), http.StatusUnauthorized},
		{"expired", signToken(t, testSecret, "supplier", time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"supplier", signToken(t, testSecret, "supplier", future), http.StatusNoContent},
		{"customer", signToken(t, testSecret, "customer", future), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(r, "/private", tt.token))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter()
	future := time.Now().Add(time.Hour)

	w := serve(r, "/admin", signToken(t, testSecret, "supplier", future))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Admin access required"}`, w.Body.String())

	w = serve(r, "/private", signToken(t, testSecret, "customer", future))
	assert.JSONEq(t, `{"message":"Admin or supplier access required"}`, w.Body.String())
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", signToken(t, testSecret, "admin", future)))
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequireRole("admin"), func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusUnauthorized, do(r, "/", ""))
}
