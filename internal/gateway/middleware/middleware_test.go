package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedmart-pos/internal/access"
	"feedmart-pos/internal/telemetry"
	"feedmart-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(issuer *utils.TokenIssuer) *gin.Engine {
	r := gin.New()
	g := r.Group("/", JWTAuth(issuer))
	g.GET("/me", func(c *gin.Context) {
		id, _ := UserIDFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": RoleFrom(c)})
	})
	g.GET("/close", RequireCapability(access.CloseDay), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", time.Hour)
	r := protectedRouter(issuer)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)

	tok, _, err := issuer.GenerateToken(7, "esi", access.RoleCashier)
	require.NoError(t, err)
	w := do(r, "/me", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"cashier"}`, w.Body.String())
}

func TestRequireCapability(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", time.Hour)
	r := protectedRouter(issuer)

	cashier, _, _ := issuer.GenerateToken(1, "esi", access.RoleCashier)
	manager, _, _ := issuer.GenerateToken(2, "yaw", access.RoleManager)

	assert.Equal(t, http.StatusForbidden, do(r, "/close", cashier).Code)
	assert.Equal(t, http.StatusOK, do(r, "/close", manager).Code)
}

func TestRateLimit(t *testing.T) {
	_, err := RateLimit("lots")
	assert.Error(t, err)

	limit, err := RateLimit("2-M")
	require.NoError(t, err)
	r := gin.New()
	r.Use(limit)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(r, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://till.local"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://till.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://till.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://elsewhere")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsMiddleware(t *testing.T) {
	m := telemetry.NewMetrics("", prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(r, "/items/1", "")
	do(r, "/items/2", "")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/items/:id", "200")))
}
