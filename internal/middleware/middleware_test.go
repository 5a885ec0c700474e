package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/logging"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		actor := audit.ActorFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"user_id":  UserID(c),
			"role":     UserRole(c),
			"actor_ok": actor != nil && *actor == UserID(c),
		})
	})
	r.GET("/barber", AuthMiddleware(testSecret), RequireRole("barber", "admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	valid := signToken(t, jwt.MapClaims{
		"sub":  7,
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256)

	expired := signToken(t, jwt.MapClaims{
		"sub":  7,
		"role": "customer",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}, jwt.SigningMethodHS256)

	noRole := signToken(t, jwt.MapClaims{"sub": 7}, jwt.SigningMethodHS256)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing_authorization_header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid_authorization_header"},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, "invalid_token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "invalid_token"},
		{"missing role", "Bearer " + noRole, http.StatusUnauthorized, "invalid_token_payload"},
		{"valid", "Bearer " + valid, http.StatusOK, `"actor_ok":true`},
	}

	r := protectedRouter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter()

	customer := signToken(t, jwt.MapClaims{"sub": 1, "role": "customer"}, jwt.SigningMethodHS256)
	barber := signToken(t, jwt.MapClaims{"sub": 2, "role": "barber"}, jwt.SigningMethodHS256)

	req := httptest.NewRequest(http.MethodGet, "/barber", nil)
	req.Header.Set("Authorization", "Bearer "+customer)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/barber", nil)
	req.Header.Set("Authorization", "Bearer "+barber)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithOutput("info", "json", &buf)

	r := gin.New()
	r.Use(RequestID(), AccessLog(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"path":"/ping"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
