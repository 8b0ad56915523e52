package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-ops/internal/session"
	"github.com/jwalitptl/hospital-ops/pkg/httputil"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionEcho(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		s, _ := session.FromContext(c.Request.Context())
		httputil.RespondWithSuccess(c, s)
	})
	return r
}

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func doGet(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) session.Context {
	t.Helper()
	var body struct {
		Data session.Context `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestAuthenticate_ValidToken(t *testing.T) {
	auth := NewAuthMiddleware(AuthConfig{Secret: testSecret, Issuer: "https://idp.example"})
	tok := signToken(t, jwt.MapClaims{
		"sub":      "user-1",
		"org_id":   "org-9",
		"org_role": "doctor",
		"email":    "priya@hospital.test",
		"iss":      "https://idp.example",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte(testSecret))

	w := doGet(sessionEcho(auth.Authenticate()), "Bearer "+tok)

	require.Equal(t, http.StatusOK, w.Code)
	s := decodeSession(t, w)
	assert.Equal(t, session.Context{UserID: "user-1", OrgID: "org-9", OrgRole: "doctor", Email: "priya@hospital.test"}, s)
}

func TestAuthenticate_CustomClaimMapping(t *testing.T) {
	auth := NewAuthMiddleware(AuthConfig{
		Secret: testSecret,
		Claims: ClaimMapping{UserID: "uid", OrgID: "tenant"},
	})
	tok := signToken(t, jwt.MapClaims{"uid": "user-2", "tenant": "org-3", "org_role": "nurse"}, jwt.SigningMethodHS256, []byte(testSecret))

	w := doGet(sessionEcho(auth.Authenticate()), "Bearer "+tok)

	require.Equal(t, http.StatusOK, w.Code)
	s := decodeSession(t, w)
	assert.Equal(t, "user-2", s.UserID)
	assert.Equal(t, "org-3", s.OrgID)
	assert.Equal(t, "nurse", s.OrgRole)
}

func TestAuthenticate_Rejects(t *testing.T) {
	auth := NewAuthMiddleware(AuthConfig{Secret: testSecret, Audience: "hospital-ops"})
	r := sessionEcho(auth.Authenticate())

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"bad signature":  "Bearer " + signToken(t, jwt.MapClaims{"sub": "u", "aud": "hospital-ops"}, jwt.SigningMethodHS256, []byte("other")),
		"expired":        "Bearer " + signToken(t, jwt.MapClaims{"sub": "u", "aud": "hospital-ops", "exp": time.Now().Add(-time.Hour).Unix()}, jwt.SigningMethodHS256, []byte(testSecret)),
		"wrong audience": "Bearer " + signToken(t, jwt.MapClaims{"sub": "u", "aud": "billing"}, jwt.SigningMethodHS256, []byte(testSecret)),
		"no subject":     "Bearer " + signToken(t, jwt.MapClaims{"aud": "hospital-ops"}, jwt.SigningMethodHS256, []byte(testSecret)),
		"wrong alg":      "Bearer " + signToken(t, jwt.MapClaims{"sub": "u", "aud": "hospital-ops"}, jwt.SigningMethodHS384, []byte(testSecret)),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := doGet(r, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthenticate_DemoMode(t *testing.T) {
	auth := NewAuthMiddleware(AuthConfig{DemoMode: true})

	w := doGet(sessionEcho(auth.Authenticate()), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.Demo(), decodeSession(t, w))
}

func TestRateLimit_PerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"))
}

func TestRateLimit_ForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 1, IdleTTL: time.Minute})
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.limiter("10.0.0.1").Allow())
	assert.False(t, rl.limiter("10.0.0.1").Allow())

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.limiter("10.0.0.1").Allow())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.Len(t, w.Body.String(), 36)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 8}))
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/echo", http.NoBody)
	req.ContentLength = 64
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
