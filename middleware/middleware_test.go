package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"ewm/api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthRequired(t *testing.T) {
	secret := []byte("testsecret")

	r := gin.New()
	r.Use(AuthRequired(secret, "default-key", zap.NewNop()))
	r.GET("/admin/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	validToken, err := utils.GenerateJWT(secret, "admin@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	tests := []struct {
		name           string
		cookie         string
		authorization  string
		apiKey         string
		expectedStatus int
	}{
		{name: "No Token", expectedStatus: http.StatusUnauthorized},
		{name: "Invalid Cookie", cookie: "invalid", expectedStatus: http.StatusUnauthorized},
		{name: "Valid Cookie", cookie: validToken, expectedStatus: http.StatusOK},
		{name: "Valid Bearer", authorization: "Bearer " + validToken, expectedStatus: http.StatusOK},
		{name: "Wrong Secret", cookie: signedWith(t, []byte("other"), utils.RoleAdmin), expectedStatus: http.StatusUnauthorized},
		{name: "Not Admin", cookie: signedWith(t, secret, "user"), expectedStatus: http.StatusUnauthorized},
		{name: "Default API Key", apiKey: "default-key", expectedStatus: http.StatusOK},
		{name: "Wrong API Key", apiKey: "nope", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AuthCookie, Value: tt.cookie})
			}
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			if tt.apiKey != "" {
				req.Header.Set("X-API-KEY", tt.apiKey)
			}

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestAuthRequiredEmptyDefaultKeyIsNotAWildcard(t *testing.T) {
	r := gin.New()
	r.Use(AuthRequired([]byte("s"), "", zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want 401", rr.Code)
	}
}

func signedWith(t *testing.T, secret []byte, role string) string {
	t.Helper()
	claims := &utils.Claims{
		Email: "someone@example.com",
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestRateLimit(t *testing.T) {
	store := NewLimiterStore(1, 2, time.Minute)

	r := gin.New()
	r.Use(RateLimit(store, zap.NewNop()))
	r.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 2; i++ {
		if rr := do("10.0.0.1"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200 within burst", i, rr.Code)
		}
	}

	rr := do("10.0.0.1")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429 after burst", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	if rr := do("10.0.0.2"); rr.Code != http.StatusOK {
		t.Errorf("other client got %d, want its own budget", rr.Code)
	}
}

func TestLimiterStoreCleanup(t *testing.T) {
	store := NewLimiterStore(1, 1, -time.Second)
	store.Get("a")
	store.Get("b")
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}

	store.Cleanup()
	if store.Len() != 0 {
		t.Errorf("Len after cleanup = %d, want 0", store.Len())
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("http://front.example"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://front.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
