package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dienstplan/dienstplan/internal/security"
	"github.com/dienstplan/dienstplan/internal/tenant"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authConfig(t *testing.T) (*AuthConfig, *security.APIKey) {
	t.Helper()

	keyManager := security.NewAPIKeyManager()
	tenantManager := tenant.NewManager()

	tn := tenant.CreateDefaultTenant()
	if err := tenantManager.Register(tn); err != nil {
		t.Fatalf("注册租户失败: %v", err)
	}
	key, err := keyManager.GenerateKey(tn.Code, "测试", []string{"*"}, nil)
	if err != nil {
		t.Fatalf("生成密钥失败: %v", err)
	}

	return &AuthConfig{
		APIKeyManager: keyManager,
		TenantManager: tenantManager,
		SkipPaths:     []string{"/health"},
	}, key
}

func TestAuth(t *testing.T) {
	cfg, key := authConfig(t)

	var gotTenant string
	h := Auth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tn, ok := tenant.FromContext(r.Context()); ok {
			gotTenant = tn.Code
		}
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("GET", "/api/v1/coverage", nil)
	r.Header.Set("Authorization", "Bearer "+key.Key)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, 期望 200", rec.Code)
	}
	if gotTenant != "default" {
		t.Errorf("上下文租户 = %q, 期望 default", gotTenant)
	}
	if rec.Header().Get("X-Tenant-ID") == "" {
		t.Error("响应应携带租户ID头")
	}
}

func TestAuth_MissingKey(t *testing.T) {
	cfg, _ := authConfig(t)
	h := Auth(cfg)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/coverage", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("状态码 = %d, 期望 401", rec.Code)
	}
}

func TestAuth_InvalidKey(t *testing.T) {
	cfg, _ := authConfig(t)
	h := Auth(cfg)(okHandler())

	r := httptest.NewRequest("GET", "/api/v1/coverage", nil)
	r.Header.Set("X-API-Key", "dk_伪造")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("状态码 = %d, 期望 401", rec.Code)
	}
}

func TestAuth_SkipPath(t *testing.T) {
	cfg, _ := authConfig(t)
	h := Auth(cfg)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("跳过路径状态码 = %d, 期望 200", rec.Code)
	}
}

func TestAuth_RateLimit(t *testing.T) {
	cfg, key := authConfig(t)
	cfg.RateLimiter = security.NewRateLimiter(1, time.Minute)
	cfg.EnableRateLimit = true
	h := Auth(cfg)(okHandler())

	for i, expected := range []int{http.StatusOK, http.StatusTooManyRequests} {
		r := httptest.NewRequest("GET", "/api/v1/coverage", nil)
		r.Header.Set("X-API-Key", key.Key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code != expected {
			t.Errorf("第 %d 次请求状态码 = %d, 期望 %d", i+1, rec.Code, expected)
		}
	}
}

func TestRequireScope(t *testing.T) {
	keyManager := security.NewAPIKeyManager()
	readonly, _ := keyManager.GenerateKey("default", "只读", []string{"coverage:read"}, nil)

	h := RequireScope("coverage:write", keyManager)(okHandler())

	r := httptest.NewRequest("PUT", "/api/v1/coverage/bulk", nil)
	r.Header.Set("X-API-Key", readonly.Key)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Errorf("状态码 = %d, 期望 403", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	h := CORS(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/coverage", nil))

	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("缺少CORS头")
	}

	// 预检请求直接返回204
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/coverage", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("预检状态码 = %d, 期望 204", rec.Code)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/coverage", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("状态码 = %d, 期望 500", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	h := RequestID(okHandler())

	// 未提供时生成
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("应生成请求ID")
	}

	// 已提供时透传
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Request-ID", "req_fixed")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	if rec.Header().Get("X-Request-ID") != "req_fixed" {
		t.Error("应透传已有请求ID")
	}
}

func TestLogging_RecordsStatus(t *testing.T) {
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/coverage", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("状态码 = %d, 中间件不应改写响应", rec.Code)
	}
}
