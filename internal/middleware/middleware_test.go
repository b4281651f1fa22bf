package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GTDGit/reseller_portal/internal/cache"
	"github.com/GTDGit/reseller_portal/internal/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func TestJWTMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	valid, err := tokens.Generate(5, "p@x.uz")
	require.NoError(t, err)

	r := gin.New()
	r.Use(NewJWTMiddleware(tokens, NewInvalidAuthRateLimiter(2, time.Minute)).Handle())
	r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, "%d", c.GetInt(PartnerIDKey)) })

	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{name: "bearer", header: "Bearer " + valid, status: http.StatusOK, body: "5"},
		{name: "query token", query: "?token=" + valid, status: http.StatusOK, body: "5"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "bad scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "limited after repeated failures", header: "Bearer nope", status: http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestInvalidAuthRateLimiter(t *testing.T) {
	now := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	rl := NewInvalidAuthRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(2 * time.Minute)
	rl.evict()
	assert.Empty(t, rl.attempts)
}

func TestInvalidAuthRateLimiter_RunStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewInvalidAuthRateLimiter(5, time.Millisecond).Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"portal.example.uz", "localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantCode   int
		wantOrigin string
	}{
		{name: "preflight default port", method: http.MethodOptions, origin: "https://portal.example.uz:443", wantCode: http.StatusNoContent, wantOrigin: "https://portal.example.uz:443"},
		{name: "dev server", method: http.MethodGet, origin: "http://localhost:3000", wantCode: http.StatusOK, wantOrigin: "http://localhost:3000"},
		{name: "foreign origin", method: http.MethodGet, origin: "https://evil.example.com", wantCode: http.StatusOK},
		{name: "foreign preflight", method: http.MethodOptions, origin: "https://evil.example.com", wantCode: http.StatusForbidden},
		{name: "no origin", method: http.MethodGet, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestIdempotency(t *testing.T) {
	store := cache.NewMemoryStore()
	var calls atomic.Int32

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(PartnerIDKey, 3); c.Next() })
	r.Use(Idempotency(store, time.Hour))
	r.POST("/orders", func(c *gin.Context) {
		n := calls.Add(1)
		if c.Query("fail") != "" {
			c.JSON(http.StatusBadGateway, gin.H{"n": n})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"n": n})
	})

	post := func(key, query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders"+query, strings.NewReader("{}"))
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := post("k1", "")
	second := post("k1", "")
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, int32(1), calls.Load())

	// Failures release the key.
	assert.Equal(t, http.StatusBadGateway, post("k2", "?fail=1").Code)
	assert.Equal(t, http.StatusCreated, post("k2", "").Code)
	assert.Equal(t, int32(3), calls.Load())

	// In-flight duplicate.
	require.NoError(t, store.Set(context.Background(), "idempotency:3:k3", inProgress, time.Minute))
	assert.Equal(t, http.StatusConflict, post("k3", "").Code)

	// No key, no dedup.
	post("", "")
	post("", "")
	assert.Equal(t, int32(5), calls.Load())
}

// flakyStore fails the operations named in failOn and delegates the rest.
type flakyStore struct {
	cache.Store
	failOn map[string]bool
}

var errStoreDown = errors.New("store down")

func (s *flakyStore) Get(ctx context.Context, key string) (string, error) {
	if s.failOn["get"] {
		return "", errStoreDown
	}
	return s.Store.Get(ctx, key)
}

func (s *flakyStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if s.failOn["setnx"] {
		return false, errStoreDown
	}
	return s.Store.SetNX(ctx, key, value, ttl)
}

func TestIdempotency_DegradedStore(t *testing.T) {
	tests := []struct {
		name   string
		failOn map[string]bool
		stored string
	}{
		{name: "get fails", failOn: map[string]bool{"get": true}},
		{name: "setnx fails", failOn: map[string]bool{"setnx": true}},
		{name: "stored value is not json", stored: "garbage"},
		{name: "stored value has no status", stored: `{"body":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := cache.NewMemoryStore()
			if tt.stored != "" {
				require.NoError(t, mem.Set(context.Background(), "idempotency:3:k", tt.stored, time.Minute))
			}
			var calls atomic.Int32

			r := gin.New()
			r.Use(func(c *gin.Context) { c.Set(PartnerIDKey, 3); c.Next() })
			r.Use(Idempotency(&flakyStore{Store: mem, failOn: tt.failOn}, time.Hour))
			r.POST("/orders", func(c *gin.Context) {
				c.JSON(http.StatusCreated, gin.H{"n": calls.Add(1)})
			})

			req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{}"))
			req.Header.Set(IdempotencyHeader, "k")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusCreated, w.Code)
			assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "front-end id kept", header: "web-3f9c2a1b", keep: true},
		{name: "too short", header: "abc"},
		{name: "bad characters", header: "abc def\nghij"},
		{name: "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-Id", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get("X-Request-Id")
			assert.Equal(t, got, w.Body.String())
			if tt.keep {
				assert.Equal(t, tt.header, got)
			} else {
				assert.Len(t, got, 8)
			}
		})
	}
}
