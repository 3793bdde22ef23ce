package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(100, 5, KeyByIP())

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// rps 0 means no refill: the burst is all we get.
	rl := NewRateLimiter(0, 2, KeyByIP())

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
		if i == 2 {
			if w.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429 after burst, got %v", codes)
			}
			if w.Header().Get("Retry-After") == "" {
				t.Fatal("expected Retry-After header")
			}
			if !strings.Contains(w.Body.String(), "too_many_requests") {
				t.Fatalf("expected error code in body, got %s", w.Body.String())
			}
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("burst requests should pass: %v", codes)
	}
}

func TestRateLimiter_BurstCoercedToOne(t *testing.T) {
	rl := NewRateLimiter(1, 0, KeyByIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d, want 1", rl.burst)
	}
}

func TestRateLimiter_SeparateBucketsPerKey(t *testing.T) {
	rl := NewRateLimiter(0, 1, KeyByIP())

	a := rl.getVisitor("ip:a")
	b := rl.getVisitor("ip:b")
	if a == b {
		t.Fatal("expected distinct limiters per key")
	}
	if !a.Allow() {
		t.Fatal("first token for a should be available")
	}
	if a.Allow() {
		t.Fatal("a should be exhausted")
	}
	if !b.Allow() {
		t.Fatal("b has its own bucket")
	}
}
