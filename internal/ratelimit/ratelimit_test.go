package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseRateRejectsGarbage(t *testing.T) {
	if _, err := ParseRate("lots"); err == nil {
		t.Fatalf("expected invalid rate to be rejected")
	}
	rate, err := ParseRate("5-S")
	if err != nil {
		t.Fatalf("expected valid rate, got %v", err)
	}
	if rate.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", rate.Limit)
	}
}

func TestNewWithoutRedisUsesMemory(t *testing.T) {
	l, err := New(context.Background(), Options{Rate: "10-M"})
	if err != nil {
		t.Fatalf("new limiter failed: %v", err)
	}
	defer l.Close()
	if l.Backend() != "memory" {
		t.Fatalf("expected memory backend, got %s", l.Backend())
	}
}

func TestMiddlewareReturns429OverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, err := New(context.Background(), Options{Rate: "2-M"})
	if err != nil {
		t.Fatalf("new limiter failed: %v", err)
	}

	router := gin.New()
	router.Use(l.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)

		if i < 2 && res.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i+1, res.Code)
		}
		if i == 2 {
			if res.Code != http.StatusTooManyRequests {
				t.Fatalf("request 3 expected 429, got %d", res.Code)
			}
			var body struct {
				Message string `json:"message"`
			}
			if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Message != "rate limit exceeded" {
				t.Fatalf("expected rate limit message, got %q (%v)", body.Message, err)
			}
		}
	}
}
