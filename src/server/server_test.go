package server

import (
	"testing"

	"github.com/valyala/fasthttp"
)

func TestIPLimiterAllow(t *testing.T) {
	rl := newIPLimiter(10)

	if !rl.Allow("1.2.3.4") {
		t.Error("first request should be allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("different IP should be allowed")
	}
}

func TestIPLimiterBurst(t *testing.T) {
	rl := newIPLimiter(5)

	ip := "10.0.0.1"
	allowed := 0
	for i := 0; i < 20; i++ {
		if rl.Allow(ip) {
			allowed++
		}
	}

	if allowed < 5 {
		t.Errorf("expected at least 5 allowed in burst, got %d", allowed)
	}
	if allowed >= 20 {
		t.Error("limiter should have blocked some requests")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := clientIP(&ctx); got != "203.0.113.7" {
		t.Errorf("clientIP = %q, want first forwarded address", got)
	}

	var plain fasthttp.RequestCtx
	if got := clientIP(&plain); got == "" {
		t.Error("clientIP should fall back to the remote address")
	}
}
