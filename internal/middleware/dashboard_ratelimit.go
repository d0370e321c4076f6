package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sentinelbot/sentinel-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// Dashboard read endpoints rate limit: per-IP, different limits for
// authenticated vs anonymous callers. Prevents 429 from normal dashboard
// polling while blocking abuse.

const (
	dashboardAuthRPS    = 0.5  // 30/min
	dashboardAuthBurst  = 20
	dashboardAnonRPS    = 0.17 // ~10/min
	dashboardAnonBurst  = 5
	dashboardCleanupMin = 5 * time.Minute
	dashboardLimiterTTL = 30 * time.Minute
)

type dashboardLimiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

var (
	dashboardEntries   = make(map[string]*dashboardLimiterEntry)
	dashboardEntriesMu sync.Mutex
	dashboardCleanup   bool
)

func getDashboardLimiter(ip string, authenticated bool) *rate.Limiter {
	key := "anon:" + ip
	if authenticated {
		key = "auth:" + ip
	}

	dashboardEntriesMu.Lock()
	defer dashboardEntriesMu.Unlock()
	startDashboardCleanupOnce()

	e, ok := dashboardEntries[key]
	if !ok {
		if authenticated {
			e = &dashboardLimiterEntry{
				limiter: rate.NewLimiter(rate.Limit(dashboardAuthRPS), dashboardAuthBurst),
				lastUse: time.Now(),
			}
		} else {
			e = &dashboardLimiterEntry{
				limiter: rate.NewLimiter(rate.Limit(dashboardAnonRPS), dashboardAnonBurst),
				lastUse: time.Now(),
			}
		}
		dashboardEntries[key] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startDashboardCleanupOnce() {
	if dashboardCleanup {
		return
	}
	dashboardCleanup = true
	go func() {
		ticker := time.NewTicker(dashboardCleanupMin)
		defer ticker.Stop()
		for range ticker.C {
			dashboardEntriesMu.Lock()
			now := time.Now()
			for k, e := range dashboardEntries {
				if now.Sub(e.lastUse) > dashboardLimiterTTL {
					delete(dashboardEntries, k)
				}
			}
			dashboardEntriesMu.Unlock()
		}
	}()
}

// dashboardIsAuthenticated checks for Bearer token in Authorization header.
func dashboardIsAuthenticated(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && len(strings.TrimPrefix(auth, "Bearer ")) > 0
}

// DashboardRateLimit applies rate limiting to GET /api/admin reads only.
// Auth: 30/min burst 20. Anonymous: 10/min burst 5. Returns 429 with headers
// when exceeded.
func DashboardRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, "/api/admin/") {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientip.RealClientIP(r)
		auth := dashboardIsAuthenticated(r)
		limiter := getDashboardLimiter(ip, auth)

		limit := dashboardAnonBurst
		if auth {
			limit = dashboardAuthBurst
		}

		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many dashboard requests. Please slow down."}`))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-1)) // Best-effort for debugging
		next.ServeHTTP(w, r)
	})
}
