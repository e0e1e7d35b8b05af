// Package resilience holds the two rate-limiting layers of SPEC_FULL
// §2 component 12: an HTTP-ingress limiter (ulule/limiter) guarding
// the API surface, and a per-(user,ticker) token bucket (x/time/rate)
// guarding the matching engine itself from a single abusive caller.
package resilience

import (
	"sync"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	ginlib "github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// HTTPLimiter builds a gin middleware enforcing a global request rate
// per client IP, grounded on the teacher's ulule/limiter wiring.
func HTTPLimiter(formatted string) (ginlib.HandlerFunc, error) {
	rt, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	store := memory.NewStore()
	instance := limiter.New(store, rt)
	mw := gin.NewMiddleware(instance)
	return ginlib.HandlerFunc(mw), nil
}

// EngineLimiter rate-limits order submissions per (user, ticker)
// pair (cancellations are not limited), protecting one instrument's single-writer goroutine from being
// monopolized by one caller.
type EngineLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewEngineLimiter(rps float64, burst int) *EngineLimiter {
	return &EngineLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (e *EngineLimiter) Allow(userID, ticker string) bool {
	key := userID + "\x00" + ticker
	e.mu.Lock()
	lim, ok := e.limiters[key]
	if !ok {
		lim = rate.NewLimiter(e.rps, e.burst)
		e.limiters[key] = lim
	}
	e.mu.Unlock()
	return lim.Allow()
}

// httpTimeout bounds how long a request waits on the engine mailbox
// before the HTTP layer gives up, independent of the above limiters.
const httpTimeout = 5 * time.Second

// HTTPTimeout is exported for handlers building a request context.
func HTTPTimeout() time.Duration { return httpTimeout }
