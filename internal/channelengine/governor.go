package channelengine

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/orderpulse/ordersbff/internal/config"
)

// Governor is a token bucket shared by every call made through one client.
// It never queues: a request either takes a token now or is rejected with the
// time until the next token.
type Governor struct {
	limiter *rate.Limiter
}

func NewGovernor(cfg config.RateLimitConfig) *Governor {
	interval := cfg.Window / time.Duration(cfg.Requests)
	return &Governor{limiter: rate.NewLimiter(rate.Every(interval), cfg.Burst)}
}

// Admit atomically takes a token. When none is available it reports how long
// until one will be.
func (g *Governor) Admit() (bool, time.Duration) {
	now := time.Now()
	r := g.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	r.CancelAt(now)
	return false, delay
}
