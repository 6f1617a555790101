package channelengine

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// transientBackoff is the wait before transient retry n (1-based): 2^n units.
func transientBackoff(unit time.Duration, n int) time.Duration {
	return unit * time.Duration(int64(1)<<uint(n))
}

// sleep waits for d or until ctx is done, without holding the goroutine's thread.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseRetryAfter reads a Retry-After header in delta-seconds or HTTP-date
// form. ok is false when the header is absent or unparseable; an explicit
// zero or a past date is a valid hint to retry immediately.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}
