package netstack

import (
	"testing"
	"time"

	"github.com/dsilverstone/browser/internal/testutil"
)

func TestWorkerPoolServesAboutBlank(t *testing.T) {
	client := NewClient("test-agent", NewCookieJar(), NewResponseCache(16), 5*time.Second)
	pool := NewWorkerPool(client, 2)
	defer pool.Shutdown()

	u, err := Parse("about:blank")
	testutil.MustNotFail(t, err)

	resp, err := pool.SubmitSync(&NetworkRequest{URL: u, Method: "GET"})
	testutil.MustNotFail(t, err)
	testutil.Assert(t, resp.Status).Equals(200)
}

func TestWorkerPoolThrottleReusesLimiterPerOrigin(t *testing.T) {
	client := NewClient("test-agent", NewCookieJar(), NewResponseCache(16), 5*time.Second)
	pool := NewWorkerPool(client, 1)
	defer pool.Shutdown()

	u, err := Parse("http://example.com/a")
	testutil.MustNotFail(t, err)

	pool.throttle(u)
	pool.throttle(u)

	testutil.Assert(t, len(pool.limiters)).Equals(1)
}
