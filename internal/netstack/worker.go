package netstack

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Per-origin throttle applied to every request a WorkerPool serves.
// Fetches a Frame makes directly on the Client (page loads, stylesheets,
// scripts, iframes) do not pass through the pool and are not throttled.
const (
	originRequestsPerSecond = 20
	originBurst             = 10
)

// NetworkRequest is one unit of work handed to the worker pool.
type NetworkRequest struct {
	URL      URL
	Method   string
	Body     []byte
	Referrer *URL
	done     chan NetworkResponse // sync callers block on this
}

// NetworkResponse is what a worker posts back for a request.
type NetworkResponse struct {
	Resp  *Response
	Error error
}

// WorkerPool is a fixed-size network worker pool: a buffered job
// channel, a small goroutine pool draining it, and atomic counters for
// stats. Per-origin request pacing lives in WorkerPool.throttle rather
// than in the Client itself.
type WorkerPool struct {
	client   *Client
	jobs     chan *NetworkRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	inFlight atomic.Int32
	served   atomic.Int64
	failed   atomic.Int64

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// NewWorkerPool starts n workers pulling requests off an internal queue.
func NewWorkerPool(client *Client, n int) *WorkerPool {
	p := &WorkerPool{
		client:   client,
		jobs:     make(chan *NetworkRequest, n*4),
		stopCh:   make(chan struct{}),
		limiters: make(map[string]*rate.Limiter),
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.runWorker()
	}
	return p
}

func (p *WorkerPool) runWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case req, ok := <-p.jobs:
			if !ok {
				return
			}
			p.throttle(req.URL)
			p.inFlight.Add(1)
			resp, err := p.client.Fetch(req.URL, req.Method, req.Body, req.Referrer)
			p.inFlight.Add(-1)
			if err != nil {
				p.failed.Add(1)
			} else {
				p.served.Add(1)
			}
			if req.done != nil {
				req.done <- NetworkResponse{Resp: resp, Error: err}
			}
		}
	}
}

// throttle blocks until req's origin has a free token, so many
// same-origin requests can't monopolize the worker pool.
func (p *WorkerPool) throttle(u URL) {
	scheme, host, port := u.Origin()
	key := fmt.Sprintf("%s://%s:%d", scheme, host, port)

	p.limiterMu.Lock()
	lim, ok := p.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(originRequestsPerSecond), originBurst)
		p.limiters[key] = lim
	}
	p.limiterMu.Unlock()

	lim.Wait(context.Background())
}

// SubmitAsync enqueues req and returns immediately; the caller supplies
// onDone, invoked from a goroutine SubmitAsync starts, once the exchange
// completes.
func (p *WorkerPool) SubmitAsync(req *NetworkRequest, onDone func(NetworkResponse)) {
	done := make(chan NetworkResponse, 1)
	req.done = done
	go func() {
		r := <-done
		onDone(r)
	}()
	p.jobs <- req
}

// SubmitSync enqueues req and blocks until the worker servicing it
// completes, layering a synchronous call on top of the async queue via
// a one-shot completion channel.
func (p *WorkerPool) SubmitSync(req *NetworkRequest) (*Response, error) {
	done := make(chan NetworkResponse, 1)
	req.done = done
	p.jobs <- req
	result := <-done
	return result.Resp, result.Error
}

// Stats reports point-in-time worker pool counters.
type Stats struct {
	InFlight int32
	Served   int64
	Failed   int64
}

func (p *WorkerPool) Stats() Stats {
	return Stats{InFlight: p.inFlight.Load(), Served: p.served.Load(), Failed: p.failed.Load()}
}

// Shutdown stops accepting new work and waits for in-flight requests to
// drain.
func (p *WorkerPool) Shutdown() {
	close(p.stopCh)
	close(p.jobs)
	p.wg.Wait()
}
