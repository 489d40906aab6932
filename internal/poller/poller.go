package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/tripwire/internal/snapshot"
)

const defaultRequestTimeout = 2 * time.Second

var (
	// ErrStatus is returned by [Poller.PollOnce] for a non-2xx response.
	ErrStatus = errors.New("unexpected status code")

	// ErrInvalidInterval is returned by [Poller.Start] for a non-positive interval.
	ErrInvalidInterval = errors.New("poll interval must be positive")

	// ErrAlreadyStarted is returned by [Poller.Start] on a second call.
	ErrAlreadyStarted = errors.New("poller already started")

	// ErrStopped is returned by [Poller.Start] after [Poller.Stop].
	ErrStopped = errors.New("poller stopped")
)

// Config is the runtime configuration a [Poller] needs.
type Config struct {
	// URL is the status endpoint.
	URL string

	// Timeout is the per-request timeout. Zero uses 2 seconds.
	Timeout time.Duration

	// Shape selects the accepted document layout. Empty means [snapshot.ShapeAuto].
	Shape snapshot.Shape

	// H2C sends requests as cleartext HTTP/2 with prior knowledge.
	H2C bool
}

// Poller fetches the status endpoint on a fixed interval and hands every
// successfully decoded snapshot to an update callback.
//
// A Poller is single-use: Start it once, Stop it once (extra Stop calls are
// no-ops). All lifecycle methods are safe for concurrent use.
type Poller struct {
	cfg    Config
	client *Client
	logger *slog.Logger

	mu       sync.Mutex
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	ticker   *time.Ticker
	onUpdate func(snapshot.Snapshot)
	wg       sync.WaitGroup

	// seq is the number of the most recently issued request
	seq atomic.Uint64

	// deliverMu serializes deliveries so onUpdate never runs concurrently
	// and lastPublished only grows
	deliverMu     sync.Mutex
	lastPublished uint64
}

// New creates a [Poller]. It does not issue any request until [Poller.Start].
func New(cfg Config, logger *slog.Logger) *Poller {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if cfg.Shape == "" {
		cfg.Shape = snapshot.ShapeAuto
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := NewClient()
	if cfg.H2C {
		client = NewH2CClient()
	}
	return &Poller{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// Start begins issuing one request every interval.
//
// Start is non-blocking. The first request fires when the first interval has
// elapsed, not immediately. Each tick runs in its own goroutine, so ticks keep
// their wall-clock cadence regardless of how long earlier requests take, and
// several requests may be in flight at once.
//
// onUpdate is invoked once per successful poll with a fully decoded snapshot
// whose Seq is the request's sequence number. Calls are serialized. onUpdate
// must not call [Poller.Stop].
//
// Cancelling ctx stops the ticker like [Poller.Stop] does, except that it does
// not wait for in-flight requests. Returns an error if interval is not
// positive, onUpdate is nil, or the poller was already started or stopped.
func (p *Poller) Start(ctx context.Context, interval time.Duration, onUpdate func(snapshot.Snapshot)) error {
	if interval <= 0 {
		return fmt.Errorf("%w, got %s", ErrInvalidInterval, interval)
	}
	if onUpdate == nil {
		return errors.New("onUpdate callback is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.onUpdate = onUpdate
	p.ticker = time.NewTicker(interval)

	p.wg.Add(1)
	go p.loop(pollCtx, p.ticker)

	return nil
}

// Stop cancels the ticker and any in-flight requests, then waits for every
// tick goroutine to return.
//
// After Stop returns, onUpdate is never called again. Stop is idempotent and
// safe to call before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		if p.ticker != nil {
			p.ticker.Stop()
		}
		if p.cancel != nil {
			p.cancel()
		}
	}
	p.mu.Unlock()

	p.wg.Wait()

	// clean up client connections after all goroutines complete
	p.client.Close()
}

// PollOnce performs exactly one request and decodes the response.
//
// All-or-nothing: any failure returns an error and a zero Snapshot. Errors
// wrap [ErrTransport], [ErrStatus] or [snapshot.ErrMalformed].
func (p *Poller) PollOnce(ctx context.Context) (snapshot.Snapshot, error) {
	resp := p.client.Fetch(ctx, p.cfg.URL, p.cfg.Timeout)
	if resp.Error != nil {
		return snapshot.Snapshot{}, resp.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return snapshot.Snapshot{}, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	snap, err := snapshot.Decode(resp.Body, p.cfg.Shape)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snap, nil
}

// LastPublished returns the sequence number of the last delivered snapshot,
// or zero if none was delivered.
func (p *Poller) LastPublished() uint64 {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()
	return p.lastPublished
}

// loop spawns one tick goroutine per ticker fire until ctx is cancelled.
func (p *Poller) loop(ctx context.Context, ticker *time.Ticker) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			ticker.Stop()
			return
		case <-ticker.C:
			seq := p.seq.Add(1)
			p.wg.Add(1)
			go p.tick(ctx, seq)
		}
	}
}

// tick runs one poll cycle. Failures are logged and dropped.
func (p *Poller) tick(ctx context.Context, seq uint64) {
	defer p.wg.Done()

	if ctx.Err() != nil {
		return
	}

	requestID := uuid.NewString()
	start := time.Now()

	snap, err := p.PollOnce(ctx)
	logAttrs := []any{
		"request_id", requestID,
		"seq", seq,
		"url", p.cfg.URL,
		"latency_ms", time.Since(start).Milliseconds(),
	}

	if err != nil {
		if ctx.Err() != nil {
			// torn down while the request was in flight
			return
		}
		p.logger.Warn("poll failed", append(logAttrs, "error", err.Error())...)
		return
	}

	if !p.deliver(ctx, seq, snap) {
		p.logger.Debug("poll result discarded", logAttrs...)
		return
	}
	p.logger.Debug("poll completed", logAttrs...)
}

// deliver publishes snap unless the poller is stopped, ctx is cancelled, or a
// newer result was already delivered. Reports whether onUpdate was called.
func (p *Poller) deliver(ctx context.Context, seq uint64, snap snapshot.Snapshot) bool {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	p.mu.Lock()
	stopped := p.stopped
	onUpdate := p.onUpdate
	p.mu.Unlock()

	if stopped || onUpdate == nil || ctx.Err() != nil {
		return false
	}
	if seq <= p.lastPublished {
		return false
	}
	p.lastPublished = seq

	p.invokeSafe(onUpdate, snap.WithSeq(seq))
	return true
}

// invokeSafe calls onUpdate with panic recovery.
// Panics are logged with a correlation ID and do not stop the poller.
func (p *Poller) invokeSafe(onUpdate func(snapshot.Snapshot), snap snapshot.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("update callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"seq", snap.Seq,
				"stack", string(debug.Stack()),
			)
		}
	}()
	onUpdate(snap)
}
