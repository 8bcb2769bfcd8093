// Package syncer reconciles the in-memory store with a persistence
// backend: mutations are pushed after a debounce window, and a login
// pulls the remote snapshot down over local state. Local state is the
// source of truth; push failures are reported, never rolled back.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/assignd/internal/store"
	"github.com/sandeepkv93/assignd/internal/storage"
)

const (
	DefaultDebounce = 500 * time.Millisecond

	pushTimeout = 10 * time.Second
)

type Coordinator struct {
	mu      sync.Mutex
	store   *store.Store
	backend storage.Backend

	debounce time.Duration
	userID   string
	session  string

	identityCh chan struct{}
	flushCh    chan chan error
	stopCh     chan struct{}
	doneCh     chan struct{}
	errs       chan error

	started bool
	stopped bool
	dropped uint64
	pushes  uint64
}

func New(st *store.Store, backend storage.Backend, debounce time.Duration) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Coordinator{
		store:      st,
		backend:    backend,
		debounce:   debounce,
		identityCh: make(chan struct{}, 1),
		flushCh:    make(chan chan error),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		errs:       make(chan error, 8),
	}
}

// Errors delivers push and pull failures. The channel is buffered;
// when a consumer falls behind, further errors are counted as dropped
// rather than blocking the sync loop.
func (c *Coordinator) Errors() <-chan error {
	return c.errs
}

func (c *Coordinator) Dropped() uint64 {
	return atomic.LoadUint64(&c.dropped)
}

// Pushes reports how many snapshots reached the backend.
func (c *Coordinator) Pushes() uint64 {
	return atomic.LoadUint64(&c.pushes)
}

// Session returns the token minted at the last identity change.
func (c *Coordinator) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true
	go c.loop()
}

// Stop flushes a pending push and shuts the loop down.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	close(c.stopCh)
	c.mu.Unlock()
	<-c.doneCh
}

// SetIdentity switches the active user. A non-empty user pulls the
// remote snapshot over local state; a user with no remote data keeps
// local state and seeds the backend with it instead. Any push pending
// from before the switch is cancelled so pre-login data cannot land
// under the new user.
func (c *Coordinator) SetIdentity(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.userID = userID
	c.session = uuid.NewString()
	session := c.session
	c.mu.Unlock()
	c.signalIdentity()

	if userID == "" {
		return nil
	}

	snap, err := c.backend.Load(ctx, userID)
	if errors.Is(err, storage.ErrNoData) {
		return c.push(session)
	}
	if err != nil {
		return fmt.Errorf("sync pull: %w", err)
	}
	c.store.Load(snap.Assignments, snap.Allocations)
	return nil
}

// Flush pushes the current snapshot immediately, bypassing the
// debounce window.
func (c *Coordinator) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case c.flushCh <- reply:
	case <-c.stopCh:
		return c.push(c.Session())
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) loop() {
	defer close(c.doneCh)

	var timer *time.Timer
	var timerC <-chan time.Time
	var armedSession string
	dirty := false

	for {
		select {
		case <-c.store.Changed():
			dirty = true
			armedSession = c.Session()
			timer = resetTimer(timer, c.debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			dirty = false
			if err := c.push(armedSession); err != nil {
				c.report(err)
			}
		case <-c.identityCh:
			if timer != nil {
				stopTimer(timer)
			}
			timerC = nil
			dirty = false
		case reply := <-c.flushCh:
			if timer != nil {
				stopTimer(timer)
			}
			timerC = nil
			dirty = false
			reply <- c.push(c.Session())
		case <-c.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			if dirty {
				if err := c.push(c.Session()); err != nil {
					c.report(err)
				}
			}
			return
		}
	}
}

// push saves the newest snapshot for the user the session token was
// minted for. A stale token means the identity changed after the push
// was armed; the snapshot belongs to the previous user and must not
// land under the new one, so the push is discarded. Serialization
// through the loop goroutine guarantees an in-flight push is never
// overtaken by an older snapshot.
func (c *Coordinator) push(session string) error {
	c.mu.Lock()
	userID := c.userID
	current := c.session
	c.mu.Unlock()
	if userID == "" || session != current {
		return nil
	}

	assignments, allocations := c.store.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	err := c.backend.Save(ctx, userID, storage.Snapshot{
		Assignments: assignments,
		Allocations: allocations,
		SavedAt:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("sync push: %w", err)
	}
	atomic.AddUint64(&c.pushes, 1)
	return nil
}

func (c *Coordinator) report(err error) {
	select {
	case c.errs <- err:
	default:
		atomic.AddUint64(&c.dropped, 1)
	}
}

func (c *Coordinator) signalIdentity() {
	select {
	case c.identityCh <- struct{}{}:
	default:
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
