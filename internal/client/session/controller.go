package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrijs2005/littlex/internal/client/models"
	"github.com/dmitrijs2005/littlex/internal/logging"
)

// DefaultWarningBefore is how long before expiry the warning notice fires.
const DefaultWarningBefore = time.Minute

// State is the controller's view of the session.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Reason says why a session ended.
type Reason string

const (
	ReasonLogout  Reason = "logout"
	ReasonExpired Reason = "expired"
	ReasonRevoked Reason = "revoked"
)

// Recorder receives session transitions, typically to export them as metrics.
type Recorder interface {
	LoginSucceeded()
	SessionEnded(reason string)
	WarningIssued()
	StaleRejected()
}

type nopRecorder struct{}

func (nopRecorder) LoginSucceeded()     {}
func (nopRecorder) SessionEnded(string) {}
func (nopRecorder) WarningIssued()      {}
func (nopRecorder) StaleRejected()      {}

// Options configures a Controller. Zero values select defaults.
type Options struct {
	WarningBefore time.Duration
	Clock         clock.Clock
	Logger        logging.Logger
	Recorder      Recorder

	// OnNotice receives every user-visible notice.
	OnNotice func(models.Notice)
	// OnSignedOut is called after a session ends; the UI should return to
	// its sign-in surface.
	OnSignedOut func(Reason)
}

// Controller drives the session state machine: it establishes sessions,
// schedules the expiry warning and the expiry itself, and ends sessions on
// logout, expiry or revocation.
//
// Timer callbacks run on their own goroutines. All state, including the
// repository writes that go with a transition, is guarded by mu; hooks are
// invoked after mu is released so they may call back into the controller.
type Controller struct {
	repo        *Repository
	clock       clock.Clock
	log         logging.Logger
	rec         Recorder
	warnBefore  time.Duration
	onNotice    func(models.Notice)
	onSignedOut func(Reason)

	restoreOnce sync.Once
	restoreUser *models.User
	restoreErr  error

	mu          sync.Mutex
	state       State
	warned      bool
	closed      bool
	gen         uint64
	expiryTimer *clock.Timer
	warnTimer   *clock.Timer
}

// NewController returns a controller in StateUnknown. Call Restore once the
// UI is ready to receive notices.
func NewController(repo *Repository, opts Options) *Controller {
	c := &Controller{
		repo:        repo,
		clock:       opts.Clock,
		log:         opts.Logger,
		rec:         opts.Recorder,
		warnBefore:  opts.WarningBefore,
		onNotice:    opts.OnNotice,
		onSignedOut: opts.OnSignedOut,
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	if c.rec == nil {
		c.rec = nopRecorder{}
	}
	if c.warnBefore <= 0 {
		c.warnBefore = DefaultWarningBefore
	}
	return c
}

// Restore loads a persisted session. Only the first call does any work;
// later calls return its result.
func (c *Controller) Restore(ctx context.Context) (*models.User, error) {
	c.restoreOnce.Do(func() {
		c.restoreUser, c.restoreErr = c.restore(ctx)
	})
	return c.restoreUser, c.restoreErr
}

func (c *Controller) restore(ctx context.Context) (*models.User, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state != StateUnknown {
		// A login got in first; it owns the timers.
		c.mu.Unlock()
		return c.repo.Restore(ctx)
	}

	snap, err := c.repo.load(ctx)
	if err != nil {
		c.state = StateAnonymous
		c.mu.Unlock()
		c.log.Warn(ctx, "session restore failed", "error", err)
		return nil, err
	}

	if snap.elapsed {
		c.state = StateAnonymous
		c.rec.SessionEnded(string(ReasonExpired))
		c.mu.Unlock()
		c.log.Info(ctx, "stored session expired while away")
		c.emit(ctx, restoredExpiredNotice(c.clock.Now()))
		c.signedOut(ReasonExpired)
		return nil, nil
	}

	if snap.user == nil {
		c.state = StateAnonymous
		c.mu.Unlock()
		return nil, nil
	}

	c.state = StateAuthenticated
	c.warned = false
	warnNow := false
	if !snap.expiry.IsZero() {
		warnNow = c.armLocked(ctx, snap.expiry)
	}
	c.mu.Unlock()

	c.log.Info(ctx, "session restored", "user", snap.user.ID, "expiry", snap.expiry)
	if warnNow {
		c.emit(ctx, warningNotice(c.clock.Now()))
	}
	return snap.user, nil
}

// Login establishes a session from a login or registration response and
// returns its expiry (zero when unknown). Pending timers of any previous
// session are cancelled first.
func (c *Controller) Login(ctx context.Context, token string, user *models.User) (time.Time, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return time.Time{}, ErrClosed
	}

	expiry, err := c.repo.Store(ctx, token, user)
	switch {
	case errors.Is(err, ErrMissingCredentials):
		c.mu.Unlock()
		return time.Time{}, err
	case err != nil:
		c.stopTimersLocked()
		c.state = StateAnonymous
		c.warned = false
		if errors.Is(err, ErrStaleSession) {
			c.rec.StaleRejected()
		}
		c.mu.Unlock()
		c.log.Warn(ctx, "session not established", "error", err)
		return time.Time{}, err
	}

	c.stopTimersLocked()
	c.state = StateAuthenticated
	c.warned = false
	c.rec.LoginSucceeded()
	warnNow := false
	if !expiry.IsZero() {
		warnNow = c.armLocked(ctx, expiry)
	}
	c.mu.Unlock()

	c.log.Info(ctx, "session established", "user", user.ID, "expiry", expiry)
	if warnNow {
		c.emit(ctx, warningNotice(c.clock.Now()))
	}
	return expiry, nil
}

// Logout ends the session at the user's request. The session is considered
// ended even when purging storage fails; that error is returned. Without an
// active session it only clears storage.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateAuthenticated {
		c.stopTimersLocked()
		if !c.closed {
			c.state = StateAnonymous
		}
		err := c.repo.Purge(ctx)
		c.mu.Unlock()
		return err
	}
	err := c.endLocked(ctx, ReasonLogout)
	c.mu.Unlock()

	c.emit(ctx, signedOutNotice(c.clock.Now()))
	c.signedOut(ReasonLogout)
	return err
}

// HandleUnauthorized ends the session after the server rejected its token.
// It does nothing unless a session is active.
func (c *Controller) HandleUnauthorized(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.state != StateAuthenticated {
		c.mu.Unlock()
		return
	}
	_ = c.endLocked(ctx, ReasonRevoked)
	c.mu.Unlock()

	c.emit(ctx, revokedNotice(c.clock.Now()))
	c.signedOut(ReasonRevoked)
}

// SessionExpiry returns the stored expiry. Finding it elapsed ends the
// session the same way the expiry timer would.
func (c *Controller) SessionExpiry(ctx context.Context) (time.Time, bool) {
	c.mu.Lock()
	t, st, err := c.repo.readExpiry(ctx)
	if err != nil {
		c.mu.Unlock()
		c.log.Warn(ctx, "failed to read session expiry", "error", err)
		return time.Time{}, false
	}
	if st == expiryLive {
		c.mu.Unlock()
		return t, true
	}
	if st == expiryNone || c.state != StateAuthenticated || c.closed {
		c.mu.Unlock()
		return time.Time{}, false
	}
	_ = c.endLocked(ctx, ReasonExpired)
	c.mu.Unlock()

	c.emit(ctx, expiredNotice(c.clock.Now()))
	c.signedOut(ReasonExpired)
	return time.Time{}, false
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// WarningIssued reports whether the expiry warning has fired for the
// current session.
func (c *Controller) WarningIssued() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warned
}

// Close cancels pending timers. Callbacks already in flight are ignored.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimersLocked()
	return nil
}

// armLocked schedules the expiry and warning timers for expiry. It reports
// whether the session is already inside the warning window, in which case
// the caller must emit the warning itself.
func (c *Controller) armLocked(ctx context.Context, expiry time.Time) bool {
	c.stopTimersLocked()
	gen := c.gen

	delay := expiry.Sub(c.clock.Now())
	if delay == time.Duration(math.MaxInt64) {
		c.log.Warn(ctx, "session expiry too far ahead to schedule", "expiry", expiry)
		return false
	}

	c.expiryTimer = c.clock.AfterFunc(delay, func() { c.expire(gen) })

	warnDelay := delay - c.warnBefore
	if warnDelay > 0 {
		c.warnTimer = c.clock.AfterFunc(warnDelay, func() { c.warn(gen) })
		return false
	}
	if c.warned {
		return false
	}
	c.warned = true
	c.rec.WarningIssued()
	return true
}

// stopTimersLocked cancels both timers and invalidates their callbacks.
func (c *Controller) stopTimersLocked() {
	c.gen++
	if c.expiryTimer != nil {
		c.expiryTimer.Stop()
		c.expiryTimer = nil
	}
	if c.warnTimer != nil {
		c.warnTimer.Stop()
		c.warnTimer = nil
	}
}

// endLocked performs the common part of every termination path.
func (c *Controller) endLocked(ctx context.Context, reason Reason) error {
	c.stopTimersLocked()
	c.state = StateAnonymous
	c.warned = false
	c.rec.SessionEnded(string(reason))

	if err := c.repo.Purge(ctx); err != nil {
		c.log.Error(ctx, "failed to purge session", "reason", reason, "error", err)
		return err
	}
	c.log.Info(ctx, "session ended", "reason", reason)
	return nil
}

func (c *Controller) expire(gen uint64) {
	ctx := context.Background()

	c.mu.Lock()
	if c.closed || gen != c.gen || c.state != StateAuthenticated {
		c.mu.Unlock()
		return
	}
	_ = c.endLocked(ctx, ReasonExpired)
	c.mu.Unlock()

	c.emit(ctx, expiredNotice(c.clock.Now()))
	c.signedOut(ReasonExpired)
}

func (c *Controller) warn(gen uint64) {
	ctx := context.Background()

	c.mu.Lock()
	if c.closed || gen != c.gen || c.state != StateAuthenticated || c.warned {
		c.mu.Unlock()
		return
	}
	c.warned = true
	c.rec.WarningIssued()
	c.mu.Unlock()

	c.emit(ctx, warningNotice(c.clock.Now()))
}

func (c *Controller) emit(ctx context.Context, n models.Notice) {
	if err := c.repo.AppendNotice(ctx, n); err != nil {
		c.log.Warn(ctx, "failed to record notice", "kind", n.Kind, "error", err)
	}
	if c.onNotice != nil {
		c.onNotice(n)
	}
}

func (c *Controller) signedOut(reason Reason) {
	if c.onSignedOut != nil {
		c.onSignedOut(reason)
	}
}
