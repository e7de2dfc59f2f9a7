package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrijs2005/littlex/internal/client/models"
	"github.com/dmitrijs2005/littlex/internal/client/repositories/kv"
	"github.com/dmitrijs2005/littlex/internal/tokenx"
)

// Storage keys owned by the repository.
const (
	KeyToken   = "TOKEN"
	KeyUser    = "USER"
	KeyExpiry  = "SESSION_EXPIRY"
	KeyNotices = "NOTIFICATIONS"
)

// DefaultNoticeLogCap bounds the notification log when no cap is configured.
const DefaultNoticeLogCap = 50

var sessionKeys = []string{KeyToken, KeyUser, KeyExpiry, KeyNotices}

// Repository persists the (token, user, expiry) triple and the notification
// log through a kv.Store. It is the only writer of those keys.
type Repository struct {
	store     kv.Store
	clock     clock.Clock
	noticeCap int

	// noticeMu serializes the read-modify-write of the notification log.
	noticeMu sync.Mutex
}

// RepositoryOption customizes a Repository.
type RepositoryOption func(*Repository)

// WithNoticeCap sets the maximum number of notices kept in the log.
func WithNoticeCap(n int) RepositoryOption {
	return func(r *Repository) {
		if n > 0 {
			r.noticeCap = n
		}
	}
}

// NewRepository returns a repository over store. A nil clock means the
// wall clock.
func NewRepository(store kv.Store, clk clock.Clock, opts ...RepositoryOption) *Repository {
	if clk == nil {
		clk = clock.New()
	}
	r := &Repository{store: store, clock: clk, noticeCap: DefaultNoticeLogCap}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveExpiry returns the expiry carried by token, falling back to the
// user's expiration hint.
func ResolveExpiry(token string, user *models.User) (time.Time, bool) {
	if t, ok := tokenx.DecodeExpiry(token); ok {
		return t, true
	}
	return user.ExpiresAt()
}

// Store persists a new session and returns its expiry. A zero time means the
// session was stored without a known expiry. Credentials that are already
// expired purge whatever was stored and yield ErrStaleSession.
func (r *Repository) Store(ctx context.Context, token string, user *models.User) (time.Time, error) {
	if token == "" || user == nil {
		return time.Time{}, ErrMissingCredentials
	}

	expiry, hasExpiry := ResolveExpiry(token, user)
	var ttl time.Duration
	if hasExpiry {
		now := r.clock.Now()
		if !expiry.After(now) {
			if err := r.Purge(ctx); err != nil {
				return time.Time{}, err
			}
			return time.Time{}, ErrStaleSession
		}
		ttl = expiry.Sub(now)
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return time.Time{}, fmt.Errorf("encode user: %w", err)
	}

	err = r.store.Update(ctx, func(ctx context.Context, w kv.Writer) error {
		if err := w.Set(ctx, KeyToken, []byte(token), ttl); err != nil {
			return err
		}
		if err := w.Set(ctx, KeyUser, userJSON, ttl); err != nil {
			return err
		}
		if !hasExpiry {
			return w.Delete(ctx, KeyExpiry)
		}
		// The expiry outlives token and user so that a read after the
		// deadline still finds it and ends the session.
		return w.Set(ctx, KeyExpiry, []byte(strconv.FormatInt(expiry.UnixMilli(), 10)), 0)
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("store session: %w", err)
	}

	if !hasExpiry {
		return time.Time{}, nil
	}
	return expiry, nil
}

// Restore returns the stored user, or nil when there is no readable session.
// A session whose expiry has elapsed is purged.
func (r *Repository) Restore(ctx context.Context) (*models.User, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.user, nil
}

// Token returns the stored bearer token, or "" when there is none.
func (r *Repository) Token(ctx context.Context) (string, error) {
	b, err := r.store.Get(ctx, KeyToken)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return string(b), nil
}

// CurrentExpiry returns the stored expiry. An elapsed expiry purges the
// session and reports false.
func (r *Repository) CurrentExpiry(ctx context.Context) (time.Time, bool, error) {
	t, st, err := r.readExpiry(ctx)
	if err != nil || st != expiryLive {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Purge removes every session key. Purging an empty store is a no-op.
func (r *Repository) Purge(ctx context.Context) error {
	err := r.store.Update(ctx, func(ctx context.Context, w kv.Writer) error {
		for _, k := range sessionKeys {
			if err := w.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("purge session: %w", err)
	}
	return nil
}

// AppendNotice adds n to the notification log, dropping the oldest entries
// beyond the cap.
func (r *Repository) AppendNotice(ctx context.Context, n models.Notice) error {
	r.noticeMu.Lock()
	defer r.noticeMu.Unlock()

	notices, err := r.Notices(ctx)
	if err != nil {
		return err
	}
	notices = append(notices, n)
	if len(notices) > r.noticeCap {
		notices = notices[len(notices)-r.noticeCap:]
	}

	b, err := json.Marshal(notices)
	if err != nil {
		return fmt.Errorf("encode notices: %w", err)
	}
	if err := r.store.Set(ctx, KeyNotices, b, 0); err != nil {
		return fmt.Errorf("append notice: %w", err)
	}
	return nil
}

// Notices returns the notification log, oldest first. An unreadable log is
// treated as empty.
func (r *Repository) Notices(ctx context.Context) ([]models.Notice, error) {
	b, err := r.store.Get(ctx, KeyNotices)
	if err != nil {
		return nil, fmt.Errorf("read notices: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	var notices []models.Notice
	if err := json.Unmarshal(b, &notices); err != nil {
		return nil, nil
	}
	return notices, nil
}

type expiryStatus int

const (
	expiryNone expiryStatus = iota
	expiryLive
	expiryElapsed
)

// readExpiry reads the expiry key. Elapsed expiries purge the session before
// returning. An undecodable value counts as no expiry.
func (r *Repository) readExpiry(ctx context.Context) (time.Time, expiryStatus, error) {
	b, err := r.store.Get(ctx, KeyExpiry)
	if err != nil {
		return time.Time{}, expiryNone, fmt.Errorf("read expiry: %w", err)
	}
	if len(b) == 0 {
		return time.Time{}, expiryNone, nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return time.Time{}, expiryNone, nil
	}

	t := time.UnixMilli(ms)
	if !t.After(r.clock.Now()) {
		if err := r.Purge(ctx); err != nil {
			return time.Time{}, expiryElapsed, err
		}
		return time.Time{}, expiryElapsed, nil
	}
	return t, expiryLive, nil
}

// snapshot is a session as read back from storage.
type snapshot struct {
	user    *models.User
	expiry  time.Time // zero when unknown
	elapsed bool      // a stored session was found expired and purged
}

func (r *Repository) load(ctx context.Context) (snapshot, error) {
	expiry, st, err := r.readExpiry(ctx)
	if err != nil {
		return snapshot{}, err
	}
	if st == expiryElapsed {
		return snapshot{elapsed: true}, nil
	}

	token, err := r.Token(ctx)
	if err != nil {
		return snapshot{}, err
	}
	raw, err := r.store.Get(ctx, KeyUser)
	if err != nil {
		return snapshot{}, fmt.Errorf("read user: %w", err)
	}
	if token == "" || len(raw) == 0 {
		return snapshot{}, nil
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		// A record we cannot read is as good as none; clear it.
		if err := r.Purge(ctx); err != nil {
			return snapshot{}, err
		}
		return snapshot{}, nil
	}
	user = user.WithDefaults()
	return snapshot{user: &user, expiry: expiry}, nil
}
