package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/littlex/internal/client/client"
	"github.com/dmitrijs2005/littlex/internal/client/config"
	"github.com/dmitrijs2005/littlex/internal/client/metrics"
	"github.com/dmitrijs2005/littlex/internal/client/models"
	"github.com/dmitrijs2005/littlex/internal/client/repositories/kv"
	"github.com/dmitrijs2005/littlex/internal/client/services"
	"github.com/dmitrijs2005/littlex/internal/client/session"
	"github.com/dmitrijs2005/littlex/internal/logging"
)

// sessionState is the part of the session controller the REPL needs to
// render its prompt.
type sessionState interface {
	State() session.State
	Restore(ctx context.Context) (*models.User, error)
}

type App struct {
	config      *config.Config
	log         logging.Logger
	store       kv.Store
	session     sessionState
	authService services.AuthService
	registry    *prometheus.Registry
	reader      *bufio.Reader
	out         io.Writer

	mu       sync.Mutex
	userName string
}

// NewApp wires the session store, the session controller, the API client and
// the auth service. If the configured store cannot be opened the app keeps
// working with an in-memory-only session and logs a warning.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}
	a := &App{
		config:   c,
		log:      log,
		registry: prometheus.NewRegistry(),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	clk := clock.New()

	store, err := kv.Open(ctx, kv.Options{
		Backend:     c.StoreBackend,
		Path:        c.DBPath,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
		Clock:       clk,
	})
	if err != nil {
		log.Warn(ctx, "session store unavailable, sessions will not survive a restart",
			"backend", c.StoreBackend, "error", err)
		store = kv.Nop{}
	}
	a.store = store

	repo := session.NewRepository(store, clk, session.WithNoticeCap(c.NoticeLogCap))
	ctrl := session.NewController(repo, session.Options{
		WarningBefore: c.WarningBefore,
		Clock:         clk,
		Logger:        log.With("component", "session"),
		Recorder:      metrics.NewSessionMetrics(a.registry),
		OnNotice:      a.showNotice,
		OnSignedOut:   a.signedOut,
	})
	a.session = ctrl

	rt := client.NewAuthTransport(nil, repo, ctrl.HandleUnauthorized, log.With("component", "gateway"))
	api := client.NewHTTPClient(c.APIURL, rt, c.RequestTimeout)
	a.authService = services.NewAuthService(api, ctrl, repo)

	return a, nil
}

// Run restores any saved session, starts the metrics endpoint when
// configured and blocks in the REPL until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close(ctx)

	if a.config.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, a.config.MetricsAddr, a.registry, a.log); err != nil {
				a.log.Error(ctx, "metrics endpoint stopped", "error", err)
			}
		}()
	}

	printlnFn("Welcome to littleX (type 'help' for commands)")

	user, err := a.session.Restore(ctx)
	if err != nil {
		a.log.Error(ctx, "restore session", "error", err)
	}
	if user != nil {
		a.setUser(user.DisplayName())
		printlnFn("Welcome back,", user.DisplayName())
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.log.Warn(ctx, "close session", "error", err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn(ctx, "close session store", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.State() == session.StateAuthenticated
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

// getStatus renders the prompt suffix: "(ada)" when signed in, "(signed out)"
// otherwise.
func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return "(signed out)"
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.userName == "" {
		return "(signed in)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// showNotice prints a session notice. It is called from timer goroutines, so
// it only writes a single line.
func (a *App) showNotice(n models.Notice) {
	printlnFn(fmt.Sprintf("\n[%s] %s: %s", n.Kind, n.Title, n.Message))
}

func (a *App) signedOut(reason session.Reason) {
	a.setUser("")
	if reason != session.ReasonLogout {
		printlnFn("Type 'login' to sign in again.")
	}
}

// report prints a user-facing message for err and returns it unchanged.
func (a *App) report(op string, err error) error {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Server unavailable, try again later.")
	case errors.Is(err, client.ErrUnauthorized):
		printlnFn("Not authorized.")
	case errors.Is(err, session.ErrStaleSession):
		printlnFn("The server issued an already expired session. Please try again.")
	case errors.Is(err, services.ErrNoSession):
		printlnFn("The server did not return a session.")
	default:
		printlnFn(fmt.Sprintf("%s failed: %s", op, err))
	}
	a.log.Debug(context.Background(), op+" failed", "error", err)
	return err
}
