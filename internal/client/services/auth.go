// Package services contains application services for the littleX client.
// This file defines the authentication service: login, registration, logout,
// the password flows, and read access to the current session.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/littlex/internal/client/client"
	"github.com/dmitrijs2005/littlex/internal/client/models"
	"github.com/dmitrijs2005/littlex/internal/client/session"
)

// ErrNoSession is returned by Login when the server accepted the request but
// sent back no token or no user.
var ErrNoSession = errors.New("server returned no session")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server and establish a session.
//   - Register: create an account; a session is established only when the
//     server hands one back, otherwise the returned user is nil.
//   - Logout: end the session locally.
//   - ChangePassword/ForgotPassword/ResetPassword: password flows.
//   - CurrentUser/SessionExpiry/Notices: read the session state.
//   - Close: release timers.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, time.Time, error)
	Register(ctx context.Context, email, password string) (*models.User, time.Time, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, code, newPassword string) error
	CurrentUser(ctx context.Context) (*models.User, error)
	SessionExpiry(ctx context.Context) (time.Time, bool)
	Notices(ctx context.Context) ([]models.Notice, error)
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by the walker API and the
// session controller.
type authService struct {
	api  client.API
	ctrl *session.Controller
	repo *session.Repository
}

// NewAuthService constructs an AuthService bound to the given API client and
// session components.
func NewAuthService(api client.API, ctrl *session.Controller, repo *session.Repository) AuthService {
	return &authService{api: api, ctrl: ctrl, repo: repo}
}

// Login authenticates against the server and establishes the returned
// session. The expiry is zero when the server's credentials carry none.
func (a *authService) Login(ctx context.Context, email, password string) (*models.User, time.Time, error) {
	payload, err := a.api.Login(ctx, email, password)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("login error: %w", err)
	}
	if !payload.Complete() {
		return nil, time.Time{}, ErrNoSession
	}
	return a.establish(ctx, payload)
}

// Register creates an account. Servers that log the new user straight in
// return credentials, and those establish a session too.
func (a *authService) Register(ctx context.Context, email, password string) (*models.User, time.Time, error) {
	payload, err := a.api.Register(ctx, email, password)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("register error: %w", err)
	}
	if !payload.Complete() {
		return nil, time.Time{}, nil
	}
	return a.establish(ctx, payload)
}

func (a *authService) establish(ctx context.Context, payload *models.AuthPayload) (*models.User, time.Time, error) {
	expiry, err := a.ctrl.Login(ctx, payload.Token, payload.User)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("session error: %w", err)
	}
	user := payload.User.WithDefaults()
	return &user, expiry, nil
}

// Logout ends the session. It never contacts the server.
func (a *authService) Logout(ctx context.Context) error {
	return a.ctrl.Logout(ctx)
}

func (a *authService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return a.api.ChangePassword(ctx, oldPassword, newPassword)
}

func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	return a.api.ForgotPassword(ctx, email)
}

func (a *authService) ResetPassword(ctx context.Context, code, newPassword string) error {
	return a.api.ResetPassword(ctx, code, newPassword)
}

// CurrentUser returns the user of the stored session, or nil.
func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	return a.repo.Restore(ctx)
}

func (a *authService) SessionExpiry(ctx context.Context) (time.Time, bool) {
	return a.ctrl.SessionExpiry(ctx)
}

func (a *authService) Notices(ctx context.Context) ([]models.Notice, error) {
	return a.repo.Notices(ctx)
}

// Close stops the session timers.
func (a *authService) Close(ctx context.Context) error {
	return a.ctrl.Close()
}
