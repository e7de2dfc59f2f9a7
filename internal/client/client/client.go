package client

import (
	"context"

	"github.com/dmitrijs2005/littlex/internal/client/models"
)

// API is the walker auth API as seen by the client.
type API interface {
	Login(ctx context.Context, email, password string) (*models.AuthPayload, error)
	Register(ctx context.Context, email, password string) (*models.AuthPayload, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, code, newPassword string) error
}

// TokenSource is the part of the session repository the auth gateway uses:
// the token to present and the purge to run when the server rejects it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Purge(ctx context.Context) error
}

// UnauthorizedFunc is notified after a rejected token has been purged.
type UnauthorizedFunc func(ctx context.Context)
