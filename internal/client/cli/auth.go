package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/littlex/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errCancelled is returned when the user leaves a required prompt empty.
var errCancelled = errors.New("cancelled")

func (a *App) ask(prompt string) (string, error) {
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if s == "" {
		printlnFn("Cancelled.")
		return "", errCancelled
	}
	return s, nil
}

// askPassword reads a password and returns it as a string; the raw bytes are
// wiped before returning.
func (a *App) askPassword(prompt string) (string, error) {
	pw, err := getPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer wipe(pw)
	if len(pw) == 0 {
		printlnFn("Cancelled.")
		return "", errCancelled
	}
	return string(pw), nil
}

// Register prompts for an email and password and creates an account. When
// the server signs the new user in straight away the session starts too.
func (a *App) Register(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	password, err := a.askPassword("Choose password")
	if err != nil {
		return err
	}

	user, expiry, err := a.authService.Register(ctx, email, password)
	if err != nil {
		return a.report("register", err)
	}
	if user == nil {
		printlnFn("Account created. Use 'login' to sign in.")
		return nil
	}
	a.signedIn(user, expiry)
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	password, err := a.askPassword("Enter password")
	if err != nil {
		return err
	}

	user, expiry, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return a.report("login", err)
	}
	a.signedIn(user, expiry)
	return nil
}

func (a *App) signedIn(user *models.User, expiry time.Time) {
	a.setUser(user.DisplayName())
	if expiry.IsZero() {
		printlnFn("Signed in as", user.DisplayName())
		return
	}
	printlnFn(fmt.Sprintf("Signed in as %s, session expires at %s", user.DisplayName(), expiry.Local().Format(time.Kitchen)))
}

// Logout ends the local session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return a.report("logout", err)
	}
	a.setUser("")
	return nil
}

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.authService.CurrentUser(ctx)
	if err != nil {
		return a.report("whoami", err)
	}
	if user == nil {
		printlnFn("Not signed in.")
		return nil
	}
	printlnFn(fmt.Sprintf("%s <%s> id=%s", user.DisplayName(), user.Email, user.ID))
	return nil
}

// Expiry prints when the current session ends.
func (a *App) Expiry(ctx context.Context) error {
	expiry, ok := a.authService.SessionExpiry(ctx)
	if !ok {
		printlnFn("No session expiry.")
		return nil
	}
	left := time.Until(expiry).Round(time.Second)
	printlnFn(fmt.Sprintf("Session expires at %s (in %s)", expiry.Local().Format(time.RFC1123), left))
	return nil
}

// Notices prints the notification log, oldest first.
func (a *App) Notices(ctx context.Context) error {
	notices, err := a.authService.Notices(ctx)
	if err != nil {
		return a.report("notices", err)
	}
	if len(notices) == 0 {
		printlnFn("No notices.")
		return nil
	}
	for _, n := range notices {
		printlnFn(fmt.Sprintf("%s  [%s] %s: %s", n.At.Local().Format(time.DateTime), n.Kind, n.Title, n.Message))
	}
	return nil
}

// ChangePassword changes the signed-in user's password.
func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := a.askPassword("Current password")
	if err != nil {
		return err
	}
	newPassword, err := a.askPassword("New password")
	if err != nil {
		return err
	}
	if err := a.authService.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return a.report("change password", err)
	}
	printlnFn("Password changed.")
	return nil
}

// ForgotPassword asks the server to send a reset code.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := a.ask("Enter email")
	if err != nil {
		return err
	}
	if err := a.authService.ForgotPassword(ctx, email); err != nil {
		return a.report("forgot password", err)
	}
	printlnFn("If the account exists, a reset code is on its way.")
	return nil
}

// ResetPassword sets a new password using a reset code.
func (a *App) ResetPassword(ctx context.Context) error {
	code, err := a.ask("Enter reset code")
	if err != nil {
		return err
	}
	newPassword, err := a.askPassword("New password")
	if err != nil {
		return err
	}
	if err := a.authService.ResetPassword(ctx, code, newPassword); err != nil {
		return a.report("reset password", err)
	}
	printlnFn("Password reset. Use 'login' to sign in.")
	return nil
}
