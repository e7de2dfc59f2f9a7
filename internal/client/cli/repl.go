package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Expiry(ctx context.Context) error
	Notices(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the littleX CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is cancelled, or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Signed out:
//	  - help             show available commands
//	  - register         create an account
//	  - login            authenticate
//	  - forgot           request a password reset code
//	  - reset            set a new password with a reset code
//	  - notices          show the notification log
//	  - exit | quit      leave the program
//
//	Signed in:
//	  - help             show available commands
//	  - whoami           show the current user
//	  - expiry           show when the session ends
//	  - passwd           change password
//	  - notices          show the notification log
//	  - logout           sign out
//	  - exit | quit      leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("littlex %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, expiry, passwd, notices, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, reset, notices, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "expiry":
			_ = a.Expiry(ctx)

		case "notices":
			_ = a.Notices(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
