package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(ctx context.Context) error         { return f.record("whoami") }
func (f *fakeExec) Expiry(ctx context.Context) error         { return f.record("expiry") }
func (f *fakeExec) Notices(ctx context.Context) error        { return f.record("notices") }
func (f *fakeExec) ChangePassword(ctx context.Context) error { return f.record("passwd") }
func (f *fakeExec) ForgotPassword(ctx context.Context) error { return f.record("forgot") }
func (f *fakeExec) ResetPassword(ctx context.Context) error  { return f.record("reset") }

func silence(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		for _, v := range a {
			if s, ok := v.(string); ok {
				printed = append(printed, s)
			}
		}
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &printed
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"whoami",
		"expiry",
		"",
		"passwd",
		"notices",
		"foobar",
		"logout",
		"register",
		"forgot",
		"reset",
		"exit",
		"login",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	want := []string{"login", "whoami", "expiry", "passwd", "notices", "logout", "register", "forgot", "reset"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("commands mismatch: got %v, want %v", exec.calls, want)
	}
}

func TestRunREPL_HelpDependsOnState(t *testing.T) {
	printed := silence(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("help\n")))

	found := false
	for _, p := range *printed {
		if strings.Contains(p, "logout") && !strings.Contains(p, "register") {
			found = true
		}
	}
	if !found {
		t.Fatalf("signed-in help not printed: %v", *printed)
	}
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("notices")))

	if len(exec.calls) != 1 || exec.calls[0] != "notices" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	silence(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("login\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	silence(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("get\nquit\nlogout\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
