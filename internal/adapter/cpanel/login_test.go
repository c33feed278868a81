package cpanel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/testutil"
)

var testCreds = Credentials{
	URL:      "https://host:2083",
	Username: "alice",
	Password: "s3cret",
}

const loginURL = "https://host:2083/login/?login_only=1"

// loginPage serves a login form; submitting moves to a session URL when accept is true
func loginPage(accept bool) *fakePage {
	page := newFakePage("")
	page.onLoad = func(string) string { return loginURL }
	page.returns(bodyTextScript, "Log in to cPanel")
	page.visible[`input[name="user"]`] = true
	page.on(existsScript, func(args []any) (any, error) {
		switch args[0] {
		case usernameSelector, passwordSelector, `button[type="submit"]`:
			return true, nil
		}
		return false, nil
	})
	page.onClick = func(string) {
		if accept {
			page.setURL("https://host:2083/cpsess9876543210/frontend/jupiter/index.html")
		}
	}
	return page
}

func TestLogin_Success(t *testing.T) {
	page := loginPage(true)

	if err := Login(context.Background(), page, testCreds, fastLoginOptions("")); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if page.fills[usernameSelector] != "alice" {
		t.Errorf("Expected username to be typed, got %q", page.fills[usernameSelector])
	}
	if page.fills[passwordSelector] != "s3cret" {
		t.Errorf("Expected password to be typed")
	}
	if len(page.clicks) != 1 || page.clicks[0] != `button[type="submit"]` {
		t.Errorf("Expected submit button click, got %v", page.clicks)
	}
	if page.enters != 0 {
		t.Errorf("Expected no Enter key press, got %d", page.enters)
	}
}

func TestLogin_AlreadyLoggedIn(t *testing.T) {
	page := newFakePage("")
	page.onLoad = func(string) string { return "https://host:2083/cpsess1/frontend/jupiter/index.html" }

	if err := Login(context.Background(), page, testCreds, fastLoginOptions("")); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if len(page.fills) != 0 {
		t.Errorf("Expected no form input, got %v", page.fills)
	}
}

func TestLogin_PressesEnterWithoutSubmitButton(t *testing.T) {
	page := loginPage(true)
	page.on(existsScript, func(args []any) (any, error) {
		return args[0] == usernameSelector || args[0] == passwordSelector, nil
	})

	if err := Login(context.Background(), page, testCreds, fastLoginOptions("")); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if page.enters != 1 {
		t.Errorf("Expected Enter fallback, got %d presses", page.enters)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	page := loginPage(false)

	err := Login(context.Background(), page, testCreds, fastLoginOptions(""))
	if !errors.Is(err, domain.ErrLoginFailed) {
		t.Errorf("Expected ErrLoginFailed, got %v", err)
	}
}

func TestLogin_FormNotFound(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()
	debugDir := filepath.Join(dir, "debug")

	page := loginPage(true)
	page.visible = map[string]bool{}

	err := Login(context.Background(), page, testCreds, fastLoginOptions(debugDir))
	if !errors.Is(err, domain.ErrLoginFormNotFound) {
		t.Fatalf("Expected ErrLoginFormNotFound, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(debugDir, ScreenshotName)); err != nil {
		t.Errorf("Expected debug screenshot: %v", err)
	}
}

func TestLogin_VerificationTimeout(t *testing.T) {
	page := loginPage(true)
	page.returns(bodyTextScript, "Checking your browser before accessing host")

	err := Login(context.Background(), page, testCreds, fastLoginOptions(""))
	if !errors.Is(err, domain.ErrVerificationTimeout) {
		t.Errorf("Expected ErrVerificationTimeout, got %v", err)
	}
}

func TestLogin_VerificationClears(t *testing.T) {
	page := loginPage(true)
	checks := 0
	page.on(bodyTextScript, func([]any) (any, error) {
		checks++
		if checks < 3 {
			return "Please wait while we verify", nil
		}
		return "Log in", nil
	})

	if err := Login(context.Background(), page, testCreds, fastLoginOptions("")); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
}

func TestLogin_NavigationError(t *testing.T) {
	page := newFakePage("")
	page.navErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

	err := Login(context.Background(), page, testCreds, fastLoginOptions(""))
	if !errors.Is(err, domain.ErrNavigation) {
		t.Errorf("Expected ErrNavigation, got %v", err)
	}
}
