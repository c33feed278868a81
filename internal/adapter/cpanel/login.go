package cpanel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/logger"
)

// Credentials identify the cPanel account
type Credentials struct {
	URL      string
	Username string
	Password string
}

// LoginOptions holds the waits of the login flow
type LoginOptions struct {
	VerificationTimeout time.Duration // bot-check page must clear within this
	VerificationSettle  time.Duration
	FormProbeTimeout    time.Duration // per login-form selector
	InputDelay          time.Duration
	SessionTimeout      time.Duration // submit → session URL
	PollInterval        time.Duration
	NavigationTimeout   time.Duration

	// DebugDir 找不到登入表單時存放截圖，空字串表示不截圖
	DebugDir string
}

// DefaultLoginOptions returns the standard login waits
func DefaultLoginOptions() LoginOptions {
	return LoginOptions{
		VerificationTimeout: 30 * time.Second,
		VerificationSettle:  2 * time.Second,
		FormProbeTimeout:    3 * time.Second,
		InputDelay:          300 * time.Millisecond,
		SessionTimeout:      60 * time.Second,
		PollInterval:        250 * time.Millisecond,
		NavigationTimeout:   60 * time.Second,
		DebugDir:            "debug",
	}
}

var (
	verificationPhrases = []string{"verified", "Checking", "Please wait"}

	loginFormSelectors = []string{
		"#user",
		`input[name="user"]`,
		`input[name="login"]`,
		`input[name="username"]`,
		`input[type="text"]`,
		"#login-form input",
		`form input[type="text"]:first-of-type`,
	}

	loginSubmitSelectors = []string{
		"#login_submit",
		`button[type="submit"]`,
		`input[type="submit"]`,
		"#btnLogin",
		".login-submit",
		"button#login_submit",
		"form button",
		`[id*="login"] button`,
		`[class*="login"] button`,
	}
)

const (
	usernameSelector = `#user, input[name="user"], input[name="login"]`
	passwordSelector = `#pass, input[name="pass"], input[type="password"]`

	// ScreenshotName is written to DebugDir when the login form is missing
	ScreenshotName = "login-form-not-found.png"
)

// Login opens the cPanel login page and signs in unless a session already exists
func Login(ctx context.Context, page FormPage, creds Credentials, opts LoginOptions) error {
	log := logger.Get().With("url", creds.URL, "username", creds.Username)

	nctx, cancel := context.WithTimeout(ctx, opts.NavigationTimeout)
	err := page.Navigate(nctx, creds.URL)
	cancel()
	if err != nil {
		return &domain.NavigationError{Path: creds.URL, Err: err}
	}

	if loggedIn(ctx, page) {
		log.Info("already logged in")
		return nil
	}

	if err := waitVerification(ctx, page, opts); err != nil {
		return err
	}

	if loggedIn(ctx, page) {
		log.Info("already logged in after verification")
		return nil
	}

	if !findLoginForm(ctx, page, opts) {
		current, _ := page.Location(ctx)
		if opts.DebugDir != "" {
			saveDebugScreenshot(ctx, page, opts.DebugDir)
		}
		return fmt.Errorf("%w at %s", domain.ErrLoginFormNotFound, current)
	}

	sleep(ctx, opts.InputDelay)
	if err := fillIfPresent(ctx, page, usernameSelector, creds.Username); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLoginFailed, err)
	}
	sleep(ctx, opts.InputDelay)
	if err := fillIfPresent(ctx, page, passwordSelector, creds.Password); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLoginFailed, err)
	}
	sleep(ctx, opts.InputDelay)

	if err := submit(ctx, page); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLoginFailed, err)
	}

	log.Debug("waiting for session")
	if !pollUntil(ctx, opts.SessionTimeout, opts.PollInterval, func() bool { return loggedIn(ctx, page) }) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		current, _ := page.Location(ctx)
		return fmt.Errorf("%w: still at %s", domain.ErrLoginFailed, current)
	}

	log.Info("logged in")
	return nil
}

func loggedIn(ctx context.Context, page Page) bool {
	current, err := page.Location(ctx)
	return err == nil && HasSession(current)
}

func verifying(ctx context.Context, page Page) bool {
	var text string
	if err := page.Call(ctx, bodyTextScript, &text); err != nil {
		return false
	}
	for _, phrase := range verificationPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func waitVerification(ctx context.Context, page Page, opts LoginOptions) error {
	if !verifying(ctx, page) {
		return nil
	}

	logger.Get().Info("waiting for verification to complete")
	if !pollUntil(ctx, opts.VerificationTimeout, opts.PollInterval, func() bool { return !verifying(ctx, page) }) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.ErrVerificationTimeout
	}

	sleep(ctx, opts.VerificationSettle)
	return nil
}

func findLoginForm(ctx context.Context, page FormPage, opts LoginOptions) bool {
	for _, selector := range loginFormSelectors {
		pctx, cancel := context.WithTimeout(ctx, opts.FormProbeTimeout)
		err := page.WaitVisible(pctx, selector)
		cancel()
		if err == nil {
			logger.Get().Debug("login form found", "selector", selector)
			return true
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

func fillIfPresent(ctx context.Context, page FormPage, selector, value string) error {
	var ok bool
	if err := page.Call(ctx, existsScript, &ok, selector); err != nil || !ok {
		logger.Get().Warn("login input not found", "selector", selector)
		return nil
	}
	return page.Fill(ctx, selector, value)
}

func submit(ctx context.Context, page FormPage) error {
	for _, selector := range loginSubmitSelectors {
		var ok bool
		if err := page.Call(ctx, existsScript, &ok, selector); err != nil || !ok {
			continue
		}
		if err := page.Click(ctx, selector); err != nil {
			logger.Get().Debug("submit click failed", "selector", selector, "error", err)
			continue
		}
		return nil
	}
	return page.PressEnter(ctx)
}

func saveDebugScreenshot(ctx context.Context, page FormPage, dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Get().Warn("failed to create debug directory", "dir", dir, "error", err)
		return
	}
	path := filepath.Join(dir, ScreenshotName)
	if err := page.Screenshot(ctx, path); err != nil {
		logger.Get().Warn("failed to save debug screenshot", "path", path, "error", err)
		return
	}
	logger.Get().Info("saved debug screenshot", "path", path)
}

// pollUntil checks cond every interval until it holds or timeout elapses
func pollUntil(ctx context.Context, timeout, interval time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		if !sleep(ctx, interval) {
			return false
		}
	}
}
