package domain

import (
	"errors"
	"fmt"
)

// Remote view errors - 遠端頁面層錯誤
var (
	// ErrNavigation indicates a remote directory could not be reached at all
	ErrNavigation = errors.New("navigation failed")

	// ErrLoginFailed indicates the session URL never appeared after submitting credentials
	ErrLoginFailed = errors.New("login failed")

	// ErrLoginFormNotFound indicates none of the known login form selectors matched
	ErrLoginFormNotFound = errors.New("login form not found")

	// ErrVerificationTimeout indicates a bot verification page did not clear in time
	ErrVerificationTimeout = errors.New("bot verification did not complete")
)

// Browser errors - 瀏覽器錯誤
var (
	// ErrBrowserNotFound indicates no usable browser executable was found
	ErrBrowserNotFound = errors.New("no compatible browser found")

	// ErrBrowserLaunch indicates the browser process could not be started
	ErrBrowserLaunch = errors.New("browser launch failed")
)

// Run errors - 執行層錯誤
var (
	// ErrSweepInProgress indicates another sweep holds the account lock
	ErrSweepInProgress = errors.New("sweep already in progress")
)

// Config errors - 設定檔錯誤
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config is malformed or incomplete
	ErrConfigInvalid = errors.New("invalid config")
)

// NavigationError carries the remote path that could not be reached
type NavigationError struct {
	Path string
	Err  error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to navigate to %q: %v", e.Path, e.Err)
}

// Unwrap lets errors.Is match both ErrNavigation and the underlying cause
func (e *NavigationError) Unwrap() []error {
	return []error{ErrNavigation, e.Err}
}

// IsFatal reports whether err must abort the whole run
func IsFatal(err error) bool {
	return errors.Is(err, ErrNavigation) ||
		errors.Is(err, ErrLoginFailed) ||
		errors.Is(err, ErrLoginFormNotFound) ||
		errors.Is(err, ErrVerificationTimeout) ||
		errors.Is(err, ErrBrowserLaunch)
}
