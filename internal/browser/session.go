package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/logger"
)

// Options controls how the browser is launched
type Options struct {
	ExecPath string
	Headless bool

	// LaunchTimeout bounds starting the browser process
	LaunchTimeout time.Duration
}

// Session is one browser tab driven over the DevTools protocol.
// It implements cpanel.FormPage.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// Launch starts the browser and opens a blank tab
func Launch(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(opts.ExecPath),
		chromedp.Flag("headless", opts.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logf(logger.Get().Debug)),
		chromedp.WithErrorf(logf(logger.Get().Warn)),
	)

	s := &Session{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}

	timeout := opts.LaunchTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	timer := time.AfterFunc(timeout, cancelTab)
	defer timer.Stop()

	// 第一次 Run 才會真正啟動瀏覽器
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrBrowserLaunch, opts.ExecPath, err)
	}

	logger.Get().Debug("browser launched", "path", opts.ExecPath, "headless", opts.Headless)
	return s, nil
}

// Close shuts the tab and the browser process
func (s *Session) Close() {
	s.cancelTab()
	s.cancelAlloc()
}

// run executes actions on the tab, aborting when the caller's ctx ends
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the load event
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// Reload reloads the current document
func (s *Session) Reload(ctx context.Context) error {
	return s.run(ctx, chromedp.Reload())
}

// Location returns the current document URL
func (s *Session) Location(ctx context.Context) (string, error) {
	var location string
	err := s.run(ctx, chromedp.Location(&location))
	return location, err
}

// Call evaluates a function declaration applied to JSON-encoded args
func (s *Session) Call(ctx context.Context, fn string, out any, args ...any) error {
	expr, err := CallExpression(fn, args...)
	if err != nil {
		return err
	}
	return s.run(ctx, chromedp.Evaluate(expr, out))
}

// WaitVisible blocks until selector matches a visible element
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Fill clears the input matching selector and types value into it
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

// Click clicks the first element matching selector
func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// PressEnter sends Enter to the focused element
func (s *Session) PressEnter(ctx context.Context) error {
	return s.run(ctx, chromedp.KeyEvent(kb.Enter))
}

// Screenshot writes a PNG of the viewport to path
func (s *Session) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return os.WriteFile(path, buf, 0644)
}

// CallExpression renders `(fn)(args...)` with every argument JSON-encoded
func CallExpression(fn string, args ...any) (string, error) {
	encoded := make([]string, len(args))
	for i, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("failed to encode script argument %d: %w", i, err)
		}
		encoded[i] = string(data)
	}
	return "(" + fn + ")(" + strings.Join(encoded, ", ") + ")", nil
}

func logf(log func(msg string, args ...any)) func(string, ...any) {
	return func(format string, args ...any) {
		log("devtools", "message", fmt.Sprintf(format, args...))
	}
}
