package cpanel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// fakePage is an in-memory Page/FormPage. Scripts are dispatched by their
// exact text, so tests register behavior per script constant.
type fakePage struct {
	mu sync.Mutex

	url      string
	navErr   error
	onLoad   func(url string) string
	handlers map[string]func(args []any) (any, error)
	calls    map[string]int
	args     map[string][][]any

	visible map[string]bool
	fills   map[string]string
	clicks  []string
	onClick func(selector string)
	enters  int
	reloads int
	loads   []string
	shots   []string
}

func newFakePage(url string) *fakePage {
	return &fakePage{
		url:      url,
		handlers: make(map[string]func(args []any) (any, error)),
		calls:    make(map[string]int),
		args:     make(map[string][][]any),
		visible:  make(map[string]bool),
		fills:    make(map[string]string),
	}
}

func (f *fakePage) on(script string, fn func(args []any) (any, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[script] = fn
}

func (f *fakePage) returns(script string, v any) {
	f.on(script, func([]any) (any, error) { return v, nil })
}

func (f *fakePage) callCount(script string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[script]
}

func (f *fakePage) callArgs(script string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.args[script]...)
}

// stableListing makes the poller see a rendered listing with n rows
func (f *fakePage) stableListing(n int) {
	f.on(existsScript, func(args []any) (any, error) {
		if args[0] == SelectorEmpty {
			return n == 0, nil
		}
		return true, nil
	})
	f.returns(countScript, n)
}

func (f *fakePage) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, url)
	if f.navErr != nil {
		return f.navErr
	}
	if f.onLoad != nil {
		f.url = f.onLoad(url)
	} else {
		f.url = url
	}
	return nil
}

func (f *fakePage) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.navErr
}

func (f *fakePage) Location(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, nil
}

func (f *fakePage) Call(ctx context.Context, fn string, out any, args ...any) error {
	f.mu.Lock()
	f.calls[fn]++
	f.args[fn] = append(f.args[fn], args)
	handler, ok := f.handlers[fn]
	f.mu.Unlock()

	if !ok {
		return errors.New("script not supported by fake page")
	}

	result, err := handler(args)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (f *fakePage) WaitVisible(ctx context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visible[selector] {
		return nil
	}
	return fmt.Errorf("%s not visible", selector)
}

func (f *fakePage) Fill(ctx context.Context, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fills[selector] = value
	return nil
}

func (f *fakePage) Click(ctx context.Context, selector string) error {
	f.mu.Lock()
	f.clicks = append(f.clicks, selector)
	hook := f.onClick
	f.mu.Unlock()
	if hook != nil {
		hook(selector)
	}
	return nil
}

func (f *fakePage) PressEnter(ctx context.Context) error {
	f.mu.Lock()
	f.enters++
	hook := f.onClick
	f.mu.Unlock()
	if hook != nil {
		hook("Enter")
	}
	return nil
}

func (f *fakePage) Screenshot(ctx context.Context, path string) error {
	f.mu.Lock()
	f.shots = append(f.shots, path)
	f.mu.Unlock()
	return os.WriteFile(path, []byte("png"), 0644)
}

func (f *fakePage) setURL(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url = url
}

// fastTiming keeps every wait short enough for unit tests
func fastTiming() Timing {
	return Timing{
		Timeout:           20 * time.Millisecond,
		NavigationTimeout: time.Second,
		PollInterval:      time.Millisecond,

		StablePollInterval: time.Millisecond,
		StableChecks:       3,
		StabilizeRetries:   2,
		EmptyRetries:       3,
	}
}

func fastLoginOptions(debugDir string) LoginOptions {
	return LoginOptions{
		VerificationTimeout: 20 * time.Millisecond,
		FormProbeTimeout:    5 * time.Millisecond,
		SessionTimeout:      20 * time.Millisecond,
		PollInterval:        time.Millisecond,
		NavigationTimeout:   time.Second,
		DebugDir:            debugDir,
	}
}

const testTrash = "/home/alice/.trash"
