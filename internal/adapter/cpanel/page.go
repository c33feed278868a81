package cpanel

import "context"

// Page is the browser tab the File Manager is rendered in.
// browser.Session implements it with chromedp; tests use an in-memory fake.
type Page interface {
	// Navigate loads url and returns once the document is loaded
	Navigate(ctx context.Context, url string) error

	// Reload reloads the current document
	Reload(ctx context.Context) error

	// Location returns the current document URL
	Location(ctx context.Context) (string, error)

	// Call invokes a JavaScript function declaration with JSON-encoded args
	// and decodes its return value into out (out may be nil)
	Call(ctx context.Context, fn string, out any, args ...any) error
}

// FormPage adds the input primitives the login flow needs
type FormPage interface {
	Page

	// WaitVisible blocks until selector matches a visible element
	// Callers bound the wait with ctx
	WaitVisible(ctx context.Context, selector string) error

	// Fill replaces the value of the input matching selector by typing value
	Fill(ctx context.Context, selector, value string) error

	// Click clicks the first element matching selector
	Click(ctx context.Context, selector string) error

	// PressEnter sends an Enter key press to the focused element
	PressEnter(ctx context.Context) error

	// Screenshot writes a PNG of the viewport to path
	Screenshot(ctx context.Context, path string) error
}
