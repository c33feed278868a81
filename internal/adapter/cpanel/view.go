package cpanel

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Ning0612/cptrash/internal/adapter"
	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/logger"
)

// DefaultTheme is the cPanel theme whose File Manager URL is used
const DefaultTheme = "jupiter"

var sessionPattern = regexp.MustCompile(`(/cpsess\d+/)`)

// View implements adapter.DirectoryView on top of the cPanel File Manager
type View struct {
	page      Page
	timing    Timing
	trashRoot string
}

// New creates a view over page; trashRoot is used when the URL carries no directory
func New(page Page, trashRoot string, timing Timing) *View {
	return &View{
		page:      page,
		timing:    timing,
		trashRoot: trashRoot,
	}
}

// TrashRoot returns the directory the sweep starts from
func (v *View) TrashRoot() string {
	return v.trashRoot
}

// Open navigates from the logged-in dashboard to the File Manager showing
// the trash root, then waits for the listing
func (v *View) Open(ctx context.Context, baseURL, theme string) error {
	current, err := v.page.Location(ctx)
	if err != nil {
		return &domain.NavigationError{Path: v.trashRoot, Err: err}
	}

	target := FileManagerURL(baseURL, SessionPath(current), theme, v.trashRoot)
	if err := v.load(ctx, target); err != nil {
		return &domain.NavigationError{Path: v.trashRoot, Err: fmt.Errorf("failed to open File Manager: %w", err)}
	}

	v.WaitStable(ctx)
	return nil
}

// CurrentPath returns the dir query parameter of the current URL
func (v *View) CurrentPath(ctx context.Context) string {
	current, err := v.page.Location(ctx)
	if err != nil {
		return v.trashRoot
	}
	u, err := url.Parse(current)
	if err != nil {
		return v.trashRoot
	}
	if dir := u.Query().Get("dir"); dir != "" {
		return dir
	}
	return v.trashRoot
}

// Navigate points the dir query parameter at path and waits for the listing
func (v *View) Navigate(ctx context.Context, path string) error {
	current, err := v.page.Location(ctx)
	if err != nil {
		return &domain.NavigationError{Path: path, Err: err}
	}

	target, err := WithDir(current, path)
	if err != nil {
		return &domain.NavigationError{Path: path, Err: err}
	}

	if err := v.load(ctx, target); err != nil {
		return &domain.NavigationError{Path: path, Err: err}
	}

	v.WaitStable(ctx)
	return nil
}

// Reload reloads the current directory and waits for the listing
func (v *View) Reload(ctx context.Context) error {
	nctx, cancel := context.WithTimeout(ctx, v.timing.NavigationTimeout)
	defer cancel()

	if err := v.page.Reload(nctx); err != nil {
		return &domain.NavigationError{Path: v.CurrentPath(ctx), Err: err}
	}

	v.WaitStable(ctx)
	return nil
}

func (v *View) load(ctx context.Context, target string) error {
	nctx, cancel := context.WithTimeout(ctx, v.timing.NavigationTimeout)
	defer cancel()

	logger.Get().Debug("loading page", "url", target)
	return v.page.Navigate(nctx, target)
}

// run tries strategies in order and returns the name of the first that succeeded
func (v *View) run(ctx context.Context, strategies []strategy, args ...any) (string, bool) {
	for _, s := range strategies {
		var ok bool
		if err := v.page.Call(ctx, s.script, &ok, args...); err != nil {
			logger.Get().Debug("strategy errored", "strategy", s.name, "error", err)
			continue
		}
		if ok {
			return s.name, true
		}
	}
	return "", false
}

// SessionPath extracts the /cpsessNNN/ segment of a logged-in URL
// It returns "/" when the URL carries no session
func SessionPath(rawURL string) string {
	if m := sessionPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return "/"
}

// HasSession reports whether rawURL belongs to a logged-in cPanel session
func HasSession(rawURL string) bool {
	return strings.Contains(rawURL, "/cpsess") || strings.Contains(rawURL, "/frontend/")
}

// FileManagerURL builds the File Manager address for dir
func FileManagerURL(baseURL, sessionPath, theme, dir string) string {
	if theme == "" {
		theme = DefaultTheme
	}
	return strings.TrimRight(baseURL, "/") + sessionPath +
		"frontend/" + theme + "/filemanager/index.html?dir=" + url.QueryEscape(dir)
}

// WithDir returns rawURL with its dir query parameter set to dir
func WithDir(rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	q := u.Query()
	q.Set("dir", dir)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var _ adapter.DirectoryView = (*View)(nil)
