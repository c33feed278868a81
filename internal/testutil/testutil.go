package testutil

import (
	"fmt"
	"html"
	"os"
	"strings"
	"testing"
	"time"
)

// TempDir creates a temporary directory for testing
// It returns the directory path and a cleanup function
func TempDir(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "cptrash-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return true
		}

		if time.Now().After(deadline) {
			return false
		}

		<-ticker.C
	}
}

// AssertEventually asserts that a condition becomes true within timeout
func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msgAndArgs ...interface{}) {
	t.Helper()

	if !WaitForCondition(timeout, condition) {
		if len(msgAndArgs) > 0 {
			t.Fatalf("condition not met within %v: %v", timeout, msgAndArgs[0])
		} else {
			t.Fatalf("condition not met within %v", timeout)
		}
	}
}

// Row describes one File Manager listing row for fixtures
type Row struct {
	Name string

	// Folder marks the row with the folder icon
	Folder bool

	// Mime overrides the mimetype column text ("httpd/unix-directory" for folders)
	Mime string

	// TitleOnly puts the name only in the title attribute, leaving the span text empty
	TitleOnly bool

	// NoIcon omits the folder icon even for folders, leaving only the mimetype column
	NoIcon bool
}

// ListingHTML renders the outer HTML of a File Manager table body the way
// the YUI DataTable renders it. No rows renders the empty marker.
func ListingHTML(rows ...Row) string {
	var b strings.Builder
	b.WriteString(`<tbody class="yui-dt-data">`)
	if len(rows) == 0 {
		b.WriteString(`<tr class="yui-dt-empty"><td colspan="6"><div class="yui-dt-liner">This directory is empty.</div></td></tr>`)
	}
	for i, r := range rows {
		icon := `<span class="fas fa-file"></span>`
		mime := r.Mime
		if r.Folder {
			if !r.NoIcon {
				icon = `<span class="fas fa-folder"></span>`
			}
			if mime == "" {
				mime = "httpd/unix-directory"
			}
		}
		if mime == "" {
			mime = "text/plain"
		}
		text := html.EscapeString(r.Name)
		if r.TitleOnly {
			text = ""
		}
		fmt.Fprintf(&b, `<tr id="yui-rec%d" class="yui-dt-rec">`, i)
		b.WriteString(`<td class="yui-dt-col-icon"><div class="yui-dt-liner">` + icon + `</div></td>`)
		fmt.Fprintf(&b, `<td class="yui-dt-col-name"><div class="yui-dt-liner"><span class="renameable" title="%s">%s</span></div></td>`,
			html.EscapeString(r.Name), text)
		fmt.Fprintf(&b, `<td class="yui-dt-col-mimetype"><div class="yui-dt-liner">%s</div></td>`, mime)
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody>`)
	return b.String()
}
