package browser

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Ning0612/cptrash/internal/domain"
)

// Installed describes a Chromium-based browser found on this machine
type Installed struct {
	Name string
	Path string
}

// knownPaths 各平台支援的瀏覽器安裝位置（依偏好排序）
var knownPaths = map[string][]Installed{
	"darwin": {
		{Name: "Google Chrome", Path: "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"},
		{Name: "Brave Browser", Path: "/Applications/Brave Browser.app/Contents/MacOS/Brave Browser"},
		{Name: "Microsoft Edge", Path: "/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge"},
		{Name: "Chromium", Path: "/Applications/Chromium.app/Contents/MacOS/Chromium"},
		{Name: "Arc", Path: "/Applications/Arc.app/Contents/MacOS/Arc"},
		{Name: "Opera", Path: "/Applications/Opera.app/Contents/MacOS/Opera"},
		{Name: "Vivaldi", Path: "/Applications/Vivaldi.app/Contents/MacOS/Vivaldi"},
	},
	"windows": {
		{Name: "Google Chrome", Path: `C:\Program Files\Google\Chrome\Application\chrome.exe`},
		{Name: "Google Chrome (x86)", Path: `C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`},
		{Name: "Brave Browser", Path: `C:\Program Files\BraveSoftware\Brave-Browser\Application\brave.exe`},
		{Name: "Microsoft Edge", Path: `C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`},
	},
	"linux": {
		{Name: "Google Chrome", Path: "/usr/bin/google-chrome"},
		{Name: "Google Chrome (Stable)", Path: "/usr/bin/google-chrome-stable"},
		{Name: "Chromium", Path: "/usr/bin/chromium"},
		{Name: "Chromium Browser", Path: "/usr/bin/chromium-browser"},
		{Name: "Brave Browser", Path: "/usr/bin/brave-browser"},
		{Name: "Microsoft Edge", Path: "/usr/bin/microsoft-edge"},
	},
}

// Supported returns the browser table for the current platform
func Supported() []Installed {
	return append([]Installed(nil), knownPaths[runtime.GOOS]...)
}

// Detect lists the supported browsers installed on this machine
func Detect() []Installed {
	return detect(runtime.GOOS, fileExists)
}

func detect(goos string, exists func(string) bool) []Installed {
	var found []Installed
	for _, b := range knownPaths[goos] {
		if exists(b.Path) {
			found = append(found, b)
		}
	}
	return found
}

// Resolve validates a user-supplied browser path
func Resolve(path string) (Installed, error) {
	if !fileExists(path) {
		return Installed{}, fmt.Errorf("%w: %s", domain.ErrBrowserNotFound, path)
	}
	for _, b := range knownPaths[runtime.GOOS] {
		if b.Path == path {
			return b, nil
		}
	}
	return Installed{Name: "Custom browser", Path: path}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
