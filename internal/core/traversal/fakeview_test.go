package traversal

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Ning0612/cptrash/internal/domain"
)

// fakeView is an in-memory remote tree behind the DirectoryView contract
type fakeView struct {
	mu sync.Mutex

	root     string
	cur      string
	dirs     map[string][]domain.Entry
	selected map[string]bool
	all      bool // select-all marks every row, duplicates included

	// fault injection
	failSelect  map[string]bool // directory path → every selection fails
	failNav     map[string]bool
	singleFails map[string]int // directory path → failed single deletes before success
	survive     map[string]int // entry path → deletes it survives
	onNavigate  func(path string)

	events  []string
	reloads int
}

func newFakeView(root string) *fakeView {
	return &fakeView{
		root:        root,
		cur:         root,
		dirs:        map[string][]domain.Entry{root: nil},
		selected:    make(map[string]bool),
		failSelect:  make(map[string]bool),
		failNav:     make(map[string]bool),
		singleFails: make(map[string]int),
		survive:     make(map[string]int),
	}
}

func (v *fakeView) file(dir, name string) *fakeView {
	v.dirs[dir] = append(v.dirs[dir], domain.Entry{Name: name, Kind: domain.KindFile})
	return v
}

func (v *fakeView) folder(dir, name string) *fakeView {
	v.dirs[dir] = append(v.dirs[dir], domain.Entry{Name: name, Kind: domain.KindFolder})
	v.dirs[domain.JoinPath(dir, name)] = nil
	return v
}

// snapshot renders the whole tree for before/after comparisons
func (v *fakeView) snapshot() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	paths := make([]string, 0, len(v.dirs))
	for p := range v.dirs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p + ":")
		for _, e := range v.dirs[p] {
			b.WriteString(" " + e.Name + "(" + e.Kind.String() + ")")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *fakeView) eventsCopy() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.events...)
}

func (v *fakeView) record(event string) {
	v.events = append(v.events, event)
}

func (v *fakeView) CurrentPath(ctx context.Context) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

func (v *fakeView) Navigate(ctx context.Context, path string) error {
	v.mu.Lock()
	hook := v.onNavigate
	if v.failNav[path] {
		v.mu.Unlock()
		return &domain.NavigationError{Path: path, Err: context.DeadlineExceeded}
	}
	v.cur = path
	v.selected = make(map[string]bool)
	v.all = false
	v.record("navigate " + path)
	v.mu.Unlock()

	if hook != nil {
		hook(path)
	}
	return nil
}

func (v *fakeView) Reload(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reloads++
	v.selected = make(map[string]bool)
	v.all = false
	return nil
}

func (v *fakeView) WaitStable(ctx context.Context) bool {
	return true
}

func (v *fakeView) List(ctx context.Context, retryOnEmpty bool) []domain.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("list " + v.cur)
	return append([]domain.Entry(nil), v.dirs[v.cur]...)
}

func (v *fakeView) SelectAll(ctx context.Context) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failSelect[v.cur] {
		return false
	}
	for _, e := range v.dirs[v.cur] {
		v.selected[e.Name] = true
	}
	v.all = true
	return true
}

func (v *fakeView) SelectByName(ctx context.Context, entries []domain.Entry) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failSelect[v.cur] {
		return false
	}
	n := 0
	for _, want := range entries {
		for _, e := range v.dirs[v.cur] {
			if e.Name == want.Name {
				v.selected[e.Name] = true
				n++
				break
			}
		}
	}
	return n > 0
}

func (v *fakeView) DeleteSelected(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.all {
		for _, e := range append([]domain.Entry(nil), v.dirs[v.cur]...) {
			v.deleteLocked(e.Name)
		}
	} else {
		for name := range v.selected {
			v.deleteLocked(name)
		}
	}
	v.selected = make(map[string]bool)
	v.all = false
}

func (v *fakeView) SelectAndDeleteSingle(ctx context.Context, name string, dryRun bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.singleFails[v.cur] > 0 {
		v.singleFails[v.cur]--
		return false
	}
	found := false
	for _, e := range v.dirs[v.cur] {
		if e.Name == name {
			found = true
			break
		}
	}
	if !found || dryRun {
		return found
	}
	v.deleteLocked(name)
	return true
}

func (v *fakeView) deleteLocked(name string) {
	path := domain.JoinPath(v.cur, name)
	if v.survive[path] > 0 {
		v.survive[path]--
		return
	}

	entries := v.dirs[v.cur]
	for i, e := range entries {
		if e.Name != name {
			continue
		}
		v.dirs[v.cur] = append(entries[:i:i], entries[i+1:]...)
		if e.IsFolder() {
			for p := range v.dirs {
				if p == path || strings.HasPrefix(p, path+"/") {
					delete(v.dirs, p)
				}
			}
		}
		v.record("delete " + path)
		return
	}
}
