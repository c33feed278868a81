package service

import (
	"context"
	"strings"
	"sync"

	"github.com/Ning0612/cptrash/internal/domain"
)

// memView is a minimal in-memory trash tree for service tests
type memView struct {
	mu       sync.Mutex
	cur      string
	dirs     map[string][]domain.Entry
	selected map[string]bool
}

func newMemView(root string) *memView {
	return &memView{
		cur:      root,
		dirs:     map[string][]domain.Entry{root: nil},
		selected: make(map[string]bool),
	}
}

func (v *memView) file(dir, name string) *memView {
	v.dirs[dir] = append(v.dirs[dir], domain.Entry{Name: name, Kind: domain.KindFile})
	return v
}

func (v *memView) folder(dir, name string) *memView {
	v.dirs[dir] = append(v.dirs[dir], domain.Entry{Name: name, Kind: domain.KindFolder})
	v.dirs[domain.JoinPath(dir, name)] = nil
	return v
}

func (v *memView) count(dir string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.dirs[dir])
}

func (v *memView) CurrentPath(ctx context.Context) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

func (v *memView) Navigate(ctx context.Context, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = path
	v.selected = make(map[string]bool)
	return nil
}

func (v *memView) Reload(ctx context.Context) error { return nil }

func (v *memView) WaitStable(ctx context.Context) bool { return true }

func (v *memView) List(ctx context.Context, retryOnEmpty bool) []domain.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]domain.Entry(nil), v.dirs[v.cur]...)
}

func (v *memView) SelectAll(ctx context.Context) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range v.dirs[v.cur] {
		v.selected[e.Name] = true
	}
	return len(v.dirs[v.cur]) > 0
}

func (v *memView) SelectByName(ctx context.Context, entries []domain.Entry) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range entries {
		v.selected[e.Name] = true
	}
	return len(entries) > 0
}

func (v *memView) DeleteSelected(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for name := range v.selected {
		v.remove(name)
	}
	v.selected = make(map[string]bool)
}

func (v *memView) SelectAndDeleteSingle(ctx context.Context, name string, dryRun bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if dryRun {
		return true
	}
	return v.remove(name)
}

func (v *memView) remove(name string) bool {
	path := domain.JoinPath(v.cur, name)
	entries := v.dirs[v.cur]
	for i, e := range entries {
		if e.Name != name {
			continue
		}
		v.dirs[v.cur] = append(entries[:i:i], entries[i+1:]...)
		for p := range v.dirs {
			if p == path || strings.HasPrefix(p, path+"/") {
				delete(v.dirs, p)
			}
		}
		return true
	}
	return false
}
