package domain

import "strings"

// EntryKind represents the kind of an item shown in a directory listing
type EntryKind int

const (
	KindFile EntryKind = iota
	KindFolder
)

// String returns the string representation of the kind
func (k EntryKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Entry is a single row of a remote directory listing
// Entries are produced per listing and never persisted
type Entry struct {
	// Name is the display name of the row (file or folder name, no path)
	Name string

	// Kind is derived from presentation markup, not an authoritative type field
	Kind EntryKind
}

// IsFolder returns true if the entry is a folder
func (e Entry) IsFolder() bool {
	return e.Kind == KindFolder
}

// IsFile returns true if the entry is a regular file
func (e Entry) IsFile() bool {
	return e.Kind == KindFile
}

// Partition splits entries into folders and files, keeping listing order
func Partition(entries []Entry) (folders, files []Entry) {
	for _, e := range entries {
		if e.IsFolder() {
			folders = append(folders, e)
		} else {
			files = append(files, e)
		}
	}
	return folders, files
}

// CountFiles returns the number of file entries
func CountFiles(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.IsFile() {
			n++
		}
	}
	return n
}

// Dedupe drops entries whose name already appeared earlier in the listing.
// It returns the kept entries and the names that were seen more than once.
func Dedupe(entries []Entry) (kept []Entry, duplicates []string) {
	seen := make(map[string]bool, len(entries))
	reported := make(map[string]bool)
	for _, e := range entries {
		if seen[e.Name] {
			if !reported[e.Name] {
				duplicates = append(duplicates, e.Name)
				reported[e.Name] = true
			}
			continue
		}
		seen[e.Name] = true
		kept = append(kept, e)
	}
	return kept, duplicates
}

// JoinPath appends a child name to a remote directory path.
// The parent is normalized to exactly one trailing slash first.
func JoinPath(parent, child string) string {
	return strings.TrimRight(parent, "/") + "/" + strings.Trim(child, "/")
}

// TrashRoot returns the File Manager trash directory for a cPanel account
func TrashRoot(username string) string {
	return "/home/" + username + "/.trash"
}
