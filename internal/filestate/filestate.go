// Package filestate records a document's terminal processing outcome in its
// filename. The marker prefix, not the rename outcome, is the source of truth
// for "already handled": discovery skips anything bearing a marker, so a rename
// that fails after a commit cannot cause a re-import.
package filestate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// State of a source document on disk.
type State int

const (
	// Pending documents carry no marker and are eligible for import.
	Pending State = iota
	// Stored documents imported successfully. Terminal.
	Stored
	// BadData documents failed import and are kept for inspection. Terminal.
	BadData
)

const (
	storedPrefix  = "Stored-"
	badDataPrefix = "BadData-"
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Stored:
		return "stored"
	case BadData:
		return "baddata"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Of reports the state encoded in a file name. Prefix matching is
// case-sensitive.
func Of(name string) State {
	base := filepath.Base(name)
	switch {
	case strings.HasPrefix(base, storedPrefix):
		return Stored
	case strings.HasPrefix(base, badDataPrefix):
		return BadData
	}
	return Pending
}

// MarkStored transitions a pending document to Stored by renaming it in
// place. Returns the new path.
func MarkStored(path string) (string, error) {
	return mark(path, storedPrefix)
}

// MarkBadData transitions a pending document to BadData by renaming it in
// place. Returns the new path.
func MarkBadData(path string) (string, error) {
	return mark(path, badDataPrefix)
}

func mark(path, prefix string) (string, error) {
	dst := filepath.Join(filepath.Dir(path), prefix+filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("mark %s: %w", filepath.Base(path), err)
	}
	return dst, nil
}
