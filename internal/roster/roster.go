// Package roster parses the agents-by-extension reference file. Each line is
// a tab-separated record: extension, full name, email, and an optional
// trailing note. Lines starting with # are comments.
package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phoneqa/qaimport/pkg/models"
)

// Member is one roster record.
type Member struct {
	Extension string
	FullName  string
	Email     string
	Note      *string
}

// Details converts a roster record to the resolver's input shape.
func (m Member) Details() models.AgentDetails {
	email := m.Email
	return models.AgentDetails{
		Name:      m.FullName,
		Email:     &email,
		Extension: m.Extension,
	}
}

// Parse reads roster records keyed by extension. Malformed lines (fewer than
// three columns or a blank extension) are skipped, not errors: the roster is
// maintained by hand and one bad line must not block a batch.
func Parse(r io.Reader) (map[string]Member, error) {
	members := make(map[string]Member)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 3 {
			continue
		}
		ext := strings.TrimSpace(parts[0])
		if ext == "" {
			continue
		}
		m := Member{
			Extension: ext,
			FullName:  strings.TrimSpace(parts[1]),
			Email:     strings.TrimSpace(parts[2]),
		}
		if len(parts) > 3 {
			if note := strings.TrimSpace(parts[3]); note != "" {
				m.Note = &note
			}
		}
		members[ext] = m
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return members, nil
}

// Load parses the roster file at path. A missing file yields an empty roster:
// every agent is then synthesized as un-rostered, matching how a batch must
// still run when the reference file is absent.
func Load(path string) (map[string]Member, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Member{}, nil
		}
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}
