package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/phoneqa/qaimport/internal/filestate"
	"github.com/phoneqa/qaimport/internal/importer"
)

// ErrDiscovery marks a failure to locate or read the batch directory.
// Fatal to the run; every document stays pending for the next one.
var ErrDiscovery = errors.New("batch discovery failed")

const (
	combinedReportName = "Combined_Analysis_Report.json"
	analysisSuffix     = "_analysis.json"
)

var (
	weekDirPattern   = regexp.MustCompile(`Week of (\d{4}-\d{2}-\d{2})`)
	extensionPattern = regexp.MustCompile(`Week of \d{4}-\d{2}-\d{2}[\\/](\d{4})(?:[\\/]|$)`)
)

// LatestWeekDir finds the most recent batch directory under root, by the
// calendar date embedded in its name. Directories whose embedded date does
// not parse are ignored.
func LatestWeekDir(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrDiscovery, root, err)
	}

	var best string
	var bestDate time.Time
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := weekDirPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		date, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			continue
		}
		if best == "" || date.After(bestDate) {
			best = filepath.Join(root, e.Name())
			bestDate = date
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: no batch directories in %s", ErrDiscovery, root)
	}
	return best, nil
}

// Documents enumerates the pending import candidates under dir, recursively.
// Files already bearing a terminal marker are excluded, which is what makes
// repeated runs on the same directory idempotent.
func Documents(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isCandidate(d.Name()) {
			return nil
		}
		if filestate.Of(d.Name()) != filestate.Pending {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", ErrDiscovery, dir, err)
	}
	return files, nil
}

func isCandidate(name string) bool {
	return strings.HasSuffix(name, analysisSuffix) || strings.Contains(name, combinedReportName)
}

// Classify decides a document's shape from its filename alone.
func Classify(name string) importer.Kind {
	if strings.Contains(filepath.Base(name), combinedReportName) {
		return importer.KindCombined
	}
	return importer.KindIndividual
}

// ExtensionFromPath extracts the 4-digit agent extension from a document's
// position in the directory tree.
func ExtensionFromPath(path string) (string, bool) {
	m := extensionPattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}
