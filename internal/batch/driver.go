// Package batch discovers the newest eligible batch directory and runs every
// pending document through the import engine, isolating failures per
// document: one bad file never halts its siblings.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/phoneqa/qaimport/internal/filestate"
	"github.com/phoneqa/qaimport/internal/importer"
	"github.com/phoneqa/qaimport/internal/roster"
	"github.com/phoneqa/qaimport/pkg/models"
)

// DocumentImporter imports one document transactionally.
type DocumentImporter interface {
	ImportDocument(ctx context.Context, doc importer.Document) error
}

// Summary is what one run reports back.
type Summary struct {
	RunID       uuid.UUID
	Timestamp   time.Time
	BatchDir    string
	Found       int
	Stored      int
	Failed      int
	FailedFiles []string
}

// Driver sequences one batch run.
type Driver struct {
	importer DocumentImporter
	roster   map[string]roster.Member
	log      *slog.Logger
	now      func() time.Time
}

func NewDriver(imp DocumentImporter, members map[string]roster.Member, log *slog.Logger) *Driver {
	return &Driver{importer: imp, roster: members, log: log, now: time.Now}
}

// Run processes the most recent batch directory under root. Every document
// in the run shares one processing timestamp. Per-document failures are
// absorbed into the summary; only discovery failures abort the run.
func (d *Driver) Run(ctx context.Context, root string) (*Summary, error) {
	runID := uuid.New()
	log := d.log.With("run_id", runID.String())

	dir, err := LatestWeekDir(root)
	if err != nil {
		return nil, err
	}
	files, err := Documents(dir)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		RunID:     runID,
		Timestamp: d.now().UTC(),
		BatchDir:  dir,
		Found:     len(files),
	}
	if len(files) == 0 {
		log.Info("no pending documents", "batch_dir", dir)
		return sum, nil
	}
	log.Info("batch run starting",
		"batch_dir", dir, "documents", len(files), "processing_timestamp", sum.Timestamp)

	for _, path := range files {
		if ctx.Err() != nil {
			log.Warn("batch run interrupted, remaining documents stay pending",
				"remaining", sum.Found-sum.Stored-sum.Failed)
			break
		}
		if err := d.processOne(ctx, log, path, sum.Timestamp); err != nil {
			if isInterrupted(err) {
				log.Warn("batch run interrupted, remaining documents stay pending",
					"remaining", sum.Found-sum.Stored-sum.Failed)
				break
			}
			sum.Failed++
			sum.FailedFiles = append(sum.FailedFiles, path)
			continue
		}
		sum.Stored++
	}

	log.Info("batch run finished",
		"found", sum.Found, "stored", sum.Stored, "failed", sum.Failed)
	return sum, nil
}

func (d *Driver) processOne(ctx context.Context, log *slog.Logger, path string, ts time.Time) error {
	base := filepath.Base(path)
	doc := importer.Document{
		Path:      path,
		Kind:      Classify(base),
		Agent:     d.agentFor(path),
		Timestamp: ts,
	}
	log.Info("processing document", "file", base, "kind", doc.Kind.String())

	if err := d.importer.ImportDocument(ctx, doc); err != nil {
		if isInterrupted(err) {
			// The document was not processed, it only got interrupted:
			// leave it pending so the next run picks it up.
			log.Warn("import interrupted, document stays pending", "file", path)
			return err
		}
		log.Error("import failed", "file", path, "error", err)
		if _, mvErr := filestate.MarkBadData(path); mvErr != nil {
			// Best effort: discovery skips marked files, so a failed rename
			// only risks one redundant failed import on the next run.
			log.Error("failed to mark document", "file", path, "error", mvErr)
		}
		return err
	}

	if _, mvErr := filestate.MarkStored(path); mvErr != nil {
		log.Error("failed to mark document", "file", path, "error", mvErr)
	}
	log.Info("document stored", "file", base)
	return nil
}

// isInterrupted reports whether err stems from run cancellation rather than
// from the document itself.
func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// agentFor derives the owning agent from the document's path, synthesizing a
// placeholder for extensions missing from the roster.
func (d *Driver) agentFor(path string) models.AgentDetails {
	ext, ok := ExtensionFromPath(path)
	if !ok {
		return models.AgentDetails{}
	}
	if m, found := d.roster[ext]; found {
		return m.Details()
	}
	return models.AgentDetails{
		Name:      fmt.Sprintf("Un-rostered Agent - %s", ext),
		Extension: ext,
	}
}
