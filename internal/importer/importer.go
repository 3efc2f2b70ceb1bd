// Package importer loads one analysis document into the store as a single
// transaction: references resolved, the analysis row and its children
// inserted, then commit. Any failure rolls back the whole document.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phoneqa/qaimport/internal/refdata"
	"github.com/phoneqa/qaimport/internal/store"
	"github.com/phoneqa/qaimport/pkg/models"
)

// Kind of input document, decided by filename convention.
type Kind int

const (
	KindIndividual Kind = iota
	KindCombined
)

func (k Kind) String() string {
	if k == KindCombined {
		return "combined"
	}
	return "individual"
}

const analysisSuffix = "_analysis.json"

// Document is one import unit handed over by the batch driver.
type Document struct {
	Path      string
	Kind      Kind
	Agent     models.AgentDetails
	Timestamp time.Time
}

// Importer is the import transaction engine.
type Importer struct {
	store store.Store
	log   *slog.Logger
}

func New(s store.Store, log *slog.Logger) *Importer {
	return &Importer{store: s, log: log}
}

// ImportDocument loads one document inside a single store transaction.
// Returns nil on commit, or one of ErrMalformedDocument, ErrReferenceWrite,
// ErrStoreWrite. No row persists on any failure.
func (im *Importer) ImportDocument(ctx context.Context, doc Document) error {
	if doc.Agent.Extension == "" {
		return fmt.Errorf("%w: no agent linkage for %s", ErrMalformedDocument, doc.Path)
	}

	raw, err := os.ReadFile(doc.Path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrMalformedDocument, doc.Path, err)
	}

	var individual models.IndividualDocument
	var combined models.CombinedDocument
	var labels []string

	switch doc.Kind {
	case KindCombined:
		if err := json.Unmarshal(raw, &combined); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrMalformedDocument, doc.Path, err)
		}
		for _, d := range combined.QualityPointDetail {
			labels = append(labels, d.QualityPoint)
		}
	default:
		if err := json.Unmarshal(raw, &individual); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrMalformedDocument, doc.Path, err)
		}
		for _, e := range individual.DetailedEvaluation {
			labels = append(labels, e.QualityPoint)
		}
	}

	err = im.store.WithinTx(ctx, func(tx store.Tx) error {
		agentID, err := refdata.ResolveAgent(ctx, tx, doc.Agent)
		if err != nil {
			return err
		}
		qpMap, err := refdata.ResolveQualityPoints(ctx, tx, labels)
		if err != nil {
			return err
		}

		if doc.Kind == KindCombined {
			return im.insertCombined(ctx, tx, &combined, doc, agentID, qpMap)
		}
		return im.insertIndividual(ctx, tx, &individual, doc, agentID, qpMap)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return fmt.Errorf("%w: %w", ErrReferenceWrite, err)
		}
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	return nil
}

func (im *Importer) insertIndividual(ctx context.Context, tx store.Tx, d *models.IndividualDocument, doc Document, agentID int64, qpMap map[string]int64) error {
	base := filepath.Base(doc.Path)
	row := &models.IndividualAnalysis{
		AgentID:               agentID,
		TechDispatcherNameRaw: d.CallSummary.TechDispatcherName,
		OriginalAudioFileName: strings.TrimSuffix(base, analysisSuffix) + ".wav",
		CallDuration:          d.CallSummary.CallDuration,
		ClientName:            d.CallSummary.ClientName,
		ClientFacilityCompany: d.CallSummary.ClientFacilityCompany,
		TicketNumber:          d.CallSummary.TicketNumber,
		ClientCallbackNumber:  d.CallSummary.ClientCallbackNumber,
		TicketStatusType:      d.CallSummary.TicketStatusType,
		CallSubjectSummary:    d.CallSummary.CallSubjectSummary,
		RemarksPositive:       d.ConcludingRemarks.SummaryPositiveFindings,
		RemarksNegative:       d.ConcludingRemarks.SummaryNegativeFindings,
		RemarksCoaching:       d.ConcludingRemarks.CoachingPlanForGrowth,
		ProcessingDateTime:    doc.Timestamp,
	}
	analysisID, err := tx.InsertIndividualAnalysis(ctx, row)
	if err != nil {
		return err
	}

	var items []models.EvaluationItem
	for _, e := range d.DetailedEvaluation {
		qpID, ok := qpMap[e.QualityPoint]
		if !ok {
			// Unresolved label: drop the item, keep the document.
			continue
		}
		items = append(items, models.EvaluationItem{
			AnalysisID:          analysisID,
			QualityPointID:      qpID,
			Finding:             e.Finding,
			ExplanationSnippets: e.ExplanationSnippets,
		})
	}
	if err := tx.InsertEvaluationItems(ctx, items); err != nil {
		return err
	}
	im.log.Debug("inserted individual analysis",
		"analysis_id", analysisID, "evaluation_items", len(items))
	return nil
}

func (im *Importer) insertCombined(ctx context.Context, tx store.Tx, d *models.CombinedDocument, doc Document, agentID int64, qpMap map[string]int64) error {
	row := &models.CombinedAnalysis{
		AgentID:               agentID,
		AnalysisPeriodNote:    d.ReportHeader.AnalysisPeriodNote,
		ReportsProvided:       d.ReportHeader.ReportsProvided,
		ReportsAnalyzed:       d.ReportHeader.ReportsAnalyzed,
		SnapshotTotalCalls:    d.Snapshot.TotalCalls,
		SnapshotPositiveCount: d.Snapshot.AggregateCounts.PositiveCount,
		SnapshotNegativeCount: d.Snapshot.AggregateCounts.NegativeCount,
		SnapshotNeutralCount:  d.Snapshot.AggregateCounts.NeutralCount,
		ProcessingDateTime:    doc.Timestamp,
	}
	combinedID, err := tx.InsertCombinedAnalysis(ctx, row)
	if err != nil {
		return err
	}

	if err := tx.InsertStrengths(ctx, combinedID, d.QualitativeSummary.Strengths); err != nil {
		return err
	}
	if err := tx.InsertDevelopmentAreas(ctx, combinedID, d.QualitativeSummary.DevelopmentAreas); err != nil {
		return err
	}
	for _, focus := range d.QualitativeSummary.CoachingFocus {
		if focus.Area == "" {
			continue
		}
		focusID, err := tx.InsertCoachingFocus(ctx, combinedID, focus.Area)
		if err != nil {
			return err
		}
		if err := tx.InsertCoachingActions(ctx, focusID, focus.SpecificActions); err != nil {
			return err
		}
	}

	var details []models.QualityPointDetail
	for _, item := range d.QualityPointDetail {
		qpID, ok := qpMap[item.QualityPoint]
		if !ok {
			continue
		}
		details = append(details, models.QualityPointDetail{
			CombinedAnalysisID: combinedID,
			QualityPointID:     qpID,
			PositiveCount:      item.FindingsSummary.PositiveCount,
			NegativeCount:      item.FindingsSummary.NegativeCount,
			NeutralCount:       item.FindingsSummary.NeutralCount,
			TrendObservation:   item.TrendObservation,
		})
	}
	if err := tx.InsertQualityPointDetails(ctx, details); err != nil {
		return err
	}
	im.log.Debug("inserted combined analysis",
		"combined_analysis_id", combinedID, "quality_point_details", len(details))
	return nil
}
