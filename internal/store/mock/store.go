// Package mock provides an in-memory Store for tests. Writes are kept in
// maps and slices, WithinTx snapshots state so an error rolls everything
// back, and per-method function fields allow fault injection.
package mock

import (
	"context"
	"maps"
	"slices"

	"github.com/phoneqa/qaimport/internal/store"
	"github.com/phoneqa/qaimport/pkg/models"
)

// Store satisfies store.Store and store.Tx for testing.
type Store struct {
	Agents        map[string]int64 // extension -> id
	AgentRows     map[int64]models.AgentDetails
	QualityPoints map[string]int64 // text -> id
	BonusFlags    map[string]bool

	Individual []*models.IndividualAnalysis
	EvalItems  []models.EvaluationItem
	Combined   []*models.CombinedAnalysis
	Strengths  map[int64][]string
	DevAreas   map[int64][]string
	Focus      []*models.CoachingFocus
	Details    []models.QualityPointDetail

	Stats []*models.AgentDailyStat

	nextID int64

	// Optional overrides for fault injection.
	GetAgentByExtensionFunc func(ctx context.Context, extension string) (int64, error)
	CreateAgentFunc         func(ctx context.Context, agent models.AgentDetails) (int64, error)
	LookupQualityPointsFunc func(ctx context.Context, texts []string) (map[string]int64, error)
	InsertQualityPointsFunc func(ctx context.Context, points []models.QualityPoint) error
	InsertEvaluationsErr    error
	InsertIndividualErr     error
	InsertCombinedErr       error
	PingErr                 error
}

func NewStore() *Store {
	return &Store{
		Agents:        map[string]int64{},
		AgentRows:     map[int64]models.AgentDetails{},
		QualityPoints: map[string]int64{},
		BonusFlags:    map[string]bool{},
		Strengths:     map[int64][]string{},
		DevAreas:      map[int64][]string{},
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.PingErr }

// WithinTx runs fn against the store itself, restoring the pre-call state
// when fn fails so rollback semantics hold.
func (s *Store) WithinTx(ctx context.Context, fn func(tx store.Tx) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) DailyAgentStats(ctx context.Context) ([]*models.AgentDailyStat, error) {
	if len(s.Stats) == 0 {
		return nil, store.ErrNotFound
	}
	return s.Stats, nil
}

func (s *Store) GetAgentByExtension(ctx context.Context, extension string) (int64, error) {
	if s.GetAgentByExtensionFunc != nil {
		return s.GetAgentByExtensionFunc(ctx, extension)
	}
	id, ok := s.Agents[extension]
	if !ok {
		return 0, store.ErrNotFound
	}
	return id, nil
}

func (s *Store) CreateAgent(ctx context.Context, agent models.AgentDetails) (int64, error) {
	if s.CreateAgentFunc != nil {
		return s.CreateAgentFunc(ctx, agent)
	}
	if _, exists := s.Agents[agent.Extension]; exists {
		return 0, store.ErrDuplicateKey
	}
	id := s.issueID()
	s.Agents[agent.Extension] = id
	s.AgentRows[id] = agent
	return id, nil
}

func (s *Store) LookupQualityPoints(ctx context.Context, texts []string) (map[string]int64, error) {
	if s.LookupQualityPointsFunc != nil {
		return s.LookupQualityPointsFunc(ctx, texts)
	}
	result := map[string]int64{}
	for _, t := range texts {
		if id, ok := s.QualityPoints[t]; ok {
			result[t] = id
		}
	}
	return result, nil
}

func (s *Store) InsertQualityPoints(ctx context.Context, points []models.QualityPoint) error {
	if s.InsertQualityPointsFunc != nil {
		return s.InsertQualityPointsFunc(ctx, points)
	}
	for _, p := range points {
		if _, exists := s.QualityPoints[p.Text]; exists {
			return store.ErrDuplicateKey
		}
		s.QualityPoints[p.Text] = s.issueID()
		s.BonusFlags[p.Text] = p.IsBonus
	}
	return nil
}

func (s *Store) InsertIndividualAnalysis(ctx context.Context, a *models.IndividualAnalysis) (int64, error) {
	if s.InsertIndividualErr != nil {
		return 0, s.InsertIndividualErr
	}
	row := *a
	row.ID = s.issueID()
	s.Individual = append(s.Individual, &row)
	return row.ID, nil
}

func (s *Store) InsertEvaluationItems(ctx context.Context, items []models.EvaluationItem) error {
	if s.InsertEvaluationsErr != nil {
		return s.InsertEvaluationsErr
	}
	s.EvalItems = append(s.EvalItems, items...)
	return nil
}

func (s *Store) InsertCombinedAnalysis(ctx context.Context, a *models.CombinedAnalysis) (int64, error) {
	if s.InsertCombinedErr != nil {
		return 0, s.InsertCombinedErr
	}
	row := *a
	row.ID = s.issueID()
	s.Combined = append(s.Combined, &row)
	return row.ID, nil
}

func (s *Store) InsertStrengths(ctx context.Context, combinedID int64, strengths []string) error {
	s.Strengths[combinedID] = append(s.Strengths[combinedID], strengths...)
	return nil
}

func (s *Store) InsertDevelopmentAreas(ctx context.Context, combinedID int64, areas []string) error {
	s.DevAreas[combinedID] = append(s.DevAreas[combinedID], areas...)
	return nil
}

func (s *Store) InsertCoachingFocus(ctx context.Context, combinedID int64, area string) (int64, error) {
	f := &models.CoachingFocus{
		ID:                 s.issueID(),
		CombinedAnalysisID: combinedID,
		Area:               area,
	}
	s.Focus = append(s.Focus, f)
	return f.ID, nil
}

func (s *Store) InsertCoachingActions(ctx context.Context, focusID int64, actions []string) error {
	for _, f := range s.Focus {
		if f.ID == focusID {
			f.Actions = append(f.Actions, actions...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) InsertQualityPointDetails(ctx context.Context, details []models.QualityPointDetail) error {
	s.Details = append(s.Details, details...)
	return nil
}

func (s *Store) issueID() int64 {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	agents        map[string]int64
	agentRows     map[int64]models.AgentDetails
	qualityPoints map[string]int64
	bonusFlags    map[string]bool
	individual    []*models.IndividualAnalysis
	evalItems     []models.EvaluationItem
	combined      []*models.CombinedAnalysis
	strengths     map[int64][]string
	devAreas      map[int64][]string
	focus         []*models.CoachingFocus
	details       []models.QualityPointDetail
	nextID        int64
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		agents:        maps.Clone(s.Agents),
		agentRows:     maps.Clone(s.AgentRows),
		qualityPoints: maps.Clone(s.QualityPoints),
		bonusFlags:    maps.Clone(s.BonusFlags),
		individual:    slices.Clone(s.Individual),
		evalItems:     slices.Clone(s.EvalItems),
		combined:      slices.Clone(s.Combined),
		strengths:     maps.Clone(s.Strengths),
		devAreas:      maps.Clone(s.DevAreas),
		focus:         slices.Clone(s.Focus),
		details:       slices.Clone(s.Details),
		nextID:        s.nextID,
	}
}

func (s *Store) restore(snap snapshot) {
	s.Agents = snap.agents
	s.AgentRows = snap.agentRows
	s.QualityPoints = snap.qualityPoints
	s.BonusFlags = snap.bonusFlags
	s.Individual = snap.individual
	s.EvalItems = snap.evalItems
	s.Combined = snap.combined
	s.Strengths = snap.strengths
	s.DevAreas = snap.devAreas
	s.Focus = snap.focus
	s.Details = snap.details
	s.nextID = snap.nextID
}

// Compile-time checks.
var _ store.Store = (*Store)(nil)
var _ store.Tx = (*Store)(nil)
