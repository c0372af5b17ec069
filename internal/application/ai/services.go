package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/genefit/internal/application"
	"github.com/bryanwahyu/genefit/internal/application/interpret"
	domai "github.com/bryanwahyu/genefit/internal/domain/ai"
	"github.com/bryanwahyu/genefit/internal/domain/analyst"
	"github.com/bryanwahyu/genefit/internal/domain/samples"
	"github.com/bryanwahyu/genefit/internal/domain/species"
)

// Report is an interpreted analysis, the payload of the results screen.
type Report struct {
	ID          string             `json:"id"`
	Result      string             `json:"result"`
	Species     species.Info       `json:"species"`
	Sections    interpret.Sections `json:"sections"`
	SampleCount int                `json:"sample_count"`
	ReportURL   string             `json:"report_url,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// DietPlan is a generated plan with its display blocks.
type DietPlan struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Blocks    []interpret.Block `json:"blocks"`
	CreatedAt time.Time         `json:"created_at"`
}

// Service runs the analysis flows. Records and Reports are optional.
type Service struct {
	client      domai.Client
	interpreter *interpret.Interpreter

	Records analyst.Repository
	Reports analyst.ReportStore
	Clock   application.Clock
	Logger  *zap.Logger

	mu     sync.RWMutex
	latest map[string]*Report
}

func NewService(client domai.Client, interpreter *interpret.Interpreter) *Service {
	return &Service{
		client:      client,
		interpreter: interpreter,
		Clock:       application.SystemClock{},
		Logger:      zap.NewNop(),
		latest:      make(map[string]*Report),
	}
}

// AnalyzeSamples sends the owner's samples for analysis and interprets the
// answer. The report replaces the owner's previous one.
func (s *Service) AnalyzeSamples(ctx context.Context, owner string, list []samples.Sample) (*Report, error) {
	if len(list) == 0 {
		return nil, &domai.ValidationError{Message: domai.MsgNoSamples}
	}

	now := s.Clock.Now()
	id := uuid.NewString()
	text, err := s.client.AnalyzeSamples(ctx, list)
	if err != nil {
		s.Logger.Warn("sample analysis failed",
			zap.String("owner", owner), zap.Int("samples", len(list)), zap.Error(err))
		s.record(ctx, &analyst.Analysis{
			ID: analyst.AnalysisID(id), OwnerID: owner, Kind: analyst.KindSamples,
			Status: analyst.StatusFailed, SampleCount: len(list), Error: err.Error(), CreatedAt: now,
		}, err)
		return nil, err
	}

	subject, sections := s.interpreter.Interpret(text)
	report := &Report{
		ID:          id,
		Result:      text,
		Species:     subject,
		Sections:    sections,
		SampleCount: len(list),
		CreatedAt:   now,
	}
	report.ReportURL = s.archive(ctx, owner, report)

	s.record(ctx, &analyst.Analysis{
		ID: analyst.AnalysisID(id), OwnerID: owner, Kind: analyst.KindSamples,
		Status: analyst.StatusSuccess, SampleCount: len(list), Species: subject.CommonName,
		Result: text, ReportURL: report.ReportURL, CreatedAt: now,
	}, nil)

	s.mu.Lock()
	if s.latest == nil {
		s.latest = make(map[string]*Report)
	}
	s.latest[owner] = report
	s.mu.Unlock()

	s.Logger.Info("sample analysis done",
		zap.String("owner", owner), zap.String("id", id), zap.String("species", subject.CommonName),
		zap.Bool("fallback_sections", sections.Fallback))
	return report, nil
}

// GenerateDietPlan asks for a plan for the given profile.
func (s *Service) GenerateDietPlan(ctx context.Context, owner string, profile domai.ProfileInput) (*DietPlan, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	id := uuid.NewString()
	text, err := s.client.GenerateDietPlan(ctx, profile)
	if err != nil {
		s.Logger.Warn("diet plan failed", zap.String("owner", owner), zap.Error(err))
		s.record(ctx, &analyst.Analysis{
			ID: analyst.AnalysisID(id), OwnerID: owner, Kind: analyst.KindDietPlan,
			Status: analyst.StatusFailed, Error: err.Error(), CreatedAt: now,
		}, err)
		return nil, err
	}

	s.record(ctx, &analyst.Analysis{
		ID: analyst.AnalysisID(id), OwnerID: owner, Kind: analyst.KindDietPlan,
		Status: analyst.StatusSuccess, Result: text, CreatedAt: now,
	}, nil)
	return &DietPlan{ID: id, Text: text, Blocks: interpret.FormatPlan(text), CreatedAt: now}, nil
}

// Latest returns the owner's most recent report, if any.
func (s *Service) Latest(owner string) (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.latest[owner]
	return r, ok
}

// Discard forgets the owner's latest report.
func (s *Service) Discard(owner string) {
	s.mu.Lock()
	delete(s.latest, owner)
	s.mu.Unlock()
}

// ErrHistoryDisabled is returned by ListAnalyses when no repository is wired.
var ErrHistoryDisabled = errors.New("analysis history is not configured")

// ListAnalyses pages through the owner's analysis log.
func (s *Service) ListAnalyses(ctx context.Context, owner string, page, pageSize int) (*analyst.PaginatedResult, error) {
	if s.Records == nil {
		return nil, ErrHistoryDisabled
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	data, err := s.Records.Paginate(ctx, owner, page, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.Records.Count(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &analyst.PaginatedResult{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// record persists a log row; validation failures never reach the log and a
// broken repository never fails the request.
func (s *Service) record(ctx context.Context, a *analyst.Analysis, cause error) {
	if s.Records == nil {
		return
	}
	var vErr *domai.ValidationError
	if errors.As(cause, &vErr) {
		return
	}
	if err := s.Records.Save(context.WithoutCancel(ctx), a); err != nil {
		s.Logger.Error("save analysis record failed", zap.String("id", string(a.ID)), zap.Error(err))
	}
}

func (s *Service) archive(ctx context.Context, owner string, r *Report) string {
	if s.Reports == nil {
		return ""
	}
	body, err := json.Marshal(r)
	if err != nil {
		s.Logger.Error("marshal report failed", zap.String("id", r.ID), zap.Error(err))
		return ""
	}
	key := fmt.Sprintf("reports/%s/%s.json", owner, r.ID)
	url, err := s.Reports.PutReport(context.WithoutCancel(ctx), key, body)
	if err != nil {
		s.Logger.Warn("archive report failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}
