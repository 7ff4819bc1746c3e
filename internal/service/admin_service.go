package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wonderless/Test-autoestima-sub000/internal/cache"
	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/repository"
	"github.com/wonderless/Test-autoestima-sub000/internal/scoring"
)

// AdminService aggregates stored results for the admin dashboards
type AdminService struct {
	catalog   *catalog.Catalog
	repo      repository.UserRepo
	dashboard cache.DashboardCache
	clock     Clock
	logger    *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	cat *catalog.Catalog,
	repo repository.UserRepo,
	dashboard cache.DashboardCache,
	clock Clock,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		catalog:   cat,
		repo:      repo,
		dashboard: dashboard,
		clock:     clock,
		logger:    logger,
	}
}

// Dashboard returns the cached aggregates, recomputing them on a miss
func (s *AdminService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	if cached, err := s.dashboard.Get(ctx); err != nil {
		s.logger.Warn("failed to read dashboard cache", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	d := &model.Dashboard{
		LevelsByCategory: make(map[model.Category]map[model.Level]int, len(model.Categories)),
		GeneratedAt:      s.clock.Now(),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range model.Categories {
		cat := cat
		g.Go(func() error {
			counts, err := s.repo.CountByLevel(gctx, cat)
			if err != nil {
				return fmt.Errorf("count %s levels: %w", cat, err)
			}
			mu.Lock()
			d.LevelsByCategory[cat] = counts
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		n, err := s.repo.CountVeracityFlagged(gctx, scoring.VeracityBlockThreshold)
		if err != nil {
			return fmt.Errorf("count veracity flagged: %w", err)
		}
		d.VeracityFlagged = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountTested(gctx)
		if err != nil {
			return fmt.Errorf("count tested: %w", err)
		}
		d.TestedStudents = n
		return nil
	})
	g.Go(func() error {
		students, err := s.repo.ListStudents(gctx)
		if err != nil {
			return fmt.Errorf("list students: %w", err)
		}
		d.TotalStudents = len(students)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := s.dashboard.Set(ctx, d); err != nil {
		s.logger.Warn("failed to cache dashboard", zap.Error(err))
	}
	return d, nil
}

var csvHeader = []string{
	"uid", "email", "lastTestDate", "testDuration", "veracityScore",
	"personal", "social", "academico", "fisico", "total", "generalLevel",
}

// ExportCSV writes one row per student with a stored test
func (s *AdminService) ExportCSV(ctx context.Context, w io.Writer) error {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, u := range students {
		if !u.HasTest() {
			continue
		}
		if err := cw.Write(s.csvRow(u)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *AdminService) csvRow(u *model.UserDocument) []string {
	row := []string{u.ID, u.Email, "", "", ""}
	if u.LastTestDate != nil {
		row[2] = u.LastTestDate.UTC().Format(time.RFC3339)
	}
	if u.TestDuration != nil {
		row[3] = strconv.FormatInt(*u.TestDuration, 10)
	}
	if u.VeracityScore != nil {
		row[4] = strconv.Itoa(*u.VeracityScore)
	} else {
		row[4] = strconv.Itoa(scoring.VeracityFor(u.Answers, s.catalog))
	}

	// rows without stored results are scored from the answers
	results := u.TestResults
	if len(results) != len(model.Categories) {
		if scores, err := scoring.ScoreAll(u.Answers, s.catalog); err == nil {
			results = scores.Categories
		}
	}

	total := 0
	complete := true
	for _, cat := range model.Categories {
		cs, ok := results[cat]
		if !ok {
			complete = false
			row = append(row, "")
			continue
		}
		total += cs.Score
		row = append(row, fmt.Sprintf("%d (%s)", cs.Score, cs.Level))
	}
	if complete {
		row = append(row, strconv.Itoa(total), string(scoring.GeneralLevelFor(total)))
	} else {
		row = append(row, "", "")
	}
	return row
}

// FeedbackSummary tallies the feedback answers per recommendation
func (s *AdminService) FeedbackSummary(ctx context.Context) ([]model.RecommendationFeedback, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	byID := make(map[string]*model.RecommendationFeedback)
	tallies := make(map[string]map[string]*model.FeedbackTally)
	for _, u := range students {
		for recID, answers := range u.ActivityFeedback {
			item, ok := s.catalog.Item(recID)
			if !ok {
				continue
			}
			rf, ok := byID[recID]
			if !ok {
				rf = &model.RecommendationFeedback{RecommendationID: recID, Title: item.Title}
				byID[recID] = rf
				tallies[recID] = make(map[string]*model.FeedbackTally)
				for _, q := range item.FeedbackQuestions {
					t := &model.FeedbackTally{Key: q.Key}
					tallies[recID][q.Key] = t
				}
			}
			rf.Responses++
			for key, yes := range answers {
				t, ok := tallies[recID][key]
				if !ok {
					continue
				}
				if yes {
					t.Yes++
				} else {
					t.No++
				}
			}
		}
	}

	out := make([]model.RecommendationFeedback, 0, len(byID))
	for recID, rf := range byID {
		item, _ := s.catalog.Item(recID)
		for _, q := range item.FeedbackQuestions {
			rf.Questions = append(rf.Questions, *tallies[recID][q.Key])
		}
		out = append(out, *rf)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecommendationID < out[j].RecommendationID
	})
	return out, nil
}
