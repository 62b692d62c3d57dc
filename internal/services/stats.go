package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/config"
	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/repos"
	"github.com/ainexus/nexus-backend/internal/types"
)

// StatsDelta carries the counter increments of one milestone event.
type StatsDelta struct {
	TutorialsCompleted int
	PromptsSaved       int
	ToolsFavorited     int
}

type StatsService interface {
	// Get returns the stats row for userID, creating it when absent.
	Get(ctx context.Context, userID uuid.UUID) (*types.UserStats, error)
	// Apply adds delta to the counters and recomputes score and level.
	Apply(ctx context.Context, userID uuid.UUID, delta StatsDelta) error
	// Touch records activity at now: last-activity timestamp and streaks.
	Touch(ctx context.Context, userID uuid.UUID, now time.Time) error
	// DeleteByUser removes the row as part of a user cascade.
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type statsService struct {
	db     *gorm.DB
	log    *logger.Logger
	policy config.Policy
	repo   repos.UserStatsRepo
}

func NewStatsService(db *gorm.DB, baseLog *logger.Logger, policy config.Policy, repo repos.UserStatsRepo) StatsService {
	return &statsService{
		db:     db,
		log:    baseLog.With("service", "StatsService"),
		policy: policy,
		repo:   repo,
	}
}

// Score is the derived proficiency score: monotonic in each counter and
// capped. Weights are policy, the qualitative shape is not.
func Score(p config.Policy, tutorialsCompleted, promptsSaved, toolsFavorited int) int {
	score := tutorialsCompleted*p.Scoring.TutorialWeight +
		promptsSaved*p.Scoring.PromptWeight +
		toolsFavorited*p.Scoring.ToolWeight
	if score > p.Scoring.ScoreCap {
		return p.Scoring.ScoreCap
	}
	if score < 0 {
		return 0
	}
	return score
}

// Level maps a score onto 1..LevelTiers with equal-width steps.
func Level(p config.Policy, score int) int {
	tiers := p.Scoring.LevelTiers
	step := p.Scoring.ScoreCap / tiers
	if step <= 0 {
		return 1
	}
	level := score/step + 1
	if level > tiers {
		level = tiers
	}
	if level < 1 {
		level = 1
	}
	return level
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func daysBetween(a, b time.Time) int {
	au := time.Date(a.UTC().Year(), a.UTC().Month(), a.UTC().Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.UTC().Year(), b.UTC().Month(), b.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// AdvanceStreak computes the streak counters after an activity at now.
// Pure: given (lastActivity, now, current, longest) it is fully determined.
//   - first ever activity, or a gap of more than one calendar day: current
//     resets to 1
//   - same calendar day: current unchanged (but at least 1)
//   - the next calendar day: current + 1
//
// longest is the running maximum of current.
func AdvanceStreak(lastActivity *time.Time, now time.Time, current, longest int) (int, int) {
	next := 1
	if lastActivity != nil {
		switch {
		case sameDay(*lastActivity, now):
			next = current
			if next < 1 {
				next = 1
			}
		case daysBetween(*lastActivity, now) == 1:
			next = current + 1
		default:
			next = 1
		}
	}
	if next > longest {
		longest = next
	}
	return next, longest
}

func (s *statsService) Get(ctx context.Context, userID uuid.UUID) (*types.UserStats, error) {
	var out *types.UserStats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.ensure(ctx, tx, userID, false)
		if err != nil {
			return err
		}
		out = row
		return nil
	})
	if err != nil {
		s.log.Error("get stats failed", "user_id", userID, "error", err)
		return nil, err
	}
	return out, nil
}

// ensure lazily creates the 1:1 stats row; a missing aggregate row is never
// surfaced as not-found. Callers that modify the row pass lock so the read
// holds a row lock for the rest of the transaction.
func (s *statsService) ensure(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lock bool) (*types.UserStats, error) {
	get := s.repo.GetByUserID
	if lock {
		get = s.repo.GetByUserIDForUpdate
	}
	row, err := get(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return row, nil
	}
	row = &types.UserStats{
		ID:        uuid.New(),
		UserID:    userID,
		Level:     1,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, tx, row); err != nil {
		if isDuplicate(err) {
			return get(ctx, tx, userID)
		}
		return nil, err
	}
	return row, nil
}

func (s *statsService) Apply(ctx context.Context, userID uuid.UUID, delta StatsDelta) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.ensure(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		row.TutorialsCompleted += delta.TutorialsCompleted
		row.PromptsSaved += delta.PromptsSaved
		row.ToolsFavorited += delta.ToolsFavorited
		row.TotalScore = Score(s.policy, row.TutorialsCompleted, row.PromptsSaved, row.ToolsFavorited)
		row.Level = Level(s.policy, row.TotalScore)
		row.UpdatedAt = time.Now().UTC()
		return s.repo.Save(ctx, tx, row)
	})
	if err != nil {
		s.log.Error("apply stats delta failed", "user_id", userID, "error", err)
	}
	return err
}

func (s *statsService) Touch(ctx context.Context, userID uuid.UUID, now time.Time) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.ensure(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		current, longest := AdvanceStreak(row.LastActivityDate, now, row.CurrentStreak, row.LongestStreak)
		row.CurrentStreak = current
		row.LongestStreak = longest
		ts := now.UTC()
		row.LastActivityDate = &ts
		row.UpdatedAt = ts
		return s.repo.Save(ctx, tx, row)
	})
	if err != nil {
		s.log.Error("touch stats failed", "user_id", userID, "error", err)
	}
	return err
}

func (s *statsService) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return s.repo.DeleteByUser(ctx, tx, userID)
}
