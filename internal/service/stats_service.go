package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

const statsCachePrefix = "stats:"

type studentCounter interface {
	Count(ctx context.Context) (int, error)
}

type attendanceCounter interface {
	CountByStatusOn(ctx context.Context, day models.Date) ([]models.StatusCount, error)
}

// StatsConfig tunes the stats service.
type StatsConfig struct {
	Location *time.Location
	CacheTTL time.Duration
	Metrics  *MetricsService
}

// StatsService computes the teacher dashboard summary.
type StatsService struct {
	students   studentCounter
	attendance attendanceCounter
	cache      *CacheService
	cfg        StatsConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewStatsService constructs a StatsService. A nil cache disables caching.
func NewStatsService(students studentCounter, attendance attendanceCounter, cache *CacheService, cfg StatsConfig, logger *zap.Logger) *StatsService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		students:   students,
		attendance: attendance,
		cache:      cache,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Today returns the current calendar day in the configured school timezone.
func (s *StatsService) Today() models.Date {
	return models.NewDate(s.now().In(s.cfg.Location))
}

// Compute returns the roster size and today's attendance grouped by status.
// Statuses with no rows today are omitted. The boolean reports a cache hit.
func (s *StatsService) Compute(ctx context.Context, actor *models.User) (*models.Stats, bool, error) {
	if err := Authorize(actor, OpViewStats, 0); err != nil {
		return nil, false, err
	}

	today := s.Today()
	key := statsCacheKey(today)

	var cached models.Stats
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	total, err := s.students.Count(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to count students")
	}
	counts, err := s.attendance.CountByStatusOn(ctx, today)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to count attendance")
	}
	s.cfg.Metrics.ObserveDBQuery("stats", time.Since(start))
	if counts == nil {
		counts = []models.StatusCount{}
	}

	stats := &models.Stats{TotalStudents: total, AttendanceToday: counts}
	_ = s.cache.Set(ctx, key, stats, s.cfg.CacheTTL)
	return stats, false, nil
}

// Invalidate drops the cached summary for today.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s == nil || !s.cache.Enabled() {
		return
	}
	_ = s.cache.Invalidate(ctx, statsCacheKey(s.Today()))
}

func statsCacheKey(day models.Date) string {
	return statsCachePrefix + day.String()
}
