package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/mealtrack/backend/internal/models"
	"github.com/pageza/mealtrack/backend/internal/nutrition"
	"github.com/pageza/mealtrack/backend/internal/types"
)

// Period is the span a statistics summary covers.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates p, defaulting to week when empty.
func ParsePeriod(p string) (Period, error) {
	switch Period(p) {
	case "":
		return PeriodWeek, nil
	case PeriodDay, PeriodWeek, PeriodMonth:
		return Period(p), nil
	}
	return "", ErrInvalidPeriod
}

// Range returns the first and last calendar day of the period containing
// anchor. Weeks start on Monday.
func (p Period) Range(anchor time.Time) (time.Time, time.Time) {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		from := day.AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 6)
	case PeriodMonth:
		from := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, -1)
	default:
		return day, day
	}
}

const statsKeyPrefix = "stats:"

// StatsService aggregates logged meals over day, week and month periods.
type StatsService struct {
	db    *gorm.DB
	cache *redis.Client
	ttl   time.Duration
	log   logrus.FieldLogger
	now   func() time.Time
}

var _ IStatsService = (*StatsService)(nil)

// NewStatsService creates a StatsService. cache may be nil.
func NewStatsService(db *gorm.DB, cache *redis.Client, ttl time.Duration, log logrus.FieldLogger) *StatsService {
	return &StatsService{db: db, cache: cache, ttl: ttl, log: log, now: time.Now}
}

// statsKey includes today because the streak depends on it.
func statsKey(userID uuid.UUID, period Period, from time.Time, target int, today time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%s", statsKeyPrefix, userID, period, from.Format(models.DateLayout), target, today.Format(models.DateLayout))
}

func (s *StatsService) Summary(ctx context.Context, userID uuid.UUID, period Period, anchor time.Time, target int) (*types.StatsSummary, error) {
	if target <= 0 {
		target = models.DefaultTargetCalories
	}
	now := s.now()
	from, to := period.Range(anchor)
	key := statsKey(userID, period, from, target, now)

	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from.Format(models.DateLayout), to.Format(models.DateLayout)).
		Preload("MealItems").
		Preload("MealItems.Food").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("query meals for stats: %w", err)
	}

	summary := summarize(meals, period, from, to, target, now)
	s.toCache(ctx, key, summary)
	return summary, nil
}

func summarize(meals []models.Meal, period Period, from, to time.Time, target int, now time.Time) *types.StatsSummary {
	byDate := make(map[string][]models.Meal)
	for _, m := range meals {
		byDate[m.Date] = append(byDate[m.Date], m)
	}

	summary := &types.StatsSummary{
		Period: string(period),
		From:   from.Format(models.DateLayout),
		To:     to.Format(models.DateLayout),
		Target: target,
	}

	best := 0
	var total nutrition.Macros
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := d.Format(models.DateLayout)
		day := nutrition.Totals(byDate[date])
		summary.Days = append(summary.Days, types.DayStat{
			Date:         date,
			Totals:       day,
			GoalProgress: nutrition.GoalProgress(day.Calories, target),
		})
		total = total.Add(day)
		if day.Calories > 0 {
			summary.LoggedDays++
			if day.Calories > best {
				best = day.Calories
				summary.MostActiveDay = date
			}
		}
	}

	summary.Totals = total.Rounded()
	if summary.LoggedDays > 0 {
		summary.AverageCalories = total.Calories / summary.LoggedDays
	}
	summary.GoalProgress = nutrition.GoalProgress(summary.AverageCalories, target)
	summary.MacroSplit = nutrition.MacroSplit(total.Protein, total.Carbs, total.Fat)
	summary.StreakDays = streak(summary.Days, now)
	return summary
}

// streak counts consecutive logged days ending at today, or at the end of
// the period when it lies in the past.
func streak(days []types.DayStat, now time.Time) int {
	today := now.Format(models.DateLayout)
	n := 0
	counting := false
	for i := len(days) - 1; i >= 0; i-- {
		if !counting {
			if days[i].Date > today {
				continue
			}
			counting = true
		}
		if days[i].Totals.Calories <= 0 {
			break
		}
		n++
	}
	return n
}

func (s *StatsService) fromCache(ctx context.Context, key string) (*types.StatsSummary, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithError(err).WithField("key", key).Warn("stats cache read failed")
		}
		return nil, false
	}
	var summary types.StatsSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

func (s *StatsService) toCache(ctx context.Context, key string, summary *types.StatsSummary) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("stats cache write failed")
	}
}

// Invalidate drops every cached summary for the user.
func (s *StatsService) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	iter := s.cache.Scan(ctx, 0, fmt.Sprintf("%s%s:*", statsKeyPrefix, userID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan stats cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Del(ctx, keys...).Err()
}
