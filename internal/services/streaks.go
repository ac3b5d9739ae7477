package services

import (
	"sort"
	"time"

	"github.com/terraincognita07/integra/internal/lake"
	"github.com/terraincognita07/integra/internal/models"
)

const (
	maxGraceDays  = 3
	maxMultiplier = 1.5
)

var streakMilestones = [...]int{7, 30, 50, 100}

// StreakState is the derived streak position for one habit. Recomputed
// fresh on every query, never persisted.
type StreakState struct {
	Habit            string  `json:"habit"`
	StreakDays       int     `json:"streak_days"`
	Multiplier       float64 `json:"multiplier"`
	GraceTotalEarned int     `json:"grace_total_earned"`
	GraceConsumed    int     `json:"grace_consumed"`
	GraceAvailable   int     `json:"grace_available"`
	AtRisk           bool    `json:"at_risk"`
	// MilestoneHit is 0 unless the streak sits exactly on a milestone.
	MilestoneHit int `json:"milestone_hit"`
}

// ComputeMultiplier returns min(1.0 + 0.01*streakDays, 1.5).
func ComputeMultiplier(streakDays int) float64 {
	multiplier := 1.0 + 0.01*float64(streakDays)
	if multiplier > maxMultiplier {
		return maxMultiplier
	}
	return multiplier
}

// CheckMilestone returns the milestone value when streakDays sits exactly
// on one, else 0.
func CheckMilestone(streakDays int) int {
	for _, milestone := range streakMilestones {
		if streakDays == milestone {
			return milestone
		}
	}
	return 0
}

// CompletionDates extracts deduplicated calendar dates from habit records,
// sorted descending. Records with unparseable timestamps are skipped.
func CompletionDates(records []models.Record) []time.Time {
	seen := make(map[time.Time]struct{}, len(records))
	for _, record := range records {
		recordTime, ok := record.Timestamp()
		if !ok {
			continue
		}
		seen[CivilDate(recordTime)] = struct{}{}
	}

	dates := make([]time.Time, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates
}

// countBareStreak counts consecutive days backwards from start with no
// grace applied.
func countBareStreak(dateSet map[time.Time]struct{}, start time.Time) int {
	streak := 0
	cursor := start
	for {
		if _, ok := dateSet[cursor]; !ok {
			return streak
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
}

// computeStreakWithGrace walks backwards from start, spending grace on
// isolated one-day gaps. A gap longer than one day always ends the streak.
func computeStreakWithGrace(dateSet map[time.Time]struct{}, start time.Time, graceBudget int) (int, int) {
	streak := 0
	graceConsumed := 0
	cursor := start

	for {
		if _, ok := dateSet[cursor]; ok {
			streak++
			cursor = cursor.AddDate(0, 0, -1)
			continue
		}
		dayBefore := cursor.AddDate(0, 0, -1)
		if _, bridged := dateSet[dayBefore]; graceConsumed < graceBudget && bridged {
			graceConsumed++
			cursor = dayBefore
			continue
		}
		return streak, graceConsumed
	}
}

// BuildStreakState derives the streak state for a habit from its full
// completion history as of referenceDate.
//
// The grace budget is seeded from the bare streak ending at the most recent
// record, so grace earned by a finished run is still spendable when the
// reference date itself has no record yet (checking mid-morning before the
// habit is logged).
func BuildStreakState(habit string, records []models.Record, referenceDate time.Time) StreakState {
	sortedDates := CompletionDates(records)
	state := StreakState{Habit: habit, Multiplier: ComputeMultiplier(0)}
	if len(sortedDates) == 0 {
		return state
	}

	dateSet := make(map[time.Time]struct{}, len(sortedDates))
	for _, date := range sortedDates {
		dateSet[date] = struct{}{}
	}

	reference := CivilDate(referenceDate)
	_, completedToday := dateSet[reference]

	latest := sortedDates[0]
	bareSeed := countBareStreak(dateSet, latest)
	graceBudget := bareSeed / 7
	if graceBudget > maxGraceDays {
		graceBudget = maxGraceDays
	}

	streak, graceConsumed := computeStreakWithGrace(dateSet, reference, graceBudget)

	graceTotalEarned := streak / 7
	graceAvailable := graceTotalEarned - graceConsumed
	if graceAvailable < 0 {
		graceAvailable = 0
	}
	if graceAvailable > maxGraceDays {
		graceAvailable = maxGraceDays
	}

	state.StreakDays = streak
	state.Multiplier = ComputeMultiplier(streak)
	state.GraceTotalEarned = graceTotalEarned
	state.GraceConsumed = graceConsumed
	state.GraceAvailable = graceAvailable
	state.AtRisk = streak >= 7 && !completedToday
	state.MilestoneHit = CheckMilestone(streak)
	return state
}

// StreakService reads habit completions from the lake and derives streak
// states.
type StreakService struct {
	store *lake.Store
}

func NewStreakService(store *lake.Store) *StreakService {
	return &StreakService{store: store}
}

// State derives the streak state for a habit as of referenceDate.
func (service *StreakService) State(habit string, referenceDate time.Time) (StreakState, error) {
	records, err := service.store.Query("diary", map[string]string{"habit": habit})
	if err != nil {
		return StreakState{}, err
	}
	return BuildStreakState(habit, records, referenceDate), nil
}
