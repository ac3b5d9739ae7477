package services

import (
	"testing"
	"time"

	"github.com/terraincognita07/integra/internal/models"
)

var streakReference = time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

// habitRecords builds one diary record per daysAgo offset from the
// reference date.
func habitRecords(daysAgo ...int) []models.Record {
	records := make([]models.Record, 0, len(daysAgo))
	for _, offset := range daysAgo {
		timestamp := streakReference.AddDate(0, 0, -offset).Format(time.RFC3339)
		records = append(records, models.Record{"habit": "exercise", "timestamp": timestamp})
	}
	return records
}

func TestComputeMultiplier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days int
		want float64
	}{
		{days: 0, want: 1.0},
		{days: 7, want: 1.07},
		{days: 30, want: 1.3},
		{days: 50, want: 1.5},
		{days: 100, want: 1.5},
	}

	for _, test := range tests {
		if got := ComputeMultiplier(test.days); got != test.want {
			t.Fatalf("ComputeMultiplier(%d) = %g, want %g", test.days, got, test.want)
		}
	}
}

func TestCheckMilestone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days int
		want int
	}{
		{days: 6, want: 0},
		{days: 7, want: 7},
		{days: 8, want: 0},
		{days: 30, want: 30},
		{days: 50, want: 50},
		{days: 100, want: 100},
		{days: 101, want: 0},
	}

	for _, test := range tests {
		if got := CheckMilestone(test.days); got != test.want {
			t.Fatalf("CheckMilestone(%d) = %d, want %d", test.days, got, test.want)
		}
	}
}

func TestCompletionDatesDeduplicatesAndSortsDescending(t *testing.T) {
	t.Parallel()

	records := []models.Record{
		{"timestamp": "2025-06-14T08:00:00Z"},
		{"timestamp": "2025-06-16T07:00:00Z"},
		{"timestamp": "2025-06-16T21:00:00Z"},
		{"timestamp": "broken"},
		{"timestamp": "2025-06-15T12:00:00Z"},
	}

	dates := CompletionDates(records)
	if len(dates) != 3 {
		t.Fatalf("len(dates) = %d, want 3", len(dates))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].After(dates[i]) {
			t.Fatalf("dates not descending: %v before %v", dates[i-1], dates[i])
		}
	}
}

func TestBuildStreakStateEmptyHistory(t *testing.T) {
	t.Parallel()

	state := BuildStreakState("exercise", nil, streakReference)
	if state.StreakDays != 0 {
		t.Fatalf("StreakDays = %d, want 0", state.StreakDays)
	}
	if state.Multiplier != 1.0 {
		t.Fatalf("Multiplier = %g, want 1.0", state.Multiplier)
	}
	if state.AtRisk {
		t.Fatal("an empty history is not at risk")
	}
}

func TestBuildStreakStateSevenDayStreak(t *testing.T) {
	t.Parallel()

	state := BuildStreakState("exercise", habitRecords(0, 1, 2, 3, 4, 5, 6), streakReference)

	if state.StreakDays != 7 {
		t.Fatalf("StreakDays = %d, want 7", state.StreakDays)
	}
	if state.Multiplier != 1.07 {
		t.Fatalf("Multiplier = %g, want 1.07", state.Multiplier)
	}
	if state.MilestoneHit != 7 {
		t.Fatalf("MilestoneHit = %d, want 7", state.MilestoneHit)
	}
	if state.GraceTotalEarned != 1 {
		t.Fatalf("GraceTotalEarned = %d, want 1", state.GraceTotalEarned)
	}
	if state.AtRisk {
		t.Fatal("a streak completed today is not at risk")
	}
}

func TestBuildStreakStateBridgesSingleGapWithGrace(t *testing.T) {
	t.Parallel()

	// Seven days ending today earn one grace day, spent bridging the gap at
	// offset 7 to reach the earlier run.
	records := habitRecords(0, 1, 2, 3, 4, 5, 6, 8, 9, 10)
	state := BuildStreakState("exercise", records, streakReference)

	if state.StreakDays != 10 {
		t.Fatalf("StreakDays = %d, want 10", state.StreakDays)
	}
	if state.GraceConsumed != 1 {
		t.Fatalf("GraceConsumed = %d, want 1", state.GraceConsumed)
	}
}

func TestBuildStreakStateTwoDayGapEndsStreak(t *testing.T) {
	t.Parallel()

	records := habitRecords(0, 1, 2, 3, 4, 5, 6, 9, 10, 11)
	state := BuildStreakState("exercise", records, streakReference)

	if state.StreakDays != 7 {
		t.Fatalf("StreakDays = %d, want 7", state.StreakDays)
	}
	if state.GraceConsumed != 0 {
		t.Fatalf("GraceConsumed = %d, want 0", state.GraceConsumed)
	}
}

func TestBuildStreakStateNoGraceWithoutSevenDaySeed(t *testing.T) {
	t.Parallel()

	// Three days ending today earn no grace, so the gap at offset 3 ends
	// the streak even though more history follows.
	records := habitRecords(0, 1, 2, 4, 5, 6)
	state := BuildStreakState("exercise", records, streakReference)

	if state.StreakDays != 3 {
		t.Fatalf("StreakDays = %d, want 3", state.StreakDays)
	}
	if state.GraceConsumed != 0 {
		t.Fatalf("GraceConsumed = %d, want 0", state.GraceConsumed)
	}
}

func TestBuildStreakStateMissingTodaySpendsGrace(t *testing.T) {
	t.Parallel()

	// Checking mid-morning before the habit is logged: the seven-day run
	// ending yesterday seeds the grace that bridges today.
	records := habitRecords(1, 2, 3, 4, 5, 6, 7)
	state := BuildStreakState("exercise", records, streakReference)

	if state.StreakDays != 7 {
		t.Fatalf("StreakDays = %d, want 7", state.StreakDays)
	}
	if state.GraceConsumed != 1 {
		t.Fatalf("GraceConsumed = %d, want 1", state.GraceConsumed)
	}
	if !state.AtRisk {
		t.Fatal("a 7+ day streak with no record today must be at risk")
	}
}

func TestBuildStreakStateIsIdempotent(t *testing.T) {
	t.Parallel()

	records := habitRecords(1, 2, 3, 4, 5, 6, 7)
	first := BuildStreakState("exercise", records, streakReference)
	second := BuildStreakState("exercise", records, streakReference)

	if first != second {
		t.Fatalf("repeated evaluation diverged: %+v vs %+v", first, second)
	}
}

func TestBuildStreakStateGraceBudgetIsCapped(t *testing.T) {
	t.Parallel()

	// A long run earns at most three grace days; a fourth gap ends the
	// streak.
	daysAgo := make([]int, 0, 40)
	for offset := 0; offset <= 40; offset++ {
		switch offset {
		case 30, 32, 34, 36:
			continue
		default:
			daysAgo = append(daysAgo, offset)
		}
	}
	state := BuildStreakState("exercise", habitRecords(daysAgo...), streakReference)

	if state.GraceConsumed != 3 {
		t.Fatalf("GraceConsumed = %d, want 3", state.GraceConsumed)
	}
	// Days 0-29 plus the bridged 31, 33 and 35.
	if state.StreakDays != 33 {
		t.Fatalf("StreakDays = %d, want 33", state.StreakDays)
	}
}
