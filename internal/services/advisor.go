package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/integra/internal/config"
)

// Advisor states, coarse best-to-worst.
const (
	AdvisorThriving   = "thriving"
	AdvisorHolding    = "holding"
	AdvisorStruggling = "struggling"
)

var addictionCleanMilestones = [...]int{7, 14, 30, 60, 90}

var advisorStateEmoji = map[string]string{
	AdvisorThriving:   "✅",
	AdvisorHolding:    "⚠️",
	AdvisorStruggling: "🔴",
}

// Notifier pushes a coaching message to the user's chat channel.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// AdvisorService aggregates quota and streak signals into coaching output.
type AdvisorService struct {
	quotas   *QuotaService
	streaks  *StreakService
	rules    *config.Rules
	notifier Notifier
}

func NewAdvisorService(quotas *QuotaService, streaks *StreakService, rules *config.Rules, notifier Notifier) *AdvisorService {
	return &AdvisorService{quotas: quotas, streaks: streaks, rules: rules, notifier: notifier}
}

// ComputeState derives the coarse advisor state. Quota coaching flags win
// over habit signals; otherwise the at-risk habit count decides.
func (service *AdvisorService) ComputeState(referenceDate time.Time) (string, error) {
	for _, substance := range service.rules.QuotaSubstances() {
		state, err := service.quotas.State(substance, referenceDate)
		if err != nil {
			return "", fmt.Errorf("quota state for %s: %w", substance, err)
		}
		if state != nil && state.CoachingFlag {
			return AdvisorStruggling, nil
		}
	}

	atRiskCount := 0
	for _, habit := range service.rules.Habits {
		state, err := service.streaks.State(habit, referenceDate)
		if err != nil {
			return "", fmt.Errorf("streak state for %s: %w", habit, err)
		}
		if state.AtRisk {
			atRiskCount++
		}
	}

	switch {
	case atRiskCount >= 3:
		return AdvisorStruggling, nil
	case atRiskCount >= 1:
		return AdvisorHolding, nil
	default:
		return AdvisorThriving, nil
	}
}

// ApplyCoachingRules runs the fixed rule table over daily-log answers.
// Rules are order-independent; every matching rule contributes one line.
func ApplyCoachingRules(answers map[string]string, state string) []string {
	messages := make([]string, 0, 4)
	notes := strings.ToLower(answers["notes"])

	sleepHours := parseFloatDefault(answers["sleep_hours"], 8.0)
	brokenDays := parseIntDefault(answers["sleep_broken_days"], 0)
	if sleepHours < 6 || brokenDays >= 2 {
		messages = append(messages, "Cut pomodoros 50% today, prioritize a nap first.")
	}

	mood := strings.ToLower(answers["mood"])
	if mood == "low" || mood == "rough" {
		messages = append(messages, "No study pressure today. Gym if energy allows.")
	}

	if parseIntDefault(answers["days_no_exercise"], 0) >= 3 {
		messages = append(messages, "Push some movement today — even a walk counts.")
	}

	if strings.Contains(notes, "ibs") {
		messages = append(messages, "Bland diet, shorter pomodoros, skip coffee.")
	}

	if parseIntDefault(answers["pomodoros"], 0) > 6 && sleepHours < 6 {
		messages = append(messages, "You're overdriving on low sleep — ease off.")
	}

	if strings.Contains(notes, "freeze") || strings.Contains(notes, "pivot") {
		messages = append(messages, "Switch to an easier task, warm-up first.")
	}

	if strings.Contains(notes, "adhd") || strings.Contains(notes, "scatter") {
		messages = append(messages, "Check Medikinet timing, single-task mode.")
	}

	timeOfDay := strings.ToLower(answers["time_of_day"])
	energy := strings.ToLower(answers["energy"])
	if mood == "low" && timeOfDay == "afternoon" && energy == "low" {
		messages = append(messages, "Shift hard work to morning tomorrow.")
	}

	if parseIntDefault(answers["min_streak_days"], 0) >= 3 || state == AdvisorThriving {
		messages = append(messages, "3+ good days — safe to increase intensity.")
	}

	if strings.Contains(notes, "deadline") {
		messages = append(messages, "Shift priorities to deadline-critical work.")
	}

	return messages
}

// CheckMilestones returns celebration lines for habit streak milestones and
// clean addiction-therapy stretches hit as of referenceDate.
func (service *AdvisorService) CheckMilestones(referenceDate time.Time) ([]string, error) {
	celebrations := make([]string, 0, 2)

	for _, habit := range service.rules.Habits {
		state, err := service.streaks.State(habit, referenceDate)
		if err != nil {
			return nil, fmt.Errorf("streak state for %s: %w", habit, err)
		}
		if hit := CheckMilestone(state.StreakDays); hit != 0 {
			celebrations = append(celebrations, fmt.Sprintf("🎯 Milestone: %d-day %s streak!", hit, habit))
		}
	}

	for _, substance := range service.rules.QuotaSubstances() {
		state, err := service.quotas.State(substance, referenceDate)
		if err != nil {
			return nil, fmt.Errorf("quota state for %s: %w", substance, err)
		}
		if state == nil || state.UnitsUsed != 0 || state.WeekN == 0 {
			continue
		}
		cleanDays := state.WeekN * 7
		for _, milestone := range addictionCleanMilestones {
			if cleanDays == milestone {
				celebrations = append(celebrations, fmt.Sprintf("🏆 %dd clean — %s addiction therapy milestone!", milestone, substance))
			}
		}
	}

	return celebrations, nil
}

// Run executes a full advisor cycle: state, coaching rules, milestones, and
// a single assembled notification.
func (service *AdvisorService) Run(ctx context.Context, answers map[string]string, referenceDate time.Time) (string, error) {
	state, err := service.ComputeState(referenceDate)
	if err != nil {
		return "", err
	}
	coachingLines := ApplyCoachingRules(answers, state)
	milestones, err := service.CheckMilestones(referenceDate)
	if err != nil {
		return "", err
	}

	parts := []string{fmt.Sprintf("*Advisor: %s* %s", strings.ToUpper(state), advisorStateEmoji[state])}
	if len(coachingLines) > 0 {
		parts = append(parts, "")
		for _, line := range coachingLines {
			parts = append(parts, "• "+line)
		}
	}
	if len(milestones) > 0 {
		parts = append(parts, "")
		parts = append(parts, milestones...)
	}

	message := strings.Join(parts, "\n")
	if err := service.notifier.Notify(ctx, message); err != nil {
		return "", fmt.Errorf("notify advisor result: %w", err)
	}
	log.Printf("advisor: cycle complete state=%s rules=%d", state, len(coachingLines))
	return state, nil
}

func parseFloatDefault(raw string, fallback float64) float64 {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func parseIntDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
