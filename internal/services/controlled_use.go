package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/integra/internal/config"
	"github.com/terraincognita07/integra/internal/models"
)

// EvaluateControlledUse checks one new intake event against the three
// controlled-use rules. recent must hold the caller-supplied window of
// earlier same-substance records; the evaluator never queries storage
// itself.
//
// Returns the record (flags frozen at evaluation time), whether coaching is
// needed, and the coaching message ("" when clean). A substance without a
// configured rule is stored plain: no flags, no coaching.
func EvaluateControlledUse(
	substance string,
	amount string,
	unit string,
	timestamp time.Time,
	recent []models.Record,
	location *time.Location,
	rules *config.Rules,
) (models.Record, bool, string) {
	rule, ok := rules.ControlledUseRuleFor(substance)
	if !ok {
		record := models.NewControlledUseRecord(substance, amount, unit, false, false, false, "", "")
		return record, false, ""
	}

	workHoursViolation := isWorkHours(timestamp, location, rule.WorkHoursStart, rule.WorkHoursEnd)
	cooldownViolation := cooldownViolated(timestamp, recent, rule.CooldownHours)

	// Ceiling check: today's existing total + the new amount. An
	// unparseable new amount counts as 0, so it can never trip the ceiling
	// by itself (leniency kept from the reference behavior).
	todayTotal := sameDayTotal(timestamp, location, recent)
	newAmount, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		newAmount = 0.0
	}
	dailyCeilingExceeded := todayTotal+newAmount > rule.DailyCeiling

	record := models.NewControlledUseRecord(
		substance,
		amount,
		unit,
		workHoursViolation,
		cooldownViolation,
		dailyCeilingExceeded,
		rule.Ruliade,
		timestamp.Format(time.RFC3339),
	)

	coachingNeeded := workHoursViolation || cooldownViolation || dailyCeilingExceeded
	if !coachingNeeded {
		return record, false, ""
	}

	violations := make([]string, 0, 3)
	if workHoursViolation {
		violations = append(violations, fmt.Sprintf("work hours (%02d:00-%02d:00)", rule.WorkHoursStart, rule.WorkHoursEnd))
	}
	if cooldownViolation {
		violations = append(violations, fmt.Sprintf("cooldown (%dh not elapsed)", rule.CooldownHours))
	}
	if dailyCeilingExceeded {
		violations = append(violations, fmt.Sprintf("daily ceiling (%g units)", rule.DailyCeiling))
	}
	message := fmt.Sprintf(
		"Controlled-use rule violation for %s: %s. Rules: %s",
		substance,
		strings.Join(violations, ", "),
		rule.Ruliade,
	)

	return record, true, message
}

// isWorkHours reports whether ts falls inside [start, end) local hours.
func isWorkHours(ts time.Time, location *time.Location, start int, end int) bool {
	if location == nil {
		location = time.UTC
	}
	hour := ts.In(location).Hour()
	return start <= hour && hour < end
}

// cooldownViolated reports whether any recent record is newer than
// ts minus the cooldown window. Records with unparseable timestamps are
// ignored.
func cooldownViolated(ts time.Time, recent []models.Record, cooldownHours int) bool {
	cutoff := ts.Add(-time.Duration(cooldownHours) * time.Hour)
	for _, record := range recent {
		recordTime, ok := record.Timestamp()
		if !ok {
			continue
		}
		if !recordTime.Before(cutoff) {
			return true
		}
	}
	return false
}

// sameDayTotal sums numeric amounts of recent records sharing ts's local
// calendar date. Non-numeric amounts contribute 0.
func sameDayTotal(ts time.Time, location *time.Location, recent []models.Record) float64 {
	if location == nil {
		location = time.UTC
	}
	localDate := LocalDate(ts, location)
	total := 0.0
	for _, record := range recent {
		recordTime, ok := record.Timestamp()
		if !ok {
			continue
		}
		if !LocalDate(recordTime, location).Equal(localDate) {
			continue
		}
		if value, err := strconv.ParseFloat(record.String("amount"), 64); err == nil {
			total += value
		}
	}
	return total
}
