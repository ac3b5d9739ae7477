package models

import "time"

// Substance categories. Free-text substance names are matched
// case-insensitively against the rules configuration.
const (
	CategorySupplement       = "supplement"
	CategoryMedication       = "medication"
	CategoryAddictionTherapy = "addiction-therapy"
	CategoryControlledUse    = "controlled-use"
)

// Diary record types.
const (
	DiaryViolation = "violation"
	DiaryDaily     = "daily"
)

// Penance severity tiers.
const (
	SeverityMinor     = "minor"
	SeverityStandard  = "standard"
	SeverityEscalated = "escalated"
)

// Record is a single lake entry. Records are append-only: an update is a new
// record, never a mutation of an existing one.
type Record map[string]any

// String returns the value under key if it is a string, else "".
func (r Record) String(key string) string {
	value, _ := r[key].(string)
	return value
}

// Timestamp parses the record's timestamp field. ok is false when the field
// is missing, not a string, or unparseable.
func (r Record) Timestamp() (time.Time, bool) {
	return ParseTimestamp(r.String("timestamp"))
}

// Date truncates the record's timestamp to a calendar date in location.
func (r Record) Date(location *time.Location) (time.Time, bool) {
	parsed, ok := r.Timestamp()
	if !ok {
		return time.Time{}, false
	}
	return DateOnly(parsed.In(location)), true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 timestamps with or without offsets and
// bare dates. Naive values are interpreted as UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// DateOnly drops the clock portion of value, keeping its location.
func DateOnly(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, value.Location())
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func orNow(timestamp string) string {
	if timestamp == "" {
		return nowTimestamp()
	}
	return timestamp
}

// NewSupplementRecord describes one supplement or medication in the stack.
func NewSupplementRecord(name, dose, unit, frequency, timeOfDay, category, notes string) Record {
	if frequency == "" {
		frequency = "daily"
	}
	if timeOfDay == "" {
		timeOfDay = "morning"
	}
	if category == "" {
		category = CategorySupplement
	}
	return Record{
		"name":        name,
		"dose":        dose,
		"unit":        unit,
		"frequency":   frequency,
		"time_of_day": timeOfDay,
		"category":    category,
		"notes":       notes,
	}
}

// NewIntakeRecord logs a single substance intake event.
func NewIntakeRecord(substance, amount, unit, category, notes, timestamp string) Record {
	if category == "" {
		category = CategorySupplement
	}
	return Record{
		"substance": substance,
		"amount":    amount,
		"unit":      unit,
		"timestamp": orNow(timestamp),
		"category":  category,
		"notes":     notes,
	}
}

// NewDietaryRecord logs a meal.
func NewDietaryRecord(mealType, items, notes, timestamp string) Record {
	return Record{
		"meal_type": mealType,
		"items":     items,
		"timestamp": orNow(timestamp),
		"notes":     notes,
	}
}

// NewAddictionTherapyRecord logs intake of a quota-tracked substance.
func NewAddictionTherapyRecord(substance, amount, unit, dailyQuota, notes, timestamp string) Record {
	return Record{
		"substance":   substance,
		"amount":      amount,
		"unit":        unit,
		"timestamp":   orNow(timestamp),
		"daily_quota": dailyQuota,
		"notes":       notes,
	}
}

// NewControlledUseRecord logs a controlled-use intake with violation flags.
// The flags are computed once, at creation, against the history that existed
// immediately prior; they are never recomputed retroactively.
func NewControlledUseRecord(substance, amount, unit string, workHours, cooldown, ceiling bool, ruliade, timestamp string) Record {
	return Record{
		"substance":              substance,
		"amount":                 amount,
		"unit":                   unit,
		"timestamp":              orNow(timestamp),
		"category":               CategoryControlledUse,
		"work_hours_violation":   workHours,
		"cooldown_violation":     cooldown,
		"daily_ceiling_exceeded": ceiling,
		"ruliade":                ruliade,
	}
}

// NewDiaryRecord stores a structured reflection (violation diary or daily log).
func NewDiaryRecord(diaryType, severity, substance string, questionsAsked int, answers string, penanceCredit float64, timestamp string) Record {
	return Record{
		"diary_type":      diaryType,
		"severity":        severity,
		"substance":       substance,
		"questions_asked": questionsAsked,
		"answers":         answers,
		"penance_credit":  penanceCredit,
		"timestamp":       orNow(timestamp),
	}
}

// NewTriggerContext captures a HALT self-check taken before a craving.
func NewTriggerContext(substance string, hungry, angry, lonely, tired bool, cravingIntensity int, situationNotes, timestamp string) Record {
	return Record{
		"substance":         substance,
		"hungry":            hungry,
		"angry":             angry,
		"lonely":            lonely,
		"tired":             tired,
		"craving_intensity": cravingIntensity,
		"situation_notes":   situationNotes,
		"timestamp":         orNow(timestamp),
	}
}
