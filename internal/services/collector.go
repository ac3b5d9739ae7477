package services

import (
	"errors"
	"log"
	"time"

	"github.com/terraincognita07/integra/internal/config"
	"github.com/terraincognita07/integra/internal/lake"
	"github.com/terraincognita07/integra/internal/models"
)

var (
	ErrMissingSubstance = errors.New("substance and amount are required")
	ErrMissingMeal      = errors.New("meal_type and items are required")
	ErrMissingName      = errors.New("name and dose are required")
)

// IntakeResult reports what a LogIntake call stored and whether coaching
// fired.
type IntakeResult struct {
	Record          models.Record
	Violations      []string
	CoachingNeeded  bool
	CoachingMessage string
}

// CollectorService validates collection input, builds records, and appends
// them to the lake. It is the Go rendition of the original tool handlers.
type CollectorService struct {
	store    *lake.Store
	rules    *config.Rules
	location *time.Location
}

func NewCollectorService(store *lake.Store, rules *config.Rules, location *time.Location) *CollectorService {
	return &CollectorService{store: store, rules: rules, location: location}
}

// LogIntake logs one substance intake event under the intake category.
//
// Controlled-use substances are evaluated against their rules first, with
// violation flags frozen onto the stored record. Addiction-therapy
// substances get a quota-carrying record. Everything else is stored plain.
func (service *CollectorService) LogIntake(substance, amount, unit, category, notes, timestamp string) (*IntakeResult, error) {
	if substance == "" || amount == "" {
		return nil, ErrMissingSubstance
	}

	switch category {
	case models.CategoryAddictionTherapy:
		record := models.NewAddictionTherapyRecord(substance, amount, unit, "", notes, timestamp)
		if err := service.store.Append("intake", record); err != nil {
			return nil, err
		}
		log.Printf("collector: logged intake %s %s%s", substance, amount, unit)
		return &IntakeResult{Record: record}, nil

	case models.CategoryControlledUse:
		return service.logControlledUse(substance, amount, unit, timestamp)

	default:
		record := models.NewIntakeRecord(substance, amount, unit, category, notes, timestamp)
		if err := service.store.Append("intake", record); err != nil {
			return nil, err
		}
		log.Printf("collector: logged intake %s %s%s", substance, amount, unit)
		return &IntakeResult{Record: record}, nil
	}
}

func (service *CollectorService) logControlledUse(substance, amount, unit, timestamp string) (*IntakeResult, error) {
	recent, err := service.store.Query("intake", map[string]string{"substance": substance})
	if err != nil {
		return nil, err
	}

	eventTime, ok := models.ParseTimestamp(timestamp)
	if !ok {
		eventTime = time.Now().In(service.location)
	}

	record, coachingNeeded, message := EvaluateControlledUse(
		substance, amount, unit, eventTime, recent, service.location, service.rules,
	)
	if err := service.store.Append("intake", record); err != nil {
		return nil, err
	}

	violations := make([]string, 0, 3)
	for _, flag := range []string{"work_hours_violation", "cooldown_violation", "daily_ceiling_exceeded"} {
		if value, _ := record[flag].(bool); value {
			violations = append(violations, flag)
		}
	}

	if coachingNeeded && message != "" {
		log.Printf("collector: controlled-use coaching needed: %s", message)
	}
	log.Printf("collector: logged controlled-use intake %s %s%s", substance, amount, unit)

	return &IntakeResult{
		Record:          record,
		Violations:      violations,
		CoachingNeeded:  coachingNeeded,
		CoachingMessage: message,
	}, nil
}

// CollectSupplement stores one supplement/medication stack entry.
func (service *CollectorService) CollectSupplement(name, dose, unit, frequency, timeOfDay, category, notes string) (models.Record, error) {
	if name == "" || dose == "" {
		return nil, ErrMissingName
	}
	record := models.NewSupplementRecord(name, dose, unit, frequency, timeOfDay, category, notes)
	if err := service.store.Append("supplements", record); err != nil {
		return nil, err
	}
	log.Printf("collector: stored supplement %s %s%s", name, dose, unit)
	return record, nil
}

// LogMeal stores one dietary entry.
func (service *CollectorService) LogMeal(mealType, items, notes, timestamp string) (models.Record, error) {
	if mealType == "" || items == "" {
		return nil, ErrMissingMeal
	}
	record := models.NewDietaryRecord(mealType, items, notes, timestamp)
	if err := service.store.Append("dietary", record); err != nil {
		return nil, err
	}
	log.Printf("collector: logged meal %s", mealType)
	return record, nil
}

// CollectDiary stores an on-demand diary entry built from free-form
// answers. The habit field, when present, feeds streak tracking.
func (service *CollectorService) CollectDiary(answers map[string]string) (models.Record, error) {
	timestamp := answers["timestamp"]
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	record := models.Record{
		"diary_type":      "on_demand",
		"severity":        "none",
		"substance":       answers["substance"],
		"questions_asked": len(answers),
		"timestamp":       timestamp,
	}
	for key, value := range answers {
		if _, reserved := record[key]; !reserved {
			record[key] = value
		}
	}
	if err := service.store.Append("diary", record); err != nil {
		return nil, err
	}
	log.Printf("collector: stored on-demand diary entry (%d answers)", len(answers))
	return record, nil
}

// Query exposes lake queries with exact-match filters.
func (service *CollectorService) Query(category string, filters map[string]string) ([]models.Record, error) {
	return service.store.Query(category, filters)
}
