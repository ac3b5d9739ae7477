package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/terraincognita07/integra/internal/services"
)

// Typed inputs, one variant per tool.

type LogIntakeInput struct {
	Substance string `json:"substance"`
	Amount    string `json:"amount"`
	Unit      string `json:"unit"`
	Category  string `json:"category"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
}

type CollectSupplementInput struct {
	Name      string `json:"name"`
	Dose      string `json:"dose"`
	Unit      string `json:"unit"`
	Frequency string `json:"frequency"`
	TimeOfDay string `json:"time_of_day"`
	Category  string `json:"category"`
	Notes     string `json:"notes"`
}

type LogMealInput struct {
	MealType  string `json:"meal_type"`
	Items     string `json:"items"`
	Notes     string `json:"notes"`
	Timestamp string `json:"timestamp"`
}

type CollectDiaryInput struct {
	Answers map[string]string `json:"answers"`
}

type QueryInput struct {
	Category string            `json:"category"`
	Filters  map[string]string `json:"filters"`
}

type TriggerPenanceInput struct {
	Substance            string            `json:"substance"`
	UnitsOver            float64           `json:"units_over"`
	RelapseCountThisWeek int               `json:"relapse_count_this_week"`
	Answers              map[string]string `json:"answers"`
}

type HaltCheckInput struct {
	Substance string            `json:"substance"`
	Answers   map[string]string `json:"answers"`
}

type RunAdvisorInput struct {
	Answers map[string]string `json:"answers"`
}

// Deps are the services the default tool set dispatches against.
type Deps struct {
	Collector *services.CollectorService
	Penance   *services.PenanceService
	Advisor   *services.AdvisorService
	Now       func() time.Time
}

// DefaultRegistry wires the standard tool set. Penance runs gated behind
// HIL confirmation, matching its escalation semantics at the dispatch
// layer as well.
func DefaultRegistry(deps Deps) (*Registry, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	registry := NewRegistry()

	definitions := []Definition{
		{
			Name:        "log_drug_intake",
			Description: "Log a substance intake event",
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				input := LogIntakeInput{}
				if err := decode(raw, &input); err != nil {
					return "", err
				}
				result, err := deps.Collector.LogIntake(input.Substance, input.Amount, input.Unit, input.Category, input.Notes, input.Timestamp)
				if err != nil {
					return "", err
				}
				return encode(map[string]any{"status": "logged", "violations": result.Violations})
			},
		},
		{
			Name:        "collect_supplement_stack",
			Description: "Store a supplement or medication entry",
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				input := CollectSupplementInput{}
				if err := decode(raw, &input); err != nil {
					return "", err
				}
				if _, err := deps.Collector.CollectSupplement(input.Name, input.Dose, input.Unit, input.Frequency, input.TimeOfDay, input.Category, input.Notes); err != nil {
					return "", err
				}
				return encode(map[string]any{"status": "stored", "name": input.Name})
			},
		},
		{
			Name:        "log_meal",
			Description: "Log a dietary entry",
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				input := LogMealInput{}
				if err := decode(raw, &input); err != nil {
					return "", err
				}
				if _, err := deps.Collector.LogMeal(input.MealType, input.Items, input.Notes, input.Timestamp); err != nil {
					return "", err
				}
				return encode(map[string]any{"status": "logged", "meal_type": input.MealType})
			},
		},
		{
			Name:        "collect_diary",
			Description: "Store an on-demand diary entry",
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				input := CollectDiaryInput{}
				if err := decode(raw, &input); err != nil {
					return "", err
				}
				if _, err := deps.Collector.CollectDiary(input.Answers); err != nil {
					return "", err
				}
				return encode(map[string]any{"status": "stored", "questions_asked": len(input.Answers)})
			},
		},
		{
			Name:        "query_health_data",
			Description: "Query lake records with exact-match filters",
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				input := QueryInput{}
				if err := decode(raw, &input); err != nil {
					return "", err
				}
				if input.Category == "" {
					input.Category = "supplements"
				}
				records, err := deps.Collector.Query(input.Category, input.Filters)
				if err != nil {
					return "", err
				}
				return encode(records)
			},
		},
		{
			Name:                 "trigger_penance",
			Description:          "Run the tiered violation diary workflow",
			RequiresConfirmation: true,
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				input := TriggerPenanceInput{}
				if err := decode(raw, &input); err != nil {
					return "", err
				}
				record, err := deps.Penance.Trigger(ctx, input.Substance, input.UnitsOver, input.RelapseCountThisWeek, &services.AnswersUI{Answers: input.Answers})
				if err != nil {
					return "", err
				}
				return encode(record)
			},
		},
		{
			Name:        "run_advisor",
			Description: "Run a full advisor cycle over daily-log answers",
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				input := RunAdvisorInput{}
				if err := decode(raw, &input); err != nil {
					return "", err
				}
				state, err := deps.Advisor.Run(ctx, input.Answers, deps.Now())
				if err != nil {
					return "", err
				}
				return encode(map[string]any{"state": state})
			},
		},
	}

	for _, definition := range definitions {
		if err := registry.Register(definition); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func decode(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode tool input: %w", err)
	}
	return nil
}

func encode(value any) (string, error) {
	serialized, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(serialized), nil
}
