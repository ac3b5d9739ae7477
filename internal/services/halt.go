package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/terraincognita07/integra/internal/lake"
	"github.com/terraincognita07/integra/internal/models"
)

// HaltQuestionnaire is the pre-craving self check (hungry, angry, lonely,
// tired) run before an addiction-therapy intake.
var HaltQuestionnaire = Questionnaire{
	Title: "HALT Check",
	Questions: []Question{
		{Text: "Are you Hungry right now?", FieldName: "hungry", Type: QuestionSelection, Options: []string{"Yes", "No"}, Required: true},
		{Text: "Are you Angry or frustrated?", FieldName: "angry", Type: QuestionSelection, Options: []string{"Yes", "No"}, Required: true},
		{Text: "Are you feeling Lonely?", FieldName: "lonely", Type: QuestionSelection, Options: []string{"Yes", "No"}, Required: true},
		{Text: "Are you Tired?", FieldName: "tired", Type: QuestionSelection, Options: []string{"Yes", "No"}, Required: true},
		{Text: "Craving intensity (1-10)?", FieldName: "craving_intensity", Type: QuestionText, Required: true},
		{Text: "Any notes about the situation?", FieldName: "situation_notes", Type: QuestionText, Required: false, Default: ""},
	},
}

// ParseCravingIntensity parses the free-text intensity answer, clamped to
// [1,10]. Unparseable input defaults to 5.
func ParseCravingIntensity(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 5
	}
	if value < 1 {
		return 1
	}
	if value > 10 {
		return 10
	}
	return value
}

// RunHaltCheck runs the HALT questionnaire and stores the resulting trigger
// context under the halt_context category.
func RunHaltCheck(ctx context.Context, substance string, ui QuestionnaireUI, store *lake.Store) (models.Record, error) {
	answers, err := RunQuestionnaire(ctx, HaltQuestionnaire, ui)
	if err != nil {
		return nil, fmt.Errorf("run HALT check: %w", err)
	}

	record := models.NewTriggerContext(
		substance,
		answers["hungry"] == "Yes",
		answers["angry"] == "Yes",
		answers["lonely"] == "Yes",
		answers["tired"] == "Yes",
		ParseCravingIntensity(answers["craving_intensity"]),
		answers["situation_notes"],
		"",
	)

	if err := store.Append("halt_context", record); err != nil {
		return nil, fmt.Errorf("store HALT context: %w", err)
	}
	log.Printf("halt: stored context for substance %s", substance)
	return record, nil
}
