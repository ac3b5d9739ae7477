package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/terraincognita07/integra/internal/lake"
	"github.com/terraincognita07/integra/internal/models"
)

// Confirmer asks a human for approval over a chat channel and returns the
// verdict string. Blocking with timeout semantics belong to the
// implementation.
type Confirmer interface {
	AskConfirmation(ctx context.Context, message string) (string, error)
}

// ClassifySeverity maps a quota violation to a penance tier.
//
//	escalated: relapseCountThisWeek >= 3 or unitsOver > 3
//	minor:     unitsOver <= 1
//	standard:  everything in between
func ClassifySeverity(unitsOver float64, relapseCountThisWeek int) string {
	if relapseCountThisWeek >= 3 || unitsOver > 3 {
		return models.SeverityEscalated
	}
	if unitsOver <= 1 {
		return models.SeverityMinor
	}
	return models.SeverityStandard
}

var minorQuestions = []Question{
	{Text: "What happened?", FieldName: "what", Type: QuestionText, Required: true},
	{Text: "What triggered it?", FieldName: "trigger", Type: QuestionText, Required: true},
	{Text: "Key takeaway?", FieldName: "takeaway", Type: QuestionText, Required: true},
}

var standardQuestions = append(append([]Question{}, minorQuestions...),
	Question{
		Text:      "Mood at the time?",
		FieldName: "mood",
		Type:      QuestionSelection,
		Options:   []string{"great", "good", "neutral", "low", "rough"},
		Required:  true,
	},
	Question{Text: "What alternative action could you have taken?", FieldName: "alternative_action", Type: QuestionText, Required: true},
)

var escalatedQuestions = append(append([]Question{}, standardQuestions...),
	Question{Text: "HALT review — which factors were present (hungry/angry/lonely/tired)?", FieldName: "halt_review", Type: QuestionText, Required: true},
	Question{Text: "Commitment going forward?", FieldName: "commitment", Type: QuestionText, Required: true},
	Question{Text: "Coping plan for next craving?", FieldName: "coping_plan", Type: QuestionText, Required: true},
)

// PenanceQuestionnaires maps severity to its violation diary. Each tier
// strictly extends the previous one.
var PenanceQuestionnaires = map[string]Questionnaire{
	models.SeverityMinor:     {Title: "Violation Diary (Minor)", Questions: minorQuestions},
	models.SeverityStandard:  {Title: "Violation Diary (Standard)", Questions: standardQuestions},
	models.SeverityEscalated: {Title: "Violation Diary (Escalated)", Questions: escalatedQuestions},
}

// PenanceCredits maps severity to the credit awarded for a completed diary.
// Escalated awards less despite more reflection effort: it marks a more
// serious lapse.
var PenanceCredits = map[string]float64{
	models.SeverityMinor:     0.5,
	models.SeverityStandard:  0.5,
	models.SeverityEscalated: 0.3,
}

type qaPair struct {
	Q string `json:"q"`
	A string `json:"a"`
}

func penanceDiaryRecord(substance string, severity string, pairs []qaPair, credit float64, timestamp string) models.Record {
	serialized, err := json.Marshal(pairs)
	if err != nil {
		serialized = []byte("[]")
	}
	return models.NewDiaryRecord(models.DiaryViolation, severity, substance, len(pairs), string(serialized), credit, timestamp)
}

// PenanceService runs the tiered violation diary workflow.
type PenanceService struct {
	store     *lake.Store
	confirmer Confirmer
}

func NewPenanceService(store *lake.Store, confirmer Confirmer) *PenanceService {
	return &PenanceService{store: store, confirmer: confirmer}
}

// Trigger classifies the violation, runs the matching diary questionnaire,
// and stores the resulting record.
//
// Escalated severity first asks for human approval. A denied (or timed out)
// confirmation skips the questionnaire and stores a minimal denial record
// with zero credit — the violation is still durably recorded.
func (service *PenanceService) Trigger(
	ctx context.Context,
	substance string,
	unitsOver float64,
	relapseCountThisWeek int,
	ui QuestionnaireUI,
) (models.Record, error) {
	severity := ClassifySeverity(unitsOver, relapseCountThisWeek)
	credit := PenanceCredits[severity]
	timestamp := time.Now().UTC().Format(time.RFC3339)

	if severity == models.SeverityEscalated {
		verdict, err := service.confirmer.AskConfirmation(ctx, fmt.Sprintf(
			"Escalated violation detected for %s (%.1f units over, %d relapses this week). Start violation diary?",
			substance, unitsOver, relapseCountThisWeek,
		))
		if err != nil {
			return nil, fmt.Errorf("ask confirmation: %w", err)
		}
		if !isApproved(verdict) {
			log.Printf("penance: escalated diary denied for %s (%s)", substance, verdict)
			denied := penanceDiaryRecord(substance, severity, []qaPair{{Q: "denied", A: "HIL confirmation denied"}}, 0.0, timestamp)
			if err := service.store.Append("diary", denied); err != nil {
				return nil, fmt.Errorf("store denial record: %w", err)
			}
			return denied, nil
		}
	}

	questionnaire := PenanceQuestionnaires[severity]
	answers, err := RunQuestionnaire(ctx, questionnaire, ui)
	if err != nil {
		return nil, fmt.Errorf("run violation diary: %w", err)
	}

	pairs := make([]qaPair, 0, len(questionnaire.Questions))
	for _, question := range questionnaire.Questions {
		pairs = append(pairs, qaPair{Q: question.FieldName, A: answers[question.FieldName]})
	}

	record := penanceDiaryRecord(substance, severity, pairs, credit, timestamp)
	if err := service.store.Append("diary", record); err != nil {
		return nil, fmt.Errorf("store penance diary: %w", err)
	}

	log.Printf("penance: stored diary substance=%s severity=%s credit=%.1f", substance, severity, credit)
	return record, nil
}

func isApproved(verdict string) bool {
	return strings.Contains(strings.ToUpper(verdict), "APPROVED")
}
