package services

import (
	"context"
	"fmt"
)

// Question input types.
const (
	QuestionText      = "text"
	QuestionNumeric   = "numeric"
	QuestionSelection = "selection"
	QuestionTime      = "time"
)

// Question is a single prompt in a questionnaire.
type Question struct {
	Text      string
	FieldName string
	Type      string
	Options   []string
	Required  bool
	Default   string
}

// Questionnaire is an ordered list of questions collecting structured data.
type Questionnaire struct {
	Title     string
	Questions []Question
}

// QuestionnaireUI abstracts how questions reach the user. Implementations
// include the chat channel and the non-interactive answers map used by the
// HTTP surface and tests.
type QuestionnaireUI interface {
	SendStatus(ctx context.Context, message string) error
	AskText(ctx context.Context, question Question) (string, error)
	AskSelection(ctx context.Context, question Question) (string, error)
}

// RunQuestionnaire walks the questions in order and collects answers keyed
// by field name.
func RunQuestionnaire(ctx context.Context, questionnaire Questionnaire, ui QuestionnaireUI) (map[string]string, error) {
	answers := make(map[string]string, len(questionnaire.Questions))

	if err := ui.SendStatus(ctx, fmt.Sprintf("📋 *%s*", questionnaire.Title)); err != nil {
		return nil, err
	}

	for _, question := range questionnaire.Questions {
		var answer string
		var err error
		if question.Type == QuestionSelection {
			answer, err = ui.AskSelection(ctx, question)
		} else {
			answer, err = ui.AskText(ctx, question)
		}
		if err != nil {
			return nil, fmt.Errorf("ask %s: %w", question.FieldName, err)
		}
		answers[question.FieldName] = answer
	}

	if err := ui.SendStatus(ctx, "✅ Questionnaire complete. Data recorded."); err != nil {
		return nil, err
	}
	return answers, nil
}

// AnswersUI is a non-interactive QuestionnaireUI fed from a prepared answer
// map. Missing answers fall back to the question default.
type AnswersUI struct {
	Answers map[string]string
}

func (ui *AnswersUI) SendStatus(ctx context.Context, message string) error {
	return nil
}

func (ui *AnswersUI) AskText(ctx context.Context, question Question) (string, error) {
	if answer, ok := ui.Answers[question.FieldName]; ok {
		return answer, nil
	}
	return question.Default, nil
}

func (ui *AnswersUI) AskSelection(ctx context.Context, question Question) (string, error) {
	return ui.AskText(ctx, question)
}
