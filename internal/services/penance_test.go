package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/terraincognita07/integra/internal/lake"
	"github.com/terraincognita07/integra/internal/models"
)

func newTestStore(t *testing.T) *lake.Store {
	t.Helper()
	recipient, identity, err := lake.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	return lake.NewStore(t.TempDir(), recipient, identity, nil)
}

type stubConfirmer struct {
	verdict string
	asked   []string
}

func (stub *stubConfirmer) AskConfirmation(ctx context.Context, message string) (string, error) {
	stub.asked = append(stub.asked, message)
	return stub.verdict, nil
}

func TestClassifySeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		unitsOver float64
		relapses  int
		want      string
	}{
		{name: "barely over", unitsOver: 0.1, relapses: 0, want: models.SeverityMinor},
		{name: "exactly one unit over", unitsOver: 1.0, relapses: 0, want: models.SeverityMinor},
		{name: "just past minor", unitsOver: 1.01, relapses: 0, want: models.SeverityStandard},
		{name: "upper standard bound", unitsOver: 3.0, relapses: 2, want: models.SeverityStandard},
		{name: "just past standard", unitsOver: 3.01, relapses: 0, want: models.SeverityEscalated},
		{name: "relapse count escalates alone", unitsOver: 0.1, relapses: 3, want: models.SeverityEscalated},
		{name: "both escalation paths", unitsOver: 5.0, relapses: 4, want: models.SeverityEscalated},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			if got := ClassifySeverity(test.unitsOver, test.relapses); got != test.want {
				t.Fatalf("ClassifySeverity(%g, %d) = %q, want %q", test.unitsOver, test.relapses, got, test.want)
			}
		})
	}
}

func TestQuestionnaireTiersStrictlyExtend(t *testing.T) {
	t.Parallel()

	minor := PenanceQuestionnaires[models.SeverityMinor].Questions
	standard := PenanceQuestionnaires[models.SeverityStandard].Questions
	escalated := PenanceQuestionnaires[models.SeverityEscalated].Questions

	if len(minor) != 3 || len(standard) != 5 || len(escalated) != 8 {
		t.Fatalf("tier sizes = %d/%d/%d, want 3/5/8", len(minor), len(standard), len(escalated))
	}
	for i, question := range minor {
		if standard[i].FieldName != question.FieldName {
			t.Fatalf("standard[%d] = %q, want %q", i, standard[i].FieldName, question.FieldName)
		}
	}
	for i, question := range standard {
		if escalated[i].FieldName != question.FieldName {
			t.Fatalf("escalated[%d] = %q, want %q", i, escalated[i].FieldName, question.FieldName)
		}
	}
}

func TestPenanceTriggerMinorSkipsConfirmation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	confirmer := &stubConfirmer{verdict: "APPROVED"}
	service := NewPenanceService(store, confirmer)

	answers := map[string]string{"what": "slipped", "trigger": "stress", "takeaway": "walk first"}
	record, err := service.Trigger(context.Background(), "k", 0.5, 0, &AnswersUI{Answers: answers})
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}

	if len(confirmer.asked) != 0 {
		t.Fatalf("minor severity asked for confirmation: %v", confirmer.asked)
	}
	if got := record.String("severity"); got != models.SeverityMinor {
		t.Fatalf("severity = %q, want %q", got, models.SeverityMinor)
	}
	if got, _ := record["penance_credit"].(float64); got != 0.5 {
		t.Fatalf("penance_credit = %v, want 0.5", record["penance_credit"])
	}

	pairs := []qaPair{}
	if err := json.Unmarshal([]byte(record.String("answers")), &pairs); err != nil {
		t.Fatalf("answers field did not decode: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("len(pairs) = %d, want 3", len(pairs))
	}
	// Question order is preserved.
	if pairs[0].Q != "what" || pairs[1].Q != "trigger" || pairs[2].Q != "takeaway" {
		t.Fatalf("pair order = %v", pairs)
	}
	if pairs[1].A != "stress" {
		t.Fatalf("trigger answer = %q, want %q", pairs[1].A, "stress")
	}
}

func TestPenanceTriggerEscalatedApproved(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	confirmer := &stubConfirmer{verdict: "APPROVED"}
	service := NewPenanceService(store, confirmer)

	record, err := service.Trigger(context.Background(), "k", 4.0, 1, &AnswersUI{Answers: map[string]string{"what": "relapse"}})
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}

	if len(confirmer.asked) != 1 {
		t.Fatalf("asked %d times, want 1", len(confirmer.asked))
	}
	if !strings.Contains(confirmer.asked[0], "Escalated violation detected for k") {
		t.Fatalf("confirmation message = %q", confirmer.asked[0])
	}
	if got := record.String("severity"); got != models.SeverityEscalated {
		t.Fatalf("severity = %q, want %q", got, models.SeverityEscalated)
	}
	if got, _ := record["penance_credit"].(float64); got != 0.3 {
		t.Fatalf("penance_credit = %v, want 0.3", record["penance_credit"])
	}
	if got, _ := record["questions_asked"].(int); got != 8 {
		t.Fatalf("questions_asked = %v, want 8", record["questions_asked"])
	}
}

func TestPenanceTriggerEscalatedDenied(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verdict string
	}{
		{name: "plain denial", verdict: "DENIED"},
		{name: "timeout denial", verdict: "DENIED (timeout)"},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			store := newTestStore(t)
			service := NewPenanceService(store, &stubConfirmer{verdict: test.verdict})

			record, err := service.Trigger(context.Background(), "k", 4.0, 1, &AnswersUI{})
			if err != nil {
				t.Fatalf("Trigger failed: %v", err)
			}

			if got, _ := record["penance_credit"].(float64); got != 0.0 {
				t.Fatalf("penance_credit = %v, want 0", record["penance_credit"])
			}
			if !strings.Contains(record.String("answers"), "HIL confirmation denied") {
				t.Fatalf("answers = %q, want a denial marker", record.String("answers"))
			}

			// The denial is still durably recorded.
			stored, err := store.Query("diary", nil)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(stored) != 1 {
				t.Fatalf("len(stored) = %d, want 1", len(stored))
			}
			if got := stored[0].String("severity"); got != models.SeverityEscalated {
				t.Fatalf("stored severity = %q, want %q", got, models.SeverityEscalated)
			}
		})
	}
}
