package channels

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct {
	name         string
	capabilities []string
	notified     []string
	verdict      string
}

func (fake *fakeProvider) Name() string { return fake.name }
func (fake *fakeProvider) Capabilities() []string { return fake.capabilities }

func (fake *fakeProvider) Notify(ctx context.Context, message string) error {
	fake.notified = append(fake.notified, message)
	return nil
}

func (fake *fakeProvider) AskConfirmation(ctx context.Context, message string) (string, error) {
	return fake.verdict, nil
}

func TestRouterFirstRegisteredWins(t *testing.T) {
	t.Parallel()

	first := &fakeProvider{name: "first", capabilities: []string{CapabilityNotify}}
	second := &fakeProvider{name: "second", capabilities: []string{CapabilityNotify}}
	router := NewRouter(first, second)

	if err := router.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(first.notified) != 1 {
		t.Fatalf("first provider notified %d times, want 1", len(first.notified))
	}
	if len(second.notified) != 0 {
		t.Fatalf("second provider notified %d times, want 0", len(second.notified))
	}
}

func TestRouterSelectsByCapability(t *testing.T) {
	t.Parallel()

	notifyOnly := &fakeProvider{name: "notify-only", capabilities: []string{CapabilityNotify}}
	confirmer := &fakeProvider{name: "confirmer", capabilities: []string{CapabilityConfirm}, verdict: VerdictApproved}
	router := NewRouter(notifyOnly, confirmer)

	verdict, err := router.AskConfirmation(context.Background(), "ok?")
	if err != nil {
		t.Fatalf("AskConfirmation failed: %v", err)
	}
	if verdict != VerdictApproved {
		t.Fatalf("verdict = %q, want %q", verdict, VerdictApproved)
	}
}

func TestRouterNoProvider(t *testing.T) {
	t.Parallel()

	router := NewRouter()
	if err := router.Notify(context.Background(), "void"); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
	if _, err := router.AskConfirmation(context.Background(), "void"); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
}

func TestRouterRegisterAfterConstruction(t *testing.T) {
	t.Parallel()

	router := NewRouter()
	late := &fakeProvider{name: "late", capabilities: []string{CapabilityNotify}}
	router.Register(late)

	if err := router.Notify(context.Background(), "made it"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if len(late.notified) != 1 {
		t.Fatalf("late provider notified %d times, want 1", len(late.notified))
	}
}
