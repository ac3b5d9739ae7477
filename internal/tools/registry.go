package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
)

var (
	ErrUnknownTool             = errors.New("unknown tool")
	ErrConfirmationUnavailable = errors.New("tool requires confirmation but no confirm function is available")
	ErrDenied                  = errors.New("tool call denied")
)

// Call is a tagged tool invocation: a tool name plus its raw typed input.
type Call struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// Handler executes one tool against its decoded input and returns a JSON
// result string.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// ConfirmFunc asks for HIL approval of a gated tool call and returns the
// verdict string.
type ConfirmFunc func(ctx context.Context, tool string, input json.RawMessage) (string, error)

// Definition describes one dispatchable tool.
type Definition struct {
	Name                 string
	Description          string
	RequiresConfirmation bool
	Handler              Handler
}

// Registry is the dispatch table. Tools are looked up by name; gated tools
// require an approved confirmation before their handler runs.
type Registry struct {
	definitions map[string]Definition
	order       []string
}

func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]Definition)}
}

// Register adds a tool definition. Re-registering a name is an error.
func (registry *Registry) Register(definition Definition) error {
	if definition.Name == "" {
		return errors.New("tool name must not be empty")
	}
	if _, exists := registry.definitions[definition.Name]; exists {
		return fmt.Errorf("tool %s already registered", definition.Name)
	}
	registry.definitions[definition.Name] = definition
	registry.order = append(registry.order, definition.Name)
	return nil
}

// Names lists registered tools in registration order.
func (registry *Registry) Names() []string {
	names := make([]string, len(registry.order))
	copy(names, registry.order)
	return names
}

// Dispatch executes a call, enforcing the confirmation gate.
func (registry *Registry) Dispatch(ctx context.Context, call Call, confirm ConfirmFunc) (string, error) {
	definition, ok := registry.definitions[call.Tool]
	if !ok {
		log.Printf("tools: unknown tool requested: %s", call.Tool)
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, call.Tool)
	}

	if definition.RequiresConfirmation {
		if confirm == nil {
			return "", fmt.Errorf("%w: %s", ErrConfirmationUnavailable, call.Tool)
		}
		verdict, err := confirm(ctx, call.Tool, call.Input)
		if err != nil {
			return "", fmt.Errorf("confirm %s: %w", call.Tool, err)
		}
		if !strings.Contains(strings.ToUpper(verdict), "APPROVED") {
			log.Printf("tools: %s denied by user (%s)", call.Tool, verdict)
			return "", fmt.Errorf("%w: %s", ErrDenied, call.Tool)
		}
	}

	result, err := definition.Handler(ctx, call.Input)
	if err != nil {
		return "", fmt.Errorf("execute %s: %w", call.Tool, err)
	}
	return result, nil
}
