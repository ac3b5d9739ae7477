package channels

import (
	"context"
	"errors"
	"fmt"
)

// Capabilities a channel provider can declare.
const (
	CapabilityNotify  = "notify"
	CapabilityConfirm = "confirm"
)

var ErrNoProvider = errors.New("no channel provider for capability")

// Provider is one concrete communication backend (chat bot, in-process
// inbox). A provider only has to serve the capabilities it declares.
type Provider interface {
	Name() string
	Capabilities() []string
	Notify(ctx context.Context, message string) error
	AskConfirmation(ctx context.Context, message string) (string, error)
}

// Router fans capability calls out to registered providers. Routing policy
// is first-registered-wins per capability: the earliest provider declaring
// a capability serves every call for it.
type Router struct {
	providers []Provider
}

func NewRouter(providers ...Provider) *Router {
	router := &Router{}
	for _, provider := range providers {
		router.Register(provider)
	}
	return router
}

// Register appends a provider. Registration order decides routing priority.
func (router *Router) Register(provider Provider) {
	router.providers = append(router.providers, provider)
}

func (router *Router) providerFor(capability string) (Provider, error) {
	for _, provider := range router.providers {
		for _, declared := range provider.Capabilities() {
			if declared == capability {
				return provider, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoProvider, capability)
}

// Notify sends a message through the first notify-capable provider.
func (router *Router) Notify(ctx context.Context, message string) error {
	provider, err := router.providerFor(CapabilityNotify)
	if err != nil {
		return err
	}
	return provider.Notify(ctx, message)
}

// AskConfirmation requests HIL approval through the first confirm-capable
// provider and returns the verdict string.
func (router *Router) AskConfirmation(ctx context.Context, message string) (string, error) {
	provider, err := router.providerFor(CapabilityConfirm)
	if err != nil {
		return "", err
	}
	return provider.AskConfirmation(ctx, message)
}
