// Package commands is the named command surface a host exposes to its UI.
//
// Each command takes a JSON object of camelCase arguments and returns a JSON-encodable value
// or an error whose Error() text is suitable for display.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperion/hypershell/pkg/shellerr"
)

// Handler executes one command
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Registry maps command names to handlers. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Handle registers h under name, replacing any previous handler
func (r *Registry) Handle(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Names returns the registered command names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke dispatches name with raw arguments. Empty raw is treated as {}.
func (r *Registry) Invoke(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, shellerr.ErrUnknownCommand(name)
	}
	return h(ctx, raw)
}

// requirer is implemented by argument types with required keys.
// Only presence is checked; values are the backend's to judge.
type requirer interface {
	requiredArgs() []string
}

// Typed adapts fn into a Handler that decodes its arguments into A.
// Decode failures and missing required keys yield INVALID_ARGUMENTS.
func Typed[A any](name string, fn func(ctx context.Context, args A) (any, error)) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args A
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, shellerr.ErrInvalidArguments(name, err)
			}
		}
		if r, ok := any(&args).(requirer); ok {
			if err := requireKeys(raw, r.requiredArgs()); err != nil {
				return nil, shellerr.ErrInvalidArguments(name, err)
			}
		}
		return fn(ctx, args)
	}
}

// NoArgs adapts fn into a Handler that ignores its arguments
func NoArgs(fn func(ctx context.Context) (any, error)) Handler {
	return func(ctx context.Context, _ json.RawMessage) (any, error) {
		return fn(ctx)
	}
}

// requireKeys returns an error naming the first key that is absent or null in raw
func requireKeys(raw json.RawMessage, keys []string) error {
	var present map[string]json.RawMessage
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &present); err != nil {
			return err
		}
	}
	for _, key := range keys {
		v, ok := present[key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return fmt.Errorf("missing required argument '%s'", key)
		}
	}
	return nil
}
