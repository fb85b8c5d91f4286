package commands

import (
	"context"
	"sync"
)

// Bus routes commands to the handler registered for their type. Services
// register handlers at construction time; transports and other services hand
// commands to Execute without knowing which service owns them.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string]Handler)}
}

// Register binds a handler to a command type, replacing any previous binding.
func (b *Bus) Register(commandType string, handler Handler) {
	b.mu.Lock()
	b.handlers[commandType] = handler
	b.mu.Unlock()
}

// Execute dispatches the command to its handler. An unknown command type is
// ErrHandlerNotFound.
func (b *Bus) Execute(ctx context.Context, cmd Command) (Result, error) {
	b.mu.RLock()
	h, ok := b.handlers[cmd.CommandType()]
	b.mu.RUnlock()
	if !ok {
		return Result{}, ErrHandlerNotFound
	}
	return h.Handle(ctx, cmd)
}
