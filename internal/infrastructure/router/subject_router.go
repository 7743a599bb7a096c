package router

import (
	"sync"

	"railmail-service/internal/usecase"
	"railmail-service/pkg/logger"
)

// SubjectRouter routes emails to appropriate handlers based on subject.
// Handlers are tried in registration order.
type SubjectRouter struct {
	mu       sync.RWMutex
	handlers []usecase.TemplateHandler
	logger   logger.Logger
}

// NewSubjectRouter creates a new subject router
func NewSubjectRouter(logger logger.Logger) *SubjectRouter {
	return &SubjectRouter{
		handlers: make([]usecase.TemplateHandler, 0),
		logger:   logger,
	}
}

// Register registers a handler for specific subject patterns
func (r *SubjectRouter) Register(handler usecase.TemplateHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered handler", "handler", handler.Name())
}

// GetHandler returns the first handler accepting subject, or nil
func (r *SubjectRouter) GetHandler(subject string) usecase.TemplateHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, handler := range r.handlers {
		if handler.CanHandle(subject) {
			return handler
		}
	}
	return nil
}
