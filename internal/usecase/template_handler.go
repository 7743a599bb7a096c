package usecase

import (
	"context"

	"railmail-service/internal/domain/entity"
)

// TemplateHandler defines the interface for email template handlers
type TemplateHandler interface {
	// Name identifies the handler in the email log
	Name() string

	// CanHandle determines if this handler can process the given email subject
	CanHandle(subject string) bool

	// Process handles the email and records its outcome in the email log
	Process(ctx context.Context, email *entity.Email) error
}

// SubjectRouter routes emails to the appropriate handler based on subject
type SubjectRouter interface {
	// Register registers a handler for specific subject patterns
	Register(handler TemplateHandler)

	// GetHandler returns the appropriate handler for a given subject
	GetHandler(subject string) TemplateHandler
}
