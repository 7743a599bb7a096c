package usecase

import (
	"context"
	"strings"

	"railmail-service/internal/domain/entity"
	"railmail-service/pkg/parser"
)

// DefaultTicketSubjects match IRCTC booking mail subjects
var DefaultTicketSubjects = []string{
	"Booking Confirmation on IRCTC",
	"IRCTC",
	"E-Ticket",
	"PNR",
}

// TicketHandlerAdapter adapts TicketProcessor to the TemplateHandler interface
type TicketHandlerAdapter struct {
	processor interface {
		ProcessTicketMessage(ctx context.Context, body string, emailID string) error
	}
	name     string
	patterns []string
}

// NewTicketHandlerAdapter creates a new adapter matching any of patterns
// in the subject, case-insensitively
func NewTicketHandlerAdapter(processor interface {
	ProcessTicketMessage(ctx context.Context, body string, emailID string) error
}, name string, patterns []string) *TicketHandlerAdapter {
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}
	return &TicketHandlerAdapter{
		processor: processor,
		name:      name,
		patterns:  lowered,
	}
}

// Name returns the handler name
func (a *TicketHandlerAdapter) Name() string {
	return a.name
}

// CanHandle checks if this handler can process the email
func (a *TicketHandlerAdapter) CanHandle(subject string) bool {
	subject = strings.ToLower(subject)
	for _, pattern := range a.patterns {
		if strings.Contains(subject, pattern) {
			return true
		}
	}
	return false
}

// Process parses whichever of the plain and HTML bodies carries the ticket
func (a *TicketHandlerAdapter) Process(ctx context.Context, email *entity.Email) error {
	return a.processor.ProcessTicketMessage(ctx, parser.SelectBody(email.Body, email.HTMLBody), email.EmailID)
}
