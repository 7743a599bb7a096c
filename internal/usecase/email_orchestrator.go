package usecase

import (
	"context"
	"fmt"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"
	"railmail-service/pkg/logger"
	"railmail-service/pkg/metrics"
)

const (
	// pendingBatchSize caps how many stored emails one pass picks up
	pendingBatchSize = 100
	// staleProcessingAfter is how long an email may sit in PROCESSING
	staleProcessingAfter = 5 * time.Minute
)

// EmailOrchestrator manages email processing with multiple handlers
type EmailOrchestrator struct {
	emailRepo repository.EmailRepository
	router    SubjectRouter
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewEmailOrchestrator creates a new email orchestrator. metrics may be nil.
func NewEmailOrchestrator(
	emailRepo repository.EmailRepository,
	router SubjectRouter,
	m *metrics.Metrics,
	logger logger.Logger,
) *EmailOrchestrator {
	return &EmailOrchestrator{
		emailRepo: emailRepo,
		router:    router,
		metrics:   m,
		logger:    logger,
	}
}

// ProcessEmail processes a single email immediately after fetching
func (o *EmailOrchestrator) ProcessEmail(ctx context.Context, email *entity.Email) error {
	// Find appropriate handler based on subject
	handler := o.router.GetHandler(email.Subject)
	if handler == nil {
		o.logger.Debug("No handler found for email",
			"subject", email.Subject,
			"emailID", email.EmailID)

		// Not an error, just no matching template
		o.count(entity.StatusSkipped)
		return o.emailRepo.MarkAsProcessedByEmailID(ctx, email.EmailID, entity.ImportOutcome{
			Status:        entity.StatusSkipped,
			ProcessorType: "none",
			ErrorDetail:   "No matching handler found",
			ExtractedData: map[string]interface{}{
				"subject": email.Subject,
				"reason":  "no_matching_template",
			},
		})
	}

	handlerName := handler.Name()
	o.logger.Info("Processing email with handler",
		"emailID", email.EmailID,
		"handler", handlerName,
		"subject", email.Subject)

	// Mark as processing
	if err := o.emailRepo.UpdateStatusByEmailID(ctx, email.EmailID, entity.StatusProcessing, time.Now()); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if err := handler.Process(ctx, email); err != nil {
		o.logger.Error("Handler failed to process email",
			"emailID", email.EmailID,
			"handler", handlerName,
			"error", err)

		// Mark as failed but don't return error - let other emails continue
		o.count(entity.StatusFailed)
		if markErr := o.emailRepo.MarkAsProcessedByEmailID(ctx, email.EmailID, entity.ImportOutcome{
			Status:        entity.StatusFailed,
			ProcessorType: handlerName,
			ErrorDetail:   err.Error(),
		}); markErr != nil {
			o.logger.Error("Failed to mark email as failed", "emailID", email.EmailID, "error", markErr)
		}
		return nil
	}

	o.logger.Info("Email processed successfully",
		"emailID", email.EmailID,
		"handler", handlerName)

	return nil
}

// ProcessPendingEmails processes any emails that were missed or failed
func (o *EmailOrchestrator) ProcessPendingEmails(ctx context.Context) error {
	// Reset stale processing emails
	reset, err := o.emailRepo.ResetProcessingEmails(ctx, staleProcessingAfter)
	if err != nil {
		o.logger.Error("Failed to reset stale emails", "error", err)
	} else if reset > 0 {
		o.logger.Info("Reset stale processing emails", "count", reset)
	}

	// Get unprocessed emails
	emails, err := o.emailRepo.FindUnprocessed(ctx, pendingBatchSize)
	if err != nil {
		return fmt.Errorf("failed to find unprocessed emails: %w", err)
	}

	if len(emails) == 0 {
		return nil
	}

	o.logger.Info("Processing pending emails", "count", len(emails))

	for _, email := range emails {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.ProcessEmail(ctx, email); err != nil {
			o.logger.Error("Failed to process pending email",
				"emailID", email.EmailID,
				"error", err)
		}
	}

	return nil
}

func (o *EmailOrchestrator) count(status string) {
	if o.metrics != nil {
		o.metrics.EmailsProcessed.WithLabelValues(status).Inc()
	}
}
