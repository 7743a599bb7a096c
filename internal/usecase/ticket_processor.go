package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"
	"railmail-service/pkg/logger"
	"railmail-service/pkg/metrics"
)

// SourceGmail tags tickets imported from the mailbox
const SourceGmail = "gmail"

const processorType = "irctc_ticket"

// TicketProcessor turns IRCTC booking emails into stored tickets
type TicketProcessor struct {
	parser     TicketParsing
	ticketRepo repository.TicketRepository
	emailRepo  repository.EmailRepository
	metrics    *metrics.Metrics
	logger     logger.Logger
}

// NewTicketProcessor creates a new ticket processor. metrics may be nil.
func NewTicketProcessor(
	parser TicketParsing,
	ticketRepo repository.TicketRepository,
	emailRepo repository.EmailRepository,
	m *metrics.Metrics,
	logger logger.Logger,
) *TicketProcessor {
	return &TicketProcessor{
		parser:     parser,
		ticketRepo: ticketRepo,
		emailRepo:  emailRepo,
		metrics:    m,
		logger:     logger,
	}
}

// ProcessTicketMessage parses one email body and stores the ticket unless a
// ticket with the same PNR already exists. The email is marked COMPLETED,
// SKIPPED or FAILED. Only storage errors are returned.
func (tp *TicketProcessor) ProcessTicketMessage(ctx context.Context, body string, emailID string) error {
	tp.logger.Info("Starting ticket message processing", "emailID", emailID)

	start := time.Now()
	ticket := tp.parser.Parse(ctx, body)
	if tp.metrics != nil {
		tp.metrics.ParseDuration.Observe(time.Since(start).Seconds())
		tp.metrics.TicketsParsed.Inc()
	}

	steps := entity.ProcessSteps{
		TicketParsed:     true,
		ScheduleResolved: ticket.DepartureTime != entity.NotAvailable && ticket.Duration != entity.NotAvailable,
		Passengers:       len(ticket.Passengers),
	}
	tp.updateSteps(ctx, emailID, steps)

	extractedData := map[string]interface{}{
		"pnr":         ticket.PNR,
		"trainNumber": ticket.TrainNumber,
		"trainName":   ticket.TrainName,
		"journeyDate": ticket.JourneyDate.Format("2006-01-02"),
		"status":      string(ticket.Status),
		"passengers":  len(ticket.Passengers),
	}

	outcome := entity.ImportOutcome{
		ProcessorType: processorType,
		PNR:           ticket.PNR,
		ExtractedData: extractedData,
	}

	if ticket.PNR == entity.UnknownValue {
		tp.recordFailure("no_pnr")
		outcome.Status = entity.StatusFailed
		outcome.ErrorDetail = "No PNR found in email"
		return tp.finish(ctx, emailID, outcome)
	}

	existing, err := tp.ticketRepo.FindByPNR(ctx, ticket.PNR)
	switch {
	case err == nil:
		extractedData["ticketId"] = existing.ID
		outcome.Status = entity.StatusSkipped
		outcome.TicketID = existing.ID
		outcome.ErrorDetail = "Ticket already stored"
		return tp.finish(ctx, emailID, outcome)
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("failed to check existing ticket: %w", err)
	}

	saved, err := tp.ticketRepo.Save(ctx, ticket, SourceGmail)
	if err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}
	if tp.metrics != nil {
		tp.metrics.TicketsSaved.Inc()
	}

	steps.TicketSaved = true
	tp.updateSteps(ctx, emailID, steps)

	extractedData["ticketId"] = saved.ID
	outcome.Status = entity.StatusCompleted
	outcome.TicketID = saved.ID
	return tp.finish(ctx, emailID, outcome)
}

func (tp *TicketProcessor) finish(ctx context.Context, emailID string, outcome entity.ImportOutcome) error {
	if err := tp.emailRepo.MarkAsProcessedByEmailID(ctx, emailID, outcome); err != nil {
		tp.logger.Error("Failed to mark email as processed", "emailID", emailID, "error", err)
		return err
	}
	if tp.metrics != nil {
		tp.metrics.EmailsProcessed.WithLabelValues(outcome.Status).Inc()
	}
	tp.logger.Info("Email marked as processed", "emailID", emailID, "status", outcome.Status, "pnr", outcome.PNR)
	return nil
}

func (tp *TicketProcessor) updateSteps(ctx context.Context, emailID string, steps entity.ProcessSteps) {
	if err := tp.emailRepo.UpdateProcessStepsByEmailID(ctx, emailID, steps); err != nil {
		tp.logger.Warn("Failed to update process steps", "emailID", emailID, "error", err)
	}
}

func (tp *TicketProcessor) recordFailure(reason string) {
	if tp.metrics != nil {
		tp.metrics.ParseFailures.WithLabelValues(reason).Inc()
	}
}
