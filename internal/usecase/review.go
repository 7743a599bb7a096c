package usecase

import (
	"context"
	"errors"
	"fmt"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"
	"railmail-service/pkg/logger"
)

// ErrSessionFinished is returned by review actions once every ticket has
// been confirmed, skipped or cancelled
var ErrSessionFinished = errors.New("review session finished")

// ReviewSession walks a parsed batch one ticket at a time. Nothing is
// stored until a ticket is confirmed. A session is not safe for concurrent
// use.
type ReviewSession struct {
	tickets []*entity.ParsedTicket
	index   int
	done    bool
	saved   []*entity.Ticket
	repo    repository.TicketRepository
	source  string
	logger  logger.Logger
}

// NewReviewSession starts a review over tickets. Confirmed tickets are
// saved to repo tagged with source.
func NewReviewSession(tickets []*entity.ParsedTicket, repo repository.TicketRepository, source string, logger logger.Logger) *ReviewSession {
	return &ReviewSession{
		tickets: tickets,
		done:    len(tickets) == 0,
		repo:    repo,
		source:  source,
		logger:  logger,
	}
}

// Current returns the ticket under review and its zero-based position
func (s *ReviewSession) Current() (*entity.ParsedTicket, int, bool) {
	if s.done {
		return nil, 0, false
	}
	return s.tickets[s.index], s.index, true
}

// Total is the number of tickets in the batch
func (s *ReviewSession) Total() int {
	return len(s.tickets)
}

// Finished reports whether the review has ended
func (s *ReviewSession) Finished() bool {
	return s.done
}

// Saved returns the tickets stored so far
func (s *ReviewSession) Saved() []*entity.Ticket {
	return s.saved
}

// Confirm saves the current ticket and moves to the next one. On a save
// error the cursor stays put so the ticket can be retried.
func (s *ReviewSession) Confirm(ctx context.Context) (*entity.Ticket, error) {
	if s.done {
		return nil, ErrSessionFinished
	}

	saved, err := s.save(ctx, s.tickets[s.index])
	if err != nil {
		return nil, err
	}
	s.advance()
	return saved, nil
}

// Skip drops the current ticket without saving it
func (s *ReviewSession) Skip() error {
	if s.done {
		return ErrSessionFinished
	}
	s.logger.Debug("Skipped ticket", "pnr", s.tickets[s.index].PNR, "position", s.index)
	s.advance()
	return nil
}

// ConfirmAll saves the current ticket and every ticket after it. It stops
// at the first save error, leaving the failed ticket current.
func (s *ReviewSession) ConfirmAll(ctx context.Context) ([]*entity.Ticket, error) {
	if s.done {
		return nil, ErrSessionFinished
	}

	var saved []*entity.Ticket
	for !s.done {
		t, err := s.save(ctx, s.tickets[s.index])
		if err != nil {
			return saved, err
		}
		saved = append(saved, t)
		s.advance()
	}
	return saved, nil
}

// CancelAll ends the review and discards every unconfirmed ticket
func (s *ReviewSession) CancelAll() {
	if !s.done {
		s.logger.Info("Review cancelled", "discarded", len(s.tickets)-s.index)
	}
	s.done = true
}

func (s *ReviewSession) save(ctx context.Context, ticket *entity.ParsedTicket) (*entity.Ticket, error) {
	saved, err := s.repo.Save(ctx, ticket, s.source)
	if err != nil {
		return nil, fmt.Errorf("failed to save ticket %s: %w", ticket.PNR, err)
	}
	s.saved = append(s.saved, saved)
	s.logger.Info("Ticket saved", "pnr", saved.PNR, "id", saved.ID)
	return saved, nil
}

func (s *ReviewSession) advance() {
	s.index++
	if s.index >= len(s.tickets) {
		s.done = true
	}
}
