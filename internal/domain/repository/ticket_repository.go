package repository

import (
	"context"
	"errors"

	"railmail-service/internal/domain/entity"
)

// ErrNotFound is returned when a lookup matches nothing
var ErrNotFound = errors.New("not found")

// TicketRepository stores confirmed tickets. It assigns the ticket id and
// the audit timestamps.
type TicketRepository interface {
	Save(ctx context.Context, ticket *entity.ParsedTicket, source string) (*entity.Ticket, error)
	FindByPNR(ctx context.Context, pnr string) (*entity.Ticket, error)
	List(ctx context.Context, limit int) ([]*entity.Ticket, error)
}
