package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*entity.Ticket
	saves   []string
	failOn  string
	findErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*entity.Ticket)}
}

func (r *fakeTicketRepo) Save(_ context.Context, t *entity.ParsedTicket, source string) (*entity.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != "" && t.PNR == r.failOn {
		return nil, errors.New("write conflict")
	}
	saved := &entity.Ticket{
		ID:           "id-" + t.PNR,
		ParsedTicket: *t,
		Source:       source,
		CreatedAt:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	r.tickets[t.PNR] = saved
	r.saves = append(r.saves, t.PNR)
	return saved, nil
}

func (r *fakeTicketRepo) FindByPNR(_ context.Context, pnr string) (*entity.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	t, ok := r.tickets[pnr]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (r *fakeTicketRepo) List(_ context.Context, _ int) ([]*entity.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		out = append(out, t)
	}
	return out, nil
}

type fakeEmailRepo struct {
	mu       sync.Mutex
	pending  []*entity.Email
	statuses map[string]string
	marks    map[string]entity.ImportOutcome
	steps    map[string]entity.ProcessSteps
	reset    int
}

func newFakeEmailRepo(pending ...*entity.Email) *fakeEmailRepo {
	return &fakeEmailRepo{
		pending:  pending,
		statuses: make(map[string]string),
		marks:    make(map[string]entity.ImportOutcome),
		steps:    make(map[string]entity.ProcessSteps),
	}
}

func (r *fakeEmailRepo) Save(context.Context, *entity.Email) error { return nil }

func (r *fakeEmailRepo) FindUnprocessed(_ context.Context, limit int) ([]*entity.Email, error) {
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *fakeEmailRepo) FindImports(context.Context, repository.ImportFilter) ([]*entity.Email, error) {
	return nil, nil
}

func (r *fakeEmailRepo) GetLastEmail(context.Context) (*entity.Email, error) { return nil, nil }

func (r *fakeEmailRepo) ResetProcessingEmails(context.Context, time.Duration) (int64, error) {
	r.reset++
	return 0, nil
}

func (r *fakeEmailRepo) FindByEmailIDs(context.Context, []string) (map[string]*entity.Email, error) {
	return map[string]*entity.Email{}, nil
}

func (r *fakeEmailRepo) UpdateStatusByEmailID(_ context.Context, emailID string, status string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[emailID] = status
	return nil
}

func (r *fakeEmailRepo) MarkAsProcessedByEmailID(_ context.Context, emailID string, outcome entity.ImportOutcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[emailID] = outcome.Status
	r.marks[emailID] = outcome
	return nil
}

func (r *fakeEmailRepo) UpdateProcessStepsByEmailID(_ context.Context, emailID string, steps entity.ProcessSteps) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[emailID] = steps
	return nil
}

// stubParser returns a ticket whose PNR is the raw input
type stubParser struct {
	inputs []string
}

func (p *stubParser) Parse(_ context.Context, raw string) *entity.ParsedTicket {
	p.inputs = append(p.inputs, raw)
	return &entity.ParsedTicket{
		PNR:           raw,
		DepartureTime: entity.NotAvailable,
		Duration:      entity.NotAvailable,
		Passengers:    []entity.ParsedPassenger{{Name: "Passenger 1"}},
	}
}

func parsedTickets(pnrs ...string) []*entity.ParsedTicket {
	out := make([]*entity.ParsedTicket, len(pnrs))
	for i, pnr := range pnrs {
		out[i] = &entity.ParsedTicket{PNR: pnr}
	}
	return out
}

var (
	_ repository.TicketRepository = (*fakeTicketRepo)(nil)
	_ repository.EmailRepository  = (*fakeEmailRepo)(nil)
)
