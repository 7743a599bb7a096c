package usecase

import (
	"context"
	"errors"
	"testing"

	"railmail-service/internal/domain/entity"
	"railmail-service/pkg/logger"
)

// listRouter is a minimal SubjectRouter
type listRouter struct {
	handlers []TemplateHandler
}

func (r *listRouter) Register(h TemplateHandler) { r.handlers = append(r.handlers, h) }

func (r *listRouter) GetHandler(subject string) TemplateHandler {
	for _, h := range r.handlers {
		if h.CanHandle(subject) {
			return h
		}
	}
	return nil
}

type failingProcessor struct{}

func (failingProcessor) ProcessTicketMessage(context.Context, string, string) error {
	return errors.New("boom")
}

func TestProcessPendingEmailsRoutesBySubject(t *testing.T) {
	emails := newFakeEmailRepo(
		&entity.Email{EmailID: "a", Subject: "Booking Confirmation on IRCTC, Train: 12733", Body: "4938302790"},
		&entity.Email{EmailID: "b", Subject: "Weekly newsletter", Body: "hello"},
		&entity.Email{EmailID: "c", Subject: "IRCTC e-ticket", HTMLBody: "<p>1234567890</p>"},
	)
	tickets := newFakeTicketRepo()
	parser := &stubParser{}
	processor := NewTicketProcessor(parser, tickets, emails, nil, logger.NewNopLogger())

	router := &listRouter{}
	router.Register(NewTicketHandlerAdapter(processor, "irctc_ticket", DefaultTicketSubjects))
	o := NewEmailOrchestrator(emails, router, nil, logger.NewNopLogger())

	if err := o.ProcessPendingEmails(context.Background()); err != nil {
		t.Fatalf("ProcessPendingEmails: %v", err)
	}

	if emails.reset != 1 {
		t.Errorf("reset calls = %d, want 1", emails.reset)
	}
	want := map[string]string{
		"a": entity.StatusCompleted,
		"b": entity.StatusSkipped,
		"c": entity.StatusCompleted,
	}
	for id, status := range want {
		if emails.statuses[id] != status {
			t.Errorf("email %s status = %s, want %s", id, emails.statuses[id], status)
		}
	}
	if len(parser.inputs) != 2 || parser.inputs[1] != "<p>1234567890</p>" {
		t.Errorf("parsed inputs = %q", parser.inputs)
	}
}

func TestProcessEmailHandlerFailureMarksFailed(t *testing.T) {
	emails := newFakeEmailRepo()
	router := &listRouter{}
	router.Register(NewTicketHandlerAdapter(failingProcessor{}, "irctc_ticket", []string{"IRCTC"}))
	o := NewEmailOrchestrator(emails, router, nil, logger.NewNopLogger())

	err := o.ProcessEmail(context.Background(), &entity.Email{EmailID: "x", Subject: "IRCTC booking"})
	if err != nil {
		t.Fatalf("ProcessEmail returned %v, want nil", err)
	}
	mark := emails.marks["x"]
	if mark.Status != entity.StatusFailed || mark.ErrorDetail != "boom" || mark.ProcessorType != "irctc_ticket" {
		t.Errorf("mark = %+v", mark)
	}
}
