package parser

import (
	"testing"

	"railmail-service/internal/domain/entity"
)

func passengersWith(statuses ...string) []entity.ParsedPassenger {
	out := make([]entity.ParsedPassenger, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, entity.ParsedPassenger{Status: NormalizeStatus(s), RawBookingStatus: s})
	}
	return out
}

func TestResolveStatusPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		text     string
		want     entity.BookingStatus
	}{
		{"all confirmed", []string{"CNF", "CNF"}, "", entity.StatusConfirmed},
		{"one rac", []string{"CNF", "RAC"}, "", entity.StatusRAC},
		{"waitlist beats rac", []string{"RAC", "GNWL", "CNF"}, "", entity.StatusWaitlisted},
		{"pqwl alone", []string{"PQWL"}, "", entity.StatusWaitlisted},
		{"cancelled passenger beats waitlist", []string{"WL", "CAN"}, "", entity.StatusCancelled},
		{"lower case raw token", []string{"CNF", "can"}, "", entity.StatusCancelled},
		{"cancellation text", []string{"CNF"}, "Your booking is cancelled as requested", entity.StatusCancelled},
		{"ticket cancelled", []string{"CNF"}, "Ticket cancelled for PNR 4938302790", entity.StatusCancelled},
		{"cancellation of ticket", []string{"RAC"}, "Cancellation of ticket successful", entity.StatusCancelled},
		{"cancellation charges ignored", []string{"CNF"}, "Cancellation charges apply as per rules", entity.StatusConfirmed},
		{"refund on cancellation ignored", []string{"WL"}, "Refund rules on cancellation of e-tickets", entity.StatusWaitlisted},
		{"empty list", nil, "", entity.StatusConfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveStatus(passengersWith(tt.statuses...), tt.text); got != tt.want {
				t.Errorf("ResolveStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

// Any waitlisted passenger without a cancelled one gives a waitlisted ticket.
func TestResolveStatusWaitlistProperty(t *testing.T) {
	pool := []string{"CNF", "RAC", "CNF", "RAC"}
	for n := 0; n <= len(pool); n++ {
		for _, wl := range []string{"WL", "RLWL", "GNWL", "PQWL"} {
			statuses := append(append([]string{}, pool[:n]...), wl)
			if got := ResolveStatus(passengersWith(statuses...), ""); got != entity.StatusWaitlisted {
				t.Errorf("statuses %v -> %s, want WL", statuses, got)
			}
		}
	}
}

func TestBookingStatusLabel(t *testing.T) {
	if got := entity.StatusWaitlisted.Label(); got != "Waitlisted" {
		t.Errorf("label = %q", got)
	}
}
