package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestConvertToEmailNestedParts(t *testing.T) {
	received := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	msg := &gmail.Message{
		Id:           "18c0ffee",
		LabelIds:     []string{"INBOX"},
		InternalDate: received.UnixMilli(),
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "IRCTC <ticketadmin@irctc.co.in>"},
				{Name: "Subject", Value: "Booking Confirmation on IRCTC, Train: 12733"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{PartId: "0.0", MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("PNR No. : 4938302790")}},
						{PartId: "0.1", MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<b>PNR</b>")}},
					},
				},
				{
					PartId:   "1",
					MimeType: "application/pdf",
					Filename: "ticket.pdf",
					Body:     &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("%PDF-1"))},
				},
			},
		},
	}

	email, err := convertToEmail(msg)
	if err != nil {
		t.Fatalf("convertToEmail: %v", err)
	}
	if email.EmailID != "18c0ffee" || email.Subject != "Booking Confirmation on IRCTC, Train: 12733" {
		t.Errorf("headers = %+v", email)
	}
	if email.Body != "PNR No. : 4938302790" || email.HTMLBody != "<b>PNR</b>" {
		t.Errorf("bodies = %q / %q", email.Body, email.HTMLBody)
	}
	if len(email.Attachments) != 1 || string(email.Attachments[0].Data) != "%PDF-1" {
		t.Errorf("attachments = %+v", email.Attachments)
	}
	if !email.ReceivedAt.Equal(received) {
		t.Errorf("receivedAt = %v", email.ReceivedAt)
	}
}

func TestConvertToEmailWithoutPayload(t *testing.T) {
	if _, err := convertToEmail(&gmail.Message{Id: "x"}); err == nil {
		t.Error("expected an error")
	}
}

func TestBuildQuery(t *testing.T) {
	from := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		base    string
		hasLast bool
		want    string
	}{
		{"from:irctc.co.in", true, "from:irctc.co.in after:2026/01/07"},
		{"", false, "after:2026/01/10"},
		{"  ", true, "after:2026/01/07"},
	}
	for _, tt := range tests {
		if got := buildQuery(tt.base, from, tt.hasLast); got != tt.want {
			t.Errorf("buildQuery(%q, %v) = %q, want %q", tt.base, tt.hasLast, got, tt.want)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	patterns := []string{"booking confirmation", "pnr"}
	if !matchesAny("Booking Confirmation on IRCTC", patterns) {
		t.Error("booking subject should match")
	}
	if !matchesAny("Your PNR status", patterns) {
		t.Error("PNR subject should match")
	}
	if matchesAny("Weekly offers", patterns) {
		t.Error("offer subject should not match")
	}
	if !matchesAny("anything", nil) {
		t.Error("no patterns accepts everything")
	}
}
