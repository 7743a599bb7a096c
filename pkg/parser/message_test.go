package parser

import (
	"context"
	"strings"
	"testing"
)

func TestMessageTextMultipart(t *testing.T) {
	raw := "From: ticketadmin@irctc.co.in\r\n" +
		"Subject: Booking Confirmation on IRCTC\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"XYZ\"\r\n" +
		"\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		"UE5SIE5vLiA6IDQ5MzgzMDI3\r\n" +
		"OTA=\r\n" +
		"--XYZ\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>html copy</p>\r\n" +
		"--XYZ--\r\n"

	got := MessageText([]byte(raw))
	if got != "PNR No. : 4938302790" {
		t.Errorf("MessageText = %q", got)
	}
}

func TestMessageTextHTMLOnlyQuotedPrintable(t *testing.T) {
	raw := "Subject: Booking\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"<td>Total Fare</td><td>=E2=82=B9 1,=\r\n250.50</td>\r\n"

	got := MessageText([]byte(raw))
	if !strings.Contains(got, "₹ 1,250.50") {
		t.Errorf("MessageText = %q", got)
	}
}

func TestMessageTextNotAMessage(t *testing.T) {
	raw := "PNR No. : 4938302790 Train No. / Name : 12733 / NARAYANADRI SF"
	if got := MessageText([]byte(raw)); got != raw {
		t.Errorf("MessageText = %q, want input unchanged", got)
	}
}

func TestMessageTextPlainStubWithHTMLTicket(t *testing.T) {
	raw := "From: ticketadmin@irctc.co.in\r\n" +
		"Subject: Booking Confirmation on IRCTC\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"ALT\"\r\n" +
		"\r\n" +
		"--ALT\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"This email is best viewed in an HTML capable client.\r\n" +
		"--ALT\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"<table><tr><td>PNR No. : 4938302790</td></tr>=\r\n" +
		"<tr><td>Train No. / Name : 12733 / NARAYANADRI SF Quota : GENERAL</td></tr>\r\n" +
		"<tr><td>1 P NARENDER RAJU 53 Male N/A CNF S6 10</td></tr></table>\r\n" +
		"--ALT--\r\n"

	ticket := newTestParser(nil).Parse(context.Background(), MessageText([]byte(raw)))

	if ticket.PNR != "4938302790" || ticket.TrainNumber != "12733" {
		t.Errorf("pnr/train = %s/%s", ticket.PNR, ticket.TrainNumber)
	}
	if len(ticket.Passengers) != 1 || ticket.Passengers[0].Name != "P NARENDER RAJU" {
		t.Errorf("passengers = %+v", ticket.Passengers)
	}
}

func TestSelectBody(t *testing.T) {
	stub := "This email is best viewed in an HTML capable client."
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"plain with pnr wins", []string{"PNR No. : 4938302790", "<b>PNR No. : 1111111111</b>"}, "PNR No. : 4938302790"},
		{"html with pnr beats stub", []string{stub, "<p>PNR : 4938302790</p>"}, "<p>PNR : 4938302790</p>"},
		{"no pnr picks longest", []string{"hi", "<p>Your journey details follow</p>"}, "<p>Your journey details follow</p>"},
		{"empty parts skipped", []string{"", "  ", "plain"}, "plain"},
		{"nothing", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectBody(tt.parts...); got != tt.want {
				t.Errorf("SelectBody = %q, want %q", got, tt.want)
			}
		})
	}
}
