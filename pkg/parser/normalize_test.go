package parser

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "PNR No. : 4938302790", "PNR No. : 4938302790"},
		{"style and script blocks", "<style type=\"text/css\">td { color: red; }</style>A<script>var x = 1;</script>B", "AB"},
		{"tags become spaces", "<td>Quota</td><td>GENERAL</td>", "Quota GENERAL"},
		{"entities", "Date&nbsp;&amp;&nbsp;Time &lt;b&gt;", "Date & Time <b>"},
		{"double escaped entity", "&amp;lt;", "<"},
		{"numeric references dropped", "Fare &#8377;500", "Fare 500"},
		{"soft line breaks", "NARAYA=\r\nNADRI SF=\nEXP", "NARAYANADRI SFEXP"},
		{"hex escapes", "Rs=2E 768=2E60", "Rs. 768.60"},
		{"lower case hex", "a=3db", "a=b"},
		{"utf-8 escape run", "=E2=82=B9 500", "₹ 500"},
		{"latin-1 escape", "Fare=A0Rs", "Fare Rs"},
		{"whitespace collapse", "PNR\t\n  No.\r\n:", "PNR No. :"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.TrimSpace(Normalize(tt.in))
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotentOnPlainText(t *testing.T) {
	once := Normalize(scenarioA)
	if twice := Normalize(once); twice != once {
		t.Errorf("second pass changed text:\n%q\n%q", once, twice)
	}
}
