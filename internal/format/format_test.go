package format

import (
	"strings"
	"testing"

	"deskinsight/internal/domain"
)

func TestTopClientsMarkdown(t *testing.T) {
	out := TopClients(Markdown, []domain.ClientIncidentCount{
		{ClientID: 1, Client: "Acme", IncidentCount: 3},
		{ClientID: 2, Client: "Globex", IncidentCount: 1},
	})

	for _, want := range []string{"| # | Client | Incidents |", "| 1 | Acme | 3 |", "| 2 | Globex | 1 |"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestResolutionTimesASCII(t *testing.T) {
	out := ResolutionTimes(ASCII, "Incident types", "Type", []domain.ResolutionTime{{ID: 1, Name: "Red", AvgDays: 3.456, Tickets: 2}})

	if !strings.Contains(out, "Incident types") || !strings.Contains(out, "3.46") || !strings.Contains(out, "Red") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestDays(t *testing.T) {
	v := 2.0
	if got := Days(&v); got != "2.00" {
		t.Fatalf("Days(2) = %q", got)
	}
	if got := Days(nil); got != "-" {
		t.Fatalf("Days(nil) = %q", got)
	}
}
