package conversation

import (
	"testing"

	"voicereach/internal/leads"
)

func TestRenderScript(t *testing.T) {
	lead := leads.Lead{FirstName: "Ana", LastName: "Lee", Company: "Acme", JobTitle: "CTO"}

	cases := []struct {
		name     string
		template string
		want     string
	}{
		{"first and full name", "Hi {firstName}, is this {fullName}?", "Hi Ana, is this Ana Lee?"},
		{"company and title", "{fullName}, {jobTitle} at {company}", "Ana Lee, CTO at Acme"},
		{"unknown placeholder renders empty", "Hello {nickname}!", "Hello !"},
		{"no placeholders", "Good afternoon.", "Good afternoon."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderScript(tc.template, lead); got != tc.want {
				t.Fatalf("RenderScript(%q) = %q, want %q", tc.template, got, tc.want)
			}
		})
	}
}

func TestRenderScript_PartialLead(t *testing.T) {
	lead := leads.Lead{FirstName: "Ana"}
	got := RenderScript("Hi {firstName} {lastName}, {fullName}?", lead)
	if got != "Hi Ana , Ana?" {
		t.Fatalf("got %q", got)
	}
}
