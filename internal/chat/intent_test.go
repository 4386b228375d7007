package chat

import (
	"strings"
	"testing"
)

var allGreetings = []string{
	"hi", "hello", "hey",
	"good morning", "good afternoon", "good evening",
	"greetings", "howdy", "yo",
}

var allFarewells = []string{
	"bye", "goodbye", "see you", "exit", "quit", "done", "thank you", "thanks",
}

func TestIsGreeting(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"hi", true},
		{"Hello", true},
		{"  hey  ", true},
		{"GOOD MORNING", true},
		{"good  evening", true},
		{"greetings", true},
		{"howdy", true},
		{"yo", true},
		{"hi there", false},
		{"hellos", false},
		{"say hello to him", false},
		{"what is the capital of France?", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsGreeting(tc.text); got != tc.want {
			t.Errorf("IsGreeting(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestIsFarewell(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"bye", true},
		{"Goodbye", true},
		{"see you", true},
		{"  exit ", true},
		{"quit", true},
		{"done", true},
		{"thank you", true},
		{"THANKS", true},
		{"bye bye", false},
		{"thank you very much", false},
		{"i am done with chapter one", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsFarewell(tc.text); got != tc.want {
			t.Errorf("IsFarewell(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestIsFollowUp(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"what about it?", true},
		{"tell me more", true},
		{"does the document cover pricing", true},
		{"as mentioned earlier", true},
		{"and population?", true},
		{"why", true},
		{"what's next", true},
		{"how come", true},
		{"summarize chapter two of report.pdf in detail", false},
		{"capital of France", false},
		{"list all invoices from January", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsFollowUp(tc.text); got != tc.want {
			t.Errorf("IsFollowUp(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

// A greeting must classify only as a greeting: never as a farewell,
// never as a follow-up. Same exclusivity for farewells.
func TestIntentExclusivity(t *testing.T) {
	for _, g := range allGreetings {
		for _, variant := range []string{g, strings.ToUpper(g), "  " + g + "  "} {
			if !IsGreeting(variant) {
				t.Errorf("IsGreeting(%q) = false", variant)
			}
			if IsFarewell(variant) {
				t.Errorf("IsFarewell(%q) = true for a greeting", variant)
			}
			if IsFollowUp(variant) {
				t.Errorf("IsFollowUp(%q) = true for a greeting", variant)
			}
		}
	}
	for _, f := range allFarewells {
		if !IsFarewell(f) {
			t.Errorf("IsFarewell(%q) = false", f)
		}
		if IsGreeting(f) {
			t.Errorf("IsGreeting(%q) = true for a farewell", f)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"hello", IntentGreeting},
		{"bye", IntentFarewell},
		{"and population?", IntentFollowUp},
		{"what did the article say about revenue", IntentFollowUp},
		{"list all invoices from January", IntentFresh},
		{"summarize chapter two of report.pdf in detail", IntentFresh},
	}
	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestGreetingResponse(t *testing.T) {
	if got := GreetingResponse("hello"); got != "Hello! How can I help you with your documents today?" {
		t.Errorf("GreetingResponse(hello) = %q", got)
	}
	if got := GreetingResponse("  Good Morning  "); got != "Good morning! How may I assist you?" {
		t.Errorf("GreetingResponse(good morning) = %q", got)
	}
	// Unknown greeting words fall back to the default reply.
	if got := GreetingResponse("salutations"); got != "Hello! How can I help you today?" {
		t.Errorf("GreetingResponse(salutations) = %q", got)
	}
}
