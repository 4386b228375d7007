// Package chat implements the conversation core: utterance
// classification, history condensation, bounded session state and the
// answer orchestrator behind the chat endpoints.
package chat

import (
	"regexp"
	"strings"
)

// Intent labels an incoming user message.
type Intent int

const (
	// IntentFresh is a standalone question requiring retrieval.
	IntentFresh Intent = iota
	// IntentGreeting is a conversational opener with no question.
	IntentGreeting
	// IntentFarewell closes the conversation.
	IntentFarewell
	// IntentFollowUp is a question that depends on prior turns.
	IntentFollowUp
)

func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentFarewell:
		return "farewell"
	case IntentFollowUp:
		return "follow_up"
	default:
		return "fresh"
	}
}

var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*h(i|ello|ey)\s*$`),
	regexp.MustCompile(`^\s*good\s*(morning|afternoon|evening)\s*$`),
	regexp.MustCompile(`^\s*greetings\s*$`),
	regexp.MustCompile(`^\s*howdy\s*$`),
	regexp.MustCompile(`^\s*yo\s*$`),
}

var farewellPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*bye\s*$`),
	regexp.MustCompile(`^\s*goodbye\s*$`),
	regexp.MustCompile(`^\s*see\s*you\s*$`),
	regexp.MustCompile(`^\s*exit\s*$`),
	regexp.MustCompile(`^\s*quit\s*$`),
	regexp.MustCompile(`^\s*done\s*$`),
	regexp.MustCompile(`^\s*thank\s*you\s*$`),
	regexp.MustCompile(`^\s*thanks\s*$`),
}

var followUpIndicators = []*regexp.Regexp{
	regexp.MustCompile(`\b(it|this|that|these|those|they|them|he|she|him|her)\b`),
	regexp.MustCompile(`\b(the document|the article|the paper|the text)\b`),
	regexp.MustCompile(`\b(more|further|additional|else|another)\b`),
	regexp.MustCompile(`\bmentioned\b`),
	regexp.MustCompile(`\bearlier\b`),
	regexp.MustCompile(`\babove\b`),
	regexp.MustCompile(`\bagain\b`),
}

// Classify labels a message with exactly one intent. Greeting and
// farewell take precedence over follow-up detection.
func Classify(text string) Intent {
	switch {
	case IsGreeting(text):
		return IntentGreeting
	case IsFarewell(text):
		return IntentFarewell
	case IsFollowUp(text):
		return IntentFollowUp
	default:
		return IntentFresh
	}
}

// IsGreeting reports whether the entire trimmed message is a greeting.
func IsGreeting(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, p := range greetingPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IsFarewell reports whether the entire trimmed message is a farewell.
func IsFarewell(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, p := range farewellPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IsFollowUp reports whether a message looks like it depends on prior
// turns: it contains a referential term, or it is shorter than four
// words and reads like a question.
func IsFollowUp(text string) bool {
	text = strings.ToLower(text)
	for _, p := range followUpIndicators {
		if p.MatchString(text) {
			return true
		}
	}
	words := strings.Fields(text)
	if len(words) > 0 && len(words) < 4 {
		if strings.Contains(text, "?") {
			return true
		}
		// First-word match only, so greetings like "howdy" stay out.
		switch strings.Trim(words[0], "?!.,") {
		case "what", "what's", "how", "how's", "why", "why's":
			return true
		}
	}
	return false
}

var greetingResponseOrder = []string{
	"hi", "hello", "hey",
	"good morning", "good afternoon", "good evening",
	"greetings", "howdy", "yo",
}

var greetingResponses = map[string]string{
	"hi":             "Hello! How can I help you today?",
	"hello":          "Hello! How can I help you with your documents today?",
	"hey":            "Hey there! What would you like to know?",
	"good morning":   "Good morning! How may I assist you?",
	"good afternoon": "Good afternoon! What can I help you with?",
	"good evening":   "Good evening! Feel free to ask me anything about your documents.",
	"greetings":      "Greetings! How can I be of service?",
	"howdy":          "Howdy! What information are you looking for?",
	"yo":             "Hello there! What can I help you with today?",
}

// GreetingResponse picks a reply matching the greeting word used.
func GreetingResponse(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, key := range greetingResponseOrder {
		if strings.Contains(text, key) {
			return greetingResponses[key]
		}
	}
	return "Hello! How can I help you today?"
}

// FarewellResponse is the canned reply to any farewell message.
const FarewellResponse = "Thank you for chatting with me. Have a great day! If you need any more information later, feel free to return."
