// Package domain contains core domain types for the TalentScout intake service.
package domain

import (
	"strings"
)

// Keys of the fixed intake fields, in collection order.
const (
	KeyName       = "name"
	KeyEmail      = "email"
	KeyPhone      = "phone"
	KeyLocation   = "location"
	KeyExperience = "experience"
	KeyRole       = "role"
	KeyTechStack  = "tech_stack"
)

// FixedQuestion is one of the predetermined intake prompts.
type FixedQuestion struct {
	Prompt string `json:"prompt" yaml:"prompt"`
	Key    string `json:"key" yaml:"key"`
}

// Label returns the human readable review label for the question's key.
func (q FixedQuestion) Label() string {
	return KeyLabel(q.Key)
}

var defaultQuestions = []FixedQuestion{
	{Prompt: "What's your full name?", Key: KeyName},
	{Prompt: "Email Address:", Key: KeyEmail},
	{Prompt: "Phone Number:", Key: KeyPhone},
	{Prompt: "Current Location:", Key: KeyLocation},
	{Prompt: "Years of Experience:", Key: KeyExperience},
	{Prompt: "Desired Role:", Key: KeyRole},
	{Prompt: "List your tech stack (comma separated):", Key: KeyTechStack},
}

// DefaultQuestions returns a fresh copy of the fixed question catalog.
func DefaultQuestions() []FixedQuestion {
	out := make([]FixedQuestion, len(defaultQuestions))
	copy(out, defaultQuestions)
	return out
}

// QuestionKeys returns the catalog keys in order.
func QuestionKeys(questions []FixedQuestion) []string {
	keys := make([]string, len(questions))
	for i, q := range questions {
		keys[i] = q.Key
	}
	return keys
}

// IndexOfKey returns the catalog position of key, or -1.
func IndexOfKey(questions []FixedQuestion, key string) int {
	for i, q := range questions {
		if q.Key == key {
			return i
		}
	}
	return -1
}

// WithPrompts returns a copy of questions with prompt wording replaced for
// every key present in overrides. Keys and order never change.
func WithPrompts(questions []FixedQuestion, overrides map[string]string) []FixedQuestion {
	out := make([]FixedQuestion, len(questions))
	for i, q := range questions {
		if p := strings.TrimSpace(overrides[q.Key]); p != "" {
			q.Prompt = p
		}
		out[i] = q
	}
	return out
}

// KeyLabel turns a field key such as "tech_stack" into "Tech Stack".
func KeyLabel(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
