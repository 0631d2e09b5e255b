package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultQuestionsOrder(t *testing.T) {
	want := []string{KeyName, KeyEmail, KeyPhone, KeyLocation, KeyExperience, KeyRole, KeyTechStack}
	if diff := cmp.Diff(want, QuestionKeys(DefaultQuestions())); diff != "" {
		t.Errorf("catalog keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultQuestionsReturnsCopy(t *testing.T) {
	qs := DefaultQuestions()
	qs[0].Prompt = "changed"
	if DefaultQuestions()[0].Prompt == "changed" {
		t.Error("DefaultQuestions must not expose the shared catalog")
	}
}

func TestWithPrompts(t *testing.T) {
	qs := WithPrompts(DefaultQuestions(), map[string]string{
		KeyName:  "Your name, please:",
		KeyRole:  "   ",
		"absent": "ignored",
	})
	if qs[0].Prompt != "Your name, please:" {
		t.Errorf("name prompt not overridden: %q", qs[0].Prompt)
	}
	if qs[5].Prompt != "Desired Role:" {
		t.Errorf("blank override must keep default, got %q", qs[5].Prompt)
	}
	if len(qs) != 7 || qs[6].Key != KeyTechStack {
		t.Errorf("overrides must not change keys or order")
	}
}

func TestKeyLabel(t *testing.T) {
	tests := map[string]string{
		"tech_stack": "Tech Stack",
		"name":       "Name",
		"experience": "Experience",
	}
	for key, want := range tests {
		if got := KeyLabel(key); got != want {
			t.Errorf("KeyLabel(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestIndexOfKey(t *testing.T) {
	qs := DefaultQuestions()
	if got := IndexOfKey(qs, KeyTechStack); got != 6 {
		t.Errorf("IndexOfKey(tech_stack) = %d", got)
	}
	if got := IndexOfKey(qs, "nickname"); got != -1 {
		t.Errorf("IndexOfKey(nickname) = %d", got)
	}
}
