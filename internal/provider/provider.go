// Package provider generates follow-up interview questions from an
// applicant's skill description.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// QuestionProvider produces an ordered list of follow-up questions for a
// skill description. Implementations issue one request per call and report
// every failure as a *Failure.
type QuestionProvider interface {
	Generate(ctx context.Context, skillDescription string) ([]string, error)
}

// Kind classifies a provider failure.
type Kind string

const (
	// KindTransport covers unreachable services, timeouts and cancellations.
	KindTransport Kind = "transport"
	// KindStatus covers non-2xx responses.
	KindStatus Kind = "status"
	// KindPayload covers responses that could not be turned into questions.
	KindPayload Kind = "payload"
)

// Failure is the single error type returned by providers.
type Failure struct {
	Kind   Kind
	Status int
	Err    error
}

func (f *Failure) Error() string {
	if f.Kind == KindStatus {
		return fmt.Sprintf("question provider: %s failure (HTTP %d): %v", f.Kind, f.Status, f.Err)
	}
	return fmt.Sprintf("question provider: %s failure: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// FailureKind returns the kind of err when it is a *Failure.
func FailureKind(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

// ParseQuestions splits newline-delimited model output into trimmed,
// non-empty lines.
func ParseQuestions(text string) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if q := strings.TrimSpace(line); q != "" {
			out = append(out, q)
		}
	}
	return out
}

// Static returns the same questions for every call.
type Static struct {
	Questions []string
}

// Generate implements QuestionProvider.
func (s Static) Generate(ctx context.Context, _ string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Failure{Kind: KindTransport, Err: err}
	}
	out := make([]string, len(s.Questions))
	copy(out, s.Questions)
	return out, nil
}

var _ QuestionProvider = Static{}
