package intake

import (
	"time"

	"github.com/ashureev/talentscout/internal/domain"
)

// Session is the full mutable state of one applicant's interaction. It is
// not safe for concurrent use; callers serialise access per session.
type Session struct {
	ID        string
	CreatedAt time.Time

	questions        []domain.FixedQuestion
	cursor           int
	answers          *AnswerStore
	dynamicQuestions []string
	generated        bool
	attempts         int
	exhausted        bool
	record           *domain.CandidateRecord
}

// NewSession starts an empty session over the given fixed catalog.
func NewSession(id string, questions []domain.FixedQuestion) *Session {
	qs := make([]domain.FixedQuestion, len(questions))
	copy(qs, questions)
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		questions: qs,
		answers:   NewAnswerStore(),
	}
}

// Cursor returns the current step.
func (s *Session) Cursor() int { return s.cursor }

// FixedCount returns the number of fixed questions.
func (s *Session) FixedCount() int { return len(s.questions) }

// DynamicCount returns the number of generated questions.
func (s *Session) DynamicCount() int { return len(s.dynamicQuestions) }

// TotalSteps returns the cursor value of the review step.
func (s *Session) TotalSteps() int {
	return TotalSteps(len(s.questions), len(s.dynamicQuestions))
}

// Phase returns the phase of the current cursor, or Submitted.
func (s *Session) Phase() Phase {
	if s.record != nil {
		return Submitted
	}
	return PhaseOf(s.cursor, len(s.questions), len(s.dynamicQuestions))
}

// Questions returns a copy of the fixed catalog.
func (s *Session) Questions() []domain.FixedQuestion {
	out := make([]domain.FixedQuestion, len(s.questions))
	copy(out, s.questions)
	return out
}

// DynamicQuestions returns a copy of the generated questions.
func (s *Session) DynamicQuestions() []string {
	out := make([]string, len(s.dynamicQuestions))
	copy(out, s.dynamicQuestions)
	return out
}

// Generated reports whether question generation has completed.
func (s *Session) Generated() bool { return s.generated }

// GenerateAttempts returns the number of provider calls made.
func (s *Session) GenerateAttempts() int { return s.attempts }

// Answers returns a snapshot of every stored answer.
func (s *Session) Answers() AnswerSnapshot { return s.answers.Snapshot() }

// FixedAnswer returns the stored answer for key.
func (s *Session) FixedAnswer(key string) (string, bool) { return s.answers.Fixed(key) }

// Record returns the submitted record, if any.
func (s *Session) Record() (domain.CandidateRecord, bool) {
	if s.record == nil {
		return domain.CandidateRecord{}, false
	}
	return *s.record, true
}

func (s *Session) advance() {
	if s.cursor >= s.TotalSteps() {
		violate("advance", "cursor %d already at review", s.cursor)
	}
	s.cursor++
}

// installQuestions sets the generated list exactly once.
func (s *Session) installQuestions(questions []string) {
	if s.generated {
		violate("installQuestions", "questions already generated")
	}
	s.dynamicQuestions = make([]string, len(questions))
	copy(s.dynamicQuestions, questions)
	s.generated = true
}

func (s *Session) setDynamic(index int, value string) error {
	if index >= len(s.dynamicQuestions) {
		violate("setDynamic", "index %d beyond %d generated questions", index, len(s.dynamicQuestions))
	}
	return s.answers.SetDynamic(index, value)
}

// complete reports whether every fixed key and generated question has an answer.
func (s *Session) complete() bool {
	for _, q := range s.questions {
		if _, ok := s.answers.Fixed(q.Key); !ok {
			return false
		}
	}
	return s.generated && s.answers.DynamicLen() == len(s.dynamicQuestions)
}

func (s *Session) buildRecord(now time.Time) domain.CandidateRecord {
	rec := domain.CandidateRecord{
		Fields:             make([]domain.Field, 0, len(s.questions)),
		TechnicalQuestions: make([]domain.QAPair, len(s.dynamicQuestions)),
		Timestamp:          now,
	}
	for _, q := range s.questions {
		v, _ := s.answers.Fixed(q.Key)
		rec.Fields = append(rec.Fields, domain.Field{Key: q.Key, Value: v})
	}
	for i, q := range s.dynamicQuestions {
		a, _ := s.answers.Dynamic(i)
		rec.TechnicalQuestions[i] = domain.QAPair{Question: q, Answer: a}
	}
	return rec
}
