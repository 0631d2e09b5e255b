package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/metrics"
	"github.com/ashureev/talentscout/internal/provider"
	"github.com/ashureev/talentscout/internal/store"
)

// Controller governs every transition of a Session. It holds no session
// state and may be shared across sessions.
type Controller struct {
	provider    provider.QuestionProvider
	sink        store.Sink
	recorder    metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
	maxAttempts int
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithMaxGenerateAttempts bounds provider calls per session. Zero means
// unlimited: a failing provider holds the session at the generation step.
func WithMaxGenerateAttempts(n int) Option {
	return func(c *Controller) { c.maxAttempts = n }
}

// NewController creates a controller over a question provider and a sink.
func NewController(p provider.QuestionProvider, sink store.Sink, opts ...Option) *Controller {
	c := &Controller{
		provider: p,
		sink:     sink,
		recorder: metrics.Nop{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Confirm validates and stores the answer for the current fixed or
// generated question, then advances. A blank answer leaves the session
// untouched.
func (c *Controller) Confirm(s *Session, value string) error {
	phase := s.Phase()
	switch phase.Kind {
	case PhaseFixed:
		if err := s.answers.SetFixed(s.questions[phase.Index].Key, value); err != nil {
			return err
		}
	case PhaseDynamic:
		if err := s.setDynamic(phase.Index, value); err != nil {
			return err
		}
	case PhaseSubmitted:
		return ErrAlreadySubmitted
	default:
		return fmt.Errorf("%w: confirm in %s", ErrWrongPhase, phase)
	}
	s.advance()
	c.logger.Debug("Step confirmed", "session_id", s.ID, "phase", phase.String(), "cursor", s.cursor)
	return nil
}

// Advance moves past the current step once its answer has been accepted.
func (c *Controller) Advance(s *Session) error {
	phase := s.Phase()
	switch phase.Kind {
	case PhaseFixed:
		if _, ok := s.answers.Fixed(s.questions[phase.Index].Key); !ok {
			return ErrNotAnswered
		}
	case PhaseGenerate:
		if !s.generated {
			return ErrNotAnswered
		}
	case PhaseDynamic:
		if _, ok := s.answers.Dynamic(phase.Index); !ok {
			return ErrNotAnswered
		}
	case PhaseSubmitted:
		return ErrAlreadySubmitted
	default:
		return fmt.Errorf("%w: advance in %s", ErrWrongPhase, phase)
	}
	s.advance()
	return nil
}

// Retreat steps back one question within the fixed or generated region.
// The first question of each region cannot be stepped back from.
func (c *Controller) Retreat(s *Session) error {
	phase := s.Phase()
	switch phase.Kind {
	case PhaseFixed, PhaseDynamic:
		if phase.Index == 0 {
			return ErrRetreatRefused
		}
	case PhaseSubmitted:
		return ErrAlreadySubmitted
	default:
		return ErrRetreatRefused
	}
	s.cursor--
	return nil
}

// CanRetreat reports whether Retreat would move the cursor.
func CanRetreat(s *Session) bool {
	phase := s.Phase()
	return (phase.Kind == PhaseFixed || phase.Kind == PhaseDynamic) && phase.Index > 0
}

// Generate asks the provider for follow-up questions based on the stored
// tech stack. On failure the cursor stays at the generation step and the
// caller may retry. Questions are generated at most once per session; once
// installed, passing the step again only advances.
func (c *Controller) Generate(ctx context.Context, s *Session) error {
	phase := s.Phase()
	if phase.Kind == PhaseSubmitted {
		return ErrAlreadySubmitted
	}
	if phase.Kind != PhaseGenerate {
		return fmt.Errorf("%w: generate in %s", ErrWrongPhase, phase)
	}
	if s.generated {
		s.advance()
		return nil
	}
	if s.exhausted {
		return ErrGenerateExhausted
	}

	techStack, _ := s.answers.Fixed(domain.KeyTechStack)
	s.attempts++
	start := time.Now()
	questions, err := c.provider.Generate(ctx, techStack)
	duration := time.Since(start)
	if err != nil {
		kind, ok := provider.FailureKind(err)
		if !ok {
			kind = provider.KindTransport
			err = &provider.Failure{Kind: kind, Err: err}
		}
		c.recorder.ObserveGenerate(string(kind), 0, duration)
		if c.maxAttempts > 0 && s.attempts >= c.maxAttempts {
			s.exhausted = true
		}
		c.logger.Warn("Question generation failed, holding at generate step",
			"session_id", s.ID,
			"attempt", s.attempts,
			"kind", kind,
			"exhausted", s.exhausted,
			"error", err)
		return err
	}

	c.recorder.ObserveGenerate("", len(questions), duration)
	s.installQuestions(questions)
	s.advance()
	c.logger.Info("Technical questions installed",
		"session_id", s.ID,
		"count", len(questions),
		"attempt", s.attempts)
	return nil
}

// JumpTo moves the cursor from review back to any fixed or generated step
// so it can be edited in place.
func (c *Controller) JumpTo(s *Session, target int) error {
	phase := s.Phase()
	if phase.Kind == PhaseSubmitted {
		return ErrAlreadySubmitted
	}
	if phase.Kind != PhaseReview {
		return fmt.Errorf("%w: edit in %s", ErrWrongPhase, phase)
	}
	if target < 0 || target >= s.TotalSteps() || target == len(s.questions) {
		return fmt.Errorf("%w: step %d", ErrIllegalJump, target)
	}
	s.cursor = target
	c.logger.Debug("Jumped to step for edit", "session_id", s.ID, "cursor", target)
	return nil
}

// EditFixed jumps to the fixed question with key.
func (c *Controller) EditFixed(s *Session, key string) error {
	i := domain.IndexOfKey(s.questions, key)
	if i < 0 {
		return fmt.Errorf("%w: unknown field %q", ErrIllegalJump, key)
	}
	return c.JumpTo(s, i)
}

// EditDynamic jumps to generated question index.
func (c *Controller) EditDynamic(s *Session, index int) error {
	if index < 0 || index >= len(s.dynamicQuestions) {
		return fmt.Errorf("%w: question %d", ErrIllegalJump, index)
	}
	return c.JumpTo(s, len(s.questions)+1+index)
}

// Submit stores the completed session as a candidate record. It succeeds
// at most once; a sink failure leaves the session at review for retry.
func (c *Controller) Submit(ctx context.Context, s *Session) (domain.CandidateRecord, error) {
	phase := s.Phase()
	if phase.Kind == PhaseSubmitted {
		return domain.CandidateRecord{}, ErrAlreadySubmitted
	}
	if phase.Kind != PhaseReview {
		return domain.CandidateRecord{}, fmt.Errorf("%w: submit in %s", ErrWrongPhase, phase)
	}
	if !s.complete() {
		return domain.CandidateRecord{}, ErrNotAnswered
	}

	rec := s.buildRecord(c.now())
	if err := c.sink.Append(ctx, store.Submission{SessionID: s.ID, Record: rec}); err != nil {
		c.recorder.ObserveSubmission(c.sink.Name(), metrics.OutcomeFailure)
		c.logger.Error("Failed to store candidate", "session_id", s.ID, "backend", c.sink.Name(), "error", err)
		return domain.CandidateRecord{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	c.recorder.ObserveSubmission(c.sink.Name(), metrics.OutcomeSuccess)
	s.record = &rec
	c.logger.Info("Application submitted",
		"session_id", s.ID,
		"backend", c.sink.Name(),
		"technical_questions", len(rec.TechnicalQuestions))
	return rec, nil
}
