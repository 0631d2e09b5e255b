package intake

import (
	"fmt"

	"github.com/ashureev/talentscout/internal/domain"
)

// ReviewItem is one editable line of the review step.
type ReviewItem struct {
	Kind     string `json:"kind"`
	Key      string `json:"key,omitempty"`
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Question string `json:"question,omitempty"`
	Value    string `json:"value"`
}

// View is everything a surface needs to render the current step.
type View struct {
	SessionID  string                  `json:"session_id"`
	Phase      string                  `json:"phase"`
	Index      int                     `json:"index"`
	Cursor     int                     `json:"cursor"`
	TotalSteps int                     `json:"total_steps"`
	Key        string                  `json:"key,omitempty"`
	Prompt     string                  `json:"prompt,omitempty"`
	Value      string                  `json:"value"`
	CanRetreat bool                    `json:"can_retreat"`
	Notice     string                  `json:"notice,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Retryable  bool                    `json:"retryable,omitempty"`
	Review     []ReviewItem            `json:"review,omitempty"`
	Record     *domain.CandidateRecord `json:"record,omitempty"`
}

// Render builds the view of the session's current step. Re-entered steps
// carry the stored answer in Value.
func Render(s *Session) View {
	phase := s.Phase()
	v := View{
		SessionID:  s.ID,
		Phase:      phase.Kind.String(),
		Index:      phase.Index,
		Cursor:     s.cursor,
		TotalSteps: s.TotalSteps(),
		CanRetreat: CanRetreat(s),
	}

	switch phase.Kind {
	case PhaseFixed:
		q := s.questions[phase.Index]
		v.Key = q.Key
		v.Prompt = q.Prompt
		v.Value, _ = s.answers.Fixed(q.Key)
	case PhaseGenerate:
		name, _ := s.answers.Fixed(domain.KeyName)
		stack, _ := s.answers.Fixed(domain.KeyTechStack)
		v.Notice = fmt.Sprintf("Alright %s, let's move to a few technical questions based on your skills in %s.", name, stack)
	case PhaseDynamic:
		v.Prompt = s.dynamicQuestions[phase.Index]
		v.Value, _ = s.answers.Dynamic(phase.Index)
	case PhaseReview:
		v.Prompt = "Review Your Application"
		v.Review = reviewItems(s)
	case PhaseSubmitted:
		name, _ := s.answers.Fixed(domain.KeyName)
		v.Notice = fmt.Sprintf("Thank you %s! Your application has been submitted. We'll contact you if you're shortlisted.", name)
		rec := *s.record
		v.Record = &rec
	}
	return v
}

// RenderError renders the session and attaches the applicant-facing
// description of err.
func RenderError(s *Session, err error) View {
	v := Render(s)
	v.Error, v.Retryable = Describe(err, s.Phase())
	return v
}

func reviewItems(s *Session) []ReviewItem {
	items := make([]ReviewItem, 0, len(s.questions)+len(s.dynamicQuestions))
	for i, q := range s.questions {
		value, _ := s.answers.Fixed(q.Key)
		items = append(items, ReviewItem{
			Kind:  "fixed",
			Key:   q.Key,
			Index: i,
			Label: q.Label(),
			Value: value,
		})
	}
	for i, q := range s.dynamicQuestions {
		value, _ := s.answers.Dynamic(i)
		items = append(items, ReviewItem{
			Kind:     "dynamic",
			Index:    i,
			Label:    fmt.Sprintf("Q%d", i+1),
			Question: q,
			Value:    value,
		})
	}
	return items
}
