// Package intake implements the step-sequenced applicant intake flow: fixed
// questions, a generation step, generated follow-up questions and a review.
package intake

import "fmt"

// PhaseKind names the region of the flow a cursor falls into.
type PhaseKind int

const (
	PhaseFixed PhaseKind = iota
	PhaseGenerate
	PhaseDynamic
	PhaseReview
	PhaseSubmitted
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseFixed:
		return "fixed"
	case PhaseGenerate:
		return "generate"
	case PhaseDynamic:
		return "dynamic"
	case PhaseReview:
		return "review"
	case PhaseSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("PhaseKind(%d)", int(k))
	}
}

// Phase is the meaning of the cursor. Index is only set for PhaseFixed and
// PhaseDynamic and is relative to that region.
type Phase struct {
	Kind  PhaseKind
	Index int
}

func (p Phase) String() string {
	switch p.Kind {
	case PhaseFixed, PhaseDynamic:
		return fmt.Sprintf("%s(%d)", p.Kind, p.Index)
	default:
		return p.Kind.String()
	}
}

// Fixed returns the phase for fixed question i.
func Fixed(i int) Phase { return Phase{Kind: PhaseFixed, Index: i} }

// Dynamic returns the phase for generated question i.
func Dynamic(i int) Phase { return Phase{Kind: PhaseDynamic, Index: i} }

var (
	Generate  = Phase{Kind: PhaseGenerate}
	Review    = Phase{Kind: PhaseReview}
	Submitted = Phase{Kind: PhaseSubmitted}
)

// TotalSteps is the cursor value of the review step: every fixed question,
// the generation step, every generated question.
func TotalSteps(fixedCount, dynamicCount int) int {
	return fixedCount + 1 + dynamicCount
}

// PhaseOf maps a cursor to its phase. A cursor outside [0, TotalSteps] is a
// programming error and panics with a *ContractViolation.
func PhaseOf(cursor, fixedCount, dynamicCount int) Phase {
	review := TotalSteps(fixedCount, dynamicCount)
	switch {
	case cursor < 0 || cursor > review:
		violate("phase", "cursor %d outside [0, %d]", cursor, review)
	case cursor < fixedCount:
		return Fixed(cursor)
	case cursor == fixedCount:
		return Generate
	case cursor < review:
		return Dynamic(cursor - fixedCount - 1)
	}
	return Review
}
