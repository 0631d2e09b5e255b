package intake

import (
	"errors"
	"fmt"

	"github.com/ashureev/talentscout/internal/provider"
)

var (
	// ErrBlankAnswer is returned when a confirmed answer is empty after trimming.
	ErrBlankAnswer = errors.New("answer must not be blank")
	// ErrWrongPhase is returned when an action is not legal in the current phase.
	ErrWrongPhase = errors.New("action not allowed in current phase")
	// ErrRetreatRefused is returned when stepping back from the first item of a region.
	ErrRetreatRefused = errors.New("cannot step back from here")
	// ErrIllegalJump is returned for an edit target outside the editable steps.
	ErrIllegalJump = errors.New("illegal edit target")
	// ErrNotAnswered is returned when advancing past a step without an accepted answer.
	ErrNotAnswered = errors.New("current step has no accepted answer")
	// ErrAlreadySubmitted is returned for any mutation after submission.
	ErrAlreadySubmitted = errors.New("application already submitted")
	// ErrGenerateExhausted is returned once the generation attempt budget is spent.
	ErrGenerateExhausted = errors.New("question generation attempts exhausted")
	// ErrUnknownAction is returned for an action type no surface defines.
	ErrUnknownAction = errors.New("unknown action")
	// ErrPersistence wraps submission sink failures.
	ErrPersistence = errors.New("failed to store application")
)

// ContractViolation reports misuse of the intake API that would break the
// session invariants. It is raised with panic and never returned.
type ContractViolation struct {
	Op     string
	Detail string
}

func (v *ContractViolation) Error() string {
	return fmt.Sprintf("intake: contract violation in %s: %s", v.Op, v.Detail)
}

func violate(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// Describe turns an action error into a message for the applicant and
// reports whether repeating the same action may succeed.
func Describe(err error, phase Phase) (string, bool) {
	var failure *provider.Failure
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, ErrBlankAnswer):
		if phase.Kind == PhaseDynamic {
			return "Please write your answer before continuing.", false
		}
		return "Please fill out this field before proceeding.", false
	case errors.Is(err, ErrGenerateExhausted):
		return "Could not fetch technical questions. Please come back later.", false
	case errors.As(err, &failure):
		return "Could not fetch technical questions. Try again later.", true
	case errors.Is(err, ErrPersistence):
		return "Your application could not be saved. Please try submitting again.", true
	default:
		return err.Error(), false
	}
}
