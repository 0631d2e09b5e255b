package intake

import (
	"context"
	"fmt"
)

// ActionType names an applicant action.
type ActionType string

const (
	ActionConfirm  ActionType = "confirm"
	ActionBack     ActionType = "back"
	ActionGenerate ActionType = "generate"
	ActionEdit     ActionType = "edit"
	ActionSubmit   ActionType = "submit"
)

// Action is one applicant action as received from any surface.
type Action struct {
	Type  ActionType `json:"type"`
	Value string     `json:"value,omitempty"`
	Key   string     `json:"key,omitempty"`
	Index *int       `json:"index,omitempty"`
}

// Apply dispatches an action to the matching controller operation.
func (c *Controller) Apply(ctx context.Context, s *Session, a Action) error {
	switch a.Type {
	case ActionConfirm:
		return c.Confirm(s, a.Value)
	case ActionBack:
		return c.Retreat(s)
	case ActionGenerate:
		return c.Generate(ctx, s)
	case ActionEdit:
		switch {
		case a.Key != "":
			return c.EditFixed(s, a.Key)
		case a.Index != nil:
			return c.EditDynamic(s, *a.Index)
		default:
			return fmt.Errorf("%w: edit needs a key or an index", ErrIllegalJump)
		}
	case ActionSubmit:
		_, err := c.Submit(ctx, s)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
}
