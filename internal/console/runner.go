package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/intake"
)

// BackCommand typed at any question steps back one question.
const BackCommand = ":back"

const submitOption = "Submit application"

// Runner drives one session to completion through a PromptDriver.
type Runner struct {
	controller *intake.Controller
	driver     PromptDriver
	logger     *slog.Logger
}

// NewRunner creates a terminal intake runner.
func NewRunner(controller *intake.Controller, driver PromptDriver, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{controller: controller, driver: driver, logger: logger}
}

// Run asks every question of s, lets the applicant review and edit, and
// submits. It returns the stored record, or ErrAborted if the applicant
// gave up.
func (r *Runner) Run(ctx context.Context, s *intake.Session) (domain.CandidateRecord, error) {
	for {
		view := intake.Render(s)

		var err error
		switch view.Phase {
		case intake.PhaseFixed.String(), intake.PhaseDynamic.String():
			err = r.ask(ctx, s, view)
		case intake.PhaseGenerate.String():
			err = r.generate(ctx, s, view)
		case intake.PhaseReview.String():
			err = r.review(ctx, s, view)
		case intake.PhaseSubmitted.String():
			if err := r.driver.Info(ctx, view.Notice); err != nil {
				return domain.CandidateRecord{}, err
			}
			rec, _ := s.Record()
			return rec, nil
		default:
			return domain.CandidateRecord{}, fmt.Errorf("unexpected phase %q", view.Phase)
		}
		if err != nil {
			return domain.CandidateRecord{}, err
		}
	}
}

func (r *Runner) ask(ctx context.Context, s *intake.Session, view intake.View) error {
	help := fmt.Sprintf("Step %d of %d.", view.Cursor+1, view.TotalSteps)
	if view.CanRetreat {
		help += fmt.Sprintf(" Type %s to return to the previous question.", BackCommand)
	}
	message := view.Prompt
	if view.Phase == intake.PhaseDynamic.String() {
		message = fmt.Sprintf("Q%d: %s", view.Index+1, view.Prompt)
	}

	answer, err := r.driver.Input(ctx, InputConfig{
		Message: message,
		Default: view.Value,
		Help:    help,
	})
	if err != nil {
		return err
	}

	action := intake.Action{Type: intake.ActionConfirm, Value: answer}
	if strings.TrimSpace(answer) == BackCommand {
		action = intake.Action{Type: intake.ActionBack}
	}
	return r.report(ctx, s, r.controller.Apply(ctx, s, action))
}

func (r *Runner) generate(ctx context.Context, s *intake.Session, view intake.View) error {
	if !s.Generated() && s.GenerateAttempts() == 0 {
		if err := r.driver.Info(ctx, view.Notice); err != nil {
			return err
		}
	}

	err := r.controller.Generate(ctx, s)
	if err == nil {
		return nil
	}
	if errors.Is(err, intake.ErrGenerateExhausted) {
		msg, _ := intake.Describe(err, s.Phase())
		if infoErr := r.driver.Info(ctx, msg); infoErr != nil {
			return errors.Join(err, infoErr)
		}
		return err
	}
	if infoErr := r.report(ctx, s, err); infoErr != nil {
		return infoErr
	}
	retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
	if err != nil {
		return err
	}
	if !retry {
		return ErrAborted
	}
	return nil
}

func (r *Runner) review(ctx context.Context, s *intake.Session, view intake.View) error {
	options := make([]string, 0, len(view.Review)+1)
	options = append(options, submitOption)
	for _, item := range view.Review {
		if item.Kind == "dynamic" {
			options = append(options, fmt.Sprintf("Edit %s: %s -> %s", item.Label, item.Question, item.Value))
			continue
		}
		options = append(options, fmt.Sprintf("Edit %s: %s", item.Label, item.Value))
	}

	choice, err := r.driver.Select(ctx, SelectConfig{
		Message:  view.Prompt,
		Options:  options,
		PageSize: len(options),
	})
	if err != nil {
		return err
	}
	if choice == 0 {
		return r.submit(ctx, s)
	}
	if choice < 0 || choice > len(view.Review) {
		return fmt.Errorf("review choice %d out of range", choice)
	}

	item := view.Review[choice-1]
	action := intake.Action{Type: intake.ActionEdit, Key: item.Key}
	if item.Kind == "dynamic" {
		index := item.Index
		action = intake.Action{Type: intake.ActionEdit, Index: &index}
	}
	return r.report(ctx, s, r.controller.Apply(ctx, s, action))
}

func (r *Runner) submit(ctx context.Context, s *intake.Session) error {
	_, err := r.controller.Submit(ctx, s)
	if err == nil {
		return nil
	}
	if infoErr := r.report(ctx, s, err); infoErr != nil {
		return infoErr
	}
	retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Try submitting again?", Default: true})
	if err != nil {
		return err
	}
	if !retry {
		return ErrAborted
	}
	return nil
}

// report shows a recoverable action error to the applicant.
func (r *Runner) report(ctx context.Context, s *intake.Session, err error) error {
	if err == nil {
		return nil
	}
	msg, _ := intake.Describe(err, s.Phase())
	r.logger.Debug("Intake action rejected", "session_id", s.ID, "phase", s.Phase().String(), "error", err)
	return r.driver.Info(ctx, msg)
}
