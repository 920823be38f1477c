package usecase

import (
	"context"
	"fmt"

	"go-portfolio-site/internal/domain"
	"go-portfolio-site/pkg/validation"
)

type contactUsecase struct {
	validator  domain.ContactValidator
	dispatcher domain.Dispatcher
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(validator domain.ContactValidator, dispatcher domain.Dispatcher) domain.ContactUsecase {
	return &contactUsecase{
		validator:  validator,
		dispatcher: dispatcher,
	}
}

// SubmitContact runs received -> validating -> (rejected | sanitizing -> dispatching -> (delivered | dispatch_failed))
func (uc *contactUsecase) SubmitContact(ctx context.Context, sub domain.ContactSubmission) (*domain.ContactOutcome, error) {
	outcome := &domain.ContactOutcome{State: domain.StateReceived}

	outcome.State = domain.StateValidating
	outcome.Validation = uc.validator.Validate(sub)
	if !outcome.Validation.Valid() {
		outcome.State = domain.StateRejected
		return outcome, nil
	}

	outcome.State = domain.StateSanitizing
	clean, err := validation.SanitizeSubmission(sub, outcome.Validation)
	if err != nil {
		outcome.State = domain.StateDispatchFailed
		return outcome, fmt.Errorf("failed to sanitize submission: %w", err)
	}

	outcome.State = domain.StateDispatching
	report, err := uc.dispatcher.Dispatch(ctx, clean)
	outcome.Report = report
	if err != nil {
		outcome.State = domain.StateDispatchFailed
		return outcome, err
	}

	outcome.State = domain.StateDelivered
	return outcome, nil
}
