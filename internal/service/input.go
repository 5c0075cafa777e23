package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"pair-tasks/internal/apperr"
	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TaskInput represents data required to create a task.
type TaskInput struct {
	PairID      pairing.PairID  `validate:"gte=0"`
	Sender      pairing.Account `validate:"gte=0"`
	Recipient   pairing.Account `validate:"gte=0"`
	Title       string          `validate:"required,max=200"`
	Description string          `validate:"max=1000"`
	StartDate   string          `validate:"omitempty,datetime=2006-01-02"`
	TargetDays  int             `validate:"gte=0,lte=366"`
	Pledge      *model.Pledge   `validate:"omitempty"`
}

// ProfileInput is a profile update; empty fields keep their stored value.
type ProfileInput struct {
	Mood string `validate:"max=280"`
	Want string `validate:"max=280"`
}

// RewardInput configures a pair's reward.
type RewardInput struct {
	DaysRequired int    `validate:"gte=1"`
	Gift         string `validate:"max=280"`
}

func (in *TaskInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.StartDate = strings.TrimSpace(in.StartDate)
}

// validateStruct runs the struct tags and reports the first failure as a
// ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Invalid(fieldName(fe.Field()), "failed %q check (%s)", fe.Tag(), fe.Param())
	}
	return apperr.Invalid("", "%v", err)
}

func fieldName(field string) string {
	switch field {
	case "PairID":
		return "pair_id"
	case "StartDate":
		return "start_date"
	case "TargetDays":
		return "target_days"
	case "DaysRequired":
		return "days_required"
	default:
		return strings.ToLower(field)
	}
}
