// Package reward compares a streak against a pair's goal.
package reward

import (
	"strings"

	"pair-tasks/internal/apperr"
	"pair-tasks/internal/model"
)

// Status is the unlock state of a reward for a given streak.
type Status struct {
	Unlocked  bool `json:"unlocked"`
	Remaining int  `json:"remaining"`
}

// Evaluate reports whether streak reaches daysRequired and how many days are left.
func Evaluate(streak, daysRequired int) (Status, error) {
	if daysRequired < 1 {
		return Status{}, apperr.Invalid("days_required", "must be at least 1, got %d", daysRequired)
	}
	remaining := daysRequired - streak
	if remaining < 0 {
		remaining = 0
	}
	return Status{Unlocked: streak >= daysRequired, Remaining: remaining}, nil
}

// NewConfig validates a reward goal.
func NewConfig(daysRequired int, gift string) (model.RewardConfig, error) {
	if daysRequired < 1 {
		return model.RewardConfig{}, apperr.Invalid("days_required", "must be at least 1, got %d", daysRequired)
	}
	return model.RewardConfig{DaysRequired: daysRequired, Gift: strings.TrimSpace(gift)}, nil
}

// Default is the goal used before a pair configures one.
func Default(daysRequired int) model.RewardConfig {
	if daysRequired < 1 {
		daysRequired = 3
	}
	return model.RewardConfig{DaysRequired: daysRequired}
}
