package service

import (
	"context"
	"fmt"
	"time"

	"pair-tasks/internal/apperr"
	"pair-tasks/internal/metrics"
	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
	"pair-tasks/internal/reward"
	"pair-tasks/internal/streak"
)

// Progress is the shared streak of a pair and its reward state.
type Progress struct {
	PairID     pairing.PairID     `json:"pair_id"`
	Members    [2]pairing.Account `json:"members"`
	Day        string             `json:"day"`
	Policy     string             `json:"policy"`
	Streak     int                `json:"streak"`
	Reward     model.RewardConfig `json:"reward"`
	Configured bool               `json:"reward_configured"`
	Status     reward.Status      `json:"status"`
}

// TaskProgress is the streak of a single task against its own target.
type TaskProgress struct {
	TaskID string         `json:"task_id"`
	Streak int            `json:"streak"`
	Target int            `json:"target_days,omitempty"`
	Status *reward.Status `json:"status,omitempty"`
}

// StreakService recomputes streaks from the stored completion history.
type StreakService struct {
	docs    *Documents
	rewards *RewardService
	clock   Clock
	policy  streak.Policy
}

func NewStreakService(docs *Documents, rewards *RewardService, clock Clock, policy streak.Policy) *StreakService {
	return &StreakService{docs: docs, rewards: rewards, clock: clock, policy: policy}
}

func (s *StreakService) Policy() streak.Policy { return s.policy }

// Today is the current day in the service's location.
func (s *StreakService) Today() time.Time { return s.clock.Today() }

// Progress reports the pair streak of account's pair as of today.
func (s *StreakService) Progress(ctx context.Context, account pairing.Account) (Progress, error) {
	return s.ProgressOn(ctx, account, s.clock.Today())
}

// ProgressOn reports the pair streak of account's pair as of day.
func (s *StreakService) ProgressOn(ctx context.Context, account pairing.Account, day time.Time) (Progress, error) {
	doc := s.docs.Read(ctx)
	pair := pairing.PairOf(account)
	lo, hi := pairing.Members(pair)

	count := streak.PairStreak(doc.Tasks, pair, day, s.policy)
	cfg, configured := s.rewards.fromDocument(doc, pair)
	status, err := reward.Evaluate(count, cfg.DaysRequired)
	if err != nil {
		return Progress{}, fmt.Errorf("evaluate reward of pair %s: %w", pair, err)
	}
	metrics.StreakLength.Observe(float64(count))

	return Progress{
		PairID:     pair,
		Members:    [2]pairing.Account{lo, hi},
		Day:        model.DayKey(day),
		Policy:     s.policy.String(),
		Streak:     count,
		Reward:     cfg,
		Configured: configured,
		Status:     status,
	}, nil
}

// TaskProgress reports a single task's streak as of day.
func (s *StreakService) TaskProgress(ctx context.Context, viewer pairing.Account, id string, day time.Time) (TaskProgress, error) {
	doc := s.docs.Read(ctx)
	i := doc.FindTask(id)
	if i < 0 {
		return TaskProgress{}, fmt.Errorf("task %q: %w", id, apperr.ErrTaskNotFound)
	}
	task := doc.Tasks[i]
	if task.PairID != pairing.PairOf(viewer) {
		return TaskProgress{}, apperr.Invalid("task", "task %s does not belong to pair %s", id, pairing.PairOf(viewer))
	}
	out := TaskProgress{TaskID: id, Streak: streak.TaskStreak(task, day), Target: task.TargetDays}
	if task.TargetDays > 0 {
		st, err := reward.Evaluate(out.Streak, task.TargetDays)
		if err != nil {
			return TaskProgress{}, err
		}
		out.Status = &st
	}
	return out, nil
}
