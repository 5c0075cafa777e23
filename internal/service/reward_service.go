package service

import (
	"context"
	"fmt"
	"log/slog"

	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
	"pair-tasks/internal/reward"
)

// RewardService keeps the per-pair streak goal.
type RewardService struct {
	docs        *Documents
	defaultDays int
	logger      *slog.Logger
}

func NewRewardService(docs *Documents, defaultDays int, logger *slog.Logger) *RewardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RewardService{docs: docs, defaultDays: defaultDays, logger: logger}
}

// Get returns the pair's reward and whether it was configured. Unconfigured
// pairs get the default goal.
func (s *RewardService) Get(ctx context.Context, pair pairing.PairID) (model.RewardConfig, bool) {
	return s.fromDocument(s.docs.Read(ctx), pair)
}

func (s *RewardService) fromDocument(doc *model.Document, pair pairing.PairID) (model.RewardConfig, bool) {
	if cfg, ok := doc.Reward(pair); ok {
		return cfg, true
	}
	return reward.Default(s.defaultDays), false
}

// Configure validates and stores the pair's reward. Last write wins.
func (s *RewardService) Configure(ctx context.Context, pair pairing.PairID, input RewardInput) (model.RewardConfig, error) {
	if err := validateStruct(input); err != nil {
		return model.RewardConfig{}, err
	}
	cfg, err := reward.NewConfig(input.DaysRequired, input.Gift)
	if err != nil {
		return model.RewardConfig{}, err
	}
	if err := s.docs.Update(ctx, func(doc *model.Document) error {
		doc.SetReward(pair, cfg)
		return nil
	}); err != nil {
		return model.RewardConfig{}, fmt.Errorf("configure reward: %w", err)
	}
	s.logger.Info("reward configured", "pair", pair, "days_required", cfg.DaysRequired)
	return cfg, nil
}
