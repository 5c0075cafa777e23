package service

import (
	"context"
	"fmt"
	"strings"

	"pair-tasks/internal/model"
	"pair-tasks/internal/pairing"
)

// ProfileService stores the mood and wish each partner shares.
type ProfileService struct {
	docs *Documents
}

func NewProfileService(docs *Documents) *ProfileService {
	return &ProfileService{docs: docs}
}

func (s *ProfileService) Get(ctx context.Context, account pairing.Account) model.Profile {
	return s.docs.Read(ctx).Profile(account)
}

// Update overwrites the non-empty fields of input. Last write wins.
func (s *ProfileService) Update(ctx context.Context, account pairing.Account, input ProfileInput) (model.Profile, error) {
	input.Mood = strings.TrimSpace(input.Mood)
	input.Want = strings.TrimSpace(input.Want)
	if err := validateStruct(input); err != nil {
		return model.Profile{}, err
	}

	var updated model.Profile
	err := s.docs.Update(ctx, func(doc *model.Document) error {
		p := doc.Profile(account)
		if input.Mood != "" {
			p.Mood = input.Mood
		}
		if input.Want != "" {
			p.Want = input.Want
		}
		doc.SetProfile(account, p)
		updated = p
		return nil
	})
	if err != nil {
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

func (s *ProfileService) SetMood(ctx context.Context, account pairing.Account, mood string) (model.Profile, error) {
	return s.Update(ctx, account, ProfileInput{Mood: mood})
}

func (s *ProfileService) SetWant(ctx context.Context, account pairing.Account, want string) (model.Profile, error) {
	return s.Update(ctx, account, ProfileInput{Want: want})
}
