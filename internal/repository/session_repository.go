package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pair-tasks/internal/model"
)

// SessionRepository keeps bot sign-ins in the SQLite database.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Upsert finds the session by TelegramID and updates it, or creates it.
func (r *SessionRepository) Upsert(ctx context.Context, s model.Session) error {
	db := r.db.WithContext(ctx)
	existing, err := r.FindByTelegramID(ctx, s.TelegramID)
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"chat_id":  s.ChatID,
			"account":  s.Account,
			"username": s.Username,
		}
		if err := db.Model(existing).Updates(updates).Error; err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.ID = 0
		if err := db.Create(&s).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find session: %w", err)
	}
}

func (r *SessionRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.Session, error) {
	var s model.Session
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) ListAll(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	if err := r.db.WithContext(ctx).Order("telegram_id").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
